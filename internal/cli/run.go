package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/fevered-world/internal/api"
	"github.com/talgya/fevered-world/internal/clock"
	"github.com/talgya/fevered-world/internal/config"
	"github.com/talgya/fevered-world/internal/engine"
	"github.com/talgya/fevered-world/internal/persistence"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	var hours int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation",
		Long: `Generate the world and run it. With --hours the game is stepped as fast
as possible for that many game hours; otherwise it runs in real time with
the HTTP API until interrupted or the game ends.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if hours < 0 {
				return fmt.Errorf("--hours must not be negative")
			}
			return runSimulation(cmd.Context(), cfg, hours, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&hours, "hours", 0, "Game hours to run headless (0 = real time)")

	return cmd
}

func runSimulation(ctx context.Context, cfg *config.Config, hours int, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	slog.Info("Fevered World colony simulation", "seed", cfg.Simulation.Seed, "regions", cfg.Simulation.Regions)

	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}

	// ── World ───────────────────────────────────────────────────────
	g, _, err := engine.Bootstrap(cfg.Simulation.WorldOptions(), reg, cfg.Simulation.Settings())
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	eng := engine.NewEngine(g, clock.Minutes(uint64(cfg.Simulation.MinutesPerStep)), cfg.Simulation.StepInterval)

	// ── Database ────────────────────────────────────────────────────
	var db *persistence.DB
	if cfg.Database.Enabled {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
		db, err = persistence.Open(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer db.Close()
		if _, err := db.BeginRun(cfg.Simulation.Seed, len(g.Map.Regions())); err != nil {
			return err
		}
		db.Attach(eng)
		slog.Info("database opened", "path", cfg.Database.Path)
	}

	eng.OnDay = func(day clock.TimeT) {
		eng.View(func(g *engine.Game) {
			pop := 0
			for _, s := range g.Stats() {
				pop += s.Population
			}
			slog.Info("day passed", "time", day, "population", pop, "events", g.Events.Total())
		})
	}

	// ── Run ─────────────────────────────────────────────────────────
	if hours > 0 {
		done := eng.RunFor(ctx, clock.Hours(uint64(hours)))
		slog.Info("headless run finished", "minutes", uint64(done), "steps", eng.Steps())
	} else {
		sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cfg.API.Enabled {
			srv := &api.Server{
				Eng:      eng,
				DB:       db,
				Port:     cfg.API.Port,
				AdminKey: cfg.API.AdminKey,
				Limiter:  api.NewRateLimiter(cfg.API.RequestsPerSecond, cfg.API.Burst),
			}
			srv.Start(sigCtx)
		}
		eng.Run(sigCtx)
	}

	// ── Shutdown ────────────────────────────────────────────────────
	if db != nil {
		if err := db.Flush(eng); err != nil {
			slog.Error("final flush failed", "error", err)
		}
		var (
			now     clock.TimeT
			outcome engine.Outcome
		)
		eng.View(func(g *engine.Game) { now, outcome = g.Time(), g.Outcome() })
		if err := db.EndRun(now, outcome); err != nil {
			return err
		}
	}

	printSummary(out, eng)
	return nil
}

func printSummary(out io.Writer, eng *engine.Engine) {
	var (
		now     clock.TimeT
		outcome engine.Outcome
		stats   []engine.RegionStats
	)
	eng.View(func(g *engine.Game) {
		now, outcome, stats = g.Time(), g.Outcome(), g.Stats()
	})

	fmt.Fprintf(out, "%s after %s (%s steps): %s\n", now, clock.Fancy(now), humanize.Comma(int64(eng.Steps())), outcome)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REGION\tPOPULATION\tHOMELESS\tUNEMPLOYED\tSTARVED\tBORN\tSILVER\tBUILDINGS")
	for _, s := range stats {
		name := s.Name
		if s.Player {
			name += " *"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%s\t%d\n",
			name, humanize.Comma(int64(s.Population)), s.Homeless, s.Unemployed,
			s.Starved, s.Born, humanize.Comma(int64(s.Silver)), s.Buildings)
	}
	tw.Flush()
}
