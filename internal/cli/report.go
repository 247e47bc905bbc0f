package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/talgya/fevered-world/internal/persistence"
)

// NewReportCommand creates the report command
func NewReportCommand() *cobra.Command {
	var (
		runs   int
		events int
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarise recorded runs from the chronicle",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if _, err := os.Stat(cfg.Database.Path); err != nil {
				return fmt.Errorf("no chronicle at %s: %w", cfg.Database.Path, err)
			}
			db, err := persistence.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()
			return report(cmd.OutOrStdout(), db, runs, events)
		},
	}

	cmd.Flags().IntVar(&runs, "runs", 5, "Number of runs to list")
	cmd.Flags().IntVar(&events, "events", 10, "Number of recent events to list")

	return cmd
}

func report(out io.Writer, db *persistence.DB, runs, events int) error {
	rs, err := db.Runs(runs)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(rs) == 0 {
		fmt.Fprintln(out, "no runs recorded")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tSEED\tREGIONS\tGAME TIME\tOUTCOME\tDOCUMENTS")
	for _, r := range rs {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return fmt.Errorf("run id %q: %w", r.ID, err)
		}
		states, err := db.DocumentStates(id)
		if err != nil {
			return fmt.Errorf("document states of %s: %w", r.ID, err)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\t%d fulfilled, %d failed, %d active\n",
			r.ID[:8], humanize.Time(time.Unix(r.StartedAt, 0)), r.Seed, r.Regions,
			r.GameTime, r.Outcome, states["fulfilled"], states["failed"], states["active"])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if events <= 0 {
		return nil
	}
	evs, err := db.RecentEvents(events)
	if err != nil {
		return fmt.Errorf("recent events: %w", err)
	}
	fmt.Fprintf(out, "\nlast %d events:\n", len(evs))
	for _, e := range evs {
		where := e.Region
		if where == "" {
			where = "-"
		}
		fmt.Fprintf(out, "  [%s] %s %s: %s\n", e.Time, where, e.Category, e.Description)
	}
	return nil
}
