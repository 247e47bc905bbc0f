package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/fevered-world/internal/config"
	"github.com/talgya/fevered-world/internal/engine"
	"github.com/talgya/fevered-world/internal/world"
)

// NewGenerateCommand creates the generate command
func NewGenerateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate a world and describe its regions",
		Long:  `Generate terrain and found the colonies as "run" would, then print a summary without simulating.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return generate(cfg, cmd.OutOrStdout())
		},
	}
}

func generate(cfg *config.Config, out io.Writer) error {
	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}
	g, grid, err := engine.Bootstrap(cfg.Simulation.WorldOptions(), reg, cfg.Simulation.Settings())
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "World %dx%d, seed %d\n", grid.Width(), grid.Height(), cfg.Simulation.Seed)
	counts := world.TileCounts(grid)
	tiles := make([]world.GroundTile, 0, len(counts))
	for t := range counts {
		tiles = append(tiles, t)
	}
	sort.Slice(tiles, func(i, j int) bool { return tiles[i] < tiles[j] })
	for _, t := range tiles {
		fmt.Fprintf(out, "  %-8s %s tiles\n", t, humanize.Comma(int64(counts[t])))
	}
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tREGION\tCENTRE\tTILES\tSITES\tNEIGHBOURS")
	for _, r := range g.Map.Regions() {
		var neighbours []string
		for _, n := range r.Neighbors() {
			neighbours = append(neighbours, n.Name)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n",
			r.Index, r.Name, r.WorldPosition, humanize.Comma(int64(len(r.GroundTiles))),
			len(r.ResourceSites()), strings.Join(neighbours, ", "))
	}
	return tw.Flush()
}
