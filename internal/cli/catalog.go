package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/talgya/fevered-world/internal/clock"
	"github.com/talgya/fevered-world/internal/economy"
	"github.com/talgya/fevered-world/internal/registry"
)

// NewCatalogCommand creates the catalog command
func NewCatalogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the asset catalog",
		Long:  `Print every registered id by kind, plus the buildings' costs and the empire's mandates.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			reg, err := loadRegistry(cfg)
			if err != nil {
				return err
			}
			printCatalog(cmd.OutOrStdout(), reg)
			return nil
		},
	}
}

func printCatalog(out io.Writer, reg *registry.Registry) {
	ids := reg.IDs()
	kinds := make([]string, 0, len(ids))
	for k := range ids {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(out, "%s: %s\n", k, strings.Join(ids[k], ", "))
	}

	fmt.Fprintln(out, "\nbuildings:")
	for _, b := range reg.Buildings() {
		fmt.Fprintf(out, "  %-12s houses %d, %g hours, costs %s\n",
			b.Name, b.PopulationCapacity, b.HoursToConstruct, economy.Describe(b.Requirements))
	}

	fmt.Fprintln(out, "\nmandates:")
	for _, m := range reg.Mandates {
		fmt.Fprintf(out, "  %s due after %s\n", economy.Describe(m.Requirements), clock.Fancy(m.DueMinutes))
	}
}
