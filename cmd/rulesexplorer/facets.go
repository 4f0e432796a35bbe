package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/McPacket/detection-rules-explorer/internal/facets"
)

func newFacetsCmd(a *app) *cobra.Command {
	var field string

	cmd := &cobra.Command{
		Use:   "facets",
		Short: "List facet values and their rule counts",
		Long: `Print the facet index: for every filterable field, the distinct values
found in the catalog and how many rules carry each.

Examples:
  rulesexplorer facets
  rulesexplorer facets --field tactics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, map[string]string{"output_dir": "data"}); err != nil {
				return err
			}
			defer a.logger.Sync() //nolint:errcheck

			ds, err := a.loadDataset()
			if err != nil {
				return err
			}

			fields := ds.Index.Filters
			if field != "" {
				values, ok := ds.Index.Field(field)
				if !ok {
					return fmt.Errorf("unknown facet field %q", field)
				}
				fields = facets.Filters{{Name: field, Values: values}}
			}

			w := cmd.OutOrStdout()
			if a.outputJSON {
				return outputAsJSON(w, &facets.Index{TotalRules: ds.Index.TotalRules, Filters: fields})
			}

			printSection(w, fmt.Sprintf("Facets (%d rules)", ds.Index.TotalRules))
			for _, f := range fields {
				printFacet(w, f)
			}
			return nil
		},
	}

	cmd.Flags().String("data", "", "Directory holding the built artifacts (default: public/data)")
	cmd.Flags().StringVar(&field, "field", "", "Only print this field")

	return cmd
}
