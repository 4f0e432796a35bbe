package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/McPacket/detection-rules-explorer/internal/catalog"
	"github.com/McPacket/detection-rules-explorer/internal/query"
)

func newSearchCmd(a *app) *cobra.Command {
	var (
		filters []string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "search [term...]",
		Short: "Search the built catalog by text and facets",
		Long: `Search rules by a case-insensitive substring of name, description or id,
narrowed by facet filters. Values of the same field are alternatives;
different fields must all match.

Examples:
  rulesexplorer search powershell
  rulesexplorer search --filter tactics=execution --filter tactics=persistence
  rulesexplorer search dns --filter domain=network --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, map[string]string{"output_dir": "data"}); err != nil {
				return err
			}
			defer a.logger.Sync() //nolint:errcheck

			selection, err := parseFilters(filters)
			if err != nil {
				return err
			}

			ds, err := a.loadDataset()
			if err != nil {
				return err
			}

			session := query.NewSession(ds.Catalog.Rules())
			session.SetTerm(strings.Join(args, " "))
			for field, values := range selection {
				for _, v := range values {
					session.Toggle(field, v)
				}
			}
			results := session.Results()
			a.logger.Debugw("search evaluated",
				"term", session.Term(),
				"active_filters", session.ActiveCount(),
				"matched", len(results),
				"total", session.Total(),
			)

			w := cmd.OutOrStdout()
			shown := results
			if limit > 0 && len(shown) > limit {
				shown = shown[:limit]
			}

			if a.outputJSON {
				return outputAsJSON(w, searchOutput{
					Term:    session.Term(),
					Filters: session.Selection(),
					Total:   session.Total(),
					Matched: len(results),
					Rules:   shown,
				})
			}

			printResultHeader(w, len(results), session.Total(), session.ActiveCount())
			for i := range shown {
				printRuleLine(w, &shown[i])
			}
			if len(shown) < len(results) {
				infoColor.Fprintf(w, "... %d more (raise --limit to see them)\n", len(results)-len(shown))
			}
			return nil
		},
	}

	cmd.Flags().String("data", "", "Directory holding the built artifacts (default: public/data)")
	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "Facet filter as field=value (repeatable)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum rules to print (0 for all)")

	return cmd
}

type searchOutput struct {
	Term    string          `json:"term"`
	Filters query.Selection `json:"filters"`
	Total   int             `json:"total"`
	Matched int             `json:"matched"`
	Rules   []catalog.Rule  `json:"rules"`
}

// parseFilters turns repeated field=value flags into a selection. Repeating
// the same pair toggles it off again, as in an interactive session.
func parseFilters(raw []string) (query.Selection, error) {
	sel := query.NewSelection()
	for _, f := range raw {
		field, value, ok := strings.Cut(f, "=")
		field = strings.TrimSpace(field)
		value = strings.TrimSpace(value)
		if !ok || field == "" || value == "" {
			return nil, fmt.Errorf("invalid filter %q: expected field=value", f)
		}
		sel.Toggle(field, value)
	}
	return sel, nil
}
