package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <rule-id>",
		Short: "Show every field of one rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, map[string]string{"output_dir": "data"}); err != nil {
				return err
			}
			defer a.logger.Sync() //nolint:errcheck

			ds, err := a.loadDataset()
			if err != nil {
				return err
			}

			rule, ok := ds.Catalog.Lookup(args[0])
			if !ok {
				return fmt.Errorf("rule %q not found", args[0])
			}

			w := cmd.OutOrStdout()
			if a.outputJSON {
				return outputAsJSON(w, rule)
			}
			printRuleDetail(w, rule)
			return nil
		},
	}

	cmd.Flags().String("data", "", "Directory holding the built artifacts (default: public/data)")

	return cmd
}
