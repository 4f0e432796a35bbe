package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/McPacket/detection-rules-explorer/internal/pipeline"
)

func newBuildCmd(a *app) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the rule catalog and facet index",
		Long: `Walk the rules directory, normalize every YAML rule file, and write
rules.json, index.json and manifest.json to the output directory.

Malformed rule files are skipped and reported. A missing rules directory
fails the build without writing anything.

Examples:
  rulesexplorer build
  rulesexplorer build --rules ./rules --out ./public/data
  rulesexplorer build --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, map[string]string{
				"rules_dir":        "rules",
				"output_dir":       "out",
				"workers":          "workers",
				"version":          "version",
				"metrics.textfile": "metrics-textfile",
				"watch.debounce":   "debounce",
			}); err != nil {
				return err
			}
			defer a.logger.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := a.runBuild(ctx, cmd.OutOrStdout()); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			if !a.quiet && !a.outputJSON {
				infoColor.Fprintf(cmd.OutOrStdout(), "\nWatching %s for changes (Ctrl+C to stop)\n", a.cfg.RulesDir)
			}
			return pipeline.Watch(ctx, a.cfg, a.logger, func(res *pipeline.Result, err error) {
				if err != nil {
					errorColor.Fprintf(cmd.ErrOrStderr(), "rebuild failed: %v\n", err)
					return
				}
				a.report(cmd.OutOrStdout(), res)
			})
		},
	}

	cmd.Flags().String("rules", "", "Rules directory to search (default: rules)")
	cmd.Flags().String("out", "", "Output directory for the artifacts (default: public/data)")
	cmd.Flags().Int("workers", 0, "Parallel normalization workers (default: number of CPUs)")
	cmd.Flags().String("version", "", "Version stamped into the manifest (default: date and git revision)")
	cmd.Flags().String("metrics-textfile", "", "Write build metrics in Prometheus text format to this file")
	cmd.Flags().Duration("debounce", 0, "Quiet period before a watch rebuild (default: 500ms)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Rebuild whenever rule files change")

	return cmd
}

func (a *app) runBuild(ctx context.Context, w io.Writer) error {
	var s *spinner.Spinner
	if !a.quiet && !a.outputJSON && isatty.IsTerminal(os.Stdout.Fd()) {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = " Building rule catalog..."
		s.Start()
	}

	res, err := pipeline.Run(ctx, a.cfg, a.logger)

	if s != nil {
		s.Stop()
	}
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	a.report(w, res)
	return nil
}

// report prints the outcome of one build.
func (a *app) report(w io.Writer, res *pipeline.Result) {
	if a.outputJSON {
		if err := outputAsJSON(w, buildSummaryOf(res)); err != nil {
			a.logger.Warnw("failed to encode build summary", "error", err)
		}
		return
	}
	if a.quiet {
		return
	}
	printBuildSummary(w, res)
}
