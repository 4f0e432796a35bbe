package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/McPacket/detection-rules-explorer/internal/artifact"
	"github.com/McPacket/detection-rules-explorer/internal/config"
	"github.com/McPacket/detection-rules-explorer/internal/logging"
)

// loadTimeout bounds reading the artifacts for the query commands.
const loadTimeout = 30 * time.Second

// app carries state shared by every subcommand.
type app struct {
	v          *viper.Viper
	configFile string
	outputJSON bool
	noColor    bool
	quiet      bool

	cfg    *config.Config
	logger *zap.SugaredLogger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "rulesexplorer",
		Short: "Build and browse a catalog of detection rules",
		Long: `Build a normalized catalog and facet index from a directory of YAML
detection rules, and search the result by text and facets.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if a.noColor || !isatty.IsTerminal(os.Stdout.Fd()) {
				color.NoColor = true
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "Config file (default: rulesexplorer.yaml in . or ./config)")
	root.PersistentFlags().BoolVar(&a.outputJSON, "json", false, "Output in JSON format")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")
	root.PersistentFlags().BoolVar(&a.quiet, "quiet", false, "Suppress non-essential output")
	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "", "Log format (console, json)")

	root.AddCommand(newBuildCmd(a))
	root.AddCommand(newSearchCmd(a))
	root.AddCommand(newFacetsCmd(a))
	root.AddCommand(newShowCmd(a))

	return root
}

// setup binds the given config keys to flags of cmd, then loads config and
// builds the logger. Binding happens per invocation so two commands can bind
// the same key to different flags.
func (a *app) setup(cmd *cobra.Command, bindings map[string]string) error {
	bindings["log.level"] = "log-level"
	bindings["log.format"] = "log-format"
	for key, name := range bindings {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := a.v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("binding flag --%s: %w", name, err)
			}
		}
	}

	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// loadDataset reads the artifacts from the configured output directory.
func (a *app) loadDataset() (*artifact.Dataset, error) {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	ds, err := artifact.Load(ctx, a.cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("%w (run 'rulesexplorer build' first)", err)
	}
	return ds, nil
}
