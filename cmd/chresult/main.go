// Command chresult encodes, decodes and replays Control Hub Updater results.
package main

import (
	"fmt"
	"os"

	"github.com/revrobotics/chupdater/application/config"
	"github.com/revrobotics/chupdater/wireformat"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configPath string
	format     string

	logger *zap.Logger
	cfg    config.Config
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "chresult",
		Short: "Work with Control Hub Updater result bundles",
		Long: `chresult converts updater results between their structured and serialized
forms, prints the bundle schema and replays scripted update sessions.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded := config.Default()
			if configPath != "" {
				var err error
				if loaded, err = config.Load(configPath); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("format") {
				loaded.Format = format
			}
			if _, err := wireformat.ParseFormat(loaded.Format); err != nil {
				return err
			}
			cfg = loaded

			level, err := cfg.Level()
			if err != nil {
				return err
			}
			zc := zap.NewProductionConfig()
			zc.Level = zap.NewAtomicLevelAt(level)
			if verbose {
				zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err = zc.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	root.PersistentFlags().StringVarP(&format, "format", "f", string(wireformat.FormatJSON), "Bundle format: json or yaml")

	root.AddCommand(newEncodeCmd())
	root.AddCommand(newDecodeCmd())
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newReplayCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// bundleFormat is the format selected by the config file or --format.
func bundleFormat() wireformat.Format {
	f, err := wireformat.ParseFormat(cfg.Format)
	if err != nil {
		return wireformat.FormatJSON
	}
	return f
}
