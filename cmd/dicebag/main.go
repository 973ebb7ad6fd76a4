package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chosenoffset/dicebag/internal/config"
	"github.com/chosenoffset/dicebag/internal/logging"
	"github.com/chosenoffset/dicebag/internal/random"
	"github.com/chosenoffset/dicebag/pkg/dicebag"
	"github.com/chosenoffset/dicebag/pkg/dicebag/dice"
	"github.com/chosenoffset/dicebag/pkg/dicebag/metrics"
)

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	logLevel   string
	seed       int64

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "dicebag",
		Short: "Parse and roll tabletop dice notation",
		Long: `dicebag rolls dice notation such as 3d6+2, 4d6kh3 or 2d20dl1 - 1d4.

Rolls can be printed from the command line or served from a small web
dashboard that streams every roll to connected browsers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Int64Var(&a.seed, "seed", 0, "Random seed (0 draws a fresh seed)")

	rootCmd.AddCommand(newRollCmd(a))
	rootCmd.AddCommand(newEvalCmd(a))
	rootCmd.AddCommand(newParseCmd(a))
	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newLoadCmd(a))

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = a.logLevel
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = a.seed
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

// newEngine builds an engine from the loaded config. A nil gen selects a
// RandomGenerator seeded from the config.
func (a *app) newEngine(gen dice.Generator) (*dicebag.Engine, error) {
	if gen == nil {
		seed, err := random.Resolve(a.cfg.Seed)
		if err != nil {
			return nil, err
		}
		a.logger.Debug("Seeding generator", zap.Int64("seed", seed))
		gen = dice.NewRandomGenerator(seed)
	}

	return dicebag.NewEngine(
		dicebag.WithGenerator(gen),
		dicebag.WithLogger(a.logger),
		dicebag.WithLimits(a.cfg.EngineLimits()),
		dicebag.WithCollector(metrics.NewRollCollector(a.cfg.HistorySize)),
	), nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
