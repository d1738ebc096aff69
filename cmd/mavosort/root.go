package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mavosort/internal/config"
	"mavosort/internal/criteria"
	"mavosort/internal/engine"
	errs "mavosort/internal/errors"
	"mavosort/internal/slogutil"
	"mavosort/internal/version"
)

var (
	configPath string
	verbosity  int
	quiet      bool
	logFormat  string

	// Set by PersistentPreRunE for every command.
	appConfig *config.Config
	appSource string
	logger    *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mavosort",
	Short: "mavosort - multi-key stable sorting and grouping",
	Long: `mavosort orders a list of items by property, parallel and index keys,
and folds the result into nested groups. Items are read from JSON, YAML or
TOML files (optionally gzip or zstd compressed).

Criteria use sigils: "+price -name rank" sorts by price ascending, then name
descending, then rank in the default direction (descending unless configured).`,
	Version:           version.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.SetVersionTemplate("mavosort version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default .mavosort/config.{json,yaml,toml})")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Silence all logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (human, json); overrides logging.format")
}

func setup(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		return err
	}

	res, err := config.LoadConfig(root, configPath)
	if err != nil {
		return errs.New(errs.ConfigInvalid, "cannot load configuration", err)
	}
	appConfig = res.Config
	appSource = res.ConfigPath

	level := slogutil.LevelFromString(appConfig.Logging.Level)
	if verbosity > 0 || quiet {
		level = slogutil.LevelFromVerbosity(verbosity, quiet)
	}
	format := appConfig.Logging.Format
	if logFormat != "" {
		format = logFormat
	}
	logger = slogutil.New(format, cmd.ErrOrStderr(), level)
	logger.Debug("Configuration loaded", "path", appSource, "version", version.Info())
	return nil
}

// newEngine builds the engine from the loaded config.
func newEngine() *engine.Engine {
	return engine.New(
		engine.WithDefaultDirection(appConfig.Direction()),
		engine.WithLogger(logger),
	)
}

// newNormalizer builds the criteria normalizer from the loaded config.
func newNormalizer() *criteria.Normalizer {
	return criteria.New(criteria.Options{
		DefaultDirection: appConfig.Direction(),
		AscendingSigils:  appConfig.Sort.AscendingSigils,
		DescendingSigils: appConfig.Sort.DescendingSigils,
	})
}

func strictParallel() bool {
	return appConfig.Sort.ParallelMismatch == config.MismatchError
}
