package main

import (
	"context"
	"fmt"
	"io"

	"github.com/Carmen-Shannon/oxy-cachekey/engine/cachekey"
	"github.com/Carmen-Shannon/oxy-cachekey/engine/config"
	"github.com/Carmen-Shannon/oxy-cachekey/engine/dedup"
	"github.com/Carmen-Shannon/oxy-cachekey/engine/gltf"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	programName = "gltfkeys"

	configFlagName     = "config"
	verboseFlagName    = "verbose"
	workersFlagName    = "workers"
	formatFlagName     = "format"
	baseFlagName       = "base"
	sharedOnlyFlagName = "shared-only"

	formatText = "text"
	formatJSON = "json"
)

type flags struct {
	Config     string
	Verbose    bool
	Workers    int
	Format     string
	Base       string
	SharedOnly bool
}

func newFlags() *flags {
	return &flags{}
}

func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Config, configFlagName, "", "Path to a TOML config file. Defaults to $XDG_CONFIG_HOME/gltfkeys/config.toml.")
	flagSet.BoolVarP(&f.Verbose, verboseFlagName, "v", false, "Log at debug level to stderr.")
	flagSet.IntVar(&f.Workers, workersFlagName, 0, "Number of files planned concurrently. Overrides the config file.")
	flagSet.StringVar(&f.Format, formatFlagName, formatText, fmt.Sprintf("Output format: %s or %s.", formatText, formatJSON))
	flagSet.StringVar(&f.Base, baseFlagName, "", "Location relative buffer and image URIs resolve against. Defaults to each file.")
	flagSet.BoolVar(&f.SharedOnly, sharedOnlyFlagName, false, "Only print keys used by more than one file.")
}

func newCommand() *cobra.Command {
	flags := newFlags()
	cmd := &cobra.Command{
		Use:           fmt.Sprintf("%s file.gltf|file.glb...", programName),
		Short:         "Print the resource cache keys of glTF files",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), flags, args)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", programName, err)
			}
			return err
		},
	}
	flags.Bind(cmd.Flags())
	return cmd
}

func run(ctx context.Context, stdout, stderr io.Writer, flags *flags, paths []string) error {
	if flags.Format != formatText && flags.Format != formatJSON {
		return fmt.Errorf("unknown --%s %q", formatFlagName, flags.Format)
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	logger := newLogger(stderr, cfg, flags.Verbose)
	defer func() { _ = logger.Sync() }()

	var (
		assets    []cachekey.Asset
		parseErrs error
	)
	for _, path := range paths {
		doc, err := gltf.Parse(path)
		if err != nil {
			logger.Warn("file skipped", zap.String("path", path), zap.Error(err))
			parseErrs = multierr.Append(parseErrs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		assets = append(assets, cachekey.Asset{
			Document:     doc,
			Location:     path,
			BaseLocation: cfg.Resolver.BaseLocation,
		})
	}

	planner := dedup.NewPlanner(cfg.PlannerOptions(logger)...)
	defer planner.Close()

	inv, planErr := planner.Plan(ctx, assets)
	if err := writeReport(stdout, flags.Format, inv, flags.SharedOnly); err != nil {
		return err
	}
	return multierr.Combine(parseErrs, planErr)
}

// loadConfig applies command line flags on top of the config file.
func loadConfig(flags *flags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.Config != "" {
		cfg, err = config.LoadFromFile(flags.Config)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if flags.Workers > 0 {
		cfg.Planner.Workers = flags.Workers
	}
	if flags.Base != "" {
		cfg.Resolver.BaseLocation = flags.Base
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg *config.Config, verbose bool) *zap.Logger {
	level := cfg.LogLevel()
	encoderConfig := zap.NewProductionEncoderConfig()
	if verbose {
		level = zapcore.DebugLevel
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(w),
		level,
	)
	return zap.New(core).Named(programName)
}
