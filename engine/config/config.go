// Package config loads gltfkeys settings from TOML.
package config

import (
	"github.com/Carmen-Shannon/oxy-cachekey/engine/cachekey"
	"github.com/Carmen-Shannon/oxy-cachekey/engine/dedup"

	"github.com/jmgilman/go/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is the root configuration.
type Config struct {
	Resolver ResolverConfig `toml:"resolver"`
	Images   ImageConfig    `toml:"images"`
	Planner  PlannerConfig  `toml:"planner"`
	Log      LogConfig      `toml:"log"`
}

// ResolverConfig controls how resource locations are canonicalized.
type ResolverConfig struct {
	// KeepQuery keeps URL query strings in keys.
	KeepQuery bool `toml:"keep_query"`

	// KeepFragment keeps URL fragments in keys.
	KeepFragment bool `toml:"keep_fragment"`

	// BaseLocation overrides the location relative URIs resolve against.
	BaseLocation string `toml:"base_location"`
}

// ImageConfig lists the optional image encodings the consumer decodes.
type ImageConfig struct {
	KTX2 bool `toml:"ktx2"`
	WebP bool `toml:"webp"`
}

// PlannerConfig controls the dedup planner.
type PlannerConfig struct {
	// Workers is the number of documents planned concurrently. 0 picks a default.
	Workers int `toml:"workers"`
}

// LogConfig controls logging.
type LogConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `toml:"level"`
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Planner.Workers < 0 {
		return errors.Newf(errors.CodeInvalidConfig, "planner.workers must not be negative, got %d", c.Planner.Workers)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrapf(err, errors.CodeInvalidConfig, "log.level %q", c.Log.Level)
	}
	return nil
}

// LogLevel returns the configured level, or warn when it does not parse.
func (c *Config) LogLevel() zapcore.Level {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return zapcore.WarnLevel
	}
	return level
}

// KeyDeriverOptions translates the configuration into cachekey options.
//
// Returns:
//   - []cachekey.KeyDeriverBuilderOption: resolver and image format options
func (c *Config) KeyDeriverOptions() []cachekey.KeyDeriverBuilderOption {
	resolver := cachekey.NewURLResolver(
		cachekey.WithKeepQuery(c.Resolver.KeepQuery),
		cachekey.WithKeepFragment(c.Resolver.KeepFragment),
	)
	return []cachekey.KeyDeriverBuilderOption{
		cachekey.WithResolver(resolver),
		cachekey.WithImageFormats(cachekey.ImageFormats{KTX2: c.Images.KTX2, WebP: c.Images.WebP}),
	}
}

// PlannerOptions translates the configuration into dedup options.
//
// Parameters:
//   - logger: the logger handed to the planner
//
// Returns:
//   - []dedup.PlannerBuilderOption: deriver, logger and worker options
func (c *Config) PlannerOptions(logger *zap.Logger) []dedup.PlannerBuilderOption {
	opts := []dedup.PlannerBuilderOption{
		dedup.WithKeyDeriver(cachekey.NewKeyDeriver(c.KeyDeriverOptions()...)),
		dedup.WithLogger(logger),
	}
	if c.Planner.Workers > 0 {
		opts = append(opts, dedup.WithWorkers(c.Planner.Workers))
	}
	return opts
}
