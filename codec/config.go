package codec

import (
	"fmt"

	"github.com/arloliu/pixo/internal/options"
)

// Validation bounds and defaults for optimization parameters.
//
// Boundary values are valid; violations fail construction instead of being
// clamped silently.
const (
	MinQuality = 10
	MaxQuality = 100

	MinTargetReduction = 10
	MaxTargetReduction = 80

	DefaultQuality         = 85
	DefaultTargetReduction = 50
)

// ValidationError reports a configuration field outside its allowed range.
type ValidationError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %d out of range [%d, %d]", e.Field, e.Value, e.Min, e.Max)
}

// Config holds validated optimization parameters for a single request.
//
// A Config is immutable once built; changing a parameter means building a
// new one, which re-runs validation. The quality value is carried through to
// the codec unchanged even in lossless mode, so codecs that interpret
// quality orthogonally to losslessness (WebP, for example) see the caller's
// original intent.
type Config struct {
	quality          int
	targetReduction  int
	lossless         bool
	preserveMetadata bool
}

// Option is a functional option for Config.
type Option = options.Option[*Config]

// WithQuality sets the quality parameter (valid range 10-100).
func WithQuality(quality int) Option {
	return options.NoError(func(cfg *Config) {
		cfg.quality = quality
	})
}

// WithTargetReduction sets the target size reduction percentage for mesh
// decimation (valid range 10-80).
func WithTargetReduction(percent int) Option {
	return options.NoError(func(cfg *Config) {
		cfg.targetReduction = percent
	})
}

// WithLossless instructs codecs to avoid any perceptual quality loss,
// independent of the numeric quality value.
func WithLossless(enabled bool) Option {
	return options.NoError(func(cfg *Config) {
		cfg.lossless = enabled
	})
}

// WithPreserveMetadata keeps embedded metadata (EXIF, text chunks, mesh
// comments) in the optimized output.
func WithPreserveMetadata(enabled bool) Option {
	return options.NoError(func(cfg *Config) {
		cfg.preserveMetadata = enabled
	})
}

// NewConfig builds a validated Config.
//
// Defaults: quality 85, target reduction 50%, lossless off, metadata
// stripped. Returns *ValidationError when quality or target reduction fall
// outside their ranges; the ranges apply regardless of the lossless flag.
func NewConfig(opts ...Option) (Config, error) {
	cfg := Config{
		quality:         DefaultQuality,
		targetReduction: DefaultTargetReduction,
	}

	if err := options.Apply(&cfg, opts...); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// DefaultConfig returns a Config with default parameters.
func DefaultConfig() Config {
	cfg, _ := NewConfig()
	return cfg
}

func (c Config) validate() error {
	if c.quality < MinQuality || c.quality > MaxQuality {
		return &ValidationError{Field: "quality", Value: c.quality, Min: MinQuality, Max: MaxQuality}
	}

	if c.targetReduction < MinTargetReduction || c.targetReduction > MaxTargetReduction {
		return &ValidationError{Field: "targetReduction", Value: c.targetReduction, Min: MinTargetReduction, Max: MaxTargetReduction}
	}

	return nil
}

// Quality returns the quality parameter.
func (c Config) Quality() int { return c.quality }

// TargetReduction returns the target size reduction percentage.
func (c Config) TargetReduction() int { return c.targetReduction }

// Lossless reports whether lossless mode is requested.
func (c Config) Lossless() bool { return c.lossless }

// PreserveMetadata reports whether embedded metadata must be kept.
func (c Config) PreserveMetadata() bool { return c.preserveMetadata }
