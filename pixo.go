// Package pixo provides format detection and optimization dispatch for
// web-delivered image and 3D mesh assets.
//
// Pixo classifies raw byte buffers by magic-byte signatures, routes them
// to format-specific codec capabilities under a closed support matrix,
// and invokes those capabilities defensively: input guards, panic
// recovery, and failure normalization all live in the dispatch layer, so
// a misbehaving codec can never take the pipeline down.
//
// # Core Features
//
//   - Signature-based format detection with extension fallback (64-byte window)
//   - Closed optimize and convert matrices over 15 asset formats
//   - Pluggable codec providers behind a registry built once at startup
//   - Validated optimization config (quality, target reduction, lossless)
//   - Thread-safe performance accounting with latency and memory budgets
//   - Compression-ratio regression checks against embedded baselines
//   - Asset bundling with container-level compression (Zstd, S2, LZ4)
//
// # Basic Usage
//
// Optimizing an asset:
//
//	import "github.com/arloliu/pixo"
//
//	engine, _ := pixo.New()
//	result, err := engine.Optimize(data, "hero.png",
//	    codec.WithQuality(75),
//	    codec.WithTargetReduction(60),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("saved %.1f%%\n", result.SavingsPercent)
//
// Converting between formats of the same domain:
//
//	result, err := engine.Convert(data, "scene.gltf", format.GLB)
//
// Checking aggregate performance:
//
//	stats := engine.Stats()
//	fmt.Printf("processed=%d failed=%d compliant=%v\n",
//	    stats.Processed(), stats.Failed, engine.Compliant())
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the sniff,
// dispatch and codec packages, simplifying the most common use cases. For
// fine-grained control (custom providers, direct routing) use those
// packages directly.
package pixo

import (
	"errors"
	"fmt"
	"sync"

	"github.com/arloliu/pixo/bundle"
	"github.com/arloliu/pixo/codec"
	"github.com/arloliu/pixo/dispatch"
	"github.com/arloliu/pixo/format"
	"github.com/arloliu/pixo/internal/options"
	"github.com/arloliu/pixo/metrics"
	"github.com/arloliu/pixo/regression"
	"github.com/arloliu/pixo/sniff"
)

// Engine ties detection, routing, invocation and accounting together.
//
// An Engine is immutable after construction and safe for concurrent use;
// all mutable state lives in the metrics aggregator, which serializes its
// own access.
type Engine struct {
	reg     *codec.Registry
	invoker *dispatch.Invoker
	stats   *metrics.Aggregator
}

type engineConfig struct {
	provider      codec.Provider
	maxInputBytes int
	aggOpts       []metrics.Option
}

// Option is a functional option for New.
type Option = options.Option[*engineConfig]

// WithProvider replaces the built-in codec provider. The registry is
// built once from the provider's capability maps; later changes to the
// provider are not observed.
func WithProvider(p codec.Provider) Option {
	return options.New(func(cfg *engineConfig) error {
		if p == nil {
			return fmt.Errorf("codec provider must not be nil")
		}
		cfg.provider = p

		return nil
	})
}

// WithMaxInputBytes overrides the per-request input size ceiling.
func WithMaxInputBytes(n int) Option {
	return options.New(func(cfg *engineConfig) error {
		if n <= 0 {
			return fmt.Errorf("max input bytes must be positive, got %d", n)
		}
		cfg.maxInputBytes = n

		return nil
	})
}

// WithLatencyBudget sets the average-timing budget used by Compliant.
func WithLatencyBudget(ms float64) Option {
	return options.NoError(func(cfg *engineConfig) {
		cfg.aggOpts = append(cfg.aggOpts, metrics.WithLatencyBudget(ms))
	})
}

// WithMemoryTarget sets the peak-memory budget used by Compliant.
func WithMemoryTarget(mb float64) Option {
	return options.NoError(func(cfg *engineConfig) {
		cfg.aggOpts = append(cfg.aggOpts, metrics.WithMemoryTarget(mb))
	})
}

// New creates an Engine with the built-in pure Go codec provider unless
// WithProvider overrides it.
func New(opts ...Option) (*Engine, error) {
	cfg := &engineConfig{
		provider:      codec.NewBuiltinProvider(),
		maxInputBytes: dispatch.DefaultMaxInputBytes,
	}

	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	stats := metrics.NewAggregator(cfg.aggOpts...)
	reg := codec.NewRegistry(cfg.provider)

	invoker, err := dispatch.NewInvoker(reg,
		dispatch.WithMaxInputBytes(cfg.maxInputBytes),
		dispatch.WithAggregator(stats),
	)
	if err != nil {
		return nil, err
	}

	return &Engine{
		reg:     reg,
		invoker: invoker,
		stats:   stats,
	}, nil
}

// Detect classifies data by signature, falling back to the filename
// extension only when no signature matches. It never returns an error;
// unclassifiable input yields format.Unknown.
func (e *Engine) Detect(data []byte, filename string) format.Format {
	return sniff.DetectWithHint(data, filename)
}

// Optimize detects the format of data and runs its in-place optimizer.
//
// Option validation is strict: an out-of-range quality or target
// reduction fails the call before any detection or codec work happens.
// The returned result carries sizes, savings and timing; savings may be
// zero or negative for already-optimal input.
func (e *Engine) Optimize(data []byte, filename string, opts ...codec.Option) (dispatch.Result, error) {
	cfg, err := codec.NewConfig(opts...)
	if err != nil {
		return dispatch.Result{}, err
	}

	source := sniff.DetectWithHint(data, filename)
	target, err := dispatch.Route(source, format.OpOptimize, format.Unknown)
	if err != nil {
		return dispatch.Result{}, err
	}

	return e.invoke(target, data, cfg, filename)
}

// Convert detects the format of data and converts it to dest.
//
// Conversions never cross the image/mesh domain boundary; such requests
// fail with dispatch.ErrCrossDomainConversion before any codec runs.
func (e *Engine) Convert(data []byte, filename string, dest format.Format, opts ...codec.Option) (dispatch.Result, error) {
	cfg, err := codec.NewConfig(opts...)
	if err != nil {
		return dispatch.Result{}, err
	}

	source := sniff.DetectWithHint(data, filename)
	target, err := dispatch.Route(source, format.OpConvert, dest)
	if err != nil {
		return dispatch.Result{}, err
	}

	return e.invoke(target, data, cfg, filename)
}

func (e *Engine) invoke(target dispatch.Target, data []byte, cfg codec.Config, filename string) (dispatch.Result, error) {
	res, err := e.invoker.Invoke(target, data, cfg)

	var codecErr *dispatch.CodecError
	if errors.As(err, &codecErr) {
		codecErr.Diag.FileName = filename
	}

	return res, err
}

// VerifyRatio compares a completed optimization against the embedded
// compression-ratio baselines.
//
// A missing baseline is reported as *regression.MissingBaselineError and
// means the check is inconclusive, not that the optimization regressed.
func (e *Engine) VerifyRatio(res dispatch.Result, f format.Format, quality int) (regression.Comparison, error) {
	if res.OriginalSize == 0 {
		return regression.Comparison{}, fmt.Errorf("result has no original size")
	}

	ratio := float64(res.OptimizedSize) / float64(res.OriginalSize)

	return regression.Default().Compare(ratio, f, quality)
}

// Asset is one named input for OptimizeBundle.
type Asset struct {
	Name string
	Data []byte
}

// OptimizeBundle optimizes each asset and packs the results into a single
// bundle stream compressed with the given algorithm.
//
// Assets whose optimization fails are stored unmodified, so a single bad
// asset degrades to passthrough instead of failing the whole bundle.
func (e *Engine) OptimizeBundle(assets []Asset, compression format.CompressionType, opts ...codec.Option) ([]byte, error) {
	w, err := bundle.NewWriter(compression)
	if err != nil {
		return nil, err
	}

	for _, a := range assets {
		f := sniff.DetectWithHint(a.Data, a.Name)

		payload := a.Data
		if res, err := e.Optimize(a.Data, a.Name, opts...); err == nil {
			payload = res.Output
		}

		if err := w.Add(a.Name, f, payload); err != nil {
			return nil, err
		}
	}

	return w.Bytes(), nil
}

// CanOptimize reports whether the engine's provider registered an
// optimizer for f.
func (e *Engine) CanOptimize(f format.Format) bool {
	return e.reg.CanOptimize(f)
}

// CanConvertTo reports whether the engine's provider registered a
// converter producing f.
func (e *Engine) CanConvertTo(f format.Format) bool {
	return e.reg.CanConvertTo(f)
}

// Stats returns an immutable snapshot of the accumulated performance
// counters.
func (e *Engine) Stats() metrics.Snapshot {
	return e.stats.Snapshot()
}

// ResetStats zeroes the accumulated counters. Budgets are preserved.
func (e *Engine) ResetStats() {
	e.stats.Reset()
}

// Compliant reports whether average timing and peak memory are within
// the configured budgets. It is vacuously true before any asset has been
// processed.
func (e *Engine) Compliant() bool {
	return e.stats.Compliant()
}

var (
	defaultEngine     *Engine
	defaultEngineOnce sync.Once
)

// Default returns the shared engine backed by the built-in provider with
// default budgets. It is created on first use.
func Default() *Engine {
	defaultEngineOnce.Do(func() {
		engine, err := New()
		if err != nil {
			panic(fmt.Sprintf("pixo: failed to create default engine: %v", err))
		}
		defaultEngine = engine
	})

	return defaultEngine
}

// Detect classifies data using the shared default engine.
func Detect(data []byte, filename string) format.Format {
	return Default().Detect(data, filename)
}

// Optimize runs an in-place optimization using the shared default engine.
func Optimize(data []byte, filename string, opts ...codec.Option) (dispatch.Result, error) {
	return Default().Optimize(data, filename, opts...)
}

// Convert converts data to dest using the shared default engine.
func Convert(data []byte, filename string, dest format.Format, opts ...codec.Option) (dispatch.Result, error) {
	return Default().Convert(data, filename, dest, opts...)
}
