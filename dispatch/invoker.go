package dispatch

import (
	"fmt"
	"time"

	"github.com/arloliu/pixo/codec"
	"github.com/arloliu/pixo/format"
	"github.com/arloliu/pixo/internal/hash"
	"github.com/arloliu/pixo/internal/options"
	"github.com/arloliu/pixo/metrics"
)

// DefaultMaxInputBytes is the default input size ceiling (100 MiB).
const DefaultMaxInputBytes = 100 << 20

// Result is the outcome of one codec invocation. SavingsPercent may be zero
// or negative: success never implies the output actually shrank. Timing and
// sizes are populated on failures too, so diagnostics stay meaningful.
type Result struct {
	Output         []byte
	OriginalSize   int
	OptimizedSize  int
	SavingsPercent float64
	TimingMs       float64
	MemoryPeakMB   float64
}

// Invoker calls codec capabilities defensively. Input guards run before the
// registry is touched; once a capability is dispatched it runs to completion
// or failure, with no cancellation or timeout imposed here. The invoker
// holds no per-call state, so concurrent invocations are safe; all shared
// accounting lives in the aggregator.
type Invoker struct {
	reg      *codec.Registry
	stats    *metrics.Aggregator
	maxBytes int
}

// InvokerOption is a functional option for Invoker.
type InvokerOption = options.Option[*Invoker]

// WithMaxInputBytes overrides the input size ceiling.
func WithMaxInputBytes(n int) InvokerOption {
	return options.New(func(iv *Invoker) error {
		if n <= 0 {
			return fmt.Errorf("max input bytes must be positive, got %d", n)
		}
		iv.maxBytes = n

		return nil
	})
}

// WithAggregator wires a metrics aggregator; every completion is recorded
// into it by completion order.
func WithAggregator(agg *metrics.Aggregator) InvokerOption {
	return options.NoError(func(iv *Invoker) {
		iv.stats = agg
	})
}

// NewInvoker creates an invoker over the given capability registry.
func NewInvoker(reg *codec.Registry, opts ...InvokerOption) (*Invoker, error) {
	iv := &Invoker{
		reg:      reg,
		maxBytes: DefaultMaxInputBytes,
	}

	if err := options.Apply(iv, opts...); err != nil {
		return nil, err
	}

	return iv, nil
}

// Invoke runs the capability identified by target against data.
//
// Failure modes of the capability itself (returned error, panic, empty
// output declared as success) are normalized into *CodecError; the raw
// failure never reaches the caller. Guard failures return typed errors with
// an empty Result and record nothing, since no resources were consumed.
func (iv *Invoker) Invoke(target Target, data []byte, cfg codec.Config) (Result, error) {
	if len(data) == 0 {
		return Result{}, &InvalidInputError{Reason: "empty input buffer"}
	}

	if len(data) > iv.maxBytes {
		return Result{}, &ResourceLimitError{Limit: iv.maxBytes, Size: len(data)}
	}

	fn, ok := iv.lookup(target)
	if !ok {
		missing := target.Source
		if target.Op == format.OpConvert {
			missing = target.Dest
		}

		return Result{}, &UnsupportedFormatError{Format: missing, Op: target.Op}
	}

	start := time.Now()
	output, err := iv.call(fn, data, cfg)
	res := Result{
		Output:        output,
		OriginalSize:  len(data),
		OptimizedSize: len(output),
		TimingMs:      float64(time.Since(start)) / float64(time.Millisecond),
		MemoryPeakMB:  iv.reg.PeakMemoryMB(),
	}

	if err == nil && len(output) == 0 {
		err = fmt.Errorf("capability reported success with empty output")
	}

	if err != nil {
		res.Output = nil
		res.OptimizedSize = 0
		if iv.stats != nil {
			iv.stats.RecordFailure()
		}

		return res, &CodecError{Diag: iv.diagnostic(target, data, cfg), Err: err}
	}

	res.SavingsPercent = float64(res.OriginalSize-res.OptimizedSize) / float64(res.OriginalSize) * 100

	if iv.stats != nil {
		iv.stats.RecordSuccess(target.Source.Domain(), res.TimingMs, res.MemoryPeakMB)
	}

	return res, nil
}

func (iv *Invoker) lookup(target Target) (func([]byte, codec.Config) ([]byte, error), bool) {
	if target.Op == format.OpConvert {
		return iv.reg.Converter(target.Dest)
	}

	return iv.reg.Optimizer(target.Source)
}

// call shields the invoker from capabilities that panic instead of
// returning an error.
func (iv *Invoker) call(fn func([]byte, codec.Config) ([]byte, error), data []byte, cfg codec.Config) (output []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			output = nil
			err = fmt.Errorf("capability panicked: %v", r)
		}
	}()

	return fn(data, cfg)
}

func (iv *Invoker) diagnostic(target Target, data []byte, cfg codec.Config) Diagnostic {
	return Diagnostic{
		Size:       len(data),
		Format:     target.Source,
		Op:         target.Op,
		Target:     target.Dest,
		EntryPoint: target.EntryPoint,
		Quality:    cfg.Quality(),
		ContentID:  hash.ContentID(data),
	}
}
