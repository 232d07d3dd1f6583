// Package metrics tracks process-wide optimization telemetry: processed
// counts per domain, cumulative timing, and peak memory, plus a compliance
// check against fixed performance budgets.
package metrics

import (
	"sync"

	"github.com/arloliu/pixo/format"
	"github.com/arloliu/pixo/internal/options"
)

// Performance budgets used by the compliance check. Exceeding either flags a
// systemic regression rather than failing any individual operation.
const (
	DefaultLatencyBudgetMs = 500.0
	DefaultMemoryTargetMB  = 100.0
)

// Snapshot is an immutable copy of the aggregator's counters. Mutations
// recorded after Snapshot returns never alter a snapshot already handed out.
type Snapshot struct {
	ImagesProcessed uint64
	MeshesProcessed uint64
	Failed          uint64
	TotalTimeMs     float64
	PeakMemoryMB    float64
}

// Processed returns the total number of successful operations.
func (s Snapshot) Processed() uint64 {
	return s.ImagesProcessed + s.MeshesProcessed
}

// Aggregator accumulates operation telemetry for the lifetime of the
// process. All mutation is serialized by a mutex, so concurrent completions
// never race or lose updates. Only successful operations count toward
// processed totals; failures bump a separate counter.
type Aggregator struct {
	mu sync.Mutex

	latencyBudgetMs float64
	memoryTargetMB  float64

	images       uint64
	meshes       uint64
	failed       uint64
	totalTimeMs  float64
	peakMemoryMB float64
}

// Option is a functional option for Aggregator.
type Option = options.Option[*Aggregator]

// WithLatencyBudget overrides the average-latency compliance budget.
func WithLatencyBudget(ms float64) Option {
	return options.NoError(func(a *Aggregator) {
		a.latencyBudgetMs = ms
	})
}

// WithMemoryTarget overrides the peak-memory compliance target.
func WithMemoryTarget(mb float64) Option {
	return options.NoError(func(a *Aggregator) {
		a.memoryTargetMB = mb
	})
}

// NewAggregator creates an aggregator with all counters at zero.
func NewAggregator(opts ...Option) *Aggregator {
	agg := &Aggregator{
		latencyBudgetMs: DefaultLatencyBudgetMs,
		memoryTargetMB:  DefaultMemoryTargetMB,
	}

	// The available options cannot fail.
	_ = options.Apply(agg, opts...)

	return agg
}

// RecordSuccess records one successful operation in the given domain.
func (a *Aggregator) RecordSuccess(domain format.Domain, timingMs, memoryPeakMB float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch domain {
	case format.DomainImage:
		a.images++
	case format.DomainMesh:
		a.meshes++
	default:
		return
	}

	a.totalTimeMs += timingMs
	if memoryPeakMB > a.peakMemoryMB {
		a.peakMemoryMB = memoryPeakMB
	}
}

// RecordFailure records one failed operation. Failures never inflate
// processed totals, timing, or peak memory.
func (a *Aggregator) RecordFailure() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.failed++
}

// Snapshot returns an immutable copy of the current counters.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	return Snapshot{
		ImagesProcessed: a.images,
		MeshesProcessed: a.meshes,
		Failed:          a.failed,
		TotalTimeMs:     a.totalTimeMs,
		PeakMemoryMB:    a.peakMemoryMB,
	}
}

// Reset zeros every counter atomically. Budgets are configuration, not
// counters, and survive a reset.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.images = 0
	a.meshes = 0
	a.failed = 0
	a.totalTimeMs = 0
	a.peakMemoryMB = 0
}

// Compliant reports whether the running average latency of successful
// operations stays within the latency budget and peak memory stays within
// the memory target. With zero recorded successes it is vacuously true.
func (a *Aggregator) Compliant() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	processed := a.images + a.meshes
	if processed == 0 {
		return true
	}

	avg := a.totalTimeMs / float64(processed)

	return avg <= a.latencyBudgetMs && a.peakMemoryMB <= a.memoryTargetMB
}

// LatencyBudgetMs returns the configured average-latency budget.
func (a *Aggregator) LatencyBudgetMs() float64 { return a.latencyBudgetMs }

// MemoryTargetMB returns the configured peak-memory target.
func (a *Aggregator) MemoryTargetMB() float64 { return a.memoryTargetMB }
