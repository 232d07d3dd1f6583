// Package codec defines the capability contract between the dispatch layer
// and the format-specific optimization codecs, and provides a pure-Go
// reference implementation of that contract.
//
// Codecs are opaque: a capability takes bytes plus a validated Config and
// returns bytes or an error. Which capabilities exist in a given build is
// probed exactly once, when the Registry is constructed; dispatch consults
// the resulting table instead of re-checking presence per call, and a
// missing capability is a first-class "not present" state rather than a
// crash.
package codec

import (
	"github.com/arloliu/pixo/format"
)

// OptimizeFunc re-encodes data within its own format. The config carries
// quality for image codecs and the target reduction percentage for mesh
// codecs; a codec reads only the scalar relevant to it.
type OptimizeFunc func(data []byte, cfg Config) ([]byte, error)

// ConvertFunc re-encodes data of any format within the entry point's domain
// into the entry point's target format.
type ConvertFunc func(data []byte, cfg Config) ([]byte, error)

// Provider supplies the capabilities present in a codec build.
//
// Older or partial builds may omit entries; a nil function value or an
// absent map key both mean "capability not present". Providers must not
// assume any particular execution model for their callers.
type Provider interface {
	// Optimizers returns the optimize entry points keyed by source format.
	Optimizers() map[format.Format]OptimizeFunc

	// Converters returns the convert entry points keyed by target format.
	Converters() map[format.Format]ConvertFunc
}

// MemoryReporter is optionally implemented by providers that can report the
// peak working memory observed across their calls, in megabytes. Presence is
// probed once at Registry construction.
type MemoryReporter interface {
	PeakMemoryMB() float64
}

// Registry is the enum-keyed capability table built once from a Provider.
//
// Lookups are read-only after construction and safe for concurrent use.
type Registry struct {
	optimize map[format.Format]OptimizeFunc
	convert  map[format.Format]ConvertFunc
	mem      MemoryReporter
}

// NewRegistry probes the provider once and builds the capability table.
// Nil function values are dropped so that absence checks reduce to a single
// map lookup.
func NewRegistry(p Provider) *Registry {
	reg := &Registry{
		optimize: make(map[format.Format]OptimizeFunc),
		convert:  make(map[format.Format]ConvertFunc),
	}

	if p == nil {
		return reg
	}

	for f, fn := range p.Optimizers() {
		if fn != nil {
			reg.optimize[f] = fn
		}
	}

	for f, fn := range p.Converters() {
		if fn != nil {
			reg.convert[f] = fn
		}
	}

	if mem, ok := p.(MemoryReporter); ok {
		reg.mem = mem
	}

	return reg
}

// Optimizer returns the optimize entry point for the format, if present.
func (r *Registry) Optimizer(f format.Format) (OptimizeFunc, bool) {
	fn, ok := r.optimize[f]
	return fn, ok
}

// Converter returns the convert entry point for the target format, if present.
func (r *Registry) Converter(target format.Format) (ConvertFunc, bool) {
	fn, ok := r.convert[target]
	return fn, ok
}

// CanOptimize reports whether an optimize capability exists for the format.
func (r *Registry) CanOptimize(f format.Format) bool {
	_, ok := r.optimize[f]
	return ok
}

// CanConvertTo reports whether a convert capability exists for the target.
func (r *Registry) CanConvertTo(target format.Format) bool {
	_, ok := r.convert[target]
	return ok
}

// PeakMemoryMB returns the provider-reported peak working memory, or zero
// when the provider does not report memory.
func (r *Registry) PeakMemoryMB() float64 {
	if r.mem == nil {
		return 0
	}

	return r.mem.PeakMemoryMB()
}
