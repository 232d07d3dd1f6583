package codec

import (
	"sync/atomic"

	"github.com/arloliu/pixo/format"
)

// BuiltinProvider is the pure-Go reference codec build.
//
// It favors structural, lossless transformations that need no native code:
// metadata stripping and stream recompression for images, text minification
// and binary re-encoding for meshes, and straight passthrough for formats
// whose heavy codecs live in external capability builds (WebP, GIF, ICO,
// TGA, FBX). It covers the full optimize support matrix so every routable
// request has an entry point, and a subset of convert targets; SVG and WebP
// conversion are deliberately absent, which exercises the registry's
// capability-not-present path exactly like a partial native build would.
type BuiltinProvider struct {
	peakBytes atomic.Uint64
}

// NewBuiltinProvider creates the reference provider.
func NewBuiltinProvider() *BuiltinProvider {
	return &BuiltinProvider{}
}

// Optimizers implements Provider.
func (p *BuiltinProvider) Optimizers() map[format.Format]OptimizeFunc {
	return map[format.Format]OptimizeFunc{
		format.PNG:  p.traced(p.optimizePNG),
		format.JPEG: p.traced(p.optimizeJPEG),
		format.WebP: p.traced(passthrough),
		format.GIF:  p.traced(passthrough),
		format.ICO:  p.traced(passthrough),
		format.TGA:  p.traced(passthrough),
		format.OBJ:  p.traced(p.optimizeOBJ),
		format.STL:  p.traced(p.optimizeSTL),
		format.PLY:  p.traced(p.optimizePLY),
		format.GLTF: p.traced(p.optimizeGLTF),
		format.FBX:  p.traced(passthrough),
	}
}

// Converters implements Provider.
func (p *BuiltinProvider) Converters() map[format.Format]ConvertFunc {
	return map[format.Format]ConvertFunc{
		format.PNG:  p.traced(p.convertToPNG),
		format.JPEG: p.traced(p.convertToJPEG),
		format.BMP:  p.traced(p.convertToBMP),
		format.TGA:  p.traced(p.convertToTGA),
		format.GLB:  p.traced(p.convertToGLB),
		format.GLTF: p.traced(p.convertToGLTF),
	}
}

// PeakMemoryMB implements MemoryReporter. The figure is an estimate: the
// largest combined input-plus-output footprint observed across calls.
func (p *BuiltinProvider) PeakMemoryMB() float64 {
	return float64(p.peakBytes.Load()) / (1 << 20)
}

// traced wraps an entry point with working-set tracking. The unnamed
// signature keeps the wrapper assignable to both OptimizeFunc and
// ConvertFunc.
func (p *BuiltinProvider) traced(fn func([]byte, Config) ([]byte, error)) func([]byte, Config) ([]byte, error) {
	return func(data []byte, cfg Config) ([]byte, error) {
		out, err := fn(data, cfg)
		p.observe(uint64(len(data) + len(out)))

		return out, err
	}
}

func (p *BuiltinProvider) observe(n uint64) {
	for {
		cur := p.peakBytes.Load()
		if n <= cur || p.peakBytes.CompareAndSwap(cur, n) {
			return
		}
	}
}

// passthrough copies the input unchanged. Used for formats whose real codec
// is an external capability; copying keeps the output-ownership contract
// identical across all entry points.
func passthrough(data []byte, _ Config) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)

	return out, nil
}
