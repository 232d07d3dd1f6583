// Package dispatch routes classified byte buffers to codec entry points
// under a strict support matrix and invokes them defensively.
//
// Routing is pure table lookup: it consumes no resources, so every
// validation and routing failure is detected and returned before any codec
// work starts. The invoker is the single place where an opaque capability
// runs, and the single place where its failure modes are normalized.
package dispatch

import (
	"strings"

	"github.com/arloliu/pixo/format"
)

// Target identifies the codec entry point for one request. Targets are
// built fresh per request and never cached across requests.
type Target struct {
	Op         format.Operation
	Source     format.Format
	Dest       format.Format // Convert only
	EntryPoint string
}

// optimizeSupported is the closed optimize support matrix. BMP, TIFF, SVG
// and GLB are detectable but have no in-place optimizer; converting them is
// the supported path.
var optimizeSupported = map[format.Format]bool{
	format.PNG:  true,
	format.JPEG: true,
	format.WebP: true,
	format.GIF:  true,
	format.ICO:  true,
	format.TGA:  true,
	format.OBJ:  true,
	format.STL:  true,
	format.PLY:  true,
	format.GLTF: true,
	format.FBX:  true,
}

// convertTargets lists the formats a conversion may produce. The matrix is
// partitioned by domain through the cross-domain check in Route; a format's
// own domain decides which sources may reach it.
var convertTargets = map[format.Format]bool{
	format.PNG:  true,
	format.JPEG: true,
	format.WebP: true,
	format.BMP:  true,
	format.TGA:  true,
	format.SVG:  true,
	format.OBJ:  true,
	format.STL:  true,
	format.PLY:  true,
	format.GLTF: true,
	format.GLB:  true,
}

// Route maps (source format, operation, target format) to a codec entry
// point. For OpOptimize the target argument is ignored. Routing failures
// are cheap and synchronous; no codec is consulted.
func Route(source format.Format, op format.Operation, target format.Format) (Target, error) {
	switch op {
	case format.OpOptimize:
		return routeOptimize(source)
	case format.OpConvert:
		return routeConvert(source, target)
	default:
		return Target{}, &InvalidInputError{Reason: "unknown operation"}
	}
}

func routeOptimize(source format.Format) (Target, error) {
	if !optimizeSupported[source] {
		return Target{}, &UnsupportedFormatError{Format: source, Op: format.OpOptimize}
	}

	return Target{
		Op:         format.OpOptimize,
		Source:     source,
		EntryPoint: "optimize_" + entryToken(source),
	}, nil
}

func routeConvert(source, target format.Format) (Target, error) {
	if source.Domain() == format.DomainNone {
		return Target{}, &UnsupportedFormatError{Format: source, Op: format.OpConvert}
	}

	if target == format.Unknown {
		return Target{}, &InvalidInputError{Reason: "conversion requires a target format"}
	}

	// The domain partition is checked before target support so that a
	// cross-domain request fails as such even when the target would be
	// unsupported anyway.
	if source.Domain() != target.Domain() {
		return Target{}, ErrCrossDomainConversion
	}

	if !convertTargets[target] {
		return Target{}, &UnsupportedFormatError{Format: target, Op: format.OpConvert}
	}

	return Target{
		Op:         format.OpConvert,
		Source:     source,
		Dest:       target,
		EntryPoint: "convert_to_" + entryToken(target),
	}, nil
}

func entryToken(f format.Format) string {
	return strings.ToLower(f.String())
}
