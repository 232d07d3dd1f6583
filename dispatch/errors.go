package dispatch

import (
	"errors"
	"fmt"

	"github.com/arloliu/pixo/format"
)

// ErrCrossDomainConversion is returned for any conversion whose source and
// target live in different domains (image to mesh or vice versa). The
// partition is a design rule, not a missing capability: no codec build will
// ever bridge it.
var ErrCrossDomainConversion = errors.New("cross-domain conversion between image and mesh formats is not supported")

// UnsupportedFormatError reports a format outside the support matrix of the
// requested operation, or a capability absent from the current codec build.
type UnsupportedFormatError struct {
	Format format.Format
	Op     format.Operation
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("format %s is not supported for %s", e.Format, e.Op)
}

// InvalidInputError reports input rejected before any codec work happened.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

// ResourceLimitError reports input exceeding the configured size ceiling,
// which protects the codec heap from unbounded allocation.
type ResourceLimitError struct {
	Limit int
	Size  int
}

func (e *ResourceLimitError) Error() string {
	return fmt.Sprintf("input of %d bytes exceeds the %d byte limit", e.Size, e.Limit)
}

// Diagnostic is the context bundle attached to codec failures so a caller
// can surface what was attempted without re-deriving it.
type Diagnostic struct {
	FileName   string
	Size       int
	Format     format.Format
	Op         format.Operation
	Target     format.Format
	EntryPoint string
	Quality    int
	ContentID  uint64
}

// CodecError is the normalized form of every abnormal codec termination:
// returned errors, panics, and empty output declared as success. It is the
// only error kind that can occur after resources have been consumed, and it
// is always caught at the invocation boundary.
type CodecError struct {
	Diag Diagnostic
	Err  error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("codec %s failed on %s input (%d bytes): %v",
		e.Diag.EntryPoint, e.Diag.Format, e.Diag.Size, e.Err)
}

func (e *CodecError) Unwrap() error {
	return e.Err
}
