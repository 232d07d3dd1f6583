// Package bundle packs optimized assets into a single container for
// delivery.
//
// A bundle holds one payload per asset, each tagged with its format and a
// 64-bit entry ID derived from the asset name. Payloads are compressed at the
// container level with one of the algorithms from the compress package;
// the algorithm is recorded in the header so readers need no out-of-band
// configuration.
//
// Layout, all multi-byte integers little-endian:
//
//	header:  magic(4) version(1) compression(1) reserved(2) entryCount(4)
//	entry:   id(8) format(1) reserved(1) nameLen(2) payloadLen(4) name payload
//
// Entries appear in insertion order. Names must be unique within a
// bundle.
package bundle

import (
	"errors"

	"github.com/arloliu/pixo/format"
)

const (
	// MagicNumber identifies a bundle stream, "PXB1" in little-endian.
	MagicNumber uint32 = 0x31425850

	// Version is the current container layout version.
	Version uint8 = 1

	headerSize     = 12
	entryFixedSize = 16

	// maxNameLen bounds asset names to what fits the nameLen field.
	maxNameLen = 65535
)

var (
	// ErrDuplicateName is returned when two entries share an asset name.
	ErrDuplicateName = errors.New("duplicate asset name")

	// ErrCorruptBundle is returned when the input fails structural
	// validation during decoding.
	ErrCorruptBundle = errors.New("corrupt bundle")
)

// Entry is a single asset stored in a bundle.
type Entry struct {
	// ID is the xxHash64 of the asset name, stable across builds.
	ID uint64

	// Name is the asset name supplied at write time.
	Name string

	// Format is the payload's asset format.
	Format format.Format

	// Data is the decompressed payload.
	Data []byte
}
