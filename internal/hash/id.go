package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given string. Bundle entry IDs are
// derived from asset names with it.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// ContentID computes the xxHash64 of a raw byte buffer.
//
// It is used as a stable fingerprint for dropped files: failure diagnostics
// carry it so repeated operations on the same bytes can be correlated
// without retaining the buffer itself.
func ContentID(data []byte) uint64 {
	return xxhash.Sum64(data)
}
