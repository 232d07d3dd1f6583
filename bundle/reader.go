package bundle

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/pixo/compress"
	"github.com/arloliu/pixo/format"
)

// Reader holds the decoded entries of a bundle stream.
type Reader struct {
	compression format.CompressionType
	entries     []Entry
	byName      map[string]int
	byID        map[uint64]int
}

// Decode parses and decompresses a complete bundle stream.
//
// The input is validated structurally: magic number, version, entry
// bounds, and name uniqueness. Payload slices in the result are freshly
// allocated and do not alias data.
func Decode(data []byte) (*Reader, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: truncated header", ErrCorruptBundle)
	}
	if binary.LittleEndian.Uint32(data[0:4]) != MagicNumber {
		return nil, fmt.Errorf("%w: bad magic number", ErrCorruptBundle)
	}
	if data[4] != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptBundle, data[4])
	}

	compression := format.CompressionType(data[5])
	codec, err := compress.GetCodec(compression)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorruptBundle, err)
	}

	count := binary.LittleEndian.Uint32(data[8:12])

	// The count is untrusted; cap pre-allocation by what the remaining
	// bytes could possibly hold and let the per-entry bounds checks
	// reject a lying header.
	hint := (len(data) - headerSize) / entryFixedSize
	if c := int64(count); c < int64(hint) {
		hint = int(c)
	}
	r := &Reader{
		compression: compression,
		entries:     make([]Entry, 0, hint),
		byName:      make(map[string]int, hint),
		byID:        make(map[uint64]int, hint),
	}

	offset := headerSize
	for i := uint32(0); i < count; i++ {
		if len(data)-offset < entryFixedSize {
			return nil, fmt.Errorf("%w: truncated entry %d", ErrCorruptBundle, i)
		}

		id := binary.LittleEndian.Uint64(data[offset : offset+8])
		f := format.Format(data[offset+8])
		nameLen := int(binary.LittleEndian.Uint16(data[offset+10 : offset+12]))
		payloadLen := int(binary.LittleEndian.Uint32(data[offset+12 : offset+16]))
		offset += entryFixedSize

		if len(data)-offset < nameLen+payloadLen {
			return nil, fmt.Errorf("%w: truncated entry %d", ErrCorruptBundle, i)
		}

		name := string(data[offset : offset+nameLen])
		offset += nameLen

		payload, err := codec.Decompress(data[offset : offset+payloadLen])
		if err != nil {
			return nil, fmt.Errorf("decompress entry %q: %w", name, err)
		}
		offset += payloadLen

		if _, exists := r.byName[name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}

		// Copy even in the passthrough case so entries never alias the
		// input stream.
		stored := make([]byte, len(payload))
		copy(stored, payload)

		r.byName[name] = len(r.entries)
		r.byID[id] = len(r.entries)
		r.entries = append(r.entries, Entry{
			ID:     id,
			Name:   name,
			Format: f,
			Data:   stored,
		})
	}

	if offset != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptBundle, len(data)-offset)
	}

	return r, nil
}

// Compression returns the algorithm the bundle payloads were stored with.
func (r *Reader) Compression() format.CompressionType {
	return r.compression
}

// Entries returns all entries in insertion order.
func (r *Reader) Entries() []Entry {
	return r.entries
}

// Len returns the number of entries.
func (r *Reader) Len() int {
	return len(r.entries)
}

// ByName returns the entry with the given asset name.
func (r *Reader) ByName(name string) (Entry, bool) {
	idx, ok := r.byName[name]
	if !ok {
		return Entry{}, false
	}

	return r.entries[idx], true
}

// ByID returns the entry with the given entry ID.
func (r *Reader) ByID(id uint64) (Entry, bool) {
	idx, ok := r.byID[id]
	if !ok {
		return Entry{}, false
	}

	return r.entries[idx], true
}
