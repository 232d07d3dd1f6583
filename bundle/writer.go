package bundle

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/arloliu/pixo/compress"
	"github.com/arloliu/pixo/format"
	"github.com/arloliu/pixo/internal/hash"
	"github.com/arloliu/pixo/internal/pool"
)

// Writer accumulates assets and encodes them into a bundle stream.
//
// A Writer is single-use: add entries with Add, then call Bytes or
// WriteTo once. It is not safe for concurrent use.
type Writer struct {
	codec       compress.Codec
	compression format.CompressionType
	entries     []writerEntry
	names       map[string]struct{}
}

type writerEntry struct {
	id      uint64
	name    string
	format  format.Format
	payload []byte
}

// NewWriter creates a Writer that compresses payloads with the given
// algorithm. Pass format.CompressionNone to store payloads verbatim.
// Each writer gets a fresh codec so stateful implementations are never
// shared across bundles being built concurrently.
func NewWriter(compression format.CompressionType) (*Writer, error) {
	codec, err := compress.CreateCodec(compression, "bundle")
	if err != nil {
		return nil, err
	}

	return &Writer{
		codec:       codec,
		compression: compression,
		names:       make(map[string]struct{}),
	}, nil
}

// Add compresses data and appends it as a named entry.
//
// The entry ID is the xxHash64 of name. Names must be unique and fit in
// 64KB; data is compressed immediately so the caller may reuse the slice.
func (w *Writer) Add(name string, f format.Format, data []byte) error {
	if name == "" {
		return fmt.Errorf("asset name must not be empty")
	}
	if len(name) > maxNameLen {
		return fmt.Errorf("asset name exceeds %d bytes: %d", maxNameLen, len(name))
	}
	if _, exists := w.names[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	payload, err := w.codec.Compress(data)
	if err != nil {
		return fmt.Errorf("compress entry %q: %w", name, err)
	}

	w.names[name] = struct{}{}
	w.entries = append(w.entries, writerEntry{
		id:      hash.ID(name),
		name:    name,
		format:  f,
		payload: payload,
	})

	return nil
}

// Len returns the number of entries added so far.
func (w *Writer) Len() int {
	return len(w.entries)
}

// Bytes encodes the bundle and returns the complete stream.
func (w *Writer) Bytes() []byte {
	buf := pool.GetPayloadBuffer()
	defer pool.PutPayloadBuffer(buf)

	w.encode(buf)

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out
}

// WriteTo encodes the bundle into dst.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	buf := pool.GetPayloadBuffer()
	defer pool.PutPayloadBuffer(buf)

	w.encode(buf)

	return buf.WriteTo(dst)
}

func (w *Writer) encode(buf *pool.ByteBuffer) {
	var scratch [8]byte

	binary.LittleEndian.PutUint32(scratch[:4], MagicNumber)
	buf.Write(scratch[:4])
	buf.WriteByte(Version)
	buf.WriteByte(byte(w.compression))
	buf.WriteByte(0)
	buf.WriteByte(0)
	binary.LittleEndian.PutUint32(scratch[:4], uint32(len(w.entries)))
	buf.Write(scratch[:4])

	for _, e := range w.entries {
		binary.LittleEndian.PutUint64(scratch[:8], e.id)
		buf.Write(scratch[:8])
		buf.WriteByte(byte(e.format))
		buf.WriteByte(0)
		binary.LittleEndian.PutUint16(scratch[:2], uint16(len(e.name)))
		buf.Write(scratch[:2])
		binary.LittleEndian.PutUint32(scratch[:4], uint32(len(e.payload)))
		buf.Write(scratch[:4])
		buf.WriteString(e.name)
		buf.Write(e.payload)
	}
}
