package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/zlib"
)

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// Ancillary chunks that carry metadata only. Everything else, including
// rendering-relevant ancillary chunks like tRNS and gAMA, is kept.
var pngMetadataChunks = map[string]bool{
	"tEXt": true,
	"zTXt": true,
	"iTXt": true,
	"eXIf": true,
	"tIME": true,
}

type pngChunk struct {
	typ  string
	body []byte
}

// optimizePNG losslessly rewrites a PNG stream: metadata chunks are dropped
// (unless the config preserves them), IDAT segments are merged, and the
// image stream is re-deflated at maximum compression. When recompression
// does not shrink the stream the original image data is kept, so the output
// is never a worse encoding of the same chunks.
func (p *BuiltinProvider) optimizePNG(data []byte, cfg Config) ([]byte, error) {
	chunks, idat, err := parsePNG(data)
	if err != nil {
		return nil, err
	}

	if !cfg.PreserveMetadata() {
		kept := chunks[:0]
		for _, c := range chunks {
			if !pngMetadataChunks[c.typ] {
				kept = append(kept, c)
			}
		}
		chunks = kept
	}

	if re, err := recompressIDAT(idat); err == nil && len(re) < len(idat) {
		idat = re
	}

	return assemblePNG(chunks, idat), nil
}

// parsePNG splits a PNG stream into its chunks, merging all IDAT bodies into
// one buffer. The returned chunk list contains a single empty IDAT marker at
// the position of the first IDAT segment.
func parsePNG(data []byte) ([]pngChunk, []byte, error) {
	if !bytes.HasPrefix(data, pngSignature) {
		return nil, nil, fmt.Errorf("not a PNG stream")
	}

	var (
		chunks  []pngChunk
		idat    []byte
		sawIDAT bool
		sawIEND bool
	)

	off := len(pngSignature)
	for off+12 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[off : off+4]))
		typ := string(data[off+4 : off+8])
		end := off + 8 + length
		if end+4 > len(data) {
			return nil, nil, fmt.Errorf("truncated PNG chunk %q", typ)
		}

		body := data[off+8 : end]
		if typ == "IDAT" {
			if !sawIDAT {
				chunks = append(chunks, pngChunk{typ: "IDAT"})
				sawIDAT = true
			}
			idat = append(idat, body...)
		} else {
			chunks = append(chunks, pngChunk{typ: typ, body: body})
		}

		off = end + 4
		if typ == "IEND" {
			sawIEND = true
			break
		}
	}

	if !sawIDAT {
		return nil, nil, fmt.Errorf("PNG stream has no IDAT chunk")
	}

	if !sawIEND {
		return nil, nil, fmt.Errorf("PNG stream missing IEND chunk")
	}

	return chunks, idat, nil
}

func recompressIDAT(idat []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(idat))
	if err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(zr)
	zr.Close()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, err
	}

	if _, err := zw.Write(raw); err != nil {
		zw.Close()
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func assemblePNG(chunks []pngChunk, idat []byte) []byte {
	size := len(pngSignature)
	for _, c := range chunks {
		size += 12 + len(c.body)
	}
	size += len(idat)

	out := make([]byte, 0, size)
	out = append(out, pngSignature...)
	for _, c := range chunks {
		body := c.body
		if c.typ == "IDAT" {
			body = idat
		}
		out = appendPNGChunk(out, c.typ, body)
	}

	return out
}

func appendPNGChunk(out []byte, typ string, body []byte) []byte {
	var scratch [4]byte
	binary.BigEndian.PutUint32(scratch[:], uint32(len(body)))
	out = append(out, scratch[:]...)
	out = append(out, typ...)
	out = append(out, body...)

	crc := crc32.Update(crc32.ChecksumIEEE([]byte(typ)), crc32.IEEETable, body)
	binary.BigEndian.PutUint32(scratch[:], crc)

	return append(out, scratch[:]...)
}
