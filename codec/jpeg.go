package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

var jpegSOI = []byte{0xFF, 0xD8}

// optimizeJPEG strips metadata segments from a JPEG stream without touching
// the entropy-coded image data: APP1 through APP15 (EXIF, XMP, ICC and
// friends) and COM comments are dropped, APP0 is kept so the stream stays a
// well-formed JFIF file. With PreserveMetadata set this is a plain copy.
func (p *BuiltinProvider) optimizeJPEG(data []byte, cfg Config) ([]byte, error) {
	if !bytes.HasPrefix(data, jpegSOI) {
		return nil, fmt.Errorf("not a JPEG stream")
	}

	if cfg.PreserveMetadata() {
		return passthrough(data, cfg)
	}

	out := make([]byte, 0, len(data))
	out = append(out, jpegSOI...)

	off := 2
	for off < len(data) {
		// Fill bytes before a marker are legal; skip them.
		if data[off] == 0xFF && off+1 < len(data) && data[off+1] == 0xFF {
			off++
			continue
		}

		if off+4 > len(data) || data[off] != 0xFF {
			return nil, fmt.Errorf("malformed JPEG marker at offset %d", off)
		}

		marker := data[off+1]

		// SOS: the rest of the stream is entropy-coded data (with embedded
		// RST markers) up to EOI; copy it verbatim.
		if marker == 0xDA {
			out = append(out, data[off:]...)
			return out, nil
		}

		if marker == 0xD9 { // EOI before any scan
			out = append(out, data[off:off+2]...)
			return out, nil
		}

		segLen := int(binary.BigEndian.Uint16(data[off+2 : off+4]))
		end := off + 2 + segLen
		if segLen < 2 || end > len(data) {
			return nil, fmt.Errorf("truncated JPEG segment 0x%02X", marker)
		}

		strip := (marker >= 0xE1 && marker <= 0xEF) || marker == 0xFE
		if !strip {
			out = append(out, data[off:end]...)
		}

		off = end
	}

	return nil, fmt.Errorf("JPEG stream ended before start of scan")
}
