package codec

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/arloliu/pixo/format"
	"github.com/arloliu/pixo/sniff"
)

// decodeImage decodes a raster buffer into pixels, choosing the decoder by
// content signature. SVG and TGA have no decoders here, so conversions from
// them report the source as unconvertible.
func decodeImage(data []byte) (image.Image, error) {
	src := sniff.Detect(data)

	switch src {
	case format.PNG:
		return png.Decode(bytes.NewReader(data))
	case format.JPEG:
		return jpeg.Decode(bytes.NewReader(data))
	case format.GIF:
		return gif.Decode(bytes.NewReader(data))
	case format.BMP:
		return bmp.Decode(bytes.NewReader(data))
	case format.TIFF:
		return tiff.Decode(bytes.NewReader(data))
	case format.WebP:
		return webp.Decode(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("no decoder for %s input", src)
	}
}

func (p *BuiltinProvider) convertToPNG(data []byte, cfg Config) ([]byte, error) {
	img, err := decodeImage(data)
	if err != nil {
		return nil, err
	}

	enc := png.Encoder{CompressionLevel: png.BestCompression}
	var out bytes.Buffer
	if err := enc.Encode(&out, img); err != nil {
		return nil, fmt.Errorf("encode PNG: %w", err)
	}

	return out.Bytes(), nil
}

func (p *BuiltinProvider) convertToJPEG(data []byte, cfg Config) ([]byte, error) {
	img, err := decodeImage(data)
	if err != nil {
		return nil, err
	}

	quality := cfg.Quality()
	if cfg.Lossless() {
		// JPEG has no lossless mode; the closest honoring of the request
		// is encoding at the quality ceiling.
		quality = MaxQuality
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode JPEG: %w", err)
	}

	return out.Bytes(), nil
}

func (p *BuiltinProvider) convertToBMP(data []byte, cfg Config) ([]byte, error) {
	img, err := decodeImage(data)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := bmp.Encode(&out, img); err != nil {
		return nil, fmt.Errorf("encode BMP: %w", err)
	}

	return out.Bytes(), nil
}

// convertToTGA writes an uncompressed 32-bit true-color TGA (type 2,
// top-to-bottom row order).
func (p *BuiltinProvider) convertToTGA(data []byte, cfg Config) ([]byte, error) {
	img, err := decodeImage(data)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > 0xFFFF || h > 0xFFFF {
		return nil, fmt.Errorf("image %dx%d exceeds TGA dimension limit", w, h)
	}

	rgba, ok := img.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(bounds)
		draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	}

	out := make([]byte, 18, 18+w*h*4)
	out[2] = 2 // uncompressed true-color
	binary.LittleEndian.PutUint16(out[12:14], uint16(w))
	binary.LittleEndian.PutUint16(out[14:16], uint16(h))
	out[16] = 32   // bits per pixel
	out[17] = 0x28 // 8 alpha bits, top-to-bottom

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := rgba.Pix[(y-bounds.Min.Y)*rgba.Stride : (y-bounds.Min.Y)*rgba.Stride+w*4]
		for x := 0; x < w*4; x += 4 {
			// TGA stores BGRA.
			out = append(out, row[x+2], row[x+1], row[x], row[x+3])
		}
	}

	// v2.0 footer makes the output detectable without an extension hint.
	out = append(out, make([]byte, 8)...)
	out = append(out, "TRUEVISION-XFILE.\x00"...)

	return out, nil
}

const (
	glbHeaderSize = 12
	glbChunkJSON  = 0x4E4F534A // "JSON"
)

var glbMagic = []byte("glTF")

// convertToGLB wraps a JSON glTF scene in the binary glTF container: 12-byte
// header followed by a single 4-byte-aligned JSON chunk.
func (p *BuiltinProvider) convertToGLB(data []byte, cfg Config) ([]byte, error) {
	var doc bytes.Buffer
	if err := json.Compact(&doc, data); err != nil {
		return nil, fmt.Errorf("source is not a JSON glTF scene: %w", err)
	}

	// The JSON chunk is padded with spaces to a 4-byte boundary.
	for doc.Len()%4 != 0 {
		doc.WriteByte(' ')
	}

	total := glbHeaderSize + 8 + doc.Len()
	out := make([]byte, 0, total)
	out = append(out, glbMagic...)
	out = binary.LittleEndian.AppendUint32(out, 2) // container version
	out = binary.LittleEndian.AppendUint32(out, uint32(total))
	out = binary.LittleEndian.AppendUint32(out, uint32(doc.Len()))
	out = binary.LittleEndian.AppendUint32(out, glbChunkJSON)
	out = append(out, doc.Bytes()...)

	return out, nil
}

// convertToGLTF extracts the JSON scene document from a binary glTF
// container. Binary buffer chunks are dropped; a GLB whose scene references
// them cannot round-trip through this entry point and external mesh codecs
// handle that case.
func (p *BuiltinProvider) convertToGLTF(data []byte, cfg Config) ([]byte, error) {
	if !bytes.HasPrefix(data, glbMagic) || len(data) < glbHeaderSize+8 {
		return nil, fmt.Errorf("not a GLB container")
	}

	off := glbHeaderSize
	for off+8 <= len(data) {
		chunkLen := int(binary.LittleEndian.Uint32(data[off : off+4]))
		chunkType := binary.LittleEndian.Uint32(data[off+4 : off+8])
		end := off + 8 + chunkLen
		if end > len(data) {
			return nil, fmt.Errorf("truncated GLB chunk")
		}

		if chunkType == glbChunkJSON {
			doc := bytes.TrimRight(data[off+8:end], " \x00")
			if !json.Valid(doc) {
				return nil, fmt.Errorf("GLB JSON chunk is not valid JSON")
			}

			out := make([]byte, len(doc))
			copy(out, doc)

			return out, nil
		}

		off = end
	}

	return nil, fmt.Errorf("GLB container has no JSON chunk")
}
