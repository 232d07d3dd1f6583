// Package sniff classifies byte buffers into the closed set of supported
// image and mesh formats from content signatures.
//
// Detection never trusts a caller-supplied file name except as a last-resort
// disambiguator: signatures are checked first, in a fixed priority order that
// resolves overlaps between formats, and the extension hint is consulted only
// when every signature check comes up empty. TGA is the notable case with no
// usable signature in its header; a bare Detect call returns Unknown for TGA
// and DetectWithHint resolves it from the extension.
package sniff

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"unicode"

	"github.com/arloliu/pixo/format"
)

// sniffWindow bounds how many leading bytes signature checks may inspect.
const sniffWindow = 64

var (
	pngSignature  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	jpegSignature = []byte{0xFF, 0xD8, 0xFF}
	gif87Header   = []byte("GIF87a")
	gif89Header   = []byte("GIF89a")
	riffHeader    = []byte("RIFF")
	webpHeader    = []byte("WEBP")
	bmpHeader     = []byte("BM")
	icoHeader     = []byte{0x00, 0x00, 0x01, 0x00}
	tiffLittle    = []byte{'I', 'I', 42, 0}
	tiffBig       = []byte{'M', 'M', 0, 42}
	glbMagic      = []byte("glTF")
	fbxMagic      = []byte("Kaydara FBX Binary  \x00")
	plyMagic      = []byte("ply")
	stlSolid      = []byte("solid ")
	tgaFooter     = []byte("TRUEVISION-XFILE")
	utf8BOM       = []byte{0xEF, 0xBB, 0xBF}
)

// Detect classifies data by content signature and returns the matched
// format, or format.Unknown when no signature matches within the inspected
// window. Signatures are checked in a fixed priority order so that formats
// with overlapping prefixes (RIFF containers, ASCII mesh text) resolve
// deterministically; the first match wins.
func Detect(data []byte) format.Format {
	window := data
	if len(window) > sniffWindow {
		window = window[:sniffWindow]
	}

	switch {
	case bytes.HasPrefix(window, pngSignature):
		return format.PNG
	case bytes.HasPrefix(window, jpegSignature):
		return format.JPEG
	case bytes.HasPrefix(window, gif87Header), bytes.HasPrefix(window, gif89Header):
		return format.GIF
	case isWebP(window):
		return format.WebP
	case bytes.HasPrefix(window, bmpHeader):
		return format.BMP
	case bytes.HasPrefix(window, icoHeader):
		return format.ICO
	case bytes.HasPrefix(window, tiffLittle), bytes.HasPrefix(window, tiffBig):
		return format.TIFF
	case isSVG(window):
		return format.SVG
	case bytes.HasPrefix(window, glbMagic):
		return format.GLB
	case isGLTF(window, data):
		return format.GLTF
	case bytes.HasPrefix(window, fbxMagic):
		return format.FBX
	case isSTL(window, data):
		return format.STL
	case isPLY(window):
		return format.PLY
	case isOBJ(window):
		return format.OBJ
	case hasTGAFooter(data):
		// TGA has no header signature; the v2.0 footer is the only
		// content-based evidence and only exists at the end of the file.
		return format.TGA
	default:
		return format.Unknown
	}
}

// DetectWithHint classifies data by content signature, falling back to the
// file name extension only when every signature check returns Unknown.
// When signature and extension disagree, the signature always wins.
func DetectWithHint(data []byte, filename string) format.Format {
	if f := Detect(data); f != format.Unknown {
		return f
	}

	return format.FromExtension(filename)
}

func isWebP(window []byte) bool {
	return len(window) >= 12 &&
		bytes.HasPrefix(window, riffHeader) &&
		bytes.Equal(window[8:12], webpHeader)
}

// isSVG checks for an XML or SVG root element after trimming leading
// whitespace and an optional UTF-8 BOM.
func isSVG(window []byte) bool {
	trimmed := bytes.TrimPrefix(window, utf8BOM)
	trimmed = bytes.TrimLeftFunc(trimmed, unicode.IsSpace)

	return bytes.HasPrefix(trimmed, []byte("<?xml")) || bytes.HasPrefix(trimmed, []byte("<svg"))
}

// isGLTF recognizes JSON glTF scenes: a valid JSON object carrying the
// required "asset" key. The window rules out non-JSON cheaply; the full
// buffer is parsed only when the window already looks like a JSON object.
func isGLTF(window, data []byte) bool {
	trimmed := bytes.TrimLeftFunc(window, unicode.IsSpace)
	if !bytes.HasPrefix(trimmed, []byte("{")) {
		return false
	}

	return bytes.Contains(data, []byte(`"asset"`)) && json.Valid(data)
}

// isSTL recognizes ASCII STL by its "solid " prefix and binary STL by the
// fixed 80-byte header plus 4-byte triangle count, cross-checked against the
// 50-byte-per-triangle record size.
func isSTL(window, data []byte) bool {
	if bytes.HasPrefix(window, stlSolid) {
		return true
	}

	if len(data) < 84 {
		return false
	}

	triangles := binary.LittleEndian.Uint32(data[80:84])
	if triangles == 0 {
		return false
	}
	expected := 84 + int(triangles)*50

	// Some exporters append metadata after the last record.
	return len(data) >= expected && len(data) <= expected+100
}

func isPLY(window []byte) bool {
	if !bytes.HasPrefix(window, plyMagic) {
		return false
	}

	// "ply" must be the whole first line, not a prefix of something else.
	return len(window) == 3 || window[3] == '\n' || window[3] == '\r'
}

// isOBJ applies the Wavefront OBJ text heuristic: the first non-comment,
// non-blank line starts with a vertex, normal, texcoord or face statement.
func isOBJ(window []byte) bool {
	for _, line := range bytes.Split(window, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		return bytes.HasPrefix(line, []byte("v ")) ||
			bytes.HasPrefix(line, []byte("vn ")) ||
			bytes.HasPrefix(line, []byte("vt ")) ||
			bytes.HasPrefix(line, []byte("f "))
	}

	return false
}

func hasTGAFooter(data []byte) bool {
	if len(data) < 26 {
		return false
	}

	// 26-byte footer: two 4-byte offsets, 16-byte signature, ".", NUL.
	footer := data[len(data)-26:]

	return bytes.Equal(footer[8:24], tgaFooter)
}
