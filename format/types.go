package format

import "strings"

type (
	Format          uint8
	Operation       uint8
	Domain          uint8
	CompressionType uint8
)

const (
	Unknown Format = 0x0 // Unknown represents an unclassified byte buffer.
	PNG     Format = 0x1 // PNG represents Portable Network Graphics.
	JPEG    Format = 0x2 // JPEG represents JFIF/JPEG images.
	WebP    Format = 0x3 // WebP represents RIFF-contained WebP images.
	GIF     Format = 0x4 // GIF represents GIF87a/GIF89a images.
	BMP     Format = 0x5 // BMP represents Windows bitmap images.
	ICO     Format = 0x6 // ICO represents Windows icon containers.
	TIFF    Format = 0x7 // TIFF represents little- or big-endian TIFF images.
	SVG     Format = 0x8 // SVG represents XML vector images.
	TGA     Format = 0x9 // TGA represents Truevision TGA images (no magic signature).
	OBJ     Format = 0xA // OBJ represents Wavefront OBJ meshes.
	PLY     Format = 0xB // PLY represents Stanford PLY meshes.
	STL     Format = 0xC // STL represents ASCII or binary STL meshes.
	GLTF    Format = 0xD // GLTF represents JSON glTF scenes.
	GLB     Format = 0xE // GLB represents binary glTF containers.
	FBX     Format = 0xF // FBX represents Kaydara FBX scenes.

	OpOptimize Operation = 0x1 // OpOptimize re-encodes within the same format.
	OpConvert  Operation = 0x2 // OpConvert re-encodes into a different format.

	DomainNone  Domain = 0x0 // DomainNone is the domain of Unknown.
	DomainImage Domain = 0x1 // DomainImage covers raster and vector images.
	DomainMesh  Domain = 0x2 // DomainMesh covers 3D mesh formats.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

var formatNames = map[Format]string{
	PNG:  "PNG",
	JPEG: "JPEG",
	WebP: "WebP",
	GIF:  "GIF",
	BMP:  "BMP",
	ICO:  "ICO",
	TIFF: "TIFF",
	SVG:  "SVG",
	TGA:  "TGA",
	OBJ:  "OBJ",
	PLY:  "PLY",
	STL:  "STL",
	GLTF: "GLTF",
	GLB:  "GLB",
	FBX:  "FBX",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}

	return "Unknown"
}

// Domain reports which optimization domain the format belongs to.
// Image formats convert only to image formats and mesh formats only to mesh
// formats; Unknown belongs to neither.
func (f Format) Domain() Domain {
	switch f {
	case PNG, JPEG, WebP, GIF, BMP, ICO, TIFF, SVG, TGA:
		return DomainImage
	case OBJ, PLY, STL, GLTF, GLB, FBX:
		return DomainMesh
	default:
		return DomainNone
	}
}

// IsImage reports whether the format is an image format.
func (f Format) IsImage() bool { return f.Domain() == DomainImage }

// IsMesh reports whether the format is a 3D mesh format.
func (f Format) IsMesh() bool { return f.Domain() == DomainMesh }

// Extension returns the canonical file extension for the format, without the
// leading dot. Unknown returns an empty string.
func (f Format) Extension() string {
	switch f {
	case JPEG:
		return "jpg"
	case Unknown:
		return ""
	default:
		return strings.ToLower(f.String())
	}
}

// Parse maps a string token to a Format. Tokens are matched
// case-insensitively, so "png", "PNG" and "Png" all map to PNG.
// Unrecognized tokens, including "unknown", map to Unknown.
func Parse(token string) Format {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "png":
		return PNG
	case "jpeg", "jpg":
		return JPEG
	case "webp":
		return WebP
	case "gif":
		return GIF
	case "bmp":
		return BMP
	case "ico":
		return ICO
	case "tiff", "tif":
		return TIFF
	case "svg":
		return SVG
	case "tga", "targa":
		return TGA
	case "obj":
		return OBJ
	case "ply":
		return PLY
	case "stl":
		return STL
	case "gltf":
		return GLTF
	case "glb":
		return GLB
	case "fbx":
		return FBX
	default:
		return Unknown
	}
}

// FromExtension maps a file name or bare extension to a Format using the
// final dot-separated segment. It is a hint only; content signatures take
// precedence everywhere this is consulted.
func FromExtension(name string) Format {
	idx := strings.LastIndexByte(name, '.')
	if idx >= 0 {
		name = name[idx+1:]
	}

	return Parse(name)
}

func (o Operation) String() string {
	switch o {
	case OpOptimize:
		return "Optimize"
	case OpConvert:
		return "Convert"
	default:
		return "Unknown"
	}
}

func (d Domain) String() string {
	switch d {
	case DomainImage:
		return "Image"
	case DomainMesh:
		return "Mesh"
	default:
		return "None"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
