package compress

import (
	"fmt"

	"github.com/arloliu/pixo/format"
)

// Compressor compresses a bundle payload.
//
// Payloads are complete optimized assets, typically a few KB to a few MB.
// Implementations do not modify the input slice; the returned slice is
// newly allocated and owned by the caller. Internal buffers may be reused
// across calls.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a payload previously produced by the matching
// Compressor.
//
// Implementations validate the container framing of their algorithm and
// return an error when the input is corrupted or belongs to a different
// algorithm. All implementations in this package are safe for concurrent
// use.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines compression and decompression for one algorithm.
type Codec interface {
	Compressor
	Decompressor
}

// CreateCodec creates a fresh Codec for the specified compression type.
//
// The target string describes the caller's usage and appears in the error
// message when the compression type is invalid.
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("invalid %s compression: %s", target, compressionType)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves a shared built-in Codec for the specified compression
// type. All built-in codecs are stateless and safe to share.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}
