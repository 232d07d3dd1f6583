// Package compress provides compression codecs for bundle payloads.
//
// Optimized assets written into a bundle may be compressed a second time
// at the container level. Raster formats such as PNG or JPEG are already
// entropy-coded and gain little, but text-based assets (OBJ, PLY, glTF
// JSON, SVG) typically shrink by another 2-5x.
//
// The package defines three interfaces:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// Four algorithms are supported, selected by format.CompressionType:
//
//   - None: passthrough, for payloads that are already compressed
//   - Zstd: best ratio, moderate speed
//   - S2: balanced ratio and speed
//   - LZ4: fastest decompression
//
// Codecs are stateless values and safe for concurrent use. Retrieve a
// shared instance with GetCodec, or construct one directly:
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	compressed, err := codec.Compress(payload)
package compress
