package codec

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

// encodeTestPNG renders a small gradient and encodes it at speed-optimized
// settings so the optimizer has compression headroom to reclaim.
func encodeTestPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 0x40, A: 0xFF})
		}
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.NoCompression}
	require.NoError(t, enc.Encode(&buf, img))

	return buf.Bytes()
}

// withTextChunk inserts a tEXt metadata chunk right before IEND.
func withTextChunk(data []byte, key, value string) []byte {
	iendStart := len(data) - 12
	body := append(append([]byte(key), 0), value...)

	out := make([]byte, 0, len(data)+12+len(body))
	out = append(out, data[:iendStart]...)
	out = appendPNGChunk(out, "tEXt", body)
	out = append(out, data[iendStart:]...)

	return out
}

func TestOptimizePNG_RecompressesAndStaysValid(t *testing.T) {
	p := NewBuiltinProvider()
	src := encodeTestPNG(t)

	out, err := p.optimizePNG(src, DefaultConfig())
	require.NoError(t, err)
	require.Less(t, len(out), len(src), "uncompressed IDAT must shrink")

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 32, 32), img.Bounds())
}

func TestOptimizePNG_StripsMetadata(t *testing.T) {
	p := NewBuiltinProvider()
	src := withTextChunk(encodeTestPNG(t), "Comment", "shot on a potato")

	out, err := p.optimizePNG(src, DefaultConfig())
	require.NoError(t, err)
	require.NotContains(t, string(out), "shot on a potato")

	_, err = png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
}

func TestOptimizePNG_PreserveMetadataKeepsChunks(t *testing.T) {
	p := NewBuiltinProvider()
	src := withTextChunk(encodeTestPNG(t), "Comment", "keep me")

	cfg, err := NewConfig(WithPreserveMetadata(true))
	require.NoError(t, err)

	out, err := p.optimizePNG(src, cfg)
	require.NoError(t, err)
	require.Contains(t, string(out), "keep me")
}

func TestOptimizePNG_RejectsNonPNG(t *testing.T) {
	p := NewBuiltinProvider()

	_, err := p.optimizePNG([]byte("GIF89a"), DefaultConfig())
	require.Error(t, err)

	_, err = p.optimizePNG(pngSignature, DefaultConfig())
	require.Error(t, err, "signature without chunks has no IDAT")
}

func TestOptimizePNG_TruncatedChunk(t *testing.T) {
	p := NewBuiltinProvider()
	src := encodeTestPNG(t)

	_, err := p.optimizePNG(src[:len(src)-6], DefaultConfig())
	require.Error(t, err)
}
