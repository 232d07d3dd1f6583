package compress

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/pixo/format"
)

// objPayload builds a text payload shaped like a minified OBJ mesh,
// repetitive enough for every algorithm to compress.
func objPayload(vertices int) []byte {
	var sb strings.Builder
	for i := 0; i < vertices; i++ {
		sb.WriteString("v 1.25 -0.5 3.75\n")
		sb.WriteString("vn 0 1 0\n")
	}
	sb.WriteString("f 1 2 3\n")

	return []byte(sb.String())
}

func TestCodecRoundTrip(t *testing.T) {
	payload := objPayload(500)

	tests := []struct {
		name    string
		ctype   format.CompressionType
		shrinks bool
	}{
		{"noop", format.CompressionNone, false},
		{"zstd", format.CompressionZstd, true},
		{"s2", format.CompressionS2, true},
		{"lz4", format.CompressionLZ4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec, err := GetCodec(tt.ctype)
			require.NoError(t, err)

			compressed, err := codec.Compress(payload)
			require.NoError(t, err)
			if tt.shrinks {
				require.Less(t, len(compressed), len(payload))
			}

			restored, err := codec.Decompress(compressed)
			require.NoError(t, err)
			require.True(t, bytes.Equal(payload, restored))
		})
	}
}

func TestCodecEmptyInput(t *testing.T) {
	for _, ctype := range []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	} {
		t.Run(ctype.String(), func(t *testing.T) {
			codec, err := GetCodec(ctype)
			require.NoError(t, err)

			compressed, err := codec.Compress(nil)
			require.NoError(t, err)

			restored, err := codec.Decompress(compressed)
			require.NoError(t, err)
			require.Empty(t, restored)
		})
	}
}

func TestLZ4HighExpansionRatio(t *testing.T) {
	// A long run of a single byte compresses far below 1/4 of its size,
	// forcing the decompress buffer to grow past its initial estimate.
	payload := bytes.Repeat([]byte{'v'}, 1<<20)

	codec := NewLZ4Compressor()
	compressed, err := codec.Compress(payload)
	require.NoError(t, err)
	require.Less(t, len(compressed)*4, len(payload))

	restored, err := codec.Decompress(compressed)
	require.NoError(t, err)
	require.True(t, bytes.Equal(payload, restored))
}

func TestDecompressCorruptedInput(t *testing.T) {
	garbage := []byte("not a compressed payload at all")

	t.Run("zstd", func(t *testing.T) {
		_, err := NewZstdCompressor().Decompress(garbage)
		require.Error(t, err)
	})
	t.Run("s2", func(t *testing.T) {
		_, err := NewS2Compressor().Decompress(garbage)
		require.Error(t, err)
	})
}

func TestCreateCodec(t *testing.T) {
	codec, err := CreateCodec(format.CompressionZstd, "bundle payload")
	require.NoError(t, err)
	require.NotNil(t, codec)

	_, err = CreateCodec(format.CompressionType(0xAA), "bundle payload")
	require.Error(t, err)
	require.Contains(t, err.Error(), "bundle payload")
}

func TestGetCodecUnsupported(t *testing.T) {
	_, err := GetCodec(format.CompressionType(0xFF))
	require.Error(t, err)
}
