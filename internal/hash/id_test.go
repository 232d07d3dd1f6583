package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestID(t *testing.T) {
	require.Equal(t, ID("photo.png"), ID("photo.png"))
	require.NotEqual(t, ID("photo.png"), ID("photo.jpg"))
	require.NotZero(t, ID("photo.png"))
}

func TestContentID(t *testing.T) {
	pngSig := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

	require.Equal(t, ContentID(pngSig), ContentID(pngSig))
	require.NotEqual(t, ContentID(pngSig), ContentID(pngSig[:4]))

	// String and byte forms of the same data agree.
	require.Equal(t, ID("ply\n"), ContentID([]byte("ply\n")))
}
