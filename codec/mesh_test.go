package codec

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

const objFixture = `# exported by testcase
# second comment

v 0.123456789 0.0 0.0
v   1.000000   0.0    0.0
vn 0 0 1
vt 0.5 0.5
f 1 2 1
`

func TestOptimizeOBJ_Minifies(t *testing.T) {
	p := NewBuiltinProvider()

	out, err := p.optimizeOBJ([]byte(objFixture), DefaultConfig())
	require.NoError(t, err)

	text := string(out)
	require.NotContains(t, text, "#")
	require.NotContains(t, text, "  ", "whitespace runs must collapse")
	require.Contains(t, text, "v 0.123457", "coordinates round to six decimals")
	require.Contains(t, text, "v 1 0 0", "trailing zeros trimmed")
	require.Contains(t, text, "f 1 2 1", "faces pass through untouched")
	require.Less(t, len(out), len(objFixture))
}

func TestOptimizeOBJ_LosslessKeepsCoordinates(t *testing.T) {
	p := NewBuiltinProvider()

	cfg, err := NewConfig(WithLossless(true))
	require.NoError(t, err)

	out, err := p.optimizeOBJ([]byte(objFixture), cfg)
	require.NoError(t, err)
	require.Contains(t, string(out), "0.123456789")
}

func TestOptimizeOBJ_PreserveMetadataKeepsComments(t *testing.T) {
	p := NewBuiltinProvider()

	cfg, err := NewConfig(WithPreserveMetadata(true))
	require.NoError(t, err)

	out, err := p.optimizeOBJ([]byte(objFixture), cfg)
	require.NoError(t, err)
	require.Contains(t, string(out), "# exported by testcase")
}

const plyFixture = "ply\nformat ascii 1.0\ncomment made by tester\nelement vertex 1\nproperty float x\nend_header\n0.5\n"

func TestOptimizePLY_ASCII(t *testing.T) {
	p := NewBuiltinProvider()

	out, err := p.optimizePLY([]byte(plyFixture), DefaultConfig())
	require.NoError(t, err)
	require.NotContains(t, string(out), "comment")
	require.Contains(t, string(out), "end_header")
}

func TestOptimizePLY_BinaryPassesThrough(t *testing.T) {
	p := NewBuiltinProvider()
	src := []byte("ply\nformat binary_little_endian 1.0\nend_header\n\x00\x01\x02")

	out, err := p.optimizePLY(src, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, src, out)
}

func TestOptimizePLY_RejectsNonPLY(t *testing.T) {
	p := NewBuiltinProvider()
	_, err := p.optimizePLY([]byte("obj data"), DefaultConfig())
	require.Error(t, err)
}

func TestOptimizeGLTF_CompactsJSON(t *testing.T) {
	p := NewBuiltinProvider()
	src := []byte("{\n  \"asset\": {\n    \"version\": \"2.0\"\n  },\n  \"scenes\": []\n}")

	out, err := p.optimizeGLTF(src, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, `{"asset":{"version":"2.0"},"scenes":[]}`, string(out))
	require.Less(t, len(out), len(src))

	_, err = p.optimizeGLTF([]byte("{broken"), DefaultConfig())
	require.Error(t, err)
}

const asciiSTLFixture = `solid cube
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 1 0
    endloop
  endfacet
  facet normal 0 0 1
    outer loop
      vertex 1 1 0
      vertex 1 0 0
      vertex 0 1 0
    endloop
  endfacet
endsolid cube
`

func TestOptimizeSTL_ASCIIToBinary(t *testing.T) {
	p := NewBuiltinProvider()

	out, err := p.optimizeSTL([]byte(asciiSTLFixture), DefaultConfig())
	require.NoError(t, err)
	require.Len(t, out, 84+2*50)
	require.Equal(t, uint32(2), binary.LittleEndian.Uint32(out[80:84]))
	require.Equal(t, []byte("cube"), out[:4], "solid name lands in the header")
}

func TestOptimizeSTL_BinaryPassesThrough(t *testing.T) {
	p := NewBuiltinProvider()

	src := make([]byte, 84+50)
	binary.LittleEndian.PutUint32(src[80:84], 1)

	out, err := p.optimizeSTL(src, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, src, out)
}

func TestOptimizeSTL_MalformedASCII(t *testing.T) {
	p := NewBuiltinProvider()

	_, err := p.optimizeSTL([]byte("solid empty\nendsolid empty\n"), DefaultConfig())
	require.Error(t, err, "no facets")

	_, err = p.optimizeSTL([]byte("solid x\nfacet normal 0 0\nendfacet\n"), DefaultConfig())
	require.Error(t, err, "short normal")

	_, err = p.optimizeSTL([]byte("solid x\nfacet normal 0 0 1\nvertex 0 0 zebra\nendfacet\n"), DefaultConfig())
	require.Error(t, err, "non-numeric coordinate")
}

func TestTrimFloat(t *testing.T) {
	require.Equal(t, "1", trimFloat("1.000000"))
	require.Equal(t, "0.5", trimFloat("0.500000"))
	require.Equal(t, "-2.25", trimFloat("-2.250000"))
	require.Equal(t, "0", trimFloat("0.000000"))
	require.Equal(t, "3", trimFloat("3"))
}
