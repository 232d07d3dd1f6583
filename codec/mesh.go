package codec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Coordinate precision used when minifying ASCII mesh text in lossy mode.
// Six decimals is below the resolution of float32 GPU pipelines.
const meshCoordPrecision = 6

// optimizeOBJ minifies Wavefront OBJ text: comments and blank lines are
// dropped (unless metadata is preserved), runs of whitespace collapse to a
// single space, and in lossy mode vertex coordinates are rounded to a fixed
// precision. Geometry statements are never reordered or removed; real
// decimation belongs to external mesh codecs driven by the target reduction.
func (p *BuiltinProvider) optimizeOBJ(data []byte, cfg Config) ([]byte, error) {
	var out bytes.Buffer
	out.Grow(len(data))

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			if cfg.PreserveMetadata() {
				out.WriteString(line)
				out.WriteByte('\n')
			}
			continue
		}

		fields := strings.Fields(line)
		if !cfg.Lossless() && isOBJCoordStatement(fields[0]) {
			roundCoordFields(fields[1:])
		}

		out.WriteString(strings.Join(fields, " "))
		out.WriteByte('\n')
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan OBJ text: %w", err)
	}

	return out.Bytes(), nil
}

func isOBJCoordStatement(keyword string) bool {
	switch keyword {
	case "v", "vn", "vt":
		return true
	default:
		return false
	}
}

func roundCoordFields(fields []string) {
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			continue
		}

		fields[i] = trimFloat(strconv.FormatFloat(v, 'f', meshCoordPrecision, 64))
	}
}

// trimFloat drops trailing zeros and a dangling decimal point.
func trimFloat(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}

	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}

	return s
}

// optimizePLY minifies ASCII PLY files the same way optimizeOBJ minifies
// OBJ text. Binary PLY payloads are already dense and pass through
// unchanged.
func (p *BuiltinProvider) optimizePLY(data []byte, cfg Config) ([]byte, error) {
	if !bytes.HasPrefix(data, []byte("ply")) {
		return nil, fmt.Errorf("not a PLY stream")
	}

	if !bytes.Contains(data, []byte("format ascii")) {
		return passthrough(data, cfg)
	}

	var out bytes.Buffer
	out.Grow(len(data))

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "comment") || strings.HasPrefix(line, "obj_info") {
			if cfg.PreserveMetadata() {
				out.WriteString(line)
				out.WriteByte('\n')
			}
			continue
		}

		out.WriteString(strings.Join(strings.Fields(line), " "))
		out.WriteByte('\n')
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan PLY text: %w", err)
	}

	return out.Bytes(), nil
}

// optimizeGLTF minifies the JSON document of a glTF scene. Embedded base64
// buffers stay byte-identical, so the operation is lossless.
func (p *BuiltinProvider) optimizeGLTF(data []byte, cfg Config) ([]byte, error) {
	var out bytes.Buffer
	out.Grow(len(data))

	if err := json.Compact(&out, data); err != nil {
		return nil, fmt.Errorf("compact glTF JSON: %w", err)
	}

	return out.Bytes(), nil
}

// optimizeSTL re-encodes ASCII STL into the binary layout (80-byte header,
// triangle count, 50 bytes per facet), which is typically a 5-10x size
// reduction with identical geometry. Binary STL input passes through
// unchanged.
func (p *BuiltinProvider) optimizeSTL(data []byte, cfg Config) ([]byte, error) {
	if !bytes.HasPrefix(data, []byte("solid ")) {
		return passthrough(data, cfg)
	}

	facets, name, err := parseASCIISTL(data)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 84+len(facets)*50)

	var header [80]byte
	copy(header[:], name)
	out = append(out, header[:]...)

	var scratch [4]byte
	binary.LittleEndian.PutUint32(scratch[:], uint32(len(facets)))
	out = append(out, scratch[:]...)

	for _, f := range facets {
		for _, v := range f {
			binary.LittleEndian.PutUint32(scratch[:], math.Float32bits(v))
			out = append(out, scratch[:]...)
		}
		out = append(out, 0, 0) // attribute byte count
	}

	return out, nil
}

// stlFacet holds the normal plus three vertices of one triangle.
type stlFacet [12]float32

func parseASCIISTL(data []byte) ([]stlFacet, string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		facets []stlFacet
		name   string
		cur    stlFacet
		filled int
	)

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			if len(fields) > 1 {
				name = fields[1]
			}
		case "facet":
			// "facet normal nx ny nz"
			if len(fields) != 5 || fields[1] != "normal" {
				return nil, "", fmt.Errorf("malformed facet statement: %q", strings.Join(fields, " "))
			}
			filled = 0
			if err := fillFloats(cur[:3], fields[2:]); err != nil {
				return nil, "", err
			}
			filled = 3
		case "vertex":
			if len(fields) != 4 || filled < 3 || filled >= 12 {
				return nil, "", fmt.Errorf("unexpected vertex statement")
			}
			if err := fillFloats(cur[filled:filled+3], fields[1:]); err != nil {
				return nil, "", err
			}
			filled += 3
		case "endfacet":
			if filled != 12 {
				return nil, "", fmt.Errorf("facet with %d coordinates", filled-3)
			}
			facets = append(facets, cur)
			filled = 0
		case "outer", "endloop", "endsolid":
			// structural keywords with no payload
		default:
			return nil, "", fmt.Errorf("unknown STL keyword %q", fields[0])
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, "", fmt.Errorf("scan STL text: %w", err)
	}

	if len(facets) == 0 {
		return nil, "", fmt.Errorf("ASCII STL contains no facets")
	}

	return facets, name, nil
}

func fillFloats(dst []float32, fields []string) error {
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return fmt.Errorf("parse STL coordinate %q: %w", f, err)
		}

		dst[i] = float32(v)
	}

	return nil
}
