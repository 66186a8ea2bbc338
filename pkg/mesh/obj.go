package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/wwmodding/vxlkit/pkg/math"
)

// ParseOBJ reads Wavefront OBJ text. Faces with more than three
// corners are fan-triangulated; v, v/vt, v/vt/vn and v//vn corner
// forms are accepted, and negative indices count back from the end
// of the list as the format allows.
func ParseOBJ(r io.Reader) (*Mesh, error) {
	m := &Mesh{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("obj: line %d: vertex needs 3 coordinates", lineNo)
			}
			v, err := parseVec3(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("obj: line %d: %w", lineNo, err)
			}
			m.Vertices = append(m.Vertices, v)
		case "vt":
			if len(fields) < 3 {
				return nil, fmt.Errorf("obj: line %d: uv needs 2 coordinates", lineNo)
			}
			u, err1 := strconv.ParseFloat(fields[1], 32)
			v, err2 := strconv.ParseFloat(fields[2], 32)
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("obj: line %d: bad uv", lineNo)
			}
			m.UVs = append(m.UVs, math.Vec2{X: float32(u), Y: float32(v)})
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("obj: line %d: face needs at least 3 corners", lineNo)
			}
			verts := make([]int, 0, len(fields)-1)
			uvs := make([]int, 0, len(fields)-1)
			for _, corner := range fields[1:] {
				vi, ti, err := parseCorner(corner, len(m.Vertices), len(m.UVs))
				if err != nil {
					return nil, fmt.Errorf("obj: line %d: %w", lineNo, err)
				}
				verts = append(verts, vi)
				uvs = append(uvs, ti)
			}
			for i := 1; i < len(verts)-1; i++ {
				m.Faces = append(m.Faces, [3]int{verts[0], verts[i], verts[i+1]})
				m.FaceUVs = append(m.FaceUVs, [3]int{uvs[0], uvs[i], uvs[i+1]})
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("obj: %w", err)
	}
	if len(m.Faces) == 0 {
		return nil, ErrEmptyMesh
	}
	return m, nil
}

// LoadOBJ reads an OBJ file from disk, transparently decompressing a
// .obj.gz.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("read obj: %w", err)
		}
		defer gr.Close()
		r = gr
	}
	return ParseOBJ(r)
}

func parseVec3(fields []string) (math.Vec3, error) {
	var out [3]float32
	for i, s := range fields {
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return math.Vec3{}, fmt.Errorf("bad coordinate %q", s)
		}
		out[i] = float32(f)
	}
	return math.Vec3{X: out[0], Y: out[1], Z: out[2]}, nil
}

// parseCorner resolves one face corner to 0-based vertex and uv
// indices; the uv index is -1 when absent.
func parseCorner(s string, numVerts, numUVs int) (int, int, error) {
	parts := strings.Split(s, "/")
	vi, err := resolveIndex(parts[0], numVerts)
	if err != nil {
		return 0, 0, err
	}
	ti := -1
	if len(parts) > 1 && parts[1] != "" {
		ti, err = resolveIndex(parts[1], numUVs)
		if err != nil {
			return 0, 0, err
		}
	}
	return vi, ti, nil
}

func resolveIndex(s string, n int) (int, error) {
	idx, err := strconv.Atoi(s)
	if err != nil || idx == 0 {
		return 0, fmt.Errorf("bad index %q", s)
	}
	if idx < 0 {
		idx += n
	} else {
		idx--
	}
	if idx < 0 || idx >= n {
		return 0, fmt.Errorf("index %q out of range (%d entries)", s, n)
	}
	return idx, nil
}
