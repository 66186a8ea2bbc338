// Package mesh provides the triangle mesh type the voxelizer consumes,
// with loaders for Wavefront OBJ (plain or gzip-compressed) and
// glTF/GLB files.
package mesh

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/wwmodding/vxlkit/pkg/math"
)

var (
	ErrEmptyMesh         = errors.New("mesh: no triangles")
	ErrUnsupportedFormat = errors.New("mesh: unsupported file format")
)

// Mesh is an indexed triangle soup. FaceUVs parallels Faces when the
// source carries texture coordinates; a corner without one is -1.
type Mesh struct {
	Vertices []math.Vec3
	UVs      []math.Vec2
	Faces    [][3]int
	FaceUVs  [][3]int
}

// Bounds returns the axis-aligned bounding box over all vertices.
// A mesh with no vertices reports a zero box.
func (m *Mesh) Bounds() (min, max math.Vec3) {
	if len(m.Vertices) == 0 {
		return math.Vec3{}, math.Vec3{}
	}
	min, max = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		min = min.Min(v)
		max = max.Max(v)
	}
	return min, max
}

// Triangle returns the three corner positions of face i.
func (m *Mesh) Triangle(i int) [3]math.Vec3 {
	f := m.Faces[i]
	return [3]math.Vec3{m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]}
}

// UVCentroid returns the average texture coordinate of face i and
// whether all three corners carry one.
func (m *Mesh) UVCentroid(i int) (math.Vec2, bool) {
	if i >= len(m.FaceUVs) {
		return math.Vec2{}, false
	}
	fuv := m.FaceUVs[i]
	var sum math.Vec2
	for _, idx := range fuv {
		if idx < 0 || idx >= len(m.UVs) {
			return math.Vec2{}, false
		}
		sum = sum.Add(m.UVs[idx])
	}
	return sum.Scale(1.0 / 3.0), true
}

// Load reads a mesh file, dispatching on extension: .obj and .obj.gz
// go through the OBJ parser, .gltf and .glb through the glTF loader.
func Load(path string) (*Mesh, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return LoadOBJ(path)
	case ".gz":
		if strings.HasSuffix(strings.ToLower(path), ".obj.gz") {
			return LoadOBJ(path)
		}
	case ".gltf", ".glb":
		return LoadGLTF(path)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Base(path))
}
