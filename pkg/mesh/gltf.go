package mesh

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/wwmodding/vxlkit/pkg/math"
)

// LoadGLTF reads a glTF or GLB file and flattens every triangle
// primitive of every mesh into one soup. Node transforms are ignored;
// models exported for conversion carry baked geometry.
func LoadGLTF(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read gltf: %w", err)
	}

	m := &Mesh{}
	for _, gm := range doc.Meshes {
		for _, prim := range gm.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			if err := appendPrimitive(m, doc, prim); err != nil {
				return nil, fmt.Errorf("gltf mesh %q: %w", gm.Name, err)
			}
		}
	}
	if len(m.Faces) == 0 {
		return nil, ErrEmptyMesh
	}
	return m, nil
}

func appendPrimitive(m *Mesh, doc *gltf.Document, prim *gltf.Primitive) error {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return fmt.Errorf("primitive has no positions")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return fmt.Errorf("read positions: %w", err)
	}

	vertBase := len(m.Vertices)
	for _, p := range positions {
		m.Vertices = append(m.Vertices, math.Vec3{X: p[0], Y: p[1], Z: p[2]})
	}

	uvBase := len(m.UVs)
	hasUVs := false
	if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		coords, err := modeler.ReadTextureCoord(doc, doc.Accessors[uvIdx], nil)
		if err != nil {
			return fmt.Errorf("read texcoords: %w", err)
		}
		for _, uv := range coords {
			m.UVs = append(m.UVs, math.Vec2{X: uv[0], Y: uv[1]})
		}
		hasUVs = len(coords) == len(positions)
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return fmt.Errorf("read indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	if len(indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3", len(indices))
	}

	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := int(indices[i]), int(indices[i+1]), int(indices[i+2])
		m.Faces = append(m.Faces, [3]int{vertBase + a, vertBase + b, vertBase + c})
		if hasUVs {
			m.FaceUVs = append(m.FaceUVs, [3]int{uvBase + a, uvBase + b, uvBase + c})
		} else {
			m.FaceUVs = append(m.FaceUVs, [3]int{-1, -1, -1})
		}
	}
	return nil
}
