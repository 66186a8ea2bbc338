package vxl

import "github.com/wwmodding/vxlkit/pkg/math"

// NormalsMode selects which quantized-normal table a section's normal bytes
// index into. The byte values are the ones the engine stores in the tailer.
type NormalsMode uint8

const (
	// NormalsCoarse is the 6-direction table with historical fixed indices.
	NormalsCoarse NormalsMode = 2
	// NormalsFine is the 36-direction table selected by nearest match.
	NormalsFine NormalsMode = 4
)

// String returns a human-readable mode name.
func (m NormalsMode) String() string {
	switch m {
	case NormalsCoarse:
		return "coarse"
	case NormalsFine:
		return "fine"
	default:
		return "unknown"
	}
}

// Coarse-mode indices. They are not contiguous: the table they index into
// predates the fine table and kept its historical slots.
const (
	NormalTop    = 0
	NormalPosY   = 3
	NormalPosX   = 6
	NormalBottom = 12
	NormalNegX   = 18
	NormalNegY   = 21
)

// FineNormals is the 36-entry direction table for NormalsFine. Entries cover
// the axis, edge-diagonal, and corner directions.
var FineNormals = [36]math.Vec3{
	{X: 0, Y: 0, Z: 1},  // 0: up
	{X: 0, Y: 0, Z: -1}, // 1: down
	{X: 1, Y: 0, Z: 0},  // 2: right
	{X: -1, Y: 0, Z: 0}, // 3: left
	{X: 0, Y: 1, Z: 0},  // 4: front
	{X: 0, Y: -1, Z: 0}, // 5: back
	{X: 0.707, Y: 0, Z: 0.707},
	{X: -0.707, Y: 0, Z: 0.707},
	{X: 0, Y: 0.707, Z: 0.707},
	{X: 0, Y: -0.707, Z: 0.707},
	{X: 0.707, Y: 0, Z: -0.707},
	{X: -0.707, Y: 0, Z: -0.707},
	{X: 0, Y: 0.707, Z: -0.707},
	{X: 0, Y: -0.707, Z: -0.707},
	{X: 0.707, Y: 0.707, Z: 0},
	{X: -0.707, Y: 0.707, Z: 0},
	{X: 0.707, Y: -0.707, Z: 0},
	{X: -0.707, Y: -0.707, Z: 0},
	{X: 0.577, Y: 0.577, Z: 0.577},
	{X: -0.577, Y: 0.577, Z: 0.577},
	{X: 0.577, Y: -0.577, Z: 0.577},
	{X: -0.577, Y: -0.577, Z: 0.577},
	{X: 0.577, Y: 0.577, Z: -0.577},
	{X: -0.577, Y: 0.577, Z: -0.577},
	{X: 0.577, Y: -0.577, Z: -0.577},
	{X: -0.577, Y: -0.577, Z: -0.577},
	{X: 0.894, Y: 0.447, Z: 0},
	{X: -0.894, Y: 0.447, Z: 0},
	{X: 0.894, Y: -0.447, Z: 0},
	{X: -0.894, Y: -0.447, Z: 0},
	{X: 0.447, Y: 0, Z: 0.894},
	{X: -0.447, Y: 0, Z: 0.894},
	{X: 0.447, Y: 0, Z: -0.894},
	{X: -0.447, Y: 0, Z: -0.894},
	{X: 0, Y: 0.447, Z: 0.894},
	{X: 0, Y: -0.447, Z: 0.894},
}

// NearestFineNormal returns the FineNormals index whose direction has the
// maximum dot product with dir. The input is normalized first; a zero-length
// input resolves to up. Ties break toward the lowest index.
func NearestFineNormal(dir math.Vec3) uint8 {
	n := dir.Normalize()
	if n == (math.Vec3{}) {
		n = math.Vec3{Z: 1}
	}
	best := 0
	bestDot := float32(-2)
	for i, candidate := range FineNormals {
		if d := n.Dot(candidate); d > bestDot {
			bestDot = d
			best = i
		}
	}
	return uint8(best)
}

// FaceExposure is a bitmask of exposed axis-aligned faces of a cell.
type FaceExposure uint8

const (
	ExposedPosX FaceExposure = 1 << iota
	ExposedNegX
	ExposedPosY
	ExposedNegY
	ExposedTop    // +Z
	ExposedBottom // -Z
)

var faceDirections = [6]struct {
	mask       FaceExposure
	dx, dy, dz int
	dir        math.Vec3
}{
	{ExposedPosX, 1, 0, 0, math.Vec3{X: 1}},
	{ExposedNegX, -1, 0, 0, math.Vec3{X: -1}},
	{ExposedPosY, 0, 1, 0, math.Vec3{Y: 1}},
	{ExposedNegY, 0, -1, 0, math.Vec3{Y: -1}},
	{ExposedTop, 0, 0, 1, math.Vec3{Z: 1}},
	{ExposedBottom, 0, 0, -1, math.Vec3{Z: -1}},
}

// Exposure tests the six axis-aligned neighbors of (x, y, z). A neighbor that
// is empty or outside the grid marks the corresponding face exposed.
func Exposure(g *VoxelGrid, x, y, z int) FaceExposure {
	var e FaceExposure
	for _, f := range faceDirections {
		if !g.Filled(x+f.dx, y+f.dy, z+f.dz) {
			e |= f.mask
		}
	}
	return e
}

// ClassifyCoarse picks the coarse normal index for an exposure pattern using
// the fixed priority order top > bottom > +X > -X > +Y > -Y. It never sums
// directions; the first exposed face in priority order wins.
func ClassifyCoarse(e FaceExposure) uint8 {
	switch {
	case e&ExposedTop != 0:
		return NormalTop
	case e&ExposedBottom != 0:
		return NormalBottom
	case e&ExposedPosX != 0:
		return NormalPosX
	case e&ExposedNegX != 0:
		return NormalNegX
	case e&ExposedPosY != 0:
		return NormalPosY
	case e&ExposedNegY != 0:
		return NormalNegY
	default:
		return NormalTop
	}
}

// ClassifyFine sums the outward unit vectors of all exposed faces and returns
// the nearest fine-table index. A fully enclosed cell resolves to up.
func ClassifyFine(e FaceExposure) uint8 {
	var sum math.Vec3
	for _, f := range faceDirections {
		if e&f.mask != 0 {
			sum = sum.Add(f.dir)
		}
	}
	return NearestFineNormal(sum)
}

// ClassifyNormal classifies the cell at (x, y, z) under the given mode.
// The grid is only read, never mutated.
func ClassifyNormal(g *VoxelGrid, x, y, z int, mode NormalsMode) uint8 {
	e := Exposure(g, x, y, z)
	if mode == NormalsCoarse {
		return ClassifyCoarse(e)
	}
	return ClassifyFine(e)
}

// RecalculateNormals rewrites the normal byte of every occupied cell using
// the classifier for the given mode. Exposure is computed against the
// original occupancy, which the rewrite does not change.
func RecalculateNormals(g *VoxelGrid, mode NormalsMode) {
	for z := 0; z < g.DimZ; z++ {
		for y := 0; y < g.DimY; y++ {
			for x := 0; x < g.DimX; x++ {
				v, ok := g.At(x, y, z)
				if !ok {
					continue
				}
				v.Normal = ClassifyNormal(g, x, y, z, mode)
				g.Set(x, y, z, v)
			}
		}
	}
}

// AutoNormalize recalculates the normals of every section in the model
// and stamps the sections with the given mode. Game engines ignore
// fine-resolution indices when a section is marked coarse, so repairing
// the mode byte and the normal bytes has to happen together.
func AutoNormalize(m *Model, mode NormalsMode) {
	for i := range m.Sections {
		RecalculateNormals(m.Sections[i].Grid, mode)
		m.Sections[i].NormalsMode = mode
	}
}
