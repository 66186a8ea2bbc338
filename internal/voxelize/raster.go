package voxelize

import (
	"fmt"
	gomath "math"

	"go.uber.org/zap"

	"github.com/wwmodding/vxlkit/pkg/math"
	"github.com/wwmodding/vxlkit/pkg/mesh"
	"github.com/wwmodding/vxlkit/pkg/vxl"
)

// rasterize normalizes the mesh into a [0, resolution] cube with a
// one-voxel margin, stamps every cell whose center projects into a
// triangle's XY footprint within its Z range, then closes interior
// cavities with a parity scanline along Z.
func rasterize(m *mesh.Mesh, resolution int, log *zap.Logger) (*Result, error) {
	min, max := m.Bounds()
	extent := max.Sub(min).MaxComponent()

	margin := float32(resolution) - 2
	if margin < 1 {
		margin = 1
	}
	scale := margin / extent
	center := min.Add(max).Scale(0.5)
	half := float32(resolution) / 2

	verts := make([]math.Vec3, len(m.Vertices))
	for i, v := range m.Vertices {
		s := v.Sub(center).Scale(scale)
		verts[i] = math.Vec3{X: s.X + half, Y: s.Y + half, Z: s.Z + half}
	}

	grid, err := vxl.NewVoxelGrid(resolution, resolution, resolution)
	if err != nil {
		return nil, fmt.Errorf("voxelize: %w", err)
	}
	source := make([]int32, resolution*resolution*resolution)
	for i := range source {
		source[i] = -1
	}

	for ti, f := range m.Faces {
		stampTriangle(grid, source, int32(ti), verts[f[0]], verts[f[1]], verts[f[2]])
	}
	surface := grid.Count()
	fillInterior(grid)
	log.Debug("raster pass",
		zap.Int("surfaceCells", surface),
		zap.Int("filledCells", grid.Count()))

	voxelSize := 1 / scale
	halfWorld := half * voxelSize
	return &Result{
		Grid:      grid,
		Min:       center.Sub(math.Vec3{X: halfWorld, Y: halfWorld, Z: halfWorld}),
		Max:       center.Add(math.Vec3{X: halfWorld, Y: halfWorld, Z: halfWorld}),
		VoxelSize: voxelSize,
		Source:    source,
	}, nil
}

func stampTriangle(g *vxl.VoxelGrid, source []int32, tri int32, v1, v2, v3 math.Vec3) {
	minX := clampCell(minf(v1.X, v2.X, v3.X), g.DimX)
	maxX := clampCell(maxf(v1.X, v2.X, v3.X)+1, g.DimX)
	minY := clampCell(minf(v1.Y, v2.Y, v3.Y), g.DimY)
	maxY := clampCell(maxf(v1.Y, v2.Y, v3.Y)+1, g.DimY)
	minZ := clampCell(minf(v1.Z, v2.Z, v3.Z), g.DimZ)
	maxZ := clampCell(maxf(v1.Z, v2.Z, v3.Z)+1, g.DimZ)

	a, b, c := v1.XY(), v2.XY(), v3.XY()
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			pt := math.Vec2{X: float32(x) + 0.5, Y: float32(y) + 0.5}
			if !pointInTriangle(pt, a, b, c) {
				continue
			}
			for z := minZ; z <= maxZ; z++ {
				g.Set(x, y, z, vxl.Voxel{})
				source[(z*g.DimY+y)*g.DimX+x] = tri
			}
		}
	}
}

// pointInTriangle is the half-plane sign test; points on an edge count
// as inside.
func pointInTriangle(pt, a, b, c math.Vec2) bool {
	d1 := edgeSign(pt, a, b)
	d2 := edgeSign(pt, b, c)
	d3 := edgeSign(pt, c, a)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func edgeSign(p, a, b math.Vec2) float32 {
	return (p.X-b.X)*(a.Y-b.Y) - (a.X-b.X)*(p.Y-b.Y)
}

// fillInterior toggles an inside flag at each transition into a solid
// run along Z and fills the empty cells while the flag is set. An odd
// number of surface crossings leaves the flag set at the column top,
// which open (non-watertight) meshes produce; those cells stay empty
// because filling stops at the last crossing.
func fillInterior(g *vxl.VoxelGrid) {
	for x := 0; x < g.DimX; x++ {
		for y := 0; y < g.DimY; y++ {
			inside := false
			lastSolid := false
			var pending []int
			for z := 0; z < g.DimZ; z++ {
				if g.Filled(x, y, z) {
					if !lastSolid {
						inside = !inside
						if !inside {
							for _, pz := range pending {
								g.Set(x, y, pz, vxl.Voxel{})
							}
						}
						pending = pending[:0]
					}
					lastSolid = true
					continue
				}
				lastSolid = false
				if inside {
					pending = append(pending, z)
				}
			}
		}
	}
}

func clampCell(v float32, n int) int {
	c := int(gomath.Floor(float64(v)))
	if c < 0 {
		c = 0
	}
	if c >= n {
		c = n - 1
	}
	return c
}

func minf(a, b, c float32) float32 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func maxf(a, b, c float32) float32 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
