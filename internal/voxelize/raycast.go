package voxelize

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/wwmodding/vxlkit/pkg/math"
	"github.com/wwmodding/vxlkit/pkg/mesh"
	"github.com/wwmodding/vxlkit/pkg/vxl"
)

var axisDirections = [6]math.Vec3{
	{X: 1}, {X: -1},
	{Y: 1}, {Y: -1},
	{Z: 1}, {Z: -1},
}

// raycast classifies each cell center by probing the six axis
// directions; a cell is occupied when any probe hits a triangle within
// two cell sizes. Candidate triangles come from a uniform grid keyed
// by cell, so each probe only tests nearby geometry.
func raycast(m *mesh.Mesh, resolution, workers int, log *zap.Logger) (*Result, error) {
	min, max := m.Bounds()
	size := max.Sub(min)
	voxelSize := size.MaxComponent() / float32(resolution)

	dimX := ceilDim(size.X, voxelSize)
	dimY := ceilDim(size.Y, voxelSize)
	dimZ := ceilDim(size.Z, voxelSize)
	grid, err := vxl.NewVoxelGrid(dimX, dimY, dimZ)
	if err != nil {
		return nil, fmt.Errorf("voxelize: %w", err)
	}

	tris := make([][3]math.Vec3, len(m.Faces))
	for i := range m.Faces {
		tris[i] = m.Triangle(i)
	}
	buckets := bucketTriangles(tris, min, voxelSize, dimX, dimY, dimZ)

	if workers <= 0 {
		workers = 8
	}
	if workers > dimX {
		workers = dimX
	}
	log.Debug("ray-cast pass",
		zap.Int("workers", workers),
		zap.Float64("voxelSize", float64(voxelSize)))

	tolerance := voxelSize * 2
	source := make([]int32, dimX*dimY*dimZ)
	for i := range source {
		source[i] = -1
	}

	// Slabs write disjoint (x, *, *) cells, so no locking is needed.
	slabs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for x := range slabs {
				for y := 0; y < dimY; y++ {
					for z := 0; z < dimZ; z++ {
						center := math.Vec3{
							X: min.X + (float32(x)+0.5)*voxelSize,
							Y: min.Y + (float32(y)+0.5)*voxelSize,
							Z: min.Z + (float32(z)+0.5)*voxelSize,
						}
						hit, tri := probe(center, tolerance, tris, buckets.at(x, y, z))
						if hit {
							grid.Set(x, y, z, vxl.Voxel{})
							source[(z*dimY+y)*dimX+x] = tri
						}
					}
				}
			}
		}()
	}
	for x := 0; x < dimX; x++ {
		slabs <- x
	}
	close(slabs)
	wg.Wait()

	return &Result{
		Grid:      grid,
		Min:       min,
		Max:       min.Add(math.Vec3{X: float32(dimX), Y: float32(dimY), Z: float32(dimZ)}.Scale(voxelSize)),
		VoxelSize: voxelSize,
		Source:    source,
	}, nil
}

func probe(origin math.Vec3, tolerance float32, tris [][3]math.Vec3, candidates []int32) (bool, int32) {
	for _, dir := range axisDirections {
		for _, ti := range candidates {
			t, ok := rayTriangle(origin, dir, tris[ti])
			if ok && t < tolerance {
				return true, ti
			}
		}
	}
	return false, -1
}

// rayTriangle is the Moller-Trumbore intersection test. It returns the
// distance along dir and whether the ray hits the triangle at t >= 0.
func rayTriangle(origin, dir math.Vec3, tri [3]math.Vec3) (float32, bool) {
	const epsilon = 1e-7

	edge1 := tri[1].Sub(tri[0])
	edge2 := tri[2].Sub(tri[0])
	h := dir.Cross(edge2)
	a := edge1.Dot(h)
	if a > -epsilon && a < epsilon {
		return 0, false
	}
	f := 1 / a
	s := origin.Sub(tri[0])
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(edge1)
	v := f * dir.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := f * edge2.Dot(q)
	if t < 0 {
		return 0, false
	}
	return t, true
}

// triBuckets is a uniform grid of triangle indices. Each triangle is
// registered in every cell its bounding box overlaps, padded by the
// probe tolerance, so a cell's bucket holds every triangle any of its
// probes could reach.
type triBuckets struct {
	dimX, dimY, dimZ int
	cells            [][]int32
}

func bucketTriangles(tris [][3]math.Vec3, origin math.Vec3, voxelSize float32, dimX, dimY, dimZ int) *triBuckets {
	b := &triBuckets{dimX: dimX, dimY: dimY, dimZ: dimZ, cells: make([][]int32, dimX*dimY*dimZ)}
	pad := voxelSize * 2
	for ti, tri := range tris {
		lo := tri[0].Min(tri[1]).Min(tri[2]).Sub(math.Vec3{X: pad, Y: pad, Z: pad})
		hi := tri[0].Max(tri[1]).Max(tri[2]).Add(math.Vec3{X: pad, Y: pad, Z: pad})

		x0, y0, z0 := b.clampCell(lo, origin, voxelSize)
		x1, y1, z1 := b.clampCell(hi, origin, voxelSize)
		for x := x0; x <= x1; x++ {
			for y := y0; y <= y1; y++ {
				for z := z0; z <= z1; z++ {
					idx := (z*dimY+y)*dimX + x
					b.cells[idx] = append(b.cells[idx], int32(ti))
				}
			}
		}
	}
	return b
}

func (b *triBuckets) clampCell(p, origin math.Vec3, voxelSize float32) (int, int, int) {
	clamp := func(v float32, n int) int {
		c := int(v)
		if v < 0 {
			c = 0
		}
		if c >= n {
			c = n - 1
		}
		return c
	}
	rel := p.Sub(origin).Scale(1 / voxelSize)
	return clamp(rel.X, b.dimX), clamp(rel.Y, b.dimY), clamp(rel.Z, b.dimZ)
}

func (b *triBuckets) at(x, y, z int) []int32 {
	return b.cells[(z*b.dimY+y)*b.dimX+x]
}
