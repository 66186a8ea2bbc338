// Package vxl provides the codec for the "Voxel Animation" model format
// used by the Westwood game engine: column/span run-length voxel encoding,
// quantized lighting normals, and the shared 256-color palette.
package vxl

import "fmt"

// MaxDimension is the engine-format ceiling for a grid axis. Each extent is
// stored as a single byte in the section tailer.
const MaxDimension = 255

// Voxel is one occupied cell: a palette index and a normal-table index.
type Voxel struct {
	Color  uint8
	Normal uint8
}

// VoxelGrid is a dense 3D occupancy grid. Cells are addressed by (x, y, z)
// with each axis extent in [1, 255]. A cell is either empty or holds a Voxel.
type VoxelGrid struct {
	DimX, DimY, DimZ int

	cells  []Voxel
	filled []bool
}

// NewVoxelGrid allocates an empty grid. Extents outside [1, 255] fail with
// ErrDimensionOverflow.
func NewVoxelGrid(dimX, dimY, dimZ int) (*VoxelGrid, error) {
	for _, d := range [3]int{dimX, dimY, dimZ} {
		if d < 1 || d > MaxDimension {
			return nil, fmt.Errorf("grid extent %d outside [1, %d]: %w", d, MaxDimension, ErrDimensionOverflow)
		}
	}
	n := dimX * dimY * dimZ
	return &VoxelGrid{
		DimX:   dimX,
		DimY:   dimY,
		DimZ:   dimZ,
		cells:  make([]Voxel, n),
		filled: make([]bool, n),
	}, nil
}

func (g *VoxelGrid) index(x, y, z int) int {
	return (z*g.DimY+y)*g.DimX + x
}

// InBounds reports whether (x, y, z) addresses a cell of the grid.
func (g *VoxelGrid) InBounds(x, y, z int) bool {
	return x >= 0 && x < g.DimX && y >= 0 && y < g.DimY && z >= 0 && z < g.DimZ
}

// Filled reports whether the cell is occupied. Out-of-bounds cells read as
// empty, which lets neighbor checks treat the grid boundary as exposed.
func (g *VoxelGrid) Filled(x, y, z int) bool {
	if !g.InBounds(x, y, z) {
		return false
	}
	return g.filled[g.index(x, y, z)]
}

// At returns the voxel at (x, y, z) and whether the cell is occupied.
func (g *VoxelGrid) At(x, y, z int) (Voxel, bool) {
	if !g.InBounds(x, y, z) {
		return Voxel{}, false
	}
	i := g.index(x, y, z)
	return g.cells[i], g.filled[i]
}

// Set marks the cell occupied with the given voxel.
func (g *VoxelGrid) Set(x, y, z int, v Voxel) {
	i := g.index(x, y, z)
	g.cells[i] = v
	g.filled[i] = true
}

// Clear marks the cell empty.
func (g *VoxelGrid) Clear(x, y, z int) {
	i := g.index(x, y, z)
	g.cells[i] = Voxel{}
	g.filled[i] = false
}

// Count returns the number of occupied cells.
func (g *VoxelGrid) Count() int {
	n := 0
	for _, f := range g.filled {
		if f {
			n++
		}
	}
	return n
}

// ColumnFilled reports whether any cell of column (x, y) is occupied.
func (g *VoxelGrid) ColumnFilled(x, y int) bool {
	for z := 0; z < g.DimZ; z++ {
		if g.filled[g.index(x, y, z)] {
			return true
		}
	}
	return false
}

// Equal reports cell-for-cell equality, including color and normal bytes.
func (g *VoxelGrid) Equal(other *VoxelGrid) bool {
	if other == nil || g.DimX != other.DimX || g.DimY != other.DimY || g.DimZ != other.DimZ {
		return false
	}
	for i := range g.filled {
		if g.filled[i] != other.filled[i] {
			return false
		}
		if g.filled[i] && g.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}
