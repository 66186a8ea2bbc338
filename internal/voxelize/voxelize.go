// Package voxelize converts triangle meshes into dense voxel occupancy
// grids. Two strategies are available: ray-cast containment, which
// probes each cell center against the surface, and rasterize-then-fill,
// which stamps triangle projections and closes interiors with a parity
// scanline. Both fill the same Result contract.
package voxelize

import (
	"errors"
	"fmt"
	gomath "math"

	"go.uber.org/zap"

	"github.com/wwmodding/vxlkit/pkg/math"
	"github.com/wwmodding/vxlkit/pkg/mesh"
	"github.com/wwmodding/vxlkit/pkg/vxl"
)

var (
	ErrEmptyGeometry = errors.New("voxelize: mesh has no usable geometry")
	ErrEmptyResult   = errors.New("voxelize: no cells were filled")
)

// Strategy selects the fill algorithm.
type Strategy string

const (
	StrategyRaycast Strategy = "raycast"
	StrategyRaster  Strategy = "raster"
)

// Options controls a voxelization run. Resolution is the desired cell
// count along the longest bounding-box axis, 1..255.
type Options struct {
	Resolution int
	Strategy   Strategy
	Workers    int // ray-cast fan-out; 0 means one worker per slab up to 8
	Log        *zap.Logger
}

// Result is an occupancy grid plus the mesh-space box it discretizes.
// Source records, per cell, the index of the triangle that claimed it,
// or -1 for cells filled indirectly (interior fill) or never filled.
type Result struct {
	Grid      *vxl.VoxelGrid
	Min, Max  math.Vec3
	VoxelSize float32
	Source    []int32
}

// SourceAt returns the claiming triangle for cell (x, y, z), or -1.
func (r *Result) SourceAt(x, y, z int) int32 {
	return r.Source[(z*r.Grid.DimY+y)*r.Grid.DimX+x]
}

// Voxelize runs the selected strategy over the mesh. The mesh is only
// read. An unset strategy defaults to ray-cast.
func Voxelize(m *mesh.Mesh, opts Options) (*Result, error) {
	if opts.Resolution < 1 || opts.Resolution > vxl.MaxDimension {
		return nil, fmt.Errorf("voxelize: resolution %d out of range [1,%d]", opts.Resolution, vxl.MaxDimension)
	}
	if len(m.Vertices) == 0 || len(m.Faces) == 0 {
		return nil, ErrEmptyGeometry
	}
	min, max := m.Bounds()
	if max.Sub(min).MaxComponent() == 0 {
		return nil, fmt.Errorf("%w: zero bounding-box extent", ErrEmptyGeometry)
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	var (
		res *Result
		err error
	)
	switch opts.Strategy {
	case StrategyRaster:
		res, err = rasterize(m, opts.Resolution, log)
	case StrategyRaycast, "":
		res, err = raycast(m, opts.Resolution, opts.Workers, log)
	default:
		return nil, fmt.Errorf("voxelize: unknown strategy %q", opts.Strategy)
	}
	if err != nil {
		return nil, err
	}
	if res.Grid.Count() == 0 {
		return nil, ErrEmptyResult
	}
	log.Info("voxelized mesh",
		zap.Int("triangles", len(m.Faces)),
		zap.Int("dimX", res.Grid.DimX),
		zap.Int("dimY", res.Grid.DimY),
		zap.Int("dimZ", res.Grid.DimZ),
		zap.Int("filled", res.Grid.Count()))
	return res, nil
}

func ceilDim(extent, voxelSize float32) int {
	d := int(gomath.Ceil(float64(extent / voxelSize)))
	if d < 1 {
		d = 1
	}
	if d > vxl.MaxDimension {
		d = vxl.MaxDimension
	}
	return d
}
