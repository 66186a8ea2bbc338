package main

import (
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/wwmodding/vxlkit/internal/config"
	"github.com/wwmodding/vxlkit/internal/logger"
	"github.com/wwmodding/vxlkit/internal/voxelize"
	"github.com/wwmodding/vxlkit/pkg/hva"
	"github.com/wwmodding/vxlkit/pkg/math"
	"github.com/wwmodding/vxlkit/pkg/mesh"
	"github.com/wwmodding/vxlkit/pkg/vox"
	"github.com/wwmodding/vxlkit/pkg/vxl"
)

// flatColor is the palette index used when no color source is
// configured; on the default grayscale palette it reads as mid-gray.
const flatColor = 100

func cmdConvert(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to vxltool.yaml")
	res := fs.Int("res", 0, "Voxel resolution along the longest axis (1-255)")
	section := fs.String("section", "", "Section name (Body, turret, barrel)")
	normals := fs.String("normals", "", "Normals mode: coarse or fine")
	strategy := fs.String("strategy", "", "Fill strategy: raycast or raster")
	colorSource := fs.String("color", "", "Color source: flat, texture or paletteImport")
	texturePath := fs.String("texture", "", "Texture image for -color texture")
	workers := fs.Int("workers", 0, "Ray-cast worker count (0 = auto)")
	withHVA := fs.Bool("hva", true, "Write a one-frame companion .hva")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: vxltool convert <mesh> [out.vxl] [options]")
	}
	input := fs.Arg(0)
	output := strings.TrimSuffix(input, filepath.Ext(input)) + ".vxl"
	if fs.NArg() > 1 {
		output = fs.Arg(1)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	if *res > 0 {
		cfg.Convert.Resolution = *res
	}
	if *section != "" {
		cfg.Convert.SectionName = *section
	}
	if *normals != "" {
		cfg.Convert.NormalsMode = *normals
	}
	if *strategy != "" {
		cfg.Convert.Strategy = *strategy
	}
	if *colorSource != "" {
		cfg.Convert.ColorSource = *colorSource
	}
	if *workers > 0 {
		cfg.Convert.Workers = *workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.LogFile)
	log := logger.Log

	var (
		grid    *vxl.VoxelGrid
		palette vxl.Palette
	)
	if strings.EqualFold(filepath.Ext(input), ".vox") {
		grid, palette, err = convertVOX(input, &cfg.Convert, log)
	} else {
		grid, palette, err = convertMesh(input, &cfg.Convert, *texturePath, log)
	}
	if err != nil {
		return err
	}

	mode := cfg.Convert.VXLNormalsMode()
	vxl.RecalculateNormals(grid, mode)

	model := vxl.NewModel()
	model.Palette = palette
	model.Sections = append(model.Sections, vxl.Section{
		Name:        cfg.Convert.SectionName,
		Reserved1:   1,
		Grid:        grid,
		Scale:       cfg.Convert.Scale,
		Transform:   math.IdentityMat34(),
		MinBounds:   sectionMinBounds(grid, cfg.Convert.Scale),
		MaxBounds:   sectionMaxBounds(grid, cfg.Convert.Scale),
		NormalsMode: mode,
	})

	if err := vxl.EncodeFile(model, output); err != nil {
		return err
	}
	log.Info("wrote vxl",
		zap.String("path", output),
		zap.Int("filled", grid.Count()),
		zap.String("section", cfg.Convert.SectionName))

	if *withHVA {
		hvaPath := strings.TrimSuffix(output, filepath.Ext(output)) + ".hva"
		anim := hva.NewSingleFrame(output, cfg.Convert.SectionName)
		if err := hva.EncodeFile(anim, hvaPath); err != nil {
			return err
		}
		log.Info("wrote hva", zap.String("path", hvaPath))
	}
	return nil
}

func convertMesh(input string, cv *config.ConvertConfig, texturePath string, log *zap.Logger) (*vxl.VoxelGrid, vxl.Palette, error) {
	m, err := mesh.Load(input)
	if err != nil {
		return nil, vxl.Palette{}, err
	}
	log.Info("loaded mesh",
		zap.String("path", input),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("triangles", len(m.Faces)))

	result, err := voxelize.Voxelize(m, voxelize.Options{
		Resolution: cv.Resolution,
		Strategy:   voxelize.Strategy(cv.Strategy),
		Workers:    cv.Workers,
		Log:        log,
	})
	if err != nil {
		return nil, vxl.Palette{}, err
	}

	switch cv.ColorSource {
	case "flat":
		fillFlat(result.Grid)
		return result.Grid, vxl.DefaultPalette(vxl.DefaultRemap), nil
	case "texture":
		if texturePath == "" {
			return nil, vxl.Palette{}, fmt.Errorf("convert: -color texture requires -texture <image>")
		}
		tex, err := voxelize.LoadTexture(texturePath)
		if err != nil {
			return nil, vxl.Palette{}, err
		}
		mapper := vxl.NewColorMapper(vxl.DefaultRemap)
		sampled := voxelize.Colorize(result, m, tex, mapper)
		if mapper.Overflowed > 0 {
			log.Warn("palette overflow, colors substituted by nearest entry",
				zap.Int("substituted", mapper.Overflowed))
		}
		log.Info("sampled texture colors", zap.Int("cells", sampled))
		return result.Grid, mapper.Palette(), nil
	case "paletteImport":
		return nil, vxl.Palette{}, fmt.Errorf("convert: paletteImport needs a .vox input")
	}
	return nil, vxl.Palette{}, fmt.Errorf("convert: unknown color source %q", cv.ColorSource)
}

func convertVOX(input string, cv *config.ConvertConfig, log *zap.Logger) (*vxl.VoxelGrid, vxl.Palette, error) {
	f, err := vox.ParseFile(input)
	if err != nil {
		return nil, vxl.Palette{}, err
	}
	log.Info("loaded vox",
		zap.String("path", input),
		zap.Int("voxels", len(f.Voxels)),
		zap.String("dims", fmt.Sprintf("%dx%dx%d", f.DimX, f.DimY, f.DimZ)))

	grid, err := vxl.NewVoxelGrid(f.DimX, f.DimY, f.DimZ)
	if err != nil {
		return nil, vxl.Palette{}, err
	}

	if cv.ColorSource == "paletteImport" {
		mapper := vxl.NewColorMapper(vxl.DefaultRemap)
		for _, v := range f.Voxels {
			if !grid.InBounds(int(v.X), int(v.Y), int(v.Z)) {
				continue
			}
			c := f.Color(v.Color)
			idx := mapper.Map(vxl.RGB{R: c.R, G: c.G, B: c.B})
			grid.Set(int(v.X), int(v.Y), int(v.Z), vxl.Voxel{Color: idx})
		}
		if mapper.Overflowed > 0 {
			log.Warn("palette overflow, colors substituted by nearest entry",
				zap.Int("substituted", mapper.Overflowed))
		}
		return grid, mapper.Palette(), nil
	}

	// Keep the original palette indices, shifting any that land in the
	// team-color range out of it.
	for _, v := range f.Voxels {
		if !grid.InBounds(int(v.X), int(v.Y), int(v.Z)) || v.Color == 0 {
			continue
		}
		idx := vxl.ShiftRemapIndex(v.Color, vxl.DefaultRemap)
		grid.Set(int(v.X), int(v.Y), int(v.Z), vxl.Voxel{Color: idx})
	}
	palette := vxl.DefaultPalette(vxl.DefaultRemap)
	for i := 1; i < 256; i++ {
		if vxl.DefaultRemap.Contains(uint8(i)) {
			continue
		}
		c := f.Color(uint8(i))
		palette[i] = vxl.RGB{R: c.R, G: c.G, B: c.B}
	}
	return grid, palette, nil
}

func fillFlat(g *vxl.VoxelGrid) {
	for z := 0; z < g.DimZ; z++ {
		for y := 0; y < g.DimY; y++ {
			for x := 0; x < g.DimX; x++ {
				if v, ok := g.At(x, y, z); ok {
					v.Color = flatColor
					g.Set(x, y, z, v)
				}
			}
		}
	}
}

// Section bounds follow the exporter convention: the model is centered
// on X/Y and grounded on Z, in world units of one voxel per scale.
func sectionMinBounds(g *vxl.VoxelGrid, scale float32) math.Vec3 {
	return math.Vec3{
		X: -(float32(g.DimX) / 2) / scale,
		Y: -(float32(g.DimY) / 2) / scale,
		Z: 0,
	}
}

func sectionMaxBounds(g *vxl.VoxelGrid, scale float32) math.Vec3 {
	return math.Vec3{
		X: (float32(g.DimX) / 2) / scale,
		Y: (float32(g.DimY) / 2) / scale,
		Z: float32(g.DimZ) / scale,
	}
}
