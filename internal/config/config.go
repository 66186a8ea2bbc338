// Package config handles tool configuration loading and validation.
package config

import (
	"fmt"

	"github.com/wwmodding/vxlkit/internal/voxelize"
	"github.com/wwmodding/vxlkit/pkg/vxl"
)

// Config holds all vxltool settings.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Convert ConvertConfig `yaml:"convert"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// ConvertConfig holds the mesh conversion options.
type ConvertConfig struct {
	Resolution  int     `yaml:"resolution"`   // cells along the longest axis, 1..255
	NormalsMode string  `yaml:"normals_mode"` // coarse | fine
	SectionName string  `yaml:"section_name"` // <=16 ASCII bytes, must match the HVA
	ColorSource string  `yaml:"color_source"` // flat | texture | paletteImport
	Strategy    string  `yaml:"strategy"`     // raycast | raster
	Scale       float32 `yaml:"scale"`        // world units per voxel
	Workers     int     `yaml:"workers"`      // ray-cast fan-out, 0 = auto
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level: "info",
		},
		Convert: ConvertConfig{
			Resolution:  48,
			NormalsMode: "coarse",
			SectionName: "Body",
			ColorSource: "flat",
			Strategy:    string(voxelize.StrategyRaycast),
			Scale:       1.0 / 12.0,
		},
	}
}

// Validate checks the conversion options against the format limits.
func (c *Config) Validate() error {
	cv := c.Convert
	if cv.Resolution < 1 || cv.Resolution > vxl.MaxDimension {
		return fmt.Errorf("config: resolution %d out of range [1,%d]", cv.Resolution, vxl.MaxDimension)
	}
	if len(cv.SectionName) == 0 || len(cv.SectionName) > 16 {
		return fmt.Errorf("config: section name %q must be 1-16 bytes", cv.SectionName)
	}
	for _, r := range cv.SectionName {
		if r > 127 {
			return fmt.Errorf("config: section name %q is not ASCII", cv.SectionName)
		}
	}
	switch cv.NormalsMode {
	case "coarse", "fine":
	default:
		return fmt.Errorf("config: unknown normals mode %q", cv.NormalsMode)
	}
	switch cv.ColorSource {
	case "flat", "texture", "paletteImport":
	default:
		return fmt.Errorf("config: unknown color source %q", cv.ColorSource)
	}
	switch voxelize.Strategy(cv.Strategy) {
	case voxelize.StrategyRaycast, voxelize.StrategyRaster:
	default:
		return fmt.Errorf("config: unknown strategy %q", cv.Strategy)
	}
	if cv.Scale <= 0 {
		return fmt.Errorf("config: scale %v must be positive", cv.Scale)
	}
	return nil
}

// VXLNormalsMode maps the configured name to the format's mode value.
func (c *ConvertConfig) VXLNormalsMode() vxl.NormalsMode {
	if c.NormalsMode == "fine" {
		return vxl.NormalsFine
	}
	return vxl.NormalsCoarse
}
