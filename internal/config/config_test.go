package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wwmodding/vxlkit/pkg/vxl"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Convert.Resolution != 48 {
		t.Errorf("resolution = %d, want 48", cfg.Convert.Resolution)
	}
	if cfg.Convert.VXLNormalsMode() != vxl.NormalsCoarse {
		t.Errorf("default normals mode = %v, want coarse", cfg.Convert.VXLNormalsMode())
	}
}

func TestLoadMergesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vxltool.yaml")
	src := `
logging:
  level: debug
convert:
  resolution: 64
  normals_mode: fine
  section_name: turret
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
	if cfg.Convert.Resolution != 64 {
		t.Errorf("resolution = %d", cfg.Convert.Resolution)
	}
	if cfg.Convert.VXLNormalsMode() != vxl.NormalsFine {
		t.Errorf("normals mode = %v", cfg.Convert.VXLNormalsMode())
	}
	// Unset fields keep their defaults.
	if cfg.Convert.Strategy != "raycast" {
		t.Errorf("strategy = %q, want raycast default", cfg.Convert.Strategy)
	}
	if cfg.Convert.ColorSource != "flat" {
		t.Errorf("color source = %q, want flat default", cfg.Convert.ColorSource)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vxltool.yaml")
	if err := os.WriteFile(path, []byte("convert:\n  resolution: 999\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load accepted resolution 999")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"resolution too low", func(c *Config) { c.Convert.Resolution = 0 }, "resolution"},
		{"resolution too high", func(c *Config) { c.Convert.Resolution = 256 }, "resolution"},
		{"empty section name", func(c *Config) { c.Convert.SectionName = "" }, "section name"},
		{"long section name", func(c *Config) { c.Convert.SectionName = strings.Repeat("x", 17) }, "section name"},
		{"non-ascii section name", func(c *Config) { c.Convert.SectionName = "tête" }, "ASCII"},
		{"bad normals mode", func(c *Config) { c.Convert.NormalsMode = "smooth" }, "normals mode"},
		{"bad color source", func(c *Config) { c.Convert.ColorSource = "vertex" }, "color source"},
		{"bad strategy", func(c *Config) { c.Convert.Strategy = "marching" }, "strategy"},
		{"zero scale", func(c *Config) { c.Convert.Scale = 0 }, "scale"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate accepted invalid config")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "vxltool.yaml")
	cfg := Default()
	cfg.Convert.Resolution = 96

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Convert.Resolution != 96 {
		t.Errorf("resolution = %d, want 96", loaded.Convert.Resolution)
	}
}
