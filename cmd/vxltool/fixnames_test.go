package main

import (
	"path/filepath"
	"testing"

	"github.com/wwmodding/vxlkit/pkg/hva"
	"github.com/wwmodding/vxlkit/pkg/vxl"
)

// A VXL with zero sections is structurally valid; fixnames must report
// it instead of indexing into an empty section list.
func TestFixNamesZeroSectionModel(t *testing.T) {
	dir := t.TempDir()
	vxlPath := filepath.Join(dir, "empty.vxl")
	if err := vxl.EncodeFile(vxl.NewModel(), vxlPath); err != nil {
		t.Fatalf("EncodeFile(vxl): %v", err)
	}
	hvaPath := filepath.Join(dir, "empty.hva")
	if err := hva.EncodeFile(hva.NewSingleFrame("empty.vxl", "body"), hvaPath); err != nil {
		t.Fatalf("EncodeFile(hva): %v", err)
	}

	if err := cmdFixNames([]string{"-name", "body", vxlPath, hvaPath}); err == nil {
		t.Error("fixnames accepted a model with no sections")
	}
	if err := cmdFixNames([]string{vxlPath, hvaPath}); err == nil {
		t.Error("fixnames repaired against a model with no sections")
	}
}
