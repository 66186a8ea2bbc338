package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wwmodding/vxlkit/pkg/hva"
	"github.com/wwmodding/vxlkit/pkg/mix"
	"github.com/wwmodding/vxlkit/pkg/vxl"
)

func cmdInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: vxltool info <file.vxl|file.hva|file.mix>")
	}
	path := fs.Arg(0)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".vxl":
		return infoVXL(path)
	case ".hva":
		return infoHVA(path)
	case ".mix":
		return infoMIX(path)
	}
	return fmt.Errorf("info: unsupported file type %q", filepath.Ext(path))
}

func infoVXL(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	report := vxl.Validate(data)
	for _, line := range report.Info {
		fmt.Println(line)
	}
	for _, line := range report.Warnings {
		fmt.Printf("warning: %s\n", line)
	}
	for _, line := range report.Issues {
		fmt.Printf("ISSUE: %s\n", line)
	}
	if !report.OK() {
		return fmt.Errorf("%s failed validation (%d issues)", path, len(report.Issues))
	}

	model, err := vxl.Parse(data)
	if err != nil {
		return err
	}
	fmt.Println()
	for i, sec := range model.Sections {
		fmt.Printf("section %d %q: %dx%dx%d, %d voxels, scale %g, normals %s\n",
			i, sec.Name,
			sec.Grid.DimX, sec.Grid.DimY, sec.Grid.DimZ,
			sec.Grid.Count(), sec.Scale, sec.NormalsMode)
	}
	return nil
}

func infoHVA(path string) error {
	anim, err := hva.ParseFile(path)
	if err != nil {
		return err
	}
	fmt.Printf("identifier: %q\n", anim.Identifier)
	fmt.Printf("frames:     %d\n", anim.FrameCount())
	fmt.Printf("sections:   %d\n", len(anim.Sections))
	for i, sec := range anim.Sections {
		fmt.Printf("  [%d] %q\n", i, sec.Name)
	}
	return nil
}

func infoMIX(path string) error {
	archive, err := mix.Open(path)
	if err != nil {
		return err
	}
	fmt.Printf("archive: %s\n", path)
	fmt.Printf("files:   %d\n", len(archive.Entries))
	for i, e := range archive.Entries {
		fmt.Printf("  [%2d] id 0x%08X  offset %8d  size %8d\n", i, e.ID, e.Offset, e.Size)
	}
	return nil
}
