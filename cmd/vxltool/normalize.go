package main

import (
	"flag"
	"fmt"

	"github.com/wwmodding/vxlkit/pkg/vxl"
)

// cmdNormalize recomputes every voxel's lighting normal from the grid's
// occupancy and re-encodes the model. Useful after hand-editing voxels
// or importing from a source with junk normal bytes.
func cmdNormalize(args []string) error {
	fs := flag.NewFlagSet("normalize", flag.ExitOnError)
	modeName := fs.String("mode", "fine", "Normals mode: coarse or fine")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: vxltool normalize <in.vxl> [out.vxl] [-mode coarse|fine]")
	}
	input := fs.Arg(0)
	output := input
	if fs.NArg() > 1 {
		output = fs.Arg(1)
	}

	var mode vxl.NormalsMode
	switch *modeName {
	case "coarse":
		mode = vxl.NormalsCoarse
	case "fine":
		mode = vxl.NormalsFine
	default:
		return fmt.Errorf("normalize: unknown mode %q", *modeName)
	}

	model, err := vxl.ParseFile(input)
	if err != nil {
		return err
	}
	vxl.AutoNormalize(model, mode)
	if err := vxl.EncodeFile(model, output); err != nil {
		return err
	}

	total := 0
	for _, sec := range model.Sections {
		total += sec.Grid.Count()
	}
	fmt.Printf("normalized %d voxels in %d section(s), mode %s -> %s\n",
		total, len(model.Sections), mode, output)
	return nil
}
