package main

import (
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/wwmodding/vxlkit/pkg/hva"
	"github.com/wwmodding/vxlkit/pkg/vxl"
)

// cmdFixNames makes a VXL/HVA pair's section names match. The engine
// binds animation frames to limbs by name; a mismatch loads fine but
// silently freezes the limb.
func cmdFixNames(args []string) error {
	fs := flag.NewFlagSet("fixnames", flag.ExitOnError)
	target := fs.String("name", "", "Force this section name on both files (first section)")
	check := fs.Bool("check", false, "Report mismatches without writing")
	fs.Parse(args)

	if fs.NArg() < 2 {
		return fmt.Errorf("usage: vxltool fixnames <file.vxl> <file.hva> [-name body] [-check]")
	}
	vxlPath, hvaPath := fs.Arg(0), fs.Arg(1)

	model, err := vxl.ParseFile(vxlPath)
	if err != nil {
		return err
	}
	anim, err := hva.ParseFile(hvaPath)
	if err != nil {
		return err
	}
	if len(model.Sections) == 0 {
		return fmt.Errorf("fixnames: %s has no sections", vxlPath)
	}

	mismatches := hva.CheckNames(anim, model)
	if len(mismatches) == 0 && *target == "" {
		fmt.Println("section names already match")
		return nil
	}
	for _, m := range mismatches {
		fmt.Println("mismatch:", m)
	}
	if *check {
		if len(mismatches) > 0 {
			return fmt.Errorf("%d section name mismatch(es)", len(mismatches))
		}
		return nil
	}

	if *target == "" && len(model.Sections) > 0 && len(anim.Sections) > 0 {
		// Single-section pairs get the canonical name when neither
		// side already carries one.
		if len(model.Sections) == 1 {
			*target = canonicalName(model.Sections[0].Name, anim.Sections[0].Name, vxlPath)
		}
	}

	if *target != "" {
		if len(*target) > 16 {
			return fmt.Errorf("fixnames: name %q longer than 16 bytes", *target)
		}
		model.Sections[0].Name = *target
		anim.Sections[0].Name = *target
		fmt.Printf("set section name to %q\n", *target)
	} else {
		changed := hva.RepairNames(anim, model)
		fmt.Printf("renamed %d hva section(s) to match the vxl\n", changed)
	}

	if err := vxl.EncodeFile(model, vxlPath); err != nil {
		return err
	}
	return hva.EncodeFile(anim, hvaPath)
}

// canonicalName picks the name the pair should carry: an already
// canonical name wins, otherwise the filename hints at the limb kind.
func canonicalName(vxlName, hvaName, path string) string {
	for _, known := range []string{"body", "turret", "barrel"} {
		if strings.EqualFold(vxlName, known) {
			return vxlName
		}
	}
	for _, known := range []string{"body", "turret", "barrel"} {
		if strings.EqualFold(hvaName, known) {
			return hvaName
		}
	}
	base := strings.ToUpper(filepath.Base(path))
	switch {
	case strings.Contains(base, "TUR"):
		return "turret"
	case strings.Contains(base, "BARL"), strings.Contains(base, "BAR"):
		return "barrel"
	}
	return "body"
}
