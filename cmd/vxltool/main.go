// vxltool is a CLI utility for working with Westwood voxel models:
// converting meshes to VXL, inspecting and repairing VXL/HVA pairs,
// and packing MIX archives.
package main

import (
	"fmt"
	"os"

	"github.com/wwmodding/vxlkit/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "convert":
		err = cmdConvert(args)
	case "info":
		err = cmdInfo(args)
	case "normalize":
		err = cmdNormalize(args)
	case "fixnames":
		err = cmdFixNames(args)
	case "pack":
		err = cmdPack(args)
	case "unpack":
		err = cmdUnpack(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`vxltool - Westwood voxel model utility

Usage:
  vxltool <command> [options]

Commands:
  convert <mesh> [out.vxl]          Voxelize a mesh (.obj/.obj.gz/.gltf/.glb/.vox) to VXL
  info <file>                       Inspect a .vxl, .hva or .mix file
  normalize <in.vxl> [out.vxl]      Recalculate lighting normals
  fixnames <file.vxl> <file.hva>    Repair VXL/HVA section name mismatches
  pack <out.mix> <files...>         Pack files into a MIX archive
  unpack <in.mix> [outdir]          Extract every file from a MIX archive

Examples:
  vxltool convert tank.obj tank.vxl -res 64 -normals fine
  vxltool info tank.vxl
  vxltool fixnames tank.vxl tank.hva
  vxltool pack expandmo02.mix tank.vxl tank.hva`)
}
