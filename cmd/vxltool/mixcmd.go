package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wwmodding/vxlkit/pkg/mix"
)

func cmdPack(args []string) error {
	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 2 {
		return fmt.Errorf("usage: vxltool pack <out.mix> <files...>")
	}
	output := fs.Arg(0)

	var b mix.Builder
	for _, path := range fs.Args()[1:] {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		name := filepath.Base(path)
		if err := b.Add(name, data); err != nil {
			return err
		}
		fmt.Printf("  %-24s id 0x%08X  %8d bytes\n", name, mix.Hash(name), len(data))
	}

	if err := b.EncodeFile(output); err != nil {
		return err
	}
	st, err := os.Stat(output)
	if err != nil {
		return err
	}
	fmt.Printf("created %s (%d bytes, %d files)\n", output, st.Size(), fs.NArg()-1)
	return nil
}

func cmdUnpack(args []string) error {
	fs := flag.NewFlagSet("unpack", flag.ExitOnError)
	namesPath := fs.String("names", "", "File with one filename per line, used to label entries")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: vxltool unpack <in.mix> [outdir] [-names list.txt]")
	}
	input := fs.Arg(0)
	outDir := "."
	if fs.NArg() > 1 {
		outDir = fs.Arg(1)
	}

	archive, err := mix.Open(input)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	// The archive stores only name hashes. A name list lets entries
	// come back out under their original filenames.
	names := make(map[uint32]string)
	if *namesPath != "" {
		if err := loadNameList(*namesPath, names); err != nil {
			return err
		}
	}

	for _, e := range archive.Entries {
		data, err := archive.ReadID(e.ID)
		if err != nil {
			return err
		}
		name, ok := names[e.ID]
		if !ok {
			name = fmt.Sprintf("%08X.bin", e.ID)
		}
		outPath := filepath.Join(outDir, name)
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("extracted %s (%d bytes)\n", outPath, len(data))
	}
	return nil
}

func loadNameList(path string, names map[uint32]string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		name := strings.TrimSpace(sc.Text())
		if name == "" || strings.HasPrefix(name, "#") {
			continue
		}
		names[mix.Hash(name)] = name
	}
	return sc.Err()
}
