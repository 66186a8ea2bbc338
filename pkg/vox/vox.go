// Package vox parses MagicaVoxel .vox files. Only the chunks a voxel
// model conversion needs are decoded (SIZE, XYZI, RGBA); scene-graph
// and material chunks are skipped.
package vox

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

var (
	ErrBadMagic      = errors.New("vox: invalid magic")
	ErrTruncatedData = errors.New("vox: truncated data")
	ErrNoGeometry    = errors.New("vox: no SIZE/XYZI chunks")
)

// RGBA is one palette entry.
type RGBA struct {
	R, G, B, A uint8
}

// Voxel is one filled cell. Color is the 1-based palette index
// MagicaVoxel uses; 0 never appears in XYZI data.
type Voxel struct {
	X, Y, Z uint8
	Color   uint8
}

// File is a decoded .vox model: the first SIZE/XYZI pair plus the
// palette, grayscale if the file carries no RGBA chunk.
type File struct {
	Version          int
	DimX, DimY, DimZ int
	Voxels           []Voxel
	Palette          [256]RGBA
}

// Color resolves a voxel's palette index to its RGBA. MagicaVoxel
// stores palette entry i at chunk position i-1.
func (f *File) Color(index uint8) RGBA {
	if index == 0 {
		return RGBA{}
	}
	return f.Palette[index-1]
}

// Parse decodes a complete .vox file held in memory.
func Parse(data []byte) (*File, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("%w: %d bytes for header", ErrTruncatedData, len(data))
	}
	if string(data[0:4]) != "VOX " {
		return nil, fmt.Errorf("%w: %q", ErrBadMagic, string(data[0:4]))
	}
	f := &File{Version: int(binary.LittleEndian.Uint32(data[4:]))}
	for i := range f.Palette {
		f.Palette[i] = RGBA{uint8(i), uint8(i), uint8(i), 255}
	}

	if len(data) < 20 || string(data[8:12]) != "MAIN" {
		return nil, fmt.Errorf("%w: missing MAIN chunk", ErrBadMagic)
	}
	childrenSize := int(binary.LittleEndian.Uint32(data[16:]))
	pos := 20
	end := pos + childrenSize
	if end > len(data) {
		return nil, fmt.Errorf("%w: MAIN declares %d child bytes", ErrTruncatedData, childrenSize)
	}

	var sawSize, sawVoxels bool
	for pos+12 <= end {
		id := string(data[pos : pos+4])
		contentSize := int(binary.LittleEndian.Uint32(data[pos+4:]))
		childSize := int(binary.LittleEndian.Uint32(data[pos+8:]))
		pos += 12
		if pos+contentSize+childSize > end {
			return nil, fmt.Errorf("%w: chunk %q overruns file", ErrTruncatedData, id)
		}
		content := data[pos : pos+contentSize]

		switch id {
		case "SIZE":
			if contentSize < 12 {
				return nil, fmt.Errorf("%w: SIZE chunk is %d bytes", ErrTruncatedData, contentSize)
			}
			// Only the first model of a multi-model file is used.
			if !sawSize {
				f.DimX = int(binary.LittleEndian.Uint32(content[0:]))
				f.DimY = int(binary.LittleEndian.Uint32(content[4:]))
				f.DimZ = int(binary.LittleEndian.Uint32(content[8:]))
				sawSize = true
			}
		case "XYZI":
			if contentSize < 4 {
				return nil, fmt.Errorf("%w: XYZI chunk is %d bytes", ErrTruncatedData, contentSize)
			}
			count := int(binary.LittleEndian.Uint32(content[0:]))
			if 4+count*4 > contentSize {
				return nil, fmt.Errorf("%w: XYZI declares %d voxels", ErrTruncatedData, count)
			}
			if !sawVoxels {
				f.Voxels = make([]Voxel, count)
				for i := 0; i < count; i++ {
					rec := content[4+i*4:]
					f.Voxels[i] = Voxel{X: rec[0], Y: rec[1], Z: rec[2], Color: rec[3]}
				}
				sawVoxels = true
			}
		case "RGBA":
			if contentSize < 1024 {
				return nil, fmt.Errorf("%w: RGBA chunk is %d bytes", ErrTruncatedData, contentSize)
			}
			for i := 0; i < 256; i++ {
				f.Palette[i] = RGBA{content[i*4], content[i*4+1], content[i*4+2], content[i*4+3]}
			}
		}
		pos += contentSize + childSize
	}

	if !sawSize || !sawVoxels {
		return nil, ErrNoGeometry
	}
	return f, nil
}

// ParseFile decodes the .vox file at path.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vox: %w", err)
	}
	return Parse(data)
}
