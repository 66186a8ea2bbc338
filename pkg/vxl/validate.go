package vxl

import (
	"encoding/binary"
	"fmt"
)

// Report collects the findings of a structural validation pass.
// Issues are format violations the engine will reject; warnings are
// suspicious but loadable; info lines describe what was found.
type Report struct {
	Issues   []string
	Warnings []string
	Info     []string
}

// OK reports whether validation found no issues.
func (r *Report) OK() bool {
	return len(r.Issues) == 0
}

func (r *Report) issue(format string, args ...any) {
	r.Issues = append(r.Issues, fmt.Sprintf(format, args...))
}

func (r *Report) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Report) note(format string, args ...any) {
	r.Info = append(r.Info, fmt.Sprintf(format, args...))
}

// Validate inspects raw VXL bytes without requiring a full decode to
// succeed, so it can describe exactly where a broken file goes wrong.
func Validate(data []byte) *Report {
	r := &Report{}
	r.note("file size: %d bytes", len(data))

	if len(data) < headerSize {
		r.issue("file too small for header (%d bytes)", len(data))
		return r
	}
	if string(data[0:15]) != vxlMagic || data[15] != 0 {
		r.issue("invalid magic %q", string(data[0:16]))
		return r
	}
	r.note("magic: valid 'Voxel Animation' header")

	limbCount := binary.LittleEndian.Uint32(data[20:])
	limbCount2 := binary.LittleEndian.Uint32(data[24:])
	bodySize := binary.LittleEndian.Uint32(data[28:])
	r.note("sections: %d, body size: %d bytes", limbCount, bodySize)

	if limbCount == 0 {
		r.issue("section count is 0")
	}
	if limbCount != limbCount2 {
		r.issue("section count mismatch: %d vs %d", limbCount, limbCount2)
	}
	if limbCount > 10 {
		r.warn("unusual section count (%d); typical models have 1-3", limbCount)
	}

	if len(data) < headerSize+paletteSize {
		r.issue("file too small for palette")
		return r
	}
	allZero := true
	for _, b := range data[headerSize : headerSize+paletteSize] {
		if b != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		r.warn("palette is all zeros")
	}

	n := int(limbCount)
	headsStart := headerSize + paletteSize
	bodyStart := headsStart + n*sectionHeadSize
	tailStart := bodyStart + int(bodySize)
	expected := tailStart + n*sectionTailSize
	r.note("body starts at %d, tailers at %d, expected file size %d", bodyStart, tailStart, expected)

	if expected > len(data) {
		r.issue("file too small: %d bytes, need %d", len(data), expected)
		return r
	}
	if expected != len(data) {
		r.warn("file size mismatch: %d actual vs %d expected", len(data), expected)
	}

	for i := 0; i < n; i++ {
		name := readFixedString(data[headsStart+i*sectionHeadSize:][:16])
		if name == "" {
			r.issue("section %d has an empty name", i)
		} else {
			r.note("section %d name: %q", i, name)
		}

		tail := data[tailStart+i*sectionTailSize:]
		dimX, dimY, dimZ := int(tail[88]), int(tail[89]), int(tail[90])
		r.note("section %d dimensions: %dx%dx%d, normals mode %d", i, dimX, dimY, dimZ, tail[91])
		if dimX == 0 && dimY == 0 && dimZ == 0 {
			r.issue("section %d dimensions are 0x0x0", i)
		}
	}

	// A full decode exercises the span state machine, catching coverage
	// and duplicate-count violations the structural walk above cannot.
	if r.OK() {
		if _, err := Parse(data); err != nil {
			r.issue("decode failed: %v", err)
		}
	}
	return r
}
