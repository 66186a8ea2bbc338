// Package hva reads and writes HVA animation descriptors, the per-frame
// section transforms that accompany a VXL model. An HVA holds one 3x4
// matrix per section per frame; the engine pairs sections with the VXL's
// limbs by name, so mismatched names silently freeze the animation.
package hva

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	gomath "math"
	"os"
	"path/filepath"
	"strings"

	"github.com/wwmodding/vxlkit/pkg/math"
	"github.com/wwmodding/vxlkit/pkg/vxl"
)

var (
	ErrTruncatedData    = errors.New("hva: truncated data")
	ErrNoSections       = errors.New("hva: no sections")
	ErrFrameCountSkewed = errors.New("hva: sections disagree on frame count")
)

const (
	identifierSize = 16
	nameSize       = 16
	matrixSize     = 48
)

// Section is one animated limb: its name and one transform per frame.
type Section struct {
	Name   string
	Frames []math.Mat34
}

// Animation is a decoded HVA file. Every section carries the same
// number of frames.
type Animation struct {
	Identifier string
	Sections   []Section
}

// FrameCount returns the number of frames, 0 for an empty animation.
func (a *Animation) FrameCount() int {
	if len(a.Sections) == 0 {
		return 0
	}
	return len(a.Sections[0].Frames)
}

// NewSingleFrame builds a one-frame animation with identity transforms
// for the given section names, the descriptor a freshly exported VXL
// needs before any real animation exists. The identifier is the
// uppercased base name of the VXL it accompanies.
func NewSingleFrame(vxlName string, sectionNames ...string) *Animation {
	base := strings.TrimSuffix(filepath.Base(vxlName), filepath.Ext(vxlName))
	a := &Animation{Identifier: strings.ToUpper(base)}
	for _, name := range sectionNames {
		a.Sections = append(a.Sections, Section{
			Name:   name,
			Frames: []math.Mat34{math.IdentityMat34()},
		})
	}
	return a
}

// Parse decodes a complete HVA file held in memory.
func Parse(data []byte) (*Animation, error) {
	if len(data) < identifierSize+8 {
		return nil, fmt.Errorf("%w: %d bytes for header", ErrTruncatedData, len(data))
	}
	a := &Animation{Identifier: readFixedString(data[:identifierSize])}

	frameCount := int(binary.LittleEndian.Uint32(data[16:]))
	sectionCount := int(binary.LittleEndian.Uint32(data[20:]))
	if sectionCount == 0 {
		return nil, ErrNoSections
	}

	// The counts come straight off the wire, so the size check is staged
	// against the remaining bytes rather than multiplied up front, which
	// could overflow and slip past a single comparison.
	payload := len(data) - identifierSize - 8
	if sectionCount > payload/nameSize {
		return nil, fmt.Errorf("%w: %d bytes for %d section names",
			ErrTruncatedData, len(data), sectionCount)
	}
	payload -= sectionCount * nameSize
	if frameCount > payload/(sectionCount*matrixSize) {
		return nil, fmt.Errorf("%w: %d bytes for %d frames x %d sections",
			ErrTruncatedData, len(data), frameCount, sectionCount)
	}

	pos := identifierSize + 8
	a.Sections = make([]Section, sectionCount)
	for i := range a.Sections {
		a.Sections[i].Name = readFixedString(data[pos : pos+nameSize])
		a.Sections[i].Frames = make([]math.Mat34, frameCount)
		pos += nameSize
	}

	// Matrices are grouped by frame: all sections of frame 0, then
	// all sections of frame 1, and so on.
	for f := 0; f < frameCount; f++ {
		for s := 0; s < sectionCount; s++ {
			for e := 0; e < 12; e++ {
				bits := binary.LittleEndian.Uint32(data[pos:])
				a.Sections[s].Frames[f][e] = gomath.Float32frombits(bits)
				pos += 4
			}
		}
	}
	return a, nil
}

// ParseFile decodes the HVA file at path.
func ParseFile(path string) (*Animation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hva: %w", err)
	}
	return Parse(data)
}

// Encode serializes the animation. Section names longer than 16 bytes
// are truncated, matching what the game reads back.
func Encode(a *Animation) ([]byte, error) {
	if len(a.Sections) == 0 {
		return nil, ErrNoSections
	}
	frameCount := len(a.Sections[0].Frames)
	for _, sec := range a.Sections {
		if len(sec.Frames) != frameCount {
			return nil, fmt.Errorf("%w: section %q has %d frames, first has %d",
				ErrFrameCountSkewed, sec.Name, len(sec.Frames), frameCount)
		}
	}

	buf := &bytes.Buffer{}
	buf.Write(fixedString(a.Identifier, identifierSize))
	writeUint32(buf, uint32(frameCount))
	writeUint32(buf, uint32(len(a.Sections)))
	for _, sec := range a.Sections {
		buf.Write(fixedString(sec.Name, nameSize))
	}
	for f := 0; f < frameCount; f++ {
		for _, sec := range a.Sections {
			for _, e := range sec.Frames[f] {
				writeUint32(buf, gomath.Float32bits(e))
			}
		}
	}
	return buf.Bytes(), nil
}

// EncodeFile serializes the animation and writes it to path.
func EncodeFile(a *Animation, path string) error {
	data, err := Encode(a)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Mismatch describes a section whose VXL and HVA names differ. The
// engine matches sections by name, so a mismatch means the section
// never animates; files load fine regardless.
type Mismatch struct {
	Index   int
	VXLName string
	HVAName string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("section %d: vxl %q vs hva %q", m.Index, m.VXLName, m.HVAName)
}

// CheckNames compares the animation's section names against the
// model's, by index. A differing section count is reported as a
// mismatch with an empty name on the shorter side.
func CheckNames(a *Animation, m *vxl.Model) []Mismatch {
	var out []Mismatch
	n := len(a.Sections)
	if len(m.Sections) > n {
		n = len(m.Sections)
	}
	for i := 0; i < n; i++ {
		var vn, hn string
		if i < len(m.Sections) {
			vn = m.Sections[i].Name
		}
		if i < len(a.Sections) {
			hn = a.Sections[i].Name
		}
		if vn != hn {
			out = append(out, Mismatch{Index: i, VXLName: vn, HVAName: hn})
		}
	}
	return out
}

// RepairNames overwrites the animation's section names with the
// model's, by index, and returns how many were changed. Sections
// beyond the model's count keep their names.
func RepairNames(a *Animation, m *vxl.Model) int {
	changed := 0
	for i := range a.Sections {
		if i >= len(m.Sections) {
			break
		}
		if a.Sections[i].Name != m.Sections[i].Name {
			a.Sections[i].Name = m.Sections[i].Name
			changed++
		}
	}
	return changed
}

func readFixedString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func fixedString(s string, n int) []byte {
	b := make([]byte, n)
	copy(b, s)
	return b
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}
