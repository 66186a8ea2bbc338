package vxl

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wwmodding/vxlkit/pkg/math"
)

func mustGrid(t *testing.T, x, y, z int) *VoxelGrid {
	t.Helper()
	g, err := NewVoxelGrid(x, y, z)
	if err != nil {
		t.Fatalf("NewVoxelGrid(%d,%d,%d): %v", x, y, z, err)
	}
	return g
}

func singleSectionModel(grid *VoxelGrid) *Model {
	m := NewModel()
	m.Sections = []Section{{
		Name:        "Body",
		Reserved1:   1,
		Grid:        grid,
		Scale:       1.0 / 12.0,
		Transform:   identityTransform(),
		NormalsMode: NormalsFine,
	}}
	return m
}

func identityTransform() math.Mat34 {
	return math.IdentityMat34()
}

func TestNewVoxelGridDimensionLimits(t *testing.T) {
	tests := []struct {
		name    string
		x, y, z int
		wantErr bool
	}{
		{"minimal", 1, 1, 1, false},
		{"maximal", 255, 255, 255, false},
		{"zero axis", 0, 4, 4, true},
		{"over ceiling", 4, 256, 4, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewVoxelGrid(tt.x, tt.y, tt.z)
			if tt.wantErr {
				if !errors.Is(err, ErrDimensionOverflow) {
					t.Errorf("expected ErrDimensionOverflow, got %v", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestParseMagicValidation(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty", nil, ErrTruncatedData},
		{"short", []byte("Voxel Anim"), ErrTruncatedData},
		{"wrong magic", bytes.Repeat([]byte("X"), 40), ErrBadMagic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseInconsistentLimbCount(t *testing.T) {
	grid := mustGrid(t, 2, 2, 2)
	grid.Set(0, 0, 0, Voxel{Color: 100, Normal: 0})
	data, err := Encode(singleSectionModel(grid))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	binary.LittleEndian.PutUint32(data[24:], 7)
	if _, err := Parse(data); !errors.Is(err, ErrInconsistentLimbCount) {
		t.Errorf("expected ErrInconsistentLimbCount, got %v", err)
	}
}

func TestParseTruncatedBody(t *testing.T) {
	grid := mustGrid(t, 4, 4, 4)
	grid.Set(1, 1, 1, Voxel{Color: 100, Normal: 3})
	data, err := Encode(singleSectionModel(grid))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := Parse(data[:len(data)-40]); !errors.Is(err, ErrTruncatedData) {
		t.Errorf("expected ErrTruncatedData, got %v", err)
	}
}

// A fully solid 2x2x2 cube encodes exactly one span per column with
// skip=0, count=2, and a fixed body size.
func TestEncodeSolidCube(t *testing.T) {
	grid := mustGrid(t, 2, 2, 2)
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			for z := 0; z < 2; z++ {
				grid.Set(x, y, z, Voxel{Color: 100})
			}
		}
	}
	RecalculateNormals(grid, NormalsCoarse)

	data, err := Encode(singleSectionModel(grid))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	bodySize := binary.LittleEndian.Uint32(data[28:])
	// 4 columns x 8 offset bytes + 4 x (2 header + 4 cell + 1 dup + 2 term).
	if want := uint32(4*8 + 4*9); bodySize != want {
		t.Errorf("body size = %d, want %d", bodySize, want)
	}

	bodyStart := headerSize + paletteSize + sectionHeadSize
	spans := data[bodyStart+4*8 : bodyStart+int(bodySize)]
	for col := 0; col < 4; col++ {
		s := spans[col*9:]
		if s[0] != 0 || s[1] != 2 {
			t.Errorf("column %d span header = (%d,%d), want (0,2)", col, s[0], s[1])
		}
		if s[6] != 2 {
			t.Errorf("column %d duplicate count = %d, want 2", col, s[6])
		}
		if s[7] != 0 || s[8] != 0 {
			t.Errorf("column %d terminator = (%d,%d), want (0,0)", col, s[7], s[8])
		}
	}

	decoded, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !decoded.Sections[0].Grid.Equal(grid) {
		t.Error("decoded grid differs from source")
	}
}

// An all-empty grid encodes to sentinel offset tables and no span data.
func TestEncodeEmptyGrid(t *testing.T) {
	grid := mustGrid(t, 3, 5, 7)
	data, err := Encode(singleSectionModel(grid))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	bodySize := binary.LittleEndian.Uint32(data[28:])
	if want := uint32(3 * 5 * 8); bodySize != want {
		t.Errorf("body size = %d, want %d (offset tables only)", bodySize, want)
	}

	bodyStart := headerSize + paletteSize + sectionHeadSize
	for col := 0; col < 3*5*2; col++ {
		if v := binary.LittleEndian.Uint32(data[bodyStart+col*4:]); v != emptyColumn {
			t.Fatalf("offset entry %d = %#x, want sentinel", col, v)
		}
	}

	decoded, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if decoded.Sections[0].Grid.Count() != 0 {
		t.Errorf("decoded grid has %d voxels, want 0", decoded.Sections[0].Grid.Count())
	}
}

// A single occupied cell at z=5 of a 10-deep column produces one span
// skip=5, count=1 and a (4, 0) terminator.
func TestEncodeSingleCellColumn(t *testing.T) {
	grid := mustGrid(t, 1, 1, 10)
	grid.Set(0, 0, 5, Voxel{Color: 42, Normal: 7})

	data, err := Encode(singleSectionModel(grid))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	bodyStart := headerSize + paletteSize + sectionHeadSize
	spans := data[bodyStart+8:]
	want := []byte{5, 1, 42, 7, 1, 4, 0}
	if !bytes.Equal(spans[:len(want)], want) {
		t.Errorf("span bytes = %v, want %v", spans[:len(want)], want)
	}
}

func TestRoundTrip(t *testing.T) {
	grid := mustGrid(t, 8, 6, 12)
	// Two separated spans in one column plus scattered cells.
	for z := 2; z < 5; z++ {
		grid.Set(3, 3, z, Voxel{Color: 100, Normal: 1})
	}
	for z := 8; z < 10; z++ {
		grid.Set(3, 3, z, Voxel{Color: 101, Normal: 2})
	}
	grid.Set(0, 0, 0, Voxel{Color: 50, Normal: 0})
	grid.Set(7, 5, 11, Voxel{Color: 200, Normal: 35})

	m := singleSectionModel(grid)
	m.Sections[0].MinBounds.X = -24
	m.Sections[0].MaxBounds.Z = 48

	data, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if diff := cmp.Diff(m, decoded, cmp.AllowUnexported(VoxelGrid{})); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

// Decoding and re-encoding without modification must be byte-identical.
func TestReEncodeBitExact(t *testing.T) {
	grid := mustGrid(t, 5, 4, 9)
	for z := 1; z < 4; z++ {
		grid.Set(2, 2, z, Voxel{Color: 100, Normal: 4})
	}
	grid.Set(2, 2, 7, Voxel{Color: 99, Normal: 9})
	grid.Set(0, 3, 8, Voxel{Color: 1, Normal: 0})

	m := NewModel()
	m.Sections = []Section{
		{Name: "Body", Reserved1: 1, Grid: grid, Scale: 0.083333, Transform: identityTransform(), NormalsMode: NormalsFine},
		{Name: "turret", LimbIndex: 1, Reserved1: 1, Grid: mustGrid(t, 2, 2, 2), Scale: 0.083333, Transform: identityTransform(), NormalsMode: NormalsCoarse},
	}

	first, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Parse(first)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	second, err := Encode(decoded)
	if err != nil {
		t.Fatalf("re-Encode: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("re-encoded bytes differ from original")
	}
}

// The sum of all spans' skip+count plus the terminator's remaining count
// must cover the column exactly; a short column is rejected.
func TestDecodeColumnCoverage(t *testing.T) {
	grid := mustGrid(t, 1, 1, 10)
	grid.Set(0, 0, 5, Voxel{Color: 42, Normal: 7})
	data, err := Encode(singleSectionModel(grid))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	bodyStart := headerSize + paletteSize + sectionHeadSize
	// Shrink the terminator's remaining count from 4 to 3.
	data[bodyStart+8+5] = 3
	if _, err := Parse(data); !errors.Is(err, ErrCorruptSpan) {
		t.Errorf("expected ErrCorruptSpan, got %v", err)
	}
}

// Older exporters wrote absolute start heights in the skip byte. Two
// spans whose relative reading runs past the column top must decode
// under the absolute fallback.
func TestDecodeAbsoluteSkipFallback(t *testing.T) {
	grid := mustGrid(t, 1, 1, 10)
	grid.Set(0, 0, 3, Voxel{Color: 10, Normal: 1})
	grid.Set(0, 0, 7, Voxel{Color: 20, Normal: 2})
	data, err := Encode(singleSectionModel(grid))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// Relative spans: (3,1,...) then (3,1,...) then terminator (2,0).
	// Rewrite the second span's skip from 3 to its absolute start 7.
	bodyStart := headerSize + paletteSize + sectionHeadSize
	spans := data[bodyStart+8:]
	if spans[5] != 3 {
		t.Fatalf("second span skip = %d, fixture layout changed", spans[5])
	}
	spans[5] = 7

	decoded, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !decoded.Sections[0].Grid.Equal(grid) {
		t.Error("absolute-skip column decoded to a different grid")
	}
}

func TestDecodeDuplicateCountMismatch(t *testing.T) {
	grid := mustGrid(t, 1, 1, 10)
	grid.Set(0, 0, 5, Voxel{Color: 42, Normal: 7})
	data, err := Encode(singleSectionModel(grid))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	bodyStart := headerSize + paletteSize + sectionHeadSize
	// Corrupt the duplicate trailing count byte.
	data[bodyStart+8+4] = 2
	if _, err := Parse(data); !errors.Is(err, ErrCorruptSpan) {
		t.Errorf("expected ErrCorruptSpan, got %v", err)
	}
}
