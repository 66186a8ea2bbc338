package hva

import (
	"encoding/binary"
	"errors"
	gomath "math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wwmodding/vxlkit/pkg/math"
	"github.com/wwmodding/vxlkit/pkg/vxl"
)

func TestNewSingleFrameLayout(t *testing.T) {
	a := NewSingleFrame("htk.vxl", "Body")
	data, err := Encode(a)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	want := 16 + 8 + 16 + 48
	if len(data) != want {
		t.Fatalf("encoded size = %d, want %d", len(data), want)
	}
	if got := readFixedString(data[:16]); got != "HTK" {
		t.Errorf("identifier = %q, want %q", got, "HTK")
	}
	if got := binary.LittleEndian.Uint32(data[16:]); got != 1 {
		t.Errorf("frame count = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(data[20:]); got != 1 {
		t.Errorf("section count = %d, want 1", got)
	}
	if got := readFixedString(data[24:40]); got != "Body" {
		t.Errorf("section name = %q, want %q", got, "Body")
	}

	var mat math.Mat34
	for e := 0; e < 12; e++ {
		bits := binary.LittleEndian.Uint32(data[40+e*4:])
		mat[e] = gomath.Float32frombits(bits)
	}
	if diff := cmp.Diff(math.IdentityMat34(), mat); diff != "" {
		t.Errorf("frame matrix mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip(t *testing.T) {
	a := &Animation{
		Identifier: "TANK",
		Sections: []Section{
			{
				Name: "body",
				Frames: []math.Mat34{
					math.IdentityMat34(),
					math.IdentityMat34().WithTranslation(math.Vec3{X: 1, Y: 2, Z: 3}),
				},
			},
			{
				Name: "turret",
				Frames: []math.Mat34{
					math.IdentityMat34().WithTranslation(math.Vec3{Z: 5}),
					math.IdentityMat34(),
				},
			},
		},
	}

	data, err := Encode(a)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if diff := cmp.Diff(a, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if got.FrameCount() != 2 {
		t.Errorf("FrameCount = %d, want 2", got.FrameCount())
	}
}

func TestParseTruncated(t *testing.T) {
	a := NewSingleFrame("a", "body")
	data, err := Encode(a)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for _, n := range []int{0, 10, 23, len(data) - 1} {
		if _, err := Parse(data[:n]); !errors.Is(err, ErrTruncatedData) {
			t.Errorf("Parse(%d bytes) = %v, want ErrTruncatedData", n, err)
		}
	}
}

// A header whose frame and section counts multiply past the integer
// range must fail the size check, not slip past it and panic on the
// name reads.
func TestParseHugeCountsRejected(t *testing.T) {
	tests := []struct {
		name          string
		frames, sects uint32
	}{
		{"product overflows", 0xFFFFFFFF, 45000000},
		{"sections alone overrun", 1, 0xFFFFFFFF},
		{"frames alone overrun", 0xFFFFFFFF, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]byte, 24)
			copy(data, "HUGE")
			binary.LittleEndian.PutUint32(data[16:], tt.frames)
			binary.LittleEndian.PutUint32(data[20:], tt.sects)
			if _, err := Parse(data); !errors.Is(err, ErrTruncatedData) {
				t.Errorf("Parse = %v, want ErrTruncatedData", err)
			}
		})
	}
}

func TestEncodeFrameCountSkew(t *testing.T) {
	a := &Animation{
		Identifier: "BAD",
		Sections: []Section{
			{Name: "body", Frames: []math.Mat34{math.IdentityMat34()}},
			{Name: "turret", Frames: []math.Mat34{math.IdentityMat34(), math.IdentityMat34()}},
		},
	}
	if _, err := Encode(a); !errors.Is(err, ErrFrameCountSkewed) {
		t.Errorf("Encode = %v, want ErrFrameCountSkewed", err)
	}
	if _, err := Encode(&Animation{}); !errors.Is(err, ErrNoSections) {
		t.Errorf("Encode(empty) = %v, want ErrNoSections", err)
	}
}

func TestCheckAndRepairNames(t *testing.T) {
	model := &vxl.Model{Sections: []vxl.Section{{Name: "Body"}, {Name: "turret"}}}
	anim := NewSingleFrame("x", "body", "turret")

	mismatches := CheckNames(anim, model)
	if len(mismatches) != 1 {
		t.Fatalf("mismatches = %v, want 1 entry", mismatches)
	}
	if mismatches[0].Index != 0 || mismatches[0].VXLName != "Body" || mismatches[0].HVAName != "body" {
		t.Errorf("unexpected mismatch: %+v", mismatches[0])
	}

	if changed := RepairNames(anim, model); changed != 1 {
		t.Errorf("RepairNames changed %d names, want 1", changed)
	}
	if left := CheckNames(anim, model); len(left) != 0 {
		t.Errorf("mismatches remain after repair: %v", left)
	}
}

func TestCheckNamesSectionCountSkew(t *testing.T) {
	model := &vxl.Model{Sections: []vxl.Section{{Name: "body"}}}
	anim := NewSingleFrame("x", "body", "turret")

	mismatches := CheckNames(anim, model)
	if len(mismatches) != 1 {
		t.Fatalf("mismatches = %v, want 1 entry", mismatches)
	}
	if mismatches[0].Index != 1 || mismatches[0].VXLName != "" {
		t.Errorf("unexpected mismatch: %+v", mismatches[0])
	}
}
