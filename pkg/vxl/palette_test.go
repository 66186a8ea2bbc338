package vxl

import "testing"

func TestDefaultPalette(t *testing.T) {
	p := DefaultPalette(DefaultRemap)

	if p[0] != (RGB{0, 0, 0}) {
		t.Errorf("index 0 = %v, want black", p[0])
	}
	if p[100] != (RGB{100, 100, 100}) {
		t.Errorf("index 100 = %v, want grayscale", p[100])
	}
	if p[255] != (RGB{255, 255, 255}) {
		t.Errorf("index 255 = %v, want white", p[255])
	}
	// The remap range carries a gradient, not grayscale.
	for i := 16; i <= 31; i++ {
		intensity := uint8((i - 16) * 16)
		want := RGB{R: intensity, G: intensity / 2, B: intensity / 4}
		if p[i] != want {
			t.Errorf("remap index %d = %v, want %v", i, p[i], want)
		}
	}
}

func TestColorMapperAvoidsReservedRanges(t *testing.T) {
	m := NewColorMapper(DefaultRemap)

	seen := make(map[uint8]bool)
	for i := 0; i < 100; i++ {
		c := RGB{R: uint8(i), G: uint8(i * 2), B: uint8(255 - i)}
		idx := m.Map(c)
		if idx == 0 {
			t.Fatalf("color %v assigned reserved index 0", c)
		}
		if DefaultRemap.Contains(idx) {
			t.Fatalf("color %v assigned remap index %d", c, idx)
		}
		if seen[idx] {
			t.Fatalf("index %d assigned twice", idx)
		}
		seen[idx] = true
	}
	if m.Overflowed != 0 {
		t.Errorf("unexpected overflow count %d", m.Overflowed)
	}
}

func TestColorMapperStableAssignment(t *testing.T) {
	m := NewColorMapper(DefaultRemap)
	c := RGB{R: 10, G: 20, B: 30}
	first := m.Map(c)
	if again := m.Map(c); again != first {
		t.Errorf("repeated Map() = %d, want %d", again, first)
	}
	if got := m.Palette()[first]; got != c {
		t.Errorf("palette entry %d = %v, want %v", first, got, c)
	}
}

func TestColorMapperOverflow(t *testing.T) {
	m := NewColorMapper(DefaultRemap)

	// 255 - 16 remap - 0 reserved leaves 239 assignable entries. Exhaust
	// them with reds, then ask for one more color close to a known entry.
	assignable := 255 - 16
	for i := 0; i < assignable; i++ {
		m.Map(RGB{R: uint8(i % 256), G: uint8(i / 256), B: 200})
	}
	if m.Overflowed != 0 {
		t.Fatalf("overflowed too early: %d", m.Overflowed)
	}

	idx := m.Map(RGB{R: 5, G: 0, B: 201})
	if m.Overflowed != 1 {
		t.Errorf("overflow count = %d, want 1", m.Overflowed)
	}
	if got := m.Palette()[idx]; got != (RGB{R: 5, G: 0, B: 200}) {
		t.Errorf("nearest substitution landed on %v", got)
	}
}

func TestShiftRemapIndex(t *testing.T) {
	tests := []struct {
		idx  uint8
		want uint8
	}{
		{0, 0},
		{15, 15},
		{16, 48},
		{31, 63},
		{32, 32},
		{200, 200},
	}
	for _, tt := range tests {
		if got := ShiftRemapIndex(tt.idx, DefaultRemap); got != tt.want {
			t.Errorf("ShiftRemapIndex(%d) = %d, want %d", tt.idx, got, tt.want)
		}
	}
}
