package vxl

// RGB is one palette entry.
type RGB struct {
	R, G, B uint8
}

// Palette is the model-wide 256-entry color table.
type Palette [256]RGB

// RemapRange marks the palette sub-range the engine recolors per player.
// Indices inside it must not carry ordinary surface color.
type RemapRange struct {
	Start, End uint8
}

// Contains reports whether idx falls inside the remap range.
func (r RemapRange) Contains(idx uint8) bool {
	return idx >= r.Start && idx <= r.End
}

// DefaultRemap is the team-color ramp the engine expects.
var DefaultRemap = RemapRange{Start: 16, End: 31}

// DefaultPalette returns the standard palette: a grayscale ramp everywhere
// except the remap range, which carries a team-color gradient.
func DefaultPalette(remap RemapRange) Palette {
	var p Palette
	for i := 0; i < 256; i++ {
		if remap.Contains(uint8(i)) {
			intensity := uint8((i - int(remap.Start)) * 16)
			p[i] = RGB{R: intensity, G: intensity / 2, B: intensity / 4}
		} else {
			p[i] = RGB{R: uint8(i), G: uint8(i), B: uint8(i)}
		}
	}
	return p
}

// ColorMapper assigns palette indices to arbitrary RGB source colors.
// Index 0 is reserved and the remap range is never handed out; colors beyond
// the 255-entry cap degrade to the nearest already-assigned entry.
type ColorMapper struct {
	palette  Palette
	remap    RemapRange
	assigned map[RGB]uint8
	next     int

	// Overflowed counts colors that could not get their own entry and were
	// substituted by nearest RGB distance. Not an error; callers surface it
	// as a warning.
	Overflowed int
}

// NewColorMapper starts from the default palette for the given remap range.
func NewColorMapper(remap RemapRange) *ColorMapper {
	return &ColorMapper{
		palette:  DefaultPalette(remap),
		remap:    remap,
		assigned: make(map[RGB]uint8),
		next:     1,
	}
}

// Map returns the palette index for a source color, assigning a fresh entry
// when one is available.
func (m *ColorMapper) Map(c RGB) uint8 {
	if idx, ok := m.assigned[c]; ok {
		return idx
	}
	for m.next <= 255 && m.remap.Contains(uint8(m.next)) {
		m.next++
	}
	if m.next > 255 {
		m.Overflowed++
		idx := m.nearest(c)
		m.assigned[c] = idx
		return idx
	}
	idx := uint8(m.next)
	m.next++
	m.palette[idx] = c
	m.assigned[c] = idx
	return idx
}

// nearest finds the closest already-assigned entry by squared RGB distance.
func (m *ColorMapper) nearest(c RGB) uint8 {
	best := uint8(1)
	bestDist := int64(1) << 62
	for assigned, idx := range m.assigned {
		d := sqDist(assigned, c)
		if d < bestDist || (d == bestDist && idx < best) {
			bestDist = d
			best = idx
		}
	}
	return best
}

func sqDist(a, b RGB) int64 {
	dr := int64(a.R) - int64(b.R)
	dg := int64(a.G) - int64(b.G)
	db := int64(a.B) - int64(b.B)
	return dr*dr + dg*dg + db*db
}

// Palette returns the palette built so far.
func (m *ColorMapper) Palette() Palette {
	return m.palette
}

// ShiftRemapIndex moves an externally assigned index out of the remap range
// so the engine's team recoloring cannot touch it. Indices outside the range
// pass through unchanged.
func ShiftRemapIndex(idx uint8, remap RemapRange) uint8 {
	if !remap.Contains(idx) {
		return idx
	}
	width := int(remap.End) - int(remap.Start) + 1
	shifted := int(idx) + 2*width
	if shifted > 255 {
		shifted = int(remap.End) + 1
	}
	return uint8(shifted)
}
