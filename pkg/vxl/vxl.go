package vxl

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	gomath "math"
	"os"

	"github.com/wwmodding/vxlkit/pkg/math"
)

// Format errors.
var (
	ErrBadMagic              = errors.New("invalid VXL magic: expected 'Voxel Animation'")
	ErrTruncatedData         = errors.New("truncated VXL data")
	ErrInconsistentLimbCount = errors.New("VXL header limb counts disagree")
	ErrDimensionOverflow     = errors.New("grid dimension outside engine limits")
	ErrCorruptSpan           = errors.New("corrupt span data")
)

const (
	vxlMagic = "Voxel Animation"

	headerSize      = 34
	paletteSize     = 768
	sectionHeadSize = 28
	sectionTailSize = 92

	// emptyColumn is the offset-table sentinel for a column with no
	// occupied cells.
	emptyColumn = 0xFFFFFFFF
)

// errSpanOvershoot marks a span run passing the top of its column, which
// triggers the absolute-skip fallback in decodeColumn.
var errSpanOvershoot = fmt.Errorf("%w: span exceeds column height", ErrCorruptSpan)

// Section is one named rigid voxel body within a model.
type Section struct {
	Name        string // at most 16 ASCII bytes, NUL-padded on disk
	LimbIndex   uint32
	Reserved1   uint32
	Reserved2   uint32
	Grid        *VoxelGrid
	Scale       float32
	Transform   math.Mat34
	MinBounds   math.Vec3
	MaxBounds   math.Vec3
	NormalsMode NormalsMode
}

// Model is an ordered sequence of sections sharing one palette.
type Model struct {
	Version    uint32
	RemapStart uint8
	RemapEnd   uint8
	Palette    Palette
	Sections   []Section
}

// NewModel returns a model with the default palette and remap range, ready
// for sections to be appended.
func NewModel() *Model {
	return &Model{
		Version:    1,
		RemapStart: DefaultRemap.Start,
		RemapEnd:   DefaultRemap.End,
		Palette:    DefaultPalette(DefaultRemap),
	}
}

// Parse decodes a VXL model from raw bytes. Structural errors (bad magic,
// truncation, inconsistent counts) abort with no partial model.
func Parse(data []byte) (*Model, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: header", ErrTruncatedData)
	}
	if string(data[0:15]) != vxlMagic || data[15] != 0 {
		return nil, ErrBadMagic
	}

	version := binary.LittleEndian.Uint32(data[16:])
	limbCount := binary.LittleEndian.Uint32(data[20:])
	limbCount2 := binary.LittleEndian.Uint32(data[24:])
	bodySize := binary.LittleEndian.Uint32(data[28:])
	remapStart := data[32]
	remapEnd := data[33]

	if limbCount != limbCount2 {
		return nil, fmt.Errorf("%w: %d vs %d", ErrInconsistentLimbCount, limbCount, limbCount2)
	}

	if len(data) < headerSize+paletteSize {
		return nil, fmt.Errorf("%w: palette", ErrTruncatedData)
	}

	model := &Model{
		Version:    version,
		RemapStart: remapStart,
		RemapEnd:   remapEnd,
	}
	for i := 0; i < 256; i++ {
		off := headerSize + i*3
		model.Palette[i] = RGB{R: data[off], G: data[off+1], B: data[off+2]}
	}

	n := int(limbCount)
	headsStart := headerSize + paletteSize
	bodyStart := headsStart + n*sectionHeadSize
	tailStart := bodyStart + int(bodySize)

	if tailStart+n*sectionTailSize > len(data) {
		return nil, fmt.Errorf("%w: body or tailers", ErrTruncatedData)
	}
	body := data[bodyStart:tailStart]

	model.Sections = make([]Section, n)
	for i := 0; i < n; i++ {
		sec := &model.Sections[i]

		head := data[headsStart+i*sectionHeadSize:]
		sec.Name = readFixedString(head[:16])
		sec.LimbIndex = binary.LittleEndian.Uint32(head[16:])
		sec.Reserved1 = binary.LittleEndian.Uint32(head[20:])
		sec.Reserved2 = binary.LittleEndian.Uint32(head[24:])

		tail := data[tailStart+i*sectionTailSize:]
		spanStartOff := binary.LittleEndian.Uint32(tail[0:])
		spanEndOff := binary.LittleEndian.Uint32(tail[4:])
		spanDataOff := binary.LittleEndian.Uint32(tail[8:])
		sec.Scale = readFloat32(tail[12:])
		for j := 0; j < 12; j++ {
			sec.Transform[j] = readFloat32(tail[16+j*4:])
		}
		sec.MinBounds = math.Vec3{X: readFloat32(tail[64:]), Y: readFloat32(tail[68:]), Z: readFloat32(tail[72:])}
		sec.MaxBounds = math.Vec3{X: readFloat32(tail[76:]), Y: readFloat32(tail[80:]), Z: readFloat32(tail[84:])}
		dimX, dimY, dimZ := int(tail[88]), int(tail[89]), int(tail[90])
		sec.NormalsMode = NormalsMode(tail[91])

		grid, err := decodeSectionBody(body, spanStartOff, spanEndOff, spanDataOff, dimX, dimY, dimZ)
		if err != nil {
			return nil, fmt.Errorf("section %q: %w", sec.Name, err)
		}
		sec.Grid = grid
	}

	return model, nil
}

// ParseFile decodes a VXL model from disk.
func ParseFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading VXL file: %w", err)
	}
	return Parse(data)
}

// decodeSectionBody rebuilds one section's grid from its offset tables and
// span bytes inside the shared body region.
func decodeSectionBody(body []byte, startOff, endOff, dataOff uint32, dimX, dimY, dimZ int) (*VoxelGrid, error) {
	grid, err := NewVoxelGrid(dimX, dimY, dimZ)
	if err != nil {
		return nil, err
	}

	cols := dimX * dimY
	if int(startOff)+cols*4 > len(body) || int(endOff)+cols*4 > len(body) || int(dataOff) > len(body) {
		return nil, fmt.Errorf("%w: offset tables", ErrTruncatedData)
	}
	spans := body[dataOff:]

	for y := 0; y < dimY; y++ {
		for x := 0; x < dimX; x++ {
			col := y*dimX + x
			colStart := binary.LittleEndian.Uint32(body[int(startOff)+col*4:])
			colEnd := binary.LittleEndian.Uint32(body[int(endOff)+col*4:])

			if colStart == emptyColumn {
				if colEnd != emptyColumn {
					return nil, fmt.Errorf("column (%d,%d): %w: sentinel mismatch", x, y, ErrCorruptSpan)
				}
				continue
			}
			if err := decodeColumn(grid, spans, x, y, int(colStart), int(colEnd)); err != nil {
				return nil, fmt.Errorf("column (%d,%d): %w", x, y, err)
			}
		}
	}
	return grid, nil
}

// decodeColumn walks one column's span bytes: alternating skip/count runs,
// each occupied run followed by a duplicate count byte, closed by a
// (remaining, 0) terminator. Skips are relative to the previous span's end;
// some older exporters wrote absolute start heights instead, so a column
// that fails the relative reading is retried with absolute skips before
// being rejected.
func decodeColumn(grid *VoxelGrid, spans []byte, x, y, start, end int) error {
	if start > end || end > len(spans) {
		return fmt.Errorf("%w: span bounds", ErrTruncatedData)
	}
	cells, relErr := parseColumnSpans(spans, start, end, grid.DimZ, false)
	if errors.Is(relErr, errSpanOvershoot) {
		// Accumulated skips ran past the column height, the signature
		// of absolute start heights. Other corruption stays fatal.
		var absErr error
		cells, absErr = parseColumnSpans(spans, start, end, grid.DimZ, true)
		if absErr != nil {
			return relErr
		}
	} else if relErr != nil {
		return relErr
	}
	for _, c := range cells {
		grid.Set(x, y, c.z, c.v)
	}
	return nil
}

type columnCell struct {
	z int
	v Voxel
}

// parseColumnSpans reads one column without committing anything to the
// grid. With absolute set, the skip byte is the span's starting height
// rather than the gap since the previous span; z still never moves
// backwards.
func parseColumnSpans(spans []byte, start, end, dimZ int, absolute bool) ([]columnCell, error) {
	var cells []columnCell
	pos := start
	z := 0
	for {
		if pos+2 > end {
			return nil, fmt.Errorf("%w: span header", ErrTruncatedData)
		}
		skip := int(spans[pos])
		count := int(spans[pos+1])
		pos += 2
		if count == 0 {
			// The terminator's skip byte only carries meaning in the
			// relative reading, where it must close the column.
			if !absolute {
				z += skip
			}
			break
		}
		if absolute {
			if skip < z {
				return nil, fmt.Errorf("%w: span start moves backwards", ErrCorruptSpan)
			}
			z = skip
		} else {
			z += skip
		}
		if z+count > dimZ {
			return nil, fmt.Errorf("column height exceeded: %w", errSpanOvershoot)
		}
		if pos+count*2+1 > end {
			return nil, fmt.Errorf("%w: span cells", ErrTruncatedData)
		}
		for i := 0; i < count; i++ {
			cells = append(cells, columnCell{
				z: z + i,
				v: Voxel{Color: spans[pos+i*2], Normal: spans[pos+i*2+1]},
			})
		}
		pos += count * 2
		if dup := int(spans[pos]); dup != count {
			return nil, fmt.Errorf("%w: trailing count %d != %d", ErrCorruptSpan, dup, count)
		}
		pos++
		z += count
	}
	if !absolute && z != dimZ {
		return nil, fmt.Errorf("%w: column covers %d of %d cells", ErrCorruptSpan, z, dimZ)
	}
	if pos != end {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptSpan, end-pos)
	}
	return cells, nil
}

// Encode serializes the model to the complete on-disk byte layout.
// Re-encoding an unmodified decoded model reproduces the source bytes.
func Encode(m *Model) ([]byte, error) {
	bodies := make([][]byte, len(m.Sections))
	tailOffsets := make([][3]uint32, len(m.Sections))
	bodySize := 0
	for i := range m.Sections {
		sec := &m.Sections[i]
		if sec.Grid == nil {
			return nil, fmt.Errorf("section %q has no grid", sec.Name)
		}
		chunk := encodeSectionBody(sec.Grid)
		cols := uint32(sec.Grid.DimX * sec.Grid.DimY)
		base := uint32(bodySize)
		tailOffsets[i] = [3]uint32{base, base + cols*4, base + cols*8}
		bodies[i] = chunk
		bodySize += len(chunk)
	}

	var buf bytes.Buffer
	buf.Grow(headerSize + paletteSize + len(m.Sections)*(sectionHeadSize+sectionTailSize) + bodySize)

	// Header.
	buf.WriteString(vxlMagic)
	buf.WriteByte(0)
	writeUint32(&buf, m.Version)
	writeUint32(&buf, uint32(len(m.Sections)))
	writeUint32(&buf, uint32(len(m.Sections)))
	writeUint32(&buf, uint32(bodySize))
	buf.WriteByte(m.RemapStart)
	buf.WriteByte(m.RemapEnd)

	// Palette.
	for _, c := range m.Palette {
		buf.WriteByte(c.R)
		buf.WriteByte(c.G)
		buf.WriteByte(c.B)
	}

	// Section headers.
	for i := range m.Sections {
		sec := &m.Sections[i]
		buf.Write(fixedString(sec.Name))
		writeUint32(&buf, sec.LimbIndex)
		writeUint32(&buf, sec.Reserved1)
		writeUint32(&buf, sec.Reserved2)
	}

	// Body.
	for _, chunk := range bodies {
		buf.Write(chunk)
	}

	// Tailers.
	for i := range m.Sections {
		sec := &m.Sections[i]
		writeUint32(&buf, tailOffsets[i][0])
		writeUint32(&buf, tailOffsets[i][1])
		writeUint32(&buf, tailOffsets[i][2])
		writeFloat32(&buf, sec.Scale)
		for _, f := range sec.Transform {
			writeFloat32(&buf, f)
		}
		writeFloat32(&buf, sec.MinBounds.X)
		writeFloat32(&buf, sec.MinBounds.Y)
		writeFloat32(&buf, sec.MinBounds.Z)
		writeFloat32(&buf, sec.MaxBounds.X)
		writeFloat32(&buf, sec.MaxBounds.Y)
		writeFloat32(&buf, sec.MaxBounds.Z)
		buf.WriteByte(uint8(sec.Grid.DimX))
		buf.WriteByte(uint8(sec.Grid.DimY))
		buf.WriteByte(uint8(sec.Grid.DimZ))
		buf.WriteByte(uint8(sec.NormalsMode))
	}

	return buf.Bytes(), nil
}

// EncodeFile serializes the model and writes it to disk.
func EncodeFile(m *Model, path string) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// encodeSectionBody produces one section's body chunk: the column-start and
// column-end offset tables followed by the span data. Offsets are relative
// to the start of the span-data region; empty columns carry the sentinel in
// both tables.
func encodeSectionBody(grid *VoxelGrid) []byte {
	cols := grid.DimX * grid.DimY
	starts := make([]uint32, 0, cols)
	ends := make([]uint32, 0, cols)
	var spans bytes.Buffer

	for y := 0; y < grid.DimY; y++ {
		for x := 0; x < grid.DimX; x++ {
			if !grid.ColumnFilled(x, y) {
				starts = append(starts, emptyColumn)
				ends = append(ends, emptyColumn)
				continue
			}
			colStart := uint32(spans.Len())
			encodeColumn(&spans, grid, x, y)
			starts = append(starts, colStart)
			ends = append(ends, uint32(spans.Len()))
		}
	}

	out := make([]byte, 0, cols*8+spans.Len())
	for _, v := range starts {
		out = binary.LittleEndian.AppendUint32(out, v)
	}
	for _, v := range ends {
		out = binary.LittleEndian.AppendUint32(out, v)
	}
	return append(out, spans.Bytes()...)
}

// encodeColumn walks Z alternating empty and occupied runs. Each occupied
// run becomes skip, count, count * (color, normal), count again; the
// duplicate trailing count is required by the consuming engine. Skips are
// relative to the end of the previous span.
func encodeColumn(buf *bytes.Buffer, grid *VoxelGrid, x, y int) {
	z := 0
	prevEnd := 0
	for z < grid.DimZ {
		for z < grid.DimZ && !grid.Filled(x, y, z) {
			z++
		}
		if z >= grid.DimZ {
			break
		}
		runStart := z
		for z < grid.DimZ && grid.Filled(x, y, z) {
			z++
		}
		count := z - runStart

		buf.WriteByte(uint8(runStart - prevEnd))
		buf.WriteByte(uint8(count))
		for c := runStart; c < z; c++ {
			v, _ := grid.At(x, y, c)
			buf.WriteByte(v.Color)
			buf.WriteByte(v.Normal)
		}
		buf.WriteByte(uint8(count))
		prevEnd = z
	}

	// Terminator: trailing empty cells, then a zero count.
	buf.WriteByte(uint8(grid.DimZ - prevEnd))
	buf.WriteByte(0)
}

func readFixedString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func fixedString(s string) []byte {
	b := make([]byte, 16)
	copy(b, s)
	return b
}

func readFloat32(b []byte) float32 {
	return gomath.Float32frombits(binary.LittleEndian.Uint32(b))
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeFloat32(buf *bytes.Buffer, v float32) {
	writeUint32(buf, gomath.Float32bits(v))
}
