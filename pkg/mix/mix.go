// Package mix reads and writes unencrypted MIX archives, the flat
// container the game engine loads assets from. Files are keyed by a
// 32-bit hash of their uppercased name; the archive itself stores no
// names, so callers must know what they are looking for.
package mix

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

var (
	ErrTruncatedData = errors.New("mix: truncated data")
	ErrEncrypted     = errors.New("mix: encrypted archives not supported")
	ErrNotFound      = errors.New("mix: file not found")
	ErrHashCollision = errors.New("mix: filename hash collision")
	ErrTooManyFiles  = errors.New("mix: too many files")
)

const (
	headerSize = 10
	entrySize  = 12
	maxFiles   = 0xFFFF
)

// Hash computes the engine's file ID for a name: uppercase the name,
// then for each byte rotate the accumulator left by one and add the
// byte. The index is sorted by this ID so the engine can binary-search.
func Hash(name string) uint32 {
	var id uint32
	for _, c := range []byte(strings.ToUpper(name)) {
		id = ((id << 1) | (id >> 31)) + uint32(c)
	}
	return id
}

// Entry is one index record: where a file's body lives in the archive.
type Entry struct {
	ID     uint32
	Offset uint32
	Size   uint32
}

// Archive is a decoded MIX file.
type Archive struct {
	Flags   uint32
	Entries []Entry
	body    []byte
}

// Parse decodes a complete MIX archive held in memory.
func Parse(data []byte) (*Archive, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes for header", ErrTruncatedData, len(data))
	}
	flags := binary.LittleEndian.Uint32(data[0:])
	if flags != 0 {
		return nil, fmt.Errorf("%w (flags 0x%08X)", ErrEncrypted, flags)
	}
	count := int(binary.LittleEndian.Uint16(data[4:]))
	bodySize := int(binary.LittleEndian.Uint32(data[6:]))

	need := headerSize + count*entrySize + bodySize
	if len(data) < need {
		return nil, fmt.Errorf("%w: %d bytes, need %d for %d files", ErrTruncatedData, len(data), need, count)
	}

	a := &Archive{Flags: flags, Entries: make([]Entry, count)}
	for i := range a.Entries {
		rec := data[headerSize+i*entrySize:]
		a.Entries[i] = Entry{
			ID:     binary.LittleEndian.Uint32(rec[0:]),
			Offset: binary.LittleEndian.Uint32(rec[4:]),
			Size:   binary.LittleEndian.Uint32(rec[8:]),
		}
		if int(a.Entries[i].Offset)+int(a.Entries[i].Size) > bodySize {
			return nil, fmt.Errorf("%w: entry 0x%08X extends past body", ErrTruncatedData, a.Entries[i].ID)
		}
	}
	bodyStart := headerSize + count*entrySize
	a.body = data[bodyStart : bodyStart+bodySize]
	return a, nil
}

// Open reads and decodes the MIX archive at path.
func Open(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mix: %w", err)
	}
	return Parse(data)
}

// ReadID returns the body of the file with the given ID.
func (a *Archive) ReadID(id uint32) ([]byte, error) {
	for _, e := range a.Entries {
		if e.ID == id {
			return a.body[e.Offset : e.Offset+e.Size], nil
		}
	}
	return nil, fmt.Errorf("%w: id 0x%08X", ErrNotFound, id)
}

// Read returns the body of the named file.
func (a *Archive) Read(name string) ([]byte, error) {
	data, err := a.ReadID(Hash(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return data, nil
}

// Builder accumulates files and serializes them into an archive.
// Identical bodies are stored once, with both index entries pointing
// at the same offset. The zero value is ready to use.
type Builder struct {
	names  map[uint32]string
	blocks []block
}

type block struct {
	id   uint32
	data []byte
}

// Add stages a file under its base name. Two distinct names hashing to
// the same ID cannot coexist in one archive; that is reported here, at
// pack time, rather than surfacing as a wrong-file lookup in game.
func (b *Builder) Add(name string, data []byte) error {
	if b.names == nil {
		b.names = make(map[uint32]string)
	}
	if len(b.blocks) >= maxFiles {
		return ErrTooManyFiles
	}
	id := Hash(name)
	if prev, ok := b.names[id]; ok {
		if strings.EqualFold(prev, name) {
			return fmt.Errorf("mix: duplicate file %q", name)
		}
		return fmt.Errorf("%w: %q and %q both hash to 0x%08X", ErrHashCollision, prev, name, id)
	}
	b.names[id] = name
	b.blocks = append(b.blocks, block{id: id, data: data})
	return nil
}

// Encode serializes the staged files. The index is sorted ascending by
// ID; bodies follow in the same order, except that a body identical to
// an earlier one is not written again.
func (b *Builder) Encode() ([]byte, error) {
	if len(b.blocks) == 0 {
		return nil, errors.New("mix: no files to pack")
	}

	order := make([]int, len(b.blocks))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return b.blocks[order[i]].id < b.blocks[order[j]].id
	})

	// First pass assigns offsets, reusing the offset of any earlier
	// block with identical bytes.
	offsets := make(map[int]uint32, len(order))
	seen := make(map[uint64]int)
	var bodySize uint32
	var bodyOrder []int
	for _, idx := range order {
		data := b.blocks[idx].data
		sum := xxhash.Sum64(data)
		if prev, ok := seen[sum]; ok && bytes.Equal(b.blocks[prev].data, data) {
			offsets[idx] = offsets[prev]
			continue
		}
		seen[sum] = idx
		offsets[idx] = bodySize
		bodySize += uint32(len(data))
		bodyOrder = append(bodyOrder, idx)
	}

	buf := &bytes.Buffer{}
	var scratch [4]byte
	binary.LittleEndian.PutUint32(scratch[:], 0)
	buf.Write(scratch[:4])
	binary.LittleEndian.PutUint16(scratch[:2], uint16(len(order)))
	buf.Write(scratch[:2])
	binary.LittleEndian.PutUint32(scratch[:], bodySize)
	buf.Write(scratch[:4])

	for _, idx := range order {
		binary.LittleEndian.PutUint32(scratch[:], b.blocks[idx].id)
		buf.Write(scratch[:4])
		binary.LittleEndian.PutUint32(scratch[:], offsets[idx])
		buf.Write(scratch[:4])
		binary.LittleEndian.PutUint32(scratch[:], uint32(len(b.blocks[idx].data)))
		buf.Write(scratch[:4])
	}
	for _, idx := range bodyOrder {
		buf.Write(b.blocks[idx].data)
	}
	return buf.Bytes(), nil
}

// EncodeFile serializes the staged files and writes the archive to path.
func (b *Builder) EncodeFile(path string) error {
	data, err := b.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
