// Package chunkcodec decodes a chunk-data packet body into per-section
// paletted block-state and biome arrays. It never keeps a parsed copy of
// the heightmaps tree — only the byte offset past it matters here.
package chunkcodec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/StoreStation/vibebot/pkg/nbt"
	"github.com/StoreStation/vibebot/pkg/varint"
)

const (
	sectionsPerColumn = 24
	blocksPerSection  = 16 * 16 * 16
	biomesPerSection  = 4 * 4 * 4
)

// ErrDecode marks a chunk payload that could not be parsed under any of
// the three heightmap-prefix strategies.
var ErrDecode = errors.New("chunkcodec: could not decode chunk payload")

// Section is one 16x16x16 slab: 4096 block-state ids and 64 biome ids,
// already expanded out of their palettes.
type Section struct {
	BlockCount int16
	Blocks     [blocksPerSection]int32
	Biomes     [biomesPerSection]int32
}

// Column is a decoded chunk column of up to 24 sections.
type Column struct {
	Sections []Section
}

// Decode parses a chunk-data packet body (everything after the chunkX/
// chunkZ packet fields): heightmaps tree, varint data size, then that
// many bytes of section data.
func Decode(payload []byte) (*Column, error) {
	for _, strategy := range []func([]byte) (int, error){
		skipNamedHeightmaps,
		skipNamelessHeightmaps,
		skipVarintPrefixedHeightmaps,
	} {
		offset, err := strategy(payload)
		if err != nil {
			continue
		}
		col, err := decodeFrom(payload, offset)
		if err != nil {
			continue
		}
		return col, nil
	}
	return nil, ErrDecode
}

func skipNamedHeightmaps(payload []byte) (int, error) {
	n, err := nbt.SkipRoot(bytes.NewReader(payload), true)
	return int(n), err
}

func skipNamelessHeightmaps(payload []byte) (int, error) {
	n, err := nbt.SkipRoot(bytes.NewReader(payload), false)
	return int(n), err
}

func skipVarintPrefixedHeightmaps(payload []byte) (int, error) {
	r := bytes.NewReader(payload)
	n, bytesRead, err := varint.ReadInt32(r)
	if err != nil {
		return 0, err
	}
	if n < 0 || int(n) > len(payload)-bytesRead {
		return 0, fmt.Errorf("chunkcodec: tree length %d out of range", n)
	}
	return bytesRead + int(n), nil
}

// decodeFrom continues parsing at offset: varint data size, then section
// data of that many bytes.
func decodeFrom(payload []byte, offset int) (*Column, error) {
	if offset < 0 || offset > len(payload) {
		return nil, fmt.Errorf("chunkcodec: offset %d out of range", offset)
	}
	r := bytes.NewReader(payload[offset:])

	dataSize, _, err := varint.ReadInt32(r)
	if err != nil {
		return nil, fmt.Errorf("chunkcodec: read data size: %w", err)
	}
	if dataSize < 0 || int(dataSize) > r.Len() {
		return nil, fmt.Errorf("chunkcodec: data size %d out of range", dataSize)
	}

	sectionData := make([]byte, dataSize)
	if _, err := io.ReadFull(r, sectionData); err != nil {
		return nil, fmt.Errorf("chunkcodec: read section data: %w", err)
	}

	return decodeSections(sectionData)
}

func decodeSections(data []byte) (*Column, error) {
	cr := &cursor{data: data}
	col := &Column{}

	for i := 0; i < sectionsPerColumn && cr.remaining() > 0; i++ {
		sec, err := decodeSection(cr)
		if err != nil {
			return nil, fmt.Errorf("chunkcodec: section %d: %w", i, err)
		}
		col.Sections = append(col.Sections, *sec)
	}
	return col, nil
}

func decodeSection(cr *cursor) (*Section, error) {
	blockCount, err := cr.readInt16()
	if err != nil {
		return nil, err
	}

	sec := &Section{BlockCount: blockCount}

	blocks, err := decodePalettedContainer(cr, blocksPerSection)
	if err != nil {
		return nil, fmt.Errorf("block states: %w", err)
	}
	copy(sec.Blocks[:], blocks)

	biomes, err := decodePalettedContainer(cr, biomesPerSection)
	if err != nil {
		return nil, fmt.Errorf("biomes: %w", err)
	}
	copy(sec.Biomes[:], biomes)

	return sec, nil
}

// decodePalettedContainer decodes exactly expectedEntries ids per §4.6.
func decodePalettedContainer(cr *cursor, expectedEntries int) ([]int32, error) {
	bitsPerEntry, err := cr.readByte()
	if err != nil {
		return nil, err
	}

	switch {
	case bitsPerEntry == 0:
		value, err := cr.readVarInt()
		if err != nil {
			return nil, err
		}
		dataLongs, err := cr.readVarInt()
		if err != nil {
			return nil, err
		}
		if dataLongs != 0 {
			return nil, fmt.Errorf("single-value container has %d data longs, want 0", dataLongs)
		}
		entries := make([]int32, expectedEntries)
		for i := range entries {
			entries[i] = value
		}
		return entries, nil

	case bitsPerEntry <= 8:
		paletteLen, err := cr.readVarInt()
		if err != nil {
			return nil, err
		}
		if paletteLen < 0 {
			return nil, fmt.Errorf("negative palette length %d", paletteLen)
		}
		palette := make([]int32, paletteLen)
		for i := range palette {
			v, err := cr.readVarInt()
			if err != nil {
				return nil, err
			}
			palette[i] = v
		}
		indices, err := cr.readBitPacked(int(bitsPerEntry), expectedEntries)
		if err != nil {
			return nil, err
		}
		entries := make([]int32, expectedEntries)
		for i, idx := range indices {
			if idx < 0 || int(idx) >= len(palette) {
				entries[i] = 0
				continue
			}
			entries[i] = palette[idx]
		}
		return entries, nil

	default:
		indices, err := cr.readBitPacked(int(bitsPerEntry), expectedEntries)
		if err != nil {
			return nil, err
		}
		return indices, nil
	}
}

// cursor is a sequential byte reader over a fixed slice, used for the
// section-data sub-parse where random access to raw bytes (for the
// longCount-prefixed bit-packed arrays) is convenient.
type cursor struct {
	data []byte
	pos  int
}

func (c *cursor) remaining() int {
	return len(c.data) - c.pos
}

func (c *cursor) readByte() (byte, error) {
	if c.remaining() < 1 {
		return 0, io.ErrUnexpectedEOF
	}
	b := c.data[c.pos]
	c.pos++
	return b, nil
}

func (c *cursor) readInt16() (int16, error) {
	if c.remaining() < 2 {
		return 0, io.ErrUnexpectedEOF
	}
	v := int16(binary.BigEndian.Uint16(c.data[c.pos:]))
	c.pos += 2
	return v, nil
}

func (c *cursor) readUint64() (uint64, error) {
	if c.remaining() < 8 {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.BigEndian.Uint64(c.data[c.pos:])
	c.pos += 8
	return v, nil
}

func (c *cursor) readVarInt() (int32, error) {
	v, n, err := varint.ReadInt32(bytes.NewReader(c.data[c.pos:]))
	if err != nil {
		return 0, err
	}
	c.pos += n
	return v, nil
}

// readBitPacked reads a varint longCount followed by that many big-endian
// u64 words, then unpacks expectedEntries values of bitsPerEntry bits
// each, low-bit first within a word, never spanning a word boundary.
func (c *cursor) readBitPacked(bitsPerEntry, expectedEntries int) ([]int32, error) {
	longCount, err := c.readVarInt()
	if err != nil {
		return nil, err
	}
	if longCount < 0 {
		return nil, fmt.Errorf("negative long count %d", longCount)
	}

	words := make([]uint64, longCount)
	for i := range words {
		w, err := c.readUint64()
		if err != nil {
			return nil, err
		}
		words[i] = w
	}

	perWord := 64 / bitsPerEntry
	mask := uint64(1)<<uint(bitsPerEntry) - 1

	entries := make([]int32, 0, expectedEntries)
	for wi := 0; wi < len(words) && len(entries) < expectedEntries; wi++ {
		w := words[wi]
		for slot := 0; slot < perWord && len(entries) < expectedEntries; slot++ {
			shift := uint(slot * bitsPerEntry)
			entries = append(entries, int32((w>>shift)&mask))
		}
	}
	if len(entries) < expectedEntries {
		return nil, fmt.Errorf("bit-packed array produced %d entries, want %d", len(entries), expectedEntries)
	}
	return entries, nil
}
