/*
Package art implements a parser for Build-engine ART tile archives as
used by Duke Nukem 3D, Blood and other games of that era.

An ART file holds a contiguous range of tiles. The 16-byte header is
followed by three parallel arrays (widths, heights, packed animation
words), the raw pixel payload and, optionally, trailing 256-byte lookup
blocks. Tile pixels are stored column-major; the pixel at (x, y) lives
at offset x*height+y within the tile's span.
*/
package art

import (
	"github.com/gravestench/bitstream"
	"github.com/pkg/errors"
)

const (
	headerSize = 16

	// Version is the only ART revision the Build tools ever shipped.
	Version = 1

	// MaxTiles mirrors the legacy engine's hard tile limit.
	MaxTiles = 9216

	// MaxTileDim is the largest width or height a non-empty tile may have.
	MaxTileDim = 256

	// LookupSize is the size of one per-tile lookup block.
	LookupSize = 256
)

// ErrFormat is wrapped by every parse failure so callers can classify
// malformed input separately from I/O errors.
var ErrFormat = errors.New("art: invalid format")

// Archive is an immutable, parsed ART file. Tiles reference the pixel
// payload owned by the archive; they stay valid for as long as the
// archive itself.
type Archive struct {
	TileStart uint32
	TileEnd   uint32
	Tiles     []Tile

	pixels []byte
}

// PayloadSize returns the number of pixel bytes consumed from the file,
// which always equals the sum of width*height over all tiles.
func (a *Archive) PayloadSize() int {
	return len(a.pixels)
}

// FromBytes parses an ART archive. When withLookup is set, any bytes
// trailing the pixel payload are sliced into successive 256-byte lookup
// blocks, one per tile in order, until they run out.
func FromBytes(data []byte, withLookup bool) (*Archive, error) {
	if len(data) < headerSize {
		return nil, errors.Wrapf(ErrFormat, "header: got %d bytes, want at least %d", len(data), headerSize)
	}

	stream := bitstream.ReaderFromBytes(data...)

	version, _ := stream.Next(4).Bytes().AsInt32()
	if uint32(version) != Version {
		return nil, errors.Wrapf(ErrFormat, "header: version %d, want %d", version, Version)
	}

	// The tile count stored here is informational only; the authoritative
	// count is derived from the tile range below.
	if res := stream.Next(4).Bytes(); res.Error != nil {
		return nil, errors.Wrap(res.Error, "art: reading header")
	}

	start, _ := stream.Next(4).Bytes().AsInt32()
	end, err := stream.Next(4).Bytes().AsInt32()
	if err != nil {
		return nil, errors.Wrap(err, "art: reading header")
	}

	tileStart, tileEnd := uint32(start), uint32(end)
	if tileStart > tileEnd {
		return nil, errors.Wrapf(ErrFormat, "header: inverted tile range %d-%d", tileStart, tileEnd)
	}

	count := int(tileEnd-tileStart) + 1
	if count > MaxTiles {
		return nil, errors.Wrapf(ErrFormat, "header: %d tiles exceeds limit of %d", count, MaxTiles)
	}

	// Three parallel arrays: all widths, then all heights, then all
	// animation words. They are not interleaved per tile.
	if got := len(data) - headerSize; got < 8*count {
		return nil, errors.Wrapf(ErrFormat, "tile arrays: got %d bytes, want %d", got, 8*count)
	}

	widths := make([]uint16, count)
	for i := range widths {
		widths[i], _ = stream.Next(2).Bytes().AsUInt16()
	}

	heights := make([]uint16, count)
	for i := range heights {
		heights[i], _ = stream.Next(2).Bytes().AsUInt16()
	}

	anims := make([]uint32, count)
	for i := range anims {
		word, err := stream.Next(4).Bytes().AsInt32()
		if err != nil {
			return nil, errors.Wrap(err, "art: reading animation words")
		}
		anims[i] = uint32(word)
	}

	total := 0
	for i, w := range widths {
		h := heights[i]
		switch {
		case w == 0 && h == 0:
			// Empty tile, a valid no-op.
		case w >= 1 && w <= MaxTileDim && h >= 1 && h <= MaxTileDim:
		default:
			return nil, errors.Wrapf(ErrFormat, "tile %d: invalid dimensions %dx%d", int(tileStart)+i, w, h)
		}
		total += int(w) * int(h)
	}

	offset := headerSize + 8*count
	if got := len(data) - offset; got < total {
		return nil, errors.Wrapf(ErrFormat, "pixel payload: got %d bytes, want %d", got, total)
	}

	a := &Archive{
		TileStart: tileStart,
		TileEnd:   tileEnd,
		Tiles:     make([]Tile, count),
		pixels:    append([]byte(nil), data[offset:offset+total]...),
	}

	pos := 0
	for i := range a.Tiles {
		w, h := int(widths[i]), int(heights[i])
		n := w * h

		a.Tiles[i] = Tile{
			ID:     int(tileStart) + i,
			Width:  w,
			Height: h,
			Anim:   DecodeAnim(anims[i]),
			Pixels: a.pixels[pos : pos+n : pos+n],
		}

		pos += n
	}

	if withLookup {
		rest := data[offset+total:]
		for i := 0; i < len(a.Tiles) && len(rest) >= LookupSize; i++ {
			a.Tiles[i].Lookup = append([]byte(nil), rest[:LookupSize]...)
			rest = rest[LookupSize:]
		}
	}

	return a, nil
}
