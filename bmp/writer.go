/*
Package bmp implements a Windows BMP encoder for indexed ART tiles.

Tiles are written as uncompressed 32-bit images, bottom-up. Each index
is resolved through the palette to BGR and the Build engine's
transparent magenta is keyed out, but only at palette index 255; this
color-value rule is deliberately distinct from the conversion engine's
generic index-0 rule.
*/
package bmp

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/bodgit/art2img/art"
	"github.com/bodgit/art2img/convert"
	"github.com/bodgit/art2img/palette"
)

// ErrEncoding is wrapped by every encode failure. Failures are per-tile
// and non-fatal to batch callers.
var ErrEncoding = errors.New("bmp: encoding failed")

const (
	fileHeaderSize = 14
	infoHeaderSize = 40
	bitsPerPixel   = 32
)

type fileHeader struct {
	Signature  [2]byte
	FileSize   uint32
	Reserved   uint32
	DataOffset uint32
}

type infoHeader struct {
	Size          uint32
	Width         int32
	Height        int32 // positive height selects bottom-up row order
	Planes        uint16
	BitCount      uint16
	Compression   uint32
	SizeImage     uint32
	XPelsPerMeter int32
	YPelsPerMeter int32
	ClrUsed       uint32
	ClrImportant  uint32
}

type encoder struct {
	w io.Writer
}

func (e *encoder) encode(t *art.Tile, pal *palette.Palette) error {
	size := t.Width * t.Height * 4

	fh := fileHeader{
		Signature:  [2]byte{'B', 'M'},
		FileSize:   uint32(fileHeaderSize + infoHeaderSize + size),
		DataOffset: fileHeaderSize + infoHeaderSize,
	}
	if err := binary.Write(e.w, binary.LittleEndian, &fh); err != nil {
		return err
	}

	ih := infoHeader{
		Size:      infoHeaderSize,
		Width:     int32(t.Width),
		Height:    int32(t.Height),
		Planes:    1,
		BitCount:  bitsPerPixel,
		SizeImage: uint32(size),
	}
	if err := binary.Write(e.w, binary.LittleEndian, &ih); err != nil {
		return err
	}

	// Rows are 4-byte aligned by construction at 32 bits per pixel, so
	// no padding is ever needed.
	row := make([]byte, t.Width*4)
	for y := t.Height - 1; y >= 0; y-- {
		for x := 0; x < t.Width; x++ {
			idx := t.PixelAt(x, y)
			c := pal.Color(idx)

			a := byte(0xff)
			if idx == 0xff && convert.MagentaKey(c.R, c.G, c.B) {
				a = 0
			}

			row[x*4] = c.B
			row[x*4+1] = c.G
			row[x*4+2] = c.R
			row[x*4+3] = a
		}
		if _, err := e.w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

// Encode writes tile t to w in BMP format, resolving indices through
// pal. Empty tiles succeed without producing output.
func Encode(w io.Writer, t *art.Tile, pal *palette.Palette) error {
	if t.Empty() {
		return nil
	}

	if len(t.Pixels) != t.Width*t.Height {
		return errors.Wrapf(ErrEncoding, "tile %d: %d pixel bytes, want %d", t.ID, len(t.Pixels), t.Width*t.Height)
	}

	e := &encoder{w: w}

	return e.encode(t, pal)
}
