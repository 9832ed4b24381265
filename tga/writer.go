/*
Package tga implements a Truevision TGA encoder for indexed ART tiles.

Tiles are written as uncompressed color-mapped images: an 18-byte
header, a 256-entry BGR color map at full 8-bit scale, then one palette
index per pixel in bottom-to-top, left-to-right row order. Pixels stay
indexed; the palette travels with the file, so this path bypasses the
RGBA conversion pipeline entirely.
*/
package tga

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/bodgit/art2img/art"
	"github.com/bodgit/art2img/palette"
)

// ErrEncoding is wrapped by every encode failure. Failures are per-tile
// and non-fatal to batch callers.
var ErrEncoding = errors.New("tga: encoding failed")

const (
	imageTypeColorMapped = 1
	colorMapDepth        = 24
	pixelDepth           = 8
)

type header struct {
	IDLength       byte
	ColorMapType   byte
	ImageType      byte
	ColorMapOrigin uint16
	ColorMapLength uint16
	ColorMapDepth  byte
	XOrigin        uint16
	YOrigin        uint16
	Width          uint16
	Height         uint16
	PixelDepth     byte
	Descriptor     byte // zero: bottom-left origin
}

type encoder struct {
	w io.Writer
}

func (e *encoder) encode(t *art.Tile, pal *palette.Palette) error {
	h := header{
		ColorMapType:   1,
		ImageType:      imageTypeColorMapped,
		ColorMapLength: palette.Entries,
		ColorMapDepth:  colorMapDepth,
		Width:          uint16(t.Width),
		Height:         uint16(t.Height),
		PixelDepth:     pixelDepth,
	}
	if err := binary.Write(e.w, binary.LittleEndian, &h); err != nil {
		return err
	}

	// Color map entries are stored blue first.
	var cmap [palette.Entries * 3]byte
	for i := 0; i < palette.Entries; i++ {
		c := pal.Color(uint8(i))
		cmap[i*3] = c.B
		cmap[i*3+1] = c.G
		cmap[i*3+2] = c.R
	}
	if _, err := e.w.Write(cmap[:]); err != nil {
		return err
	}

	// Bottom-left origin, so the bottom row goes out first.
	row := make([]byte, t.Width)
	for y := t.Height - 1; y >= 0; y-- {
		for x := 0; x < t.Width; x++ {
			row[x] = t.PixelAt(x, y)
		}
		if _, err := e.w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

// Encode writes tile t to w in TGA format with pal as its color map.
// Empty tiles succeed without producing output.
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
