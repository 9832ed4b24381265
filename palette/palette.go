/*
Package palette implements a parser for Build-engine PALETTE.DAT files.

The file starts with 256 RGB triples of 6-bit components, followed by a
16-bit count of shade tables, the shade tables themselves (256 bytes
each, remapping palette indices to darker or lighter entries) and an
optional trailing 65536-byte translucency table blending two indices
into one.
*/
package palette

import (
	"bytes"
	"encoding/binary"
	"image/color"

	"github.com/gravestench/bitstream"
	"github.com/pkg/errors"
)

const (
	// Entries is the number of colors in a Build palette.
	Entries = 256

	rgbSize = Entries * 3

	// TransTableSize is the size of the translucency blend table.
	TransTableSize = Entries * Entries

	maxShadeTables = 256
)

// ErrFormat is wrapped by every parse failure.
var ErrFormat = errors.New("palette: invalid format")

// Palette is an immutable, parsed PALETTE.DAT. It may be shared
// read-only across concurrent workers.
type Palette struct {
	rgb      [rgbSize]byte
	shades   []byte
	trans    [TransTableSize]byte
	hasTrans bool
}

// FromBytes parses a palette blob. The 768 RGB bytes are taken verbatim;
// component values are not validated against the nominal 0-63 range,
// matching the legacy loader's permissiveness. A missing translucency
// table is not an error and leaves the table zero-filled.
func FromBytes(data []byte) (*Palette, error) {
	if len(data) < rgbSize+2 {
		return nil, errors.Wrapf(ErrFormat, "header: got %d bytes, want at least %d", len(data), rgbSize+2)
	}

	stream := bitstream.ReaderFromBytes(data...)

	p := &Palette{}

	raw, err := stream.Next(rgbSize).Bytes().AsBytes()
	if err != nil {
		return nil, errors.Wrap(err, "palette: reading rgb entries")
	}
	copy(p.rgb[:], raw)

	count, err := stream.Next(2).Bytes().AsUInt16()
	if err != nil {
		return nil, errors.Wrap(err, "palette: reading shade table count")
	}
	if count > maxShadeTables {
		return nil, errors.Wrapf(ErrFormat, "shade tables: count %d exceeds limit of %d", count, maxShadeTables)
	}

	if got := len(data) - rgbSize - 2; got < int(count)*Entries {
		return nil, errors.Wrapf(ErrFormat, "shade tables: got %d bytes, want %d", got, int(count)*Entries)
	}

	if count > 0 {
		raw, err = stream.Next(int(count) * Entries).Bytes().AsBytes()
		if err != nil {
			return nil, errors.Wrap(err, "palette: reading shade tables")
		}
		p.shades = append([]byte(nil), raw...)
	}

	if rest := len(data) - rgbSize - 2 - int(count)*Entries; rest >= TransTableSize {
		raw, err = stream.Next(TransTableSize).Bytes().AsBytes()
		if err != nil {
			return nil, errors.Wrap(err, "palette: reading translucency table")
		}
		copy(p.trans[:], raw)
		p.hasTrans = true
	}

	return p, nil
}

// Color resolves entry i to an opaque 8-bit color. The stored 6-bit
// components are scaled by four, which is exact for the legal 0-63
// range (63 maps to 252); out-of-range components simply wrap.
func (p *Palette) Color(i uint8) color.RGBA {
	return color.RGBA{
		R: p.rgb[int(i)*3] << 2,
		G: p.rgb[int(i)*3+1] << 2,
		B: p.rgb[int(i)*3+2] << 2,
		A: 0xff,
	}
}

// ShadeCount returns the number of shade tables present.
func (p *Palette) ShadeCount() int {
	return len(p.shades) / Entries
}

// ShadedColor resolves entry i through shade table shade. An
// out-of-range shade, or a palette without shade tables, falls back to
// the unshaded color.
func (p *Palette) ShadedColor(shade int, i uint8) color.RGBA {
	if shade < 0 || shade >= p.ShadeCount() {
		return p.Color(i)
	}
	return p.Color(p.shades[shade*Entries+int(i)])
}

// HasTranslucency reports whether the file carried a translucency table.
func (p *Palette) HasTranslucency() bool {
	return p.hasTrans
}

// Blend returns the palette index produced by blending entries a and b
// through the translucency table. Without a table the result is always
// zero.
func (p *Palette) Blend(a, b uint8) uint8 {
	return p.trans[int(a)<<8|int(b)]
}

// MarshalBinary re-serializes the palette into the PALETTE.DAT layout.
// Parsing the result yields an identical palette.
func (p *Palette) MarshalBinary() ([]byte, error) {
	b := new(bytes.Buffer)

	if _, err := b.Write(p.rgb[:]); err != nil {
		return nil, err
	}

	count := uint16(p.ShadeCount())
	if err := binary.Write(b, binary.LittleEndian, &count); err != nil {
		return nil, err
	}

	if _, err := b.Write(p.shades); err != nil {
		return nil, err
	}

	if p.hasTrans {
		if _, err := b.Write(p.trans[:]); err != nil {
			return nil, err
		}
	}

	return b.Bytes(), nil
}
