package bmp

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodgit/art2img/art"
	"github.com/bodgit/art2img/palette"
)

func testPalette(t *testing.T, overrides map[uint8][3]byte) *palette.Palette {
	t.Helper()

	data := make([]byte, palette.Entries*3+2)
	for i := 0; i < palette.Entries; i++ {
		data[i*3] = byte(i & 0x3f)
		data[i*3+1] = byte(i&0x3f) / 2
		data[i*3+2] = byte(i&0x3f) / 4
	}
	for i, rgb := range overrides {
		copy(data[int(i)*3:], rgb[:])
	}

	p, err := palette.FromBytes(data)
	require.NoError(t, err)

	return p
}

func TestEncode(t *testing.T) {
	pal := testPalette(t, nil)

	// 2x2 tile, column-major: pixels[x*2+y].
	tile := &art.Tile{
		Width:  2,
		Height: 2,
		Pixels: []byte{1, 2, 3, 4},
	}

	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, tile, pal))

	out := b.Bytes()
	require.Len(t, out, fileHeaderSize+infoHeaderSize+16)

	le := binary.LittleEndian

	assert.Equal(t, []byte{'B', 'M'}, out[0:2])
	assert.Equal(t, uint32(len(out)), le.Uint32(out[2:]))  // embedded file size
	assert.Equal(t, uint32(54), le.Uint32(out[10:]))       // pixel data offset
	assert.Equal(t, uint32(40), le.Uint32(out[14:]))       // info header size
	assert.Equal(t, int32(2), int32(le.Uint32(out[18:])))  // width
	assert.Equal(t, int32(2), int32(le.Uint32(out[22:])))  // positive height, bottom-up
	assert.Equal(t, uint16(1), le.Uint16(out[26:]))        // planes
	assert.Equal(t, uint16(32), le.Uint16(out[28:]))       // bits per pixel
	assert.Equal(t, uint32(0), le.Uint32(out[30:]))        // BI_RGB
	assert.Equal(t, uint32(16), le.Uint32(out[34:]))       // image size

	// Bottom row first: (0,1) is index 2, (1,1) is index 4, stored BGRA.
	pix := out[54:]
	assert.Equal(t, []byte{0, 4, 8, 0xff}, pix[0:4])   // index 2: rgb (8, 4, 0)
	assert.Equal(t, []byte{4, 8, 16, 0xff}, pix[4:8])  // index 4: rgb (16, 8, 4)
	assert.Equal(t, []byte{0, 0, 4, 0xff}, pix[8:12])  // index 1: rgb (4, 0, 0)
	assert.Equal(t, []byte{0, 4, 12, 0xff}, pix[12:16]) // index 3: rgb (12, 4, 0)
}

func TestEncodeMagentaKey(t *testing.T) {
	magenta := [3]byte{63, 1, 63}
	pal := testPalette(t, map[uint8][3]byte{200: magenta, 255: magenta})

	tile := &art.Tile{
		Width:  2,
		Height: 1,
		Pixels: []byte{255, 200},
	}

	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, tile, pal))

	pix := b.Bytes()[54:]

	// Magenta at index 255 is keyed out; the same color anywhere else
	// stays opaque.
	assert.Equal(t, []byte{252, 4, 252, 0}, pix[0:4])
	assert.Equal(t, []byte{252, 4, 252, 0xff}, pix[4:8])
}

func TestEncodeEmptyTile(t *testing.T) {
	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, &art.Tile{Width: 3}, testPalette(t, nil)))
	assert.Zero(t, b.Len())
}

func TestEncodeSizeMismatch(t *testing.T) {
	tile := &art.Tile{
		Width:  2,
		Height: 2,
		Pixels: []byte{1, 2, 3, 4, 5},
	}
	err := Encode(new(bytes.Buffer), tile, testPalette(t, nil))
	require.ErrorIs(t, err, ErrEncoding)
}
