package palette

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPalette(t *testing.T, rgb []byte, shades [][]byte, trans []byte) []byte {
	t.Helper()

	require.Len(t, rgb, rgbSize)

	b := append([]byte(nil), rgb...)

	var count [2]byte
	binary.LittleEndian.PutUint16(count[:], uint16(len(shades)))
	b = append(b, count[:]...)

	for _, table := range shades {
		require.Len(t, table, Entries)
		b = append(b, table...)
	}

	return append(b, trans...)
}

func grayRamp() []byte {
	rgb := make([]byte, rgbSize)
	for i := 0; i < Entries; i++ {
		v := byte(i & 0x3f)
		rgb[i*3], rgb[i*3+1], rgb[i*3+2] = v, v, v
	}
	return rgb
}

func TestFromBytesMinimal(t *testing.T) {
	// Bare palette: 768 RGB bytes and a zero shade count. Pins the raw
	// reads; a reader yielding zero bits would still "parse" but
	// return all-black entries.
	rgb := grayRamp()
	p, err := FromBytes(buildPalette(t, rgb, nil, nil))
	require.NoError(t, err)

	assert.Equal(t, 0, p.ShadeCount())
	assert.False(t, p.HasTranslucency())
	assert.Equal(t, byte(10*4), p.Color(10).R)
}

func TestColorScaling(t *testing.T) {
	rgb := make([]byte, rgbSize)
	for i := 0; i < 64; i++ {
		rgb[i*3] = byte(i)
		rgb[i*3+1] = byte(i) / 2
		rgb[i*3+2] = 63 - byte(i)
	}

	p, err := FromBytes(buildPalette(t, rgb, nil, nil))
	require.NoError(t, err)

	for i := 0; i < 64; i++ {
		c := p.Color(uint8(i))
		assert.Equal(t, byte(i)*4, c.R)
		assert.Equal(t, byte(i)/2*4, c.G)
		assert.Equal(t, (63-byte(i))*4, c.B)
		assert.Equal(t, byte(0xff), c.A)
	}

	// The legal maximum never reaches full white.
	assert.Equal(t, byte(252), p.Color(63).R)
}

func TestShadedColor(t *testing.T) {
	shade := make([]byte, Entries)
	for i := range shade {
		shade[i] = byte((i + 1) % Entries)
	}

	p, err := FromBytes(buildPalette(t, grayRamp(), [][]byte{shade}, nil))
	require.NoError(t, err)

	require.Equal(t, 1, p.ShadeCount())
	assert.Equal(t, p.Color(6), p.ShadedColor(0, 5))

	// Out-of-range shade indices fall back to the unshaded color.
	assert.Equal(t, p.Color(5), p.ShadedColor(1, 5))
	assert.Equal(t, p.Color(5), p.ShadedColor(-1, 5))

	// So does a palette with no shade tables at all.
	bare, err := FromBytes(buildPalette(t, grayRamp(), nil, nil))
	require.NoError(t, err)
	assert.Equal(t, bare.Color(5), bare.ShadedColor(0, 5))
}

func TestTranslucency(t *testing.T) {
	p, err := FromBytes(buildPalette(t, grayRamp(), nil, nil))
	require.NoError(t, err)
	assert.False(t, p.HasTranslucency())
	assert.Equal(t, byte(0), p.Blend(1, 2))

	trans := make([]byte, TransTableSize)
	trans[1<<8|2] = 42
	p, err = FromBytes(buildPalette(t, grayRamp(), nil, trans))
	require.NoError(t, err)
	assert.True(t, p.HasTranslucency())
	assert.Equal(t, byte(42), p.Blend(1, 2))

	// Short trailing data is not a translucency table, and not an error.
	p, err = FromBytes(buildPalette(t, grayRamp(), nil, make([]byte, 1000)))
	require.NoError(t, err)
	assert.False(t, p.HasTranslucency())
}

func TestMarshalBinaryRoundTrip(t *testing.T) {
	shade1, shade2 := make([]byte, Entries), make([]byte, Entries)
	for i := range shade1 {
		shade1[i] = byte(i)
		shade2[i] = byte(255 - i)
	}
	trans := make([]byte, TransTableSize)
	for i := range trans {
		trans[i] = byte(i * 7)
	}

	data := buildPalette(t, grayRamp(), [][]byte{shade1, shade2}, trans)

	p, err := FromBytes(data)
	require.NoError(t, err)

	out, err := p.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, data, out)

	// And the serialized form parses back to the same palette.
	p2, err := FromBytes(out)
	require.NoError(t, err)
	assert.Equal(t, p, p2)
}

func TestFromBytesErrors(t *testing.T) {
	t.Run("short header", func(t *testing.T) {
		_, err := FromBytes(make([]byte, rgbSize))
		require.ErrorIs(t, err, ErrFormat)
	})

	t.Run("shade count ceiling", func(t *testing.T) {
		data := buildPalette(t, grayRamp(), nil, nil)
		binary.LittleEndian.PutUint16(data[rgbSize:], maxShadeTables+1)
		_, err := FromBytes(data)
		require.ErrorIs(t, err, ErrFormat)
	})

	t.Run("short shade tables", func(t *testing.T) {
		data := buildPalette(t, grayRamp(), nil, nil)
		binary.LittleEndian.PutUint16(data[rgbSize:], 2)
		data = append(data, make([]byte, Entries)...)
		_, err := FromBytes(data)
		require.ErrorIs(t, err, ErrFormat)
	})
}
