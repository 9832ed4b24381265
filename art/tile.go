package art

// Tile is a non-owning view of one indexed image inside an Archive. It
// remains valid for the lifetime of its parent archive.
type Tile struct {
	ID     int
	Width  int
	Height int
	Anim   Anim

	// Pixels holds Width*Height palette indices in column-major order.
	Pixels []byte

	// Lookup is an optional 256-byte remap of palette indices, present
	// only when the archive carried trailing lookup blocks.
	Lookup []byte
}

// Empty reports whether the tile has no pixels. Empty tiles are valid
// and convert or encode as successful no-ops.
func (t *Tile) Empty() bool {
	return t.Width == 0 || t.Height == 0
}

// PixelAt returns the palette index at (x, y). This is the single place
// that knows about the column-major layout; every consumer goes through
// it to avoid transposition bugs.
func (t *Tile) PixelAt(x, y int) byte {
	return t.Pixels[x*t.Height+y]
}
