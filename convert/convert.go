/*
Package convert turns indexed ART tiles into row-major RGBA images.

The per-pixel pipeline samples the column-major tile, optionally remaps
the index through the tile's lookup table, resolves it through the
palette (shaded or unshaded), applies the selected transparency policy
and premultiplies color by alpha. An optional whole-image matte-hygiene
pass then erodes and blurs the alpha channel to reduce fringing around
keyed-out pixels.
*/
package convert

import (
	"image"
	"image/color"

	"github.com/pkg/errors"

	"github.com/bodgit/art2img/art"
	"github.com/bodgit/art2img/palette"
)

// ErrConversion is wrapped by every conversion failure. A failing tile
// never produces a partial image.
var ErrConversion = errors.New("convert: conversion failed")

// TransparencyPolicy selects how transparent pixels are detected. The
// two policies are deliberately kept separate: legacy content exists
// that depends on either behavior.
type TransparencyPolicy int

const (
	// ByIndexZero treats palette index 0 as transparent, regardless of
	// the color stored there. This is the engine's generic rule.
	ByIndexZero TransparencyPolicy = iota

	// ByColorValueAt255 treats a pixel as transparent only when its
	// resolved color is the Build magenta and its source index is 255.
	ByColorValueAt255
)

// Options control a single tile conversion.
type Options struct {
	// ApplyLookup remaps indices through the tile's lookup table when
	// the tile carries one.
	ApplyLookup bool

	// Shade selects a shade table; nil disables shading.
	Shade *uint8

	// FixTransparency keys out pixels matched by Policy.
	FixTransparency bool

	Policy TransparencyPolicy

	// PremultiplyAlpha folds alpha into the color channels.
	PremultiplyAlpha bool

	// MatteHygiene erodes and blurs the alpha channel after conversion.
	MatteHygiene bool
}

// MagentaKey reports whether a resolved color matches the Build
// engine's transparent magenta.
func MagentaKey(r, g, b uint8) bool {
	return r >= 250 && b >= 250 && g <= 5
}

// ToRGBA converts one tile into a row-major RGBA image. Empty tiles
// succeed trivially with a zero-sized image; a pixel span whose length
// does not match the tile dimensions fails the whole call.
func ToRGBA(t *art.Tile, pal *palette.Palette, o Options) (*image.RGBA, error) {
	if t == nil {
		return nil, errors.Wrap(ErrConversion, "nil tile")
	}

	if t.Empty() {
		return image.NewRGBA(image.Rect(0, 0, t.Width, t.Height)), nil
	}

	if len(t.Pixels) != t.Width*t.Height {
		return nil, errors.Wrapf(ErrConversion, "tile %d: %d pixel bytes, want %d", t.ID, len(t.Pixels), t.Width*t.Height)
	}

	img := image.NewRGBA(image.Rect(0, 0, t.Width, t.Height))

	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			idx := t.PixelAt(x, y)

			if o.ApplyLookup && int(idx) < len(t.Lookup) {
				idx = t.Lookup[idx]
			}

			var c color.RGBA
			if o.Shade != nil && pal.ShadeCount() > 0 {
				c = pal.ShadedColor(int(*o.Shade), idx)
			} else {
				c = pal.Color(idx)
			}

			if o.FixTransparency && transparent(o.Policy, idx, c) {
				c = color.RGBA{}
			}

			off := img.PixOffset(x, y)
			img.Pix[off] = c.R
			img.Pix[off+1] = c.G
			img.Pix[off+2] = c.B
			img.Pix[off+3] = c.A
		}
	}

	if o.PremultiplyAlpha {
		premultiply(img)
	}

	// Matte hygiene has to run before the final premultiply pass;
	// multiplying first and eroding afterwards leaves stale color in
	// the softened edge pixels.
	if o.MatteHygiene {
		matteHygiene(img)

		if o.PremultiplyAlpha {
			premultiply(img)
		}
	}

	return img, nil
}

func transparent(policy TransparencyPolicy, idx uint8, c color.RGBA) bool {
	switch policy {
	case ByColorValueAt255:
		return idx == 0xff && MagentaKey(c.R, c.G, c.B)
	default:
		return idx == 0
	}
}

// premultiply folds alpha into the color channels using the integer
// approximation c*(a+1)>>8. Opaque pixels are left untouched; fully
// transparent pixels come out zeroed either way.
func premultiply(img *image.RGBA) {
	for i := 0; i < len(img.Pix); i += 4 {
		a := uint32(img.Pix[i+3])
		if a == 0xff {
			continue
		}
		for c := 0; c < 3; c++ {
			img.Pix[i+c] = uint8(uint32(img.Pix[i+c]) * (a + 1) >> 8)
		}
	}
}

// matteHygiene replaces the alpha channel with an eroded, box-blurred
// copy of itself. Border pixels pass through both stages unchanged.
func matteHygiene(img *image.RGBA) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return
	}

	alpha := make([]byte, w*h)
	for i := range alpha {
		alpha[i] = img.Pix[i*4+3]
	}

	blurred := boxBlur(erode(alpha, w, h), w, h)

	for i := range blurred {
		img.Pix[i*4+3] = blurred[i]
	}
}

// erode replaces each interior pixel's alpha with the minimum of its
// four axis neighbours, skipping pixels that are already fully
// transparent.
func erode(src []byte, w, h int) []byte {
	dst := append([]byte(nil), src...)

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			if src[i] == 0 {
				continue
			}

			m := src[i-1]
			if v := src[i+1]; v < m {
				m = v
			}
			if v := src[i-w]; v < m {
				m = v
			}
			if v := src[i+w]; v < m {
				m = v
			}

			dst[i] = m
		}
	}

	return dst
}

// boxBlur applies an unweighted 3x3 mean, truncated to integer, at
// interior pixels.
func boxBlur(src []byte, w, h int) []byte {
	dst := append([]byte(nil), src...)

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			sum := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					sum += int(src[(y+dy)*w+(x+dx)])
				}
			}
			dst[y*w+x] = uint8(sum / 9)
		}
	}

	return dst
}
