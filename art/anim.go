package art

// AnimKind is the animation playback mode stored in bits 6-7 of the
// packed animation word.
type AnimKind uint8

const (
	AnimNone AnimKind = iota
	AnimOscillating
	AnimForward
	AnimBackward
)

func (k AnimKind) String() string {
	switch k {
	case AnimOscillating:
		return "oscillation"
	case AnimForward:
		return "forward"
	case AnimBackward:
		return "backward"
	default:
		return "none"
	}
}

// Anim is the decoded form of a tile's packed 32-bit animation word.
type Anim struct {
	Frames  uint8 // bits 0-5, number of additional frames
	Kind    AnimKind
	YOffset int8  // bits 8-15, vertical center offset
	XOffset int8  // bits 16-23, horizontal center offset
	Speed   uint8 // bits 24-27
	Other   uint8 // bits 28-31, engine-specific flags
}

// DecodeAnim unpacks an animation word.
func DecodeAnim(word uint32) Anim {
	return Anim{
		Frames:  uint8(word & 0x3f),
		Kind:    AnimKind(word >> 6 & 0x3),
		YOffset: int8(word >> 8),
		XOffset: int8(word >> 16),
		Speed:   uint8(word >> 24 & 0xf),
		Other:   uint8(word >> 28 & 0xf),
	}
}

// Encode packs the descriptor back into its wire form. For any a with
// in-range fields, DecodeAnim(a.Encode()) == a.
func (a Anim) Encode() uint32 {
	return uint32(a.Frames&0x3f) |
		uint32(a.Kind&0x3)<<6 |
		uint32(uint8(a.YOffset))<<8 |
		uint32(uint8(a.XOffset))<<16 |
		uint32(a.Speed&0xf)<<24 |
		uint32(a.Other&0xf)<<28
}

// Animated reports whether the tile actually cycles through frames.
func (a Anim) Animated() bool {
	return a.Kind != AnimNone && a.Frames > 0
}
