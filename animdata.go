package art2img

import (
	"bufio"
	"fmt"
	"io"

	"github.com/bodgit/art2img/art"
)

// AnimDataFilename is the name of the animation sidecar written next to
// the extracted tiles.
const AnimDataFilename = "animdata.ini"

// WriteAnimData writes the animation metadata sidecar for tiles. Each
// animated tile gets a ranged section naming its first and last frame,
// and each tile with a non-zero center offset or flags gets its own
// section. Section names carry ext so downstream tools can pair the
// entries with the extracted images.
//
// The textual layout (4-digit zero-padded tile numbers, three spaces of
// property indent, one blank line between sections) is fixed; existing
// tools parse it as-is.
func WriteAnimData(w io.Writer, tiles []art.Tile, ext string) error {
	bw := bufio.NewWriter(w)

	sections := 0
	section := func(format string, a ...interface{}) {
		if sections > 0 {
			fmt.Fprintln(bw)
		}
		sections++
		fmt.Fprintf(bw, format, a...)
	}

	for i := range tiles {
		t := &tiles[i]
		a := t.Anim

		if a.Animated() {
			section("[tile%04d.%s -> tile%04d.%s]\n", t.ID, ext, t.ID+int(a.Frames), ext)
			fmt.Fprintf(bw, "   AnimationType=%s\n", a.Kind)
			fmt.Fprintf(bw, "   AnimationSpeed=%d\n", a.Speed)
		}

		if a.XOffset != 0 || a.YOffset != 0 || a.Other != 0 {
			section("[tile%04d.%s]\n", t.ID, ext)
			fmt.Fprintf(bw, "   XCenterOffset=%d\n", a.XOffset)
			fmt.Fprintf(bw, "   YCenterOffset=%d\n", a.YOffset)
			fmt.Fprintf(bw, "   OtherFlags=%d\n", a.Other)
		}
	}

	return bw.Flush()
}
