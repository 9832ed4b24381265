package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/gookit/color"
	"github.com/urfave/cli/v2"

	"github.com/bodgit/art2img"
	"github.com/bodgit/art2img/art"
	"github.com/bodgit/art2img/convert"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

// printer is the terminal color capability, decided once at startup and
// passed around explicitly instead of living in package-level state.
type printer struct {
	heading func(format string, a ...interface{})
	good    func(format string, a ...interface{})
	bad     func(format string, a ...interface{})
}

func plainf(format string, a ...interface{}) {
	fmt.Printf(format, a...)
}

func newPrinter(colored bool) *printer {
	if !colored {
		return &printer{
			heading: plainf,
			good:    plainf,
			bad:     plainf,
		}
	}
	return &printer{
		heading: color.New(color.FgCyan, color.OpBold).Printf,
		good:    color.Green.Printf,
		bad:     color.Red.Printf,
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func extract(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	opts := art2img.ExtractOptions{
		Format:   c.String("format"),
		Workers:  c.Int("workers"),
		AnimData: c.Bool("anim"),
		Convert: convert.Options{
			ApplyLookup:      c.Bool("lookup"),
			FixTransparency:  c.Bool("transparency"),
			PremultiplyAlpha: c.Bool("premultiply"),
			MatteHygiene:     c.Bool("matte"),
		},
	}
	if shade := c.Int("shade"); shade >= 0 {
		s := uint8(shade)
		opts.Convert.Shade = &s
	}

	e := art2img.New(newLogger(c))

	summary, err := e.Extract(c.Args().First(), c.String("palette"), c.String("output"), opts)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	p := newPrinter(!c.Bool("no-color"))
	p.good("%d of %d tiles written", summary.Written, summary.Tiles)
	if summary.Skipped > 0 {
		fmt.Printf(", %d empty", summary.Skipped)
	}
	if summary.Failed > 0 {
		p.bad(", %d failed", summary.Failed)
	}
	fmt.Println()

	if summary.Failed > 0 {
		return cli.NewExitError("some tiles failed to extract", 1)
	}

	return nil
}

func info(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	data, err := os.ReadFile(c.Args().First())
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	archive, err := art.FromBytes(data, c.Bool("lookup"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	p := newPrinter(!c.Bool("no-color"))
	p.heading("%s: tiles %d-%d, %d pixel bytes\n", c.Args().First(), archive.TileStart, archive.TileEnd, archive.PayloadSize())

	for i := range archive.Tiles {
		t := &archive.Tiles[i]
		if t.Empty() && !c.Bool("all") {
			continue
		}

		fmt.Printf("tile%04d %3dx%-3d", t.ID, t.Width, t.Height)
		if t.Anim.Animated() {
			fmt.Printf(" %s x%d speed %d", t.Anim.Kind, t.Anim.Frames, t.Anim.Speed)
		}
		if t.Anim.XOffset != 0 || t.Anim.YOffset != 0 {
			fmt.Printf(" offset %d,%d", t.Anim.XOffset, t.Anim.YOffset)
		}
		if t.Lookup != nil {
			fmt.Print(" lookup")
		}
		fmt.Println()
	}

	return nil
}

func main() {
	app := cli.NewApp()

	app.Name = "art2img"
	app.Usage = "Build-engine ART file extraction utility"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
		&cli.BoolFlag{
			Name:  "no-color",
			Usage: "disable colored output",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "extract",
			Usage:       "Extract all tiles from an ART file",
			Description: "",
			ArgsUsage:   "FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "palette",
					Aliases: []string{"p"},
					Value:   "PALETTE.DAT",
					Usage:   "path to palette file",
				},
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Value:   ".",
					Usage:   "output directory",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   art2img.FormatTGA,
					Usage:   "output format (png, tga or bmp)",
				},
				&cli.IntFlag{
					Name:  "workers",
					Value: 10,
					Usage: "number of concurrent tile workers",
				},
				&cli.BoolFlag{
					Name:  "lookup",
					Usage: "apply per-tile lookup tables",
				},
				&cli.IntFlag{
					Name:  "shade",
					Value: -1,
					Usage: "shade table index, -1 to disable",
				},
				&cli.BoolFlag{
					Name:  "transparency",
					Usage: "key out transparent pixels (png only)",
				},
				&cli.BoolFlag{
					Name:  "premultiply",
					Usage: "premultiply color by alpha (png only)",
				},
				&cli.BoolFlag{
					Name:  "matte",
					Usage: "erode and blur the alpha matte (png only)",
				},
				&cli.BoolFlag{
					Name:  "anim",
					Usage: "write animdata.ini",
				},
			},
			Action: extract,
		},
		{
			Name:        "info",
			Usage:       "Show the contents of an ART file",
			Description: "",
			ArgsUsage:   "FILE",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "all",
					Usage: "include empty tiles",
				},
				&cli.BoolFlag{
					Name:  "lookup",
					Usage: "report per-tile lookup tables",
				},
			},
			Action: info,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
