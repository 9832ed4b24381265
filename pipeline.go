package art2img

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/bodgit/art2img/art"
	"github.com/bodgit/art2img/bmp"
	"github.com/bodgit/art2img/convert"
	"github.com/bodgit/art2img/palette"
	"github.com/bodgit/art2img/tga"
)

// Supported output formats.
const (
	FormatPNG = "png"
	FormatTGA = "tga"
	FormatBMP = "bmp"
)

const defaultWorkers = 10

// ExtractOptions control a single Extract run.
type ExtractOptions struct {
	// Format is one of FormatPNG, FormatTGA or FormatBMP. Defaults to
	// FormatTGA.
	Format string

	// Workers is the number of concurrent tile workers.
	Workers int

	// AnimData writes an animdata.ini sidecar next to the tiles.
	AnimData bool

	// Convert holds the conversion pipeline knobs. Only the PNG path
	// goes through the RGBA pipeline; TGA and BMP encode the indexed
	// pixels directly.
	Convert convert.Options
}

// Summary reports what a batch run did. Per-tile failures are counted
// here rather than aborting the run.
type Summary struct {
	Tiles   int
	Written int
	Skipped int
	Failed  int
}

type tileResult struct {
	id      int
	skipped bool
	err     error
}

// TileFilename returns the output filename for a tile, e.g. tile0042.tga.
func TileFilename(id int, format string) string {
	return fmt.Sprintf("tile%04d.%s", id, format)
}

// EncodeTile serializes one tile to w in the requested format. Empty
// tiles succeed without producing output.
func EncodeTile(w io.Writer, t *art.Tile, pal *palette.Palette, opts ExtractOptions) error {
	switch opts.Format {
	case FormatTGA:
		return tga.Encode(w, t, pal)
	case FormatBMP:
		return bmp.Encode(w, t, pal)
	case FormatPNG:
		img, err := convert.ToRGBA(t, pal, opts.Convert)
		if err != nil {
			return err
		}
		if img.Rect.Empty() {
			return nil
		}
		return png.Encode(w, img)
	default:
		return errors.Errorf("unknown output format %q", opts.Format)
	}
}

// Extract loads the archive and palette, converts every tile on a
// bounded worker pool and writes one image file per non-empty tile into
// outDir. Load failures are fatal; per-tile conversion, encoding or
// write failures are logged and counted in the returned summary while
// the remaining tiles continue.
func (e *Extractor) Extract(artPath, palettePath, outDir string, opts ExtractOptions) (*Summary, error) {
	if opts.Format == "" {
		opts.Format = FormatTGA
	}
	switch opts.Format {
	case FormatPNG, FormatTGA, FormatBMP:
	default:
		return nil, errors.Errorf("unknown output format %q", opts.Format)
	}

	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}

	data, err := os.ReadFile(palettePath)
	if err != nil {
		return nil, err
	}
	pal, err := palette.FromBytes(data)
	if err != nil {
		return nil, err
	}

	data, err = os.ReadFile(artPath)
	if err != nil {
		return nil, err
	}
	archive, err := art.FromBytes(data, opts.Convert.ApplyLookup)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	tiles, errc := e.findTiles(ctx, archive)
	errcList = append(errcList, errc)

	results := make(chan tileResult)

	var wg sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		errcList = append(errcList, e.tileWorker(ctx, &wg, tiles, results, pal, outDir, opts))
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	summary := &Summary{Tiles: len(archive.Tiles)}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range results {
			switch {
			case r.err != nil:
				summary.Failed++
				e.logger.Printf("tile %04d: %v\n", r.id, r.err)
			case r.skipped:
				summary.Skipped++
			default:
				summary.Written++
			}
		}
	}()

	if err := waitForPipeline(errcList...); err != nil {
		return nil, err
	}
	<-done

	if opts.AnimData {
		f, err := os.Create(filepath.Join(outDir, AnimDataFilename))
		if err != nil {
			return nil, err
		}
		if err := WriteAnimData(f, archive.Tiles, opts.Format); err != nil {
			f.Close()
			return nil, err
		}
		if err := f.Close(); err != nil {
			return nil, err
		}
	}

	return summary, nil
}

func (e *Extractor) findTiles(ctx context.Context, archive *art.Archive) (<-chan *art.Tile, <-chan error) {
	out := make(chan *art.Tile)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		for i := range archive.Tiles {
			select {
			case out <- &archive.Tiles[i]:
			case <-ctx.Done():
				errc <- errors.New("extract cancelled")
				return
			}
		}
	}()
	return out, errc
}

func (e *Extractor) tileWorker(ctx context.Context, wg *sync.WaitGroup, in <-chan *art.Tile, results chan<- tileResult, pal *palette.Palette, outDir string, opts ExtractOptions) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		defer wg.Done()
		for t := range in {
			r := tileResult{id: t.ID}

			switch {
			case t.Empty():
				r.skipped = true
			default:
				r.err = e.exportTile(t, pal, outDir, opts)
			}

			select {
			case results <- r:
			case <-ctx.Done():
				errc <- errors.New("extract cancelled")
				return
			}
		}
	}()
	return errc
}

func (e *Extractor) exportTile(t *art.Tile, pal *palette.Palette, outDir string, opts ExtractOptions) error {
	b := new(bytes.Buffer)
	if err := EncodeTile(b, t, pal, opts); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(outDir, TileFilename(t.ID, opts.Format)))
	if err != nil {
		return err
	}

	if _, err := f.Write(b.Bytes()); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}
