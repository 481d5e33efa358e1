package panorama

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/hashicorp/go-hclog"

	"github.com/panokit/cubetile/pkg/cube"
	perrors "github.com/panokit/cubetile/pkg/errors"
	"github.com/panokit/cubetile/pkg/imaging"
)

// Panorama is a reassembled equirectangular image.
type Panorama struct {
	Image  *image.RGBA
	Width  int
	Height int
	Tiles  int // source tiles composited
}

// Options controls reconstruction.
type Options struct {
	Zoom      int
	Resampler imaging.Resampler
	Logger    hclog.Logger
}

// Reconstruct assembles the panorama from the tiles in dir at opts.Zoom.
// Grid cells without a tile stay black.
func Reconstruct(dir string, opts Options) (*Panorama, error) {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	resampler := opts.Resampler
	if resampler == nil {
		resampler = imaging.Lanczos{}
	}

	tiles, err := ScanTiles(dir, opts.Zoom)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	if cols, rows, ok := ZoomGrid(opts.Zoom); ok {
		tiles = withinGrid(tiles, cols, rows, logger)
	}
	if len(tiles) == 0 {
		return nil, fmt.Errorf("%w: no zoom %d tiles in %s", perrors.ErrNoTilesFound, opts.Zoom, dir)
	}

	maxX, maxY := 0, 0
	for _, t := range tiles {
		maxX = max(maxX, t.X)
		maxY = max(maxY, t.Y)
	}

	width := (maxX + 1) * cube.TileSize
	height := (maxY + 1) * cube.TileSize
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	logger.Debug("🧩 Compositing tiles", "count", len(tiles), "grid", fmt.Sprintf("%dx%d", maxX+1, maxY+1))

	for _, t := range tiles {
		img, err := imaging.Load(t.Path)
		if err != nil {
			return nil, fmt.Errorf("tile (%d,%d): %w", t.X, t.Y, err)
		}

		if imaging.HasAlpha(img) {
			img = imaging.Flatten(img)
		}

		b := img.Bounds()
		if b.Dx() != cube.TileSize || b.Dy() != cube.TileSize {
			logger.Trace("📏 Resizing tile", "x", t.X, "y", t.Y, "from", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()))
			img = resampler.Resize(img, cube.TileSize, cube.TileSize)
			b = img.Bounds()
		}

		at := image.Rect(t.X*cube.TileSize, t.Y*cube.TileSize, (t.X+1)*cube.TileSize, (t.Y+1)*cube.TileSize)
		draw.Draw(canvas, at, img, b.Min, draw.Src)
	}

	return &Panorama{Image: canvas, Width: width, Height: height, Tiles: len(tiles)}, nil
}

func withinGrid(tiles []SourceTile, cols, rows int, logger hclog.Logger) []SourceTile {
	kept := tiles[:0]
	for _, t := range tiles {
		if t.X >= cols || t.Y >= rows {
			logger.Warn("⚠️ Ignoring tile outside zoom grid", "path", t.Path, "grid", fmt.Sprintf("%dx%d", cols, rows))
			continue
		}
		kept = append(kept, t)
	}
	return kept
}
