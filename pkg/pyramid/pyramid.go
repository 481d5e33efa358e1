// Package pyramid slices cube faces into the multi-resolution tile tree read
// by the viewer: <level>/<face><row>_<col>.<ext>.
package pyramid

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/panokit/cubetile/internal/workspace"
	"github.com/panokit/cubetile/pkg/cube"
	"github.com/panokit/cubetile/pkg/imaging"
)

// Generator writes the tile pyramid for a set of faces.
type Generator struct {
	OutputDir string
	Geometry  cube.Geometry
	Encoder   imaging.Encoder
	Resampler imaging.Resampler
	// Workers bounds how many faces are processed at once.
	Workers int
	Logger  hclog.Logger
}

// Stats summarizes a generation run.
type Stats struct {
	Faces int
	Tiles int64
	Bytes int64
}

// TileRects returns the crop rectangles of a size x size image in row-major
// order. Boundary tiles are clipped to the image, never padded.
func TileRects(size int) [][]image.Rectangle {
	n := cube.TilesPerSide(size)
	rows := make([][]image.Rectangle, n)
	for row := 0; row < n; row++ {
		rows[row] = make([]image.Rectangle, n)
		for col := 0; col < n; col++ {
			rows[row][col] = image.Rect(
				col*cube.TileSize,
				row*cube.TileSize,
				min((col+1)*cube.TileSize, size),
				min((row+1)*cube.TileSize, size),
			)
		}
	}
	return rows
}

// TileName returns the file name of one tile, e.g. f1_0.jpg.
func TileName(letter string, row, col int, ext string) string {
	return fmt.Sprintf("%s%d_%d.%s", letter, row, col, ext)
}

// Generate tiles faces[i] under cube.Faces[i].Letter. Absent face files are
// skipped with a warning.
func (g *Generator) Generate(ctx context.Context, faces []string) (Stats, error) {
	logger := g.logger()
	if len(faces) > cube.FaceCount {
		return Stats{}, fmt.Errorf("got %d faces, a cube has %d", len(faces), cube.FaceCount)
	}

	for level := g.Geometry.Levels; level >= 1; level-- {
		if err := os.MkdirAll(g.levelDir(level), 0o755); err != nil {
			return Stats{}, fmt.Errorf("creating level %d: %w", level, err)
		}
	}

	var tiles, bytes, done atomic.Int64
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(max(1, g.Workers))

	for i, path := range faces {
		face := cube.Faces[i]
		group.Go(func() error {
			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				logger.Warn("⚠️ Face file missing, skipping", "face", face.Name, "path", path)
				return nil
			}

			n, size, err := g.generateFace(ctx, face, path)
			if err != nil {
				return fmt.Errorf("%s face: %w", face.Name, err)
			}
			tiles.Add(n)
			bytes.Add(size)
			done.Add(1)
			logger.Debug("✅ Face tiled", "face", face.Name, "tiles", n, "size", humanize.Bytes(uint64(size)))
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return Stats{}, err
	}

	stats := Stats{Faces: int(done.Load()), Tiles: tiles.Load(), Bytes: bytes.Load()}
	logger.Info("🧱 Pyramid written",
		"faces", stats.Faces,
		"tiles", humanize.Comma(stats.Tiles),
		"size", humanize.Bytes(uint64(stats.Bytes)),
		"levels", g.Geometry.Levels)
	return stats, nil
}

// generateFace walks from the finest level down to level 1. The working image
// is replaced by a fresh resampled copy at every level below the finest.
func (g *Generator) generateFace(ctx context.Context, face cube.Face, path string) (int64, int64, error) {
	src, err := imaging.Load(path)
	if err != nil {
		return 0, 0, err
	}

	working := imaging.ToRGBA(src)
	size := g.Geometry.CubeSize
	var tiles, written int64

	for level := g.Geometry.Levels; level >= 1; level-- {
		if err := ctx.Err(); err != nil {
			return tiles, written, err
		}

		if level < g.Geometry.Levels {
			working = g.resampler().Resize(working, size, size)
		} else if b := working.Bounds(); b.Dx() != size || b.Dy() != size {
			return tiles, written, fmt.Errorf("face is %dx%d, expected %dx%d", b.Dx(), b.Dy(), size, size)
		}

		dir := g.levelDir(level)
		for row, rects := range TileRects(size) {
			for col, rect := range rects {
				name := filepath.Join(dir, TileName(face.Letter, row, col, g.Encoder.Extension()))
				n, err := g.Encoder.WriteFile(name, working.SubImage(rect))
				if err != nil {
					return tiles, written, err
				}
				tiles++
				written += n
			}
		}
		g.logger().Trace("🔲 Level tiled", "face", face.Name, "level", level, "size", size)

		size /= 2
	}
	return tiles, written, nil
}

func (g *Generator) levelDir(level int) string {
	return workspace.New(g.OutputDir).LevelDir(level)
}

func (g *Generator) resampler() imaging.Resampler {
	if g.Resampler == nil {
		return imaging.Lanczos{}
	}
	return g.Resampler
}

func (g *Generator) logger() hclog.Logger {
	if g.Logger == nil {
		return hclog.NewNullLogger()
	}
	return g.Logger
}
