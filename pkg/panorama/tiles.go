// Package panorama reassembles an equirectangular panorama from a directory
// of grid-indexed source tiles.
package panorama

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// FinestZoom is the highest zoom tier produced by the acquisition step.
const FinestZoom = 5

// zoomGrids is the number of tile columns and rows per zoom tier.
var zoomGrids = map[int][2]int{
	0: {1, 1},
	1: {2, 1},
	2: {4, 2},
	3: {8, 4},
	4: {16, 8},
	5: {32, 16},
}

// ZoomGrid returns the column and row count of the acquisition grid at zoom.
func ZoomGrid(zoom int) (cols, rows int, ok bool) {
	g, ok := zoomGrids[zoom]
	return g[0], g[1], ok
}

// SourceTile is one source tile file.
type SourceTile struct {
	X, Y, Zoom int
	Path       string
}

var tileExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".webp": true,
}

// ParseTileName parses tile_<x>_<y>_<zoom>.<ext>.
func ParseTileName(name string) (x, y, zoom int, ok bool) {
	ext := filepath.Ext(name)
	if !tileExtensions[strings.ToLower(ext)] || !strings.HasPrefix(name, "tile_") {
		return 0, 0, 0, false
	}

	parts := strings.Split(strings.TrimSuffix(name, ext), "_")
	if len(parts) != 4 {
		return 0, 0, 0, false
	}

	var nums [3]int
	for i, p := range parts[1:] {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, 0, 0, false
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2], true
}

// ScanTiles lists the tiles in dir at the given zoom, sorted by row then column.
func ScanTiles(dir string, zoom int) ([]SourceTile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var tiles []SourceTile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		x, y, z, ok := ParseTileName(entry.Name())
		if !ok || z != zoom {
			continue
		}
		tiles = append(tiles, SourceTile{X: x, Y: y, Zoom: z, Path: filepath.Join(dir, entry.Name())})
	}

	sort.Slice(tiles, func(i, j int) bool {
		if tiles[i].Y != tiles[j].Y {
			return tiles[i].Y < tiles[j].Y
		}
		return tiles[i].X < tiles[j].X
	})
	return tiles, nil
}
