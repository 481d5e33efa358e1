// Package cube derives cube face geometry from an equirectangular panorama
// and describes the six fixed face orientations.
package cube

import (
	"fmt"
	"math"

	perrors "github.com/panokit/cubetile/pkg/errors"
)

// TileSize is the edge length of a pyramid tile and of a finest-zoom source tile.
const TileSize = 512

// Geometry is the derived layout of a cube pyramid.
type Geometry struct {
	CubeSize int // edge length of a full resolution face
	Levels   int // number of pyramid levels
}

// CubeSize returns 8 * floor(width / pi / 8).
func CubeSize(panoramaWidth int) int {
	return 8 * int(math.Floor(float64(panoramaWidth)/math.Pi/8))
}

// PyramidLevels returns ceil(log2(cubeSize / 512)) + 1, dropping one level
// when floor(cubeSize / 2^(levels-2)) is exactly the tile size.
func PyramidLevels(cubeSize int) int {
	levels := int(math.Ceil(math.Log2(float64(cubeSize)/TileSize))) + 1
	if int(math.Floor(float64(cubeSize)/math.Pow(2, float64(levels-2)))) == TileSize {
		levels--
	}
	return levels
}

// ComputeGeometry derives cube size and pyramid depth from the panorama width.
func ComputeGeometry(panoramaWidth int) (Geometry, error) {
	size := CubeSize(panoramaWidth)
	if size <= 0 {
		return Geometry{}, fmt.Errorf("%w: cube size %d from panorama width %d", perrors.ErrInvalidGeometry, size, panoramaWidth)
	}

	levels := PyramidLevels(size)
	if levels < 1 {
		return Geometry{}, fmt.Errorf("%w: %d pyramid levels for cube size %d", perrors.ErrInvalidGeometry, levels, size)
	}

	return Geometry{CubeSize: size, Levels: levels}, nil
}

// LevelSize returns the face edge length at the given level:
// floor(cubeSize / 2^(levels-level)).
func LevelSize(cubeSize, levels, level int) int {
	size := cubeSize
	for l := levels; l > level; l-- {
		size /= 2
	}
	return size
}

// TilesPerSide returns ceil(size / TileSize).
func TilesPerSide(size int) int {
	return (size + TileSize - 1) / TileSize
}
