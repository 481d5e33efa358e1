// Package descriptor writes the viewer configuration that describes a tile
// pyramid.
package descriptor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/panokit/cubetile/pkg/cube"
)

const (
	// FileName is the descriptor written at the root of the output directory.
	FileName = "config.json"

	DefaultHFOV  = 100.0
	Type         = "multires"
	PathTemplate = "/%l/%s%y_%x"
)

// MultiRes is the pyramid layout: %l level, %s face letter, %y row, %x column.
type MultiRes struct {
	Path           string `json:"path"`
	Extension      string `json:"extension"`
	TileResolution int    `json:"tileResolution"`
	MaxLevel       int    `json:"maxLevel"`
	CubeResolution int    `json:"cubeResolution"`
}

// Descriptor is the viewer configuration.
type Descriptor struct {
	HFOV     float64  `json:"hfov"`
	Type     string   `json:"type"`
	MultiRes MultiRes `json:"multiRes"`
}

// New describes a pyramid with the given geometry and tile extension.
func New(geom cube.Geometry, extension string) Descriptor {
	return Descriptor{
		HFOV: DefaultHFOV,
		Type: Type,
		MultiRes: MultiRes{
			Path:           PathTemplate,
			Extension:      extension,
			TileResolution: cube.TileSize,
			MaxLevel:       geom.Levels,
			CubeResolution: geom.CubeSize,
		},
	}
}

// Write stores d as indented JSON in dir and returns the file path.
func Write(dir string, d Descriptor) (string, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding descriptor: %w", err)
	}

	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("writing descriptor: %w", err)
	}
	return path, nil
}
