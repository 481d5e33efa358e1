package pkg

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/panokit/cubetile/internal/workspace"
	"github.com/panokit/cubetile/pkg/cube"
	"github.com/panokit/cubetile/pkg/descriptor"
	"github.com/panokit/cubetile/pkg/pyramid"
)

// VerifyPyramid checks that outputDir holds a descriptor and every tile it
// implies. Problems are logged and returned; an empty result means the
// pyramid is complete.
func VerifyPyramid(outputDir string, logger hclog.Logger) []string {
	problems := []string{}

	data, err := os.ReadFile(filepath.Join(outputDir, descriptor.FileName))
	if err != nil {
		logger.Error("Descriptor unreadable", "error", err)
		return append(problems, fmt.Sprintf("descriptor: %v", err))
	}

	var d descriptor.Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		logger.Error("Descriptor invalid", "error", err)
		return append(problems, fmt.Sprintf("descriptor: %v", err))
	}

	ws := workspace.New(outputDir)
	mr := d.MultiRes
	for level := mr.MaxLevel; level >= 1; level-- {
		n := cube.TilesPerSide(cube.LevelSize(mr.CubeResolution, mr.MaxLevel, level))
		missing := 0
		for _, face := range cube.Faces {
			for row := 0; row < n; row++ {
				for col := 0; col < n; col++ {
					path := filepath.Join(ws.LevelDir(level), pyramid.TileName(face.Letter, row, col, mr.Extension))
					if _, err := os.Stat(path); err != nil {
						missing++
						problems = append(problems, fmt.Sprintf("level %d: missing %s", level, filepath.Base(path)))
					}
				}
			}
		}
		if missing == 0 {
			logger.Debug("✓ Level complete", "level", level, "tiles", cube.FaceCount*n*n)
		} else {
			logger.Warn("✗ Level incomplete", "level", level, "missing", missing)
		}
	}

	if len(problems) == 0 {
		logger.Info("✓ Pyramid verification passed")
	}
	return problems
}
