package projection

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/panokit/cubetile/internal/workspace"
	"github.com/panokit/cubetile/pkg/cube"
	perrors "github.com/panokit/cubetile/pkg/errors"
	"github.com/panokit/cubetile/pkg/imaging"
	"github.com/panokit/cubetile/pkg/panorama"
)

// Engine persists the panorama, drives a Projector and normalizes its faces.
type Engine struct {
	Projector Projector
	Workspace workspace.Workspace
	Logger    hclog.Logger
}

// GenerateFaces returns the six face files in cube.Faces order.
func (e *Engine) GenerateFaces(ctx context.Context, pano *panorama.Panorama, cubeSize int) ([]string, error) {
	logger := e.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	panoPath, err := filepath.Abs(e.Workspace.PanoramaPath())
	if err != nil {
		return nil, err
	}
	if err := imaging.SavePNG(panoPath, pano.Image); err != nil {
		return nil, fmt.Errorf("saving panorama: %w", err)
	}
	logger.Debug("💾 Panorama saved", "path", panoPath)

	src := Source{Path: panoPath, Width: pano.Width, Height: pano.Height}
	faces, err := e.Projector.Project(ctx, src, cube.Faces[:], cubeSize, e.Workspace.FacePrefix())
	if err != nil {
		return nil, err
	}

	if err := verifyFaces(faces); err != nil {
		return nil, err
	}

	for i, path := range faces {
		flattened, err := normalizeFace(path)
		if err != nil {
			return nil, fmt.Errorf("normalizing %s face: %w", cube.Faces[i].Name, err)
		}
		if flattened {
			logger.Debug("🎨 Dropped alpha channel", "face", cube.Faces[i].Name)
		}
	}
	return faces, nil
}

func verifyFaces(faces []string) error {
	for i, face := range cube.Faces {
		if i >= len(faces) {
			return fmt.Errorf("%w: %s (%s)", perrors.ErrMissingFace, workspace.FaceName(i), face.Name)
		}
		if _, err := os.Stat(faces[i]); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("%w: %s (%s)", perrors.ErrMissingFace, filepath.Base(faces[i]), face.Name)
			}
			return err
		}
	}
	return nil
}

// normalizeFace rewrites a face with an alpha channel as opaque color.
func normalizeFace(path string) (bool, error) {
	img, err := imaging.Load(path)
	if err != nil {
		return false, err
	}
	if !imaging.HasAlpha(img) {
		return false, nil
	}
	if err := imaging.SaveTIFF(path, imaging.Flatten(img)); err != nil {
		return false, err
	}
	return true, nil
}
