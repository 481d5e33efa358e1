// Package projection turns an equirectangular panorama into six cube faces
// through an external reprojection capability.
package projection

import (
	"context"

	"github.com/panokit/cubetile/pkg/cube"
)

// Source describes the panorama handed to a Projector.
type Source struct {
	Path   string // absolute path of the lossless panorama file
	Width  int
	Height int
}

// Projector renders one face per view from src. Face i of the result
// corresponds to views[i]; files are written under outputPrefix.
type Projector interface {
	Project(ctx context.Context, src Source, views []cube.Face, faceSize int, outputPrefix string) ([]string, error)
}
