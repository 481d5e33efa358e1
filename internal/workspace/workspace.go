// Package workspace names the intermediate artifacts of a conversion and
// removes them once the pyramid is complete.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/panokit/cubetile/pkg/cube"
)

// Intermediate artifact names, relative to the workspace directory.
const (
	PanoramaFile = "temp_panorama.png"
	ProjectFile  = "cubic.pto"
	FacePrefix   = "face"
	FaceExt      = ".tif"
)

// Workspace is the directory that receives intermediates and the pyramid.
type Workspace struct {
	Dir string
}

// New returns a workspace rooted at dir.
func New(dir string) Workspace {
	return Workspace{Dir: dir}
}

// Create makes the workspace directory if needed.
func (w Workspace) Create() error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}
	return nil
}

// PanoramaPath is the lossless intermediate panorama.
func (w Workspace) PanoramaPath() string {
	return filepath.Join(w.Dir, PanoramaFile)
}

// ProjectPath is the project description handed to the reprojection process.
func (w Workspace) ProjectPath() string {
	return filepath.Join(w.Dir, ProjectFile)
}

// FacePrefix is the output prefix given to the reprojection process.
func (w Workspace) FacePrefix() string {
	return filepath.Join(w.Dir, FacePrefix)
}

// FaceName returns the file name of face i, e.g. face0003.tif.
func FaceName(i int) string {
	return fmt.Sprintf("%s%04d%s", FacePrefix, i, FaceExt)
}

// FacePath returns the path of face i.
func (w Workspace) FacePath(i int) string {
	return filepath.Join(w.Dir, FaceName(i))
}

// LevelDir is the output directory of one pyramid level.
func (w Workspace) LevelDir(level int) string {
	return filepath.Join(w.Dir, fmt.Sprint(level))
}

// Intermediates lists every artifact the Cleaner removes.
func (w Workspace) Intermediates() []string {
	paths := []string{w.ProjectPath(), w.PanoramaPath()}
	for i := 0; i < cube.FaceCount; i++ {
		paths = append(paths, w.FacePath(i))
	}
	return paths
}

// Clean removes the intermediates. Missing files are skipped, so running it
// again is a no-op. It returns the paths actually removed.
func (w Workspace) Clean() ([]string, error) {
	var removed []string
	var errs []error
	for _, path := range w.Intermediates() {
		err := os.Remove(path)
		switch {
		case err == nil:
			removed = append(removed, path)
		case errors.Is(err, fs.ErrNotExist):
		default:
			errs = append(errs, err)
		}
	}
	return removed, errors.Join(errs...)
}
