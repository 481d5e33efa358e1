package projection

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/panokit/cubetile/pkg/cube"
)

// WriteProject writes a Hugin project that maps src onto one rectilinear
// output view per entry of views, each faceSize pixels square.
func WriteProject(w io.Writer, src Source, views []cube.Face, faceSize int) error {
	var b strings.Builder

	fmt.Fprintf(&b, "p E0 R0 f0 h%d w%d n\"TIFF_m\" u0 v%s\n", faceSize, faceSize, num(cube.FaceFOV))
	b.WriteString("m g1 i0 m2 p0.00784314\n")
	for _, v := range views {
		fmt.Fprintf(&b, "i a0 b0 c0 d0 e0 f4 h%d w%d n\"%s\" r%s v360 p%s y%s\n",
			src.Height, src.Width, src.Path, num(v.Roll), num(v.Pitch), num(v.Yaw))
	}
	b.WriteString("v\n*")

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteProjectFile writes the project to path.
func WriteProjectFile(path string, src Source, views []cube.Face, faceSize int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating project file: %w", err)
	}
	if err := WriteProject(f, src, views, faceSize); err != nil {
		f.Close()
		return fmt.Errorf("writing project file: %w", err)
	}
	return f.Close()
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
