package projection

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panokit/cubetile/internal/workspace"
	"github.com/panokit/cubetile/pkg/cube"
	perrors "github.com/panokit/cubetile/pkg/errors"
	"github.com/panokit/cubetile/pkg/imaging"
	"github.com/panokit/cubetile/pkg/panorama"
)

const helperEnv = "CUBETILE_TEST_HELPER"

func testLogger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{Name: "projection_test", Level: hclog.Trace})
}

// TestHelperProcess stands in for nona when run as a subprocess. It receives
// "-o <prefix> <project>" after "--".
func TestHelperProcess(t *testing.T) {
	mode := os.Getenv(helperEnv)
	if mode == "" {
		return
	}

	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) != 4 || args[1] != "-o" {
		fmt.Fprintf(os.Stderr, "usage: -o prefix project, got %v\n", args)
		os.Exit(2)
	}
	prefix, project := args[2], args[3]

	if _, err := os.Stat(project); err != nil {
		fmt.Fprintf(os.Stderr, "project missing: %v\n", err)
		os.Exit(2)
	}

	switch mode {
	case "fail":
		fmt.Fprintln(os.Stderr, "nona: could not read panorama")
		os.Exit(3)
	case "partial":
		writeHelperFaces(prefix, 5)
	default:
		writeHelperFaces(prefix, 6)
	}
	os.Exit(0)
}

func writeHelperFaces(prefix string, n int) {
	for i := 0; i < n; i++ {
		img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
		for p := 0; p < len(img.Pix); p += 4 {
			img.Pix[p], img.Pix[p+1], img.Pix[p+2], img.Pix[p+3] = uint8(i*40), 10, 20, 200
		}
		if err := imaging.SaveTIFF(fmt.Sprintf("%s%04d.tif", prefix, i), img); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(4)
		}
	}
}

func helperProjector(t *testing.T, mode string) *NonaProjector {
	t.Helper()
	t.Setenv(helperEnv, mode)
	return &NonaProjector{
		Command: []string{os.Args[0], "-test.run=TestHelperProcess", "--"},
		Logger:  testLogger(),
	}
}

func testPanorama() *panorama.Panorama {
	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+3] = 255
	}
	return &panorama.Panorama{Image: img, Width: 64, Height: 32, Tiles: 1}
}

func TestWriteProject(t *testing.T) {
	var buf bytes.Buffer
	src := Source{Path: "/work/temp_panorama.png", Width: 1024, Height: 512}
	require.NoError(t, WriteProject(&buf, src, cube.Faces[:], 320))

	want := `p E0 R0 f0 h320 w320 n"TIFF_m" u0 v90
m g1 i0 m2 p0.00784314
i a0 b0 c0 d0 e0 f4 h512 w1024 n"/work/temp_panorama.png" r0 v360 p0 y0
i a0 b0 c0 d0 e0 f4 h512 w1024 n"/work/temp_panorama.png" r0 v360 p0 y180
i a0 b0 c0 d0 e0 f4 h512 w1024 n"/work/temp_panorama.png" r0 v360 p-90 y0
i a0 b0 c0 d0 e0 f4 h512 w1024 n"/work/temp_panorama.png" r0 v360 p90 y0
i a0 b0 c0 d0 e0 f4 h512 w1024 n"/work/temp_panorama.png" r0 v360 p0 y90
i a0 b0 c0 d0 e0 f4 h512 w1024 n"/work/temp_panorama.png" r0 v360 p0 y-90
v
*`
	assert.Equal(t, want, buf.String())
}

func TestNewNonaProjector(t *testing.T) {
	p, err := NewNonaProjector(`"/opt/Hugin Tools/nona" -z LZW`, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"/opt/Hugin Tools/nona", "-z", "LZW"}, p.Command)

	p, err = NewNonaProjector("nona -d", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"nona", "-d"}, p.Command)

	_, err = NewNonaProjector("   ", nil)
	require.Error(t, err)

	_, err = NewNonaProjector(`nona "oops`, nil)
	require.Error(t, err)
}

func TestNonaProjectorRunsProcess(t *testing.T) {
	dir := t.TempDir()
	ws := workspace.New(dir)
	p := helperProjector(t, "ok")

	faces, err := p.Project(context.Background(), Source{Path: "/x.png", Width: 64, Height: 32}, cube.Faces[:], 8, ws.FacePrefix())
	require.NoError(t, err)
	require.Len(t, faces, 6)
	for i, face := range faces {
		assert.Equal(t, ws.FacePath(i), face)
		assert.FileExists(t, face)
	}
	assert.FileExists(t, ws.ProjectPath())
}

func TestNonaProjectorNonZeroExit(t *testing.T) {
	ws := workspace.New(t.TempDir())
	p := helperProjector(t, "fail")

	_, err := p.Project(context.Background(), Source{Path: "/x.png", Width: 64, Height: 32}, cube.Faces[:], 8, ws.FacePrefix())
	require.Error(t, err)
	assert.True(t, errors.Is(err, perrors.ErrProjectionFailed))
	assert.Contains(t, err.Error(), "exit code 3")
	assert.Contains(t, err.Error(), "could not read panorama")
}

func TestNonaProjectorMissingExecutable(t *testing.T) {
	ws := workspace.New(t.TempDir())
	p := &NonaProjector{Command: []string{filepath.Join(t.TempDir(), "no-such-nona")}, Logger: testLogger()}

	_, err := p.Project(context.Background(), Source{Path: "/x.png"}, cube.Faces[:], 8, ws.FacePrefix())
	require.Error(t, err)
	assert.True(t, errors.Is(err, perrors.ErrProjectionFailed))
}

func TestEngineGenerateFaces(t *testing.T) {
	dir := t.TempDir()
	ws := workspace.New(dir)
	engine := &Engine{Projector: helperProjector(t, "ok"), Workspace: ws, Logger: testLogger()}

	faces, err := engine.GenerateFaces(context.Background(), testPanorama(), 8)
	require.NoError(t, err)
	require.Len(t, faces, 6)
	assert.FileExists(t, ws.PanoramaPath())

	project, err := os.ReadFile(ws.ProjectPath())
	require.NoError(t, err)
	abs, err := filepath.Abs(ws.PanoramaPath())
	require.NoError(t, err)
	assert.Contains(t, string(project), `n"`+abs+`"`)
	assert.Equal(t, 6, strings.Count(string(project), "\ni "))

	for i, face := range faces {
		img, err := imaging.Load(face)
		require.NoError(t, err)
		assert.False(t, imaging.HasAlpha(img), "face %d", i)
		r, g, b, a := img.At(3, 3).RGBA()
		assert.Equal(t, uint32(i*40), r>>8, "face %d keeps its color", i)
		assert.Equal(t, uint32(10), g>>8)
		assert.Equal(t, uint32(20), b>>8)
		assert.Equal(t, uint32(255), a>>8)
	}
}

func TestEngineMissingFace(t *testing.T) {
	ws := workspace.New(t.TempDir())
	engine := &Engine{Projector: helperProjector(t, "partial"), Workspace: ws, Logger: testLogger()}

	_, err := engine.GenerateFaces(context.Background(), testPanorama(), 8)
	require.Error(t, err)
	assert.True(t, errors.Is(err, perrors.ErrMissingFace))
	assert.Contains(t, err.Error(), "face0005.tif")
	assert.Contains(t, err.Error(), "right")
}

type shortProjector struct{}

func (shortProjector) Project(context.Context, Source, []cube.Face, int, string) ([]string, error) {
	return nil, nil
}

func TestEngineProjectorReturnsTooFewFaces(t *testing.T) {
	engine := &Engine{Projector: shortProjector{}, Workspace: workspace.New(t.TempDir())}

	_, err := engine.GenerateFaces(context.Background(), testPanorama(), 8)
	require.Error(t, err)
	assert.True(t, errors.Is(err, perrors.ErrMissingFace))
	assert.Contains(t, err.Error(), "front")
}

type opaqueProjector struct{}

func (opaqueProjector) Project(_ context.Context, _ Source, views []cube.Face, size int, prefix string) ([]string, error) {
	var faces []string
	for i := range views {
		img := image.NewRGBA(image.Rect(0, 0, size, size))
		for p := 0; p < len(img.Pix); p += 4 {
			img.Pix[p], img.Pix[p+3] = 99, 255
		}
		path := fmt.Sprintf("%s%04d.tif", prefix, i)
		if err := imaging.SaveTIFF(path, img); err != nil {
			return nil, err
		}
		faces = append(faces, path)
	}
	return faces, nil
}

func TestEngineLeavesOpaqueFacesAlone(t *testing.T) {
	ws := workspace.New(t.TempDir())
	engine := &Engine{Projector: opaqueProjector{}, Workspace: ws}

	faces, err := engine.GenerateFaces(context.Background(), testPanorama(), 4)
	require.NoError(t, err)

	img, err := imaging.Load(faces[0])
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 99, A: 255}, imaging.ToRGBA(img).RGBAAt(1, 1))
}
