package workspace

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	var names []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(dir, path)
		names = append(names, rel)
		return nil
	})
	require.NoError(t, err)
	sort.Strings(names)
	return names
}

func TestNames(t *testing.T) {
	ws := New("/out")
	assert.Equal(t, filepath.Join("/out", "temp_panorama.png"), ws.PanoramaPath())
	assert.Equal(t, filepath.Join("/out", "cubic.pto"), ws.ProjectPath())
	assert.Equal(t, filepath.Join("/out", "face"), ws.FacePrefix())
	assert.Equal(t, "face0000.tif", FaceName(0))
	assert.Equal(t, filepath.Join("/out", "face0005.tif"), ws.FacePath(5))
	assert.Equal(t, filepath.Join("/out", "3"), ws.LevelDir(3))
	assert.Len(t, ws.Intermediates(), 8)
}

func TestCleanIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	ws := New(dir)
	for _, path := range ws.Intermediates() {
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{}"), 0o644))
	require.NoError(t, os.MkdirAll(ws.LevelDir(1), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(ws.LevelDir(1), "f0_0.jpg"), []byte("x"), 0o644))

	removed, err := ws.Clean()
	require.NoError(t, err)
	assert.Len(t, removed, 8)

	after := listDir(t, dir)
	assert.Equal(t, []string{".", "1", filepath.Join("1", "f0_0.jpg"), "config.json"}, after)

	removed, err = ws.Clean()
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.Equal(t, after, listDir(t, dir))
}

func TestCleanPartialWorkspace(t *testing.T) {
	dir := t.TempDir()
	ws := New(dir)
	require.NoError(t, os.WriteFile(ws.FacePath(2), []byte("x"), 0o644))

	removed, err := ws.Clean()
	require.NoError(t, err)
	assert.Equal(t, []string{ws.FacePath(2)}, removed)
}

func TestCleanMissingWorkspace(t *testing.T) {
	ws := New(filepath.Join(t.TempDir(), "never-created"))
	removed, err := ws.Clean()
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestCreate(t *testing.T) {
	ws := New(filepath.Join(t.TempDir(), "a", "b"))
	require.NoError(t, ws.Create())
	info, err := os.Stat(ws.Dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
