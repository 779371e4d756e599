package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsImage(t *testing.T) {
	for path, want := range map[string]bool{
		"card.jpg":            true,
		"dir/CARD.PNG":        true,
		"scan.tiff":           true,
		"lorcana-card.jpg":    true,
		"ursula-analysis.png": true,
		"notes.txt":           false,
		"card":                false,
	} {
		assert.Equal(t, want, IsImage(path), path)
	}
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.jpg", "a.png", "readme.md", "c.jpeg"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.jpg"), 0o755))

	got, err := ExpandPaths([]string{"single.jpg", dir})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"single.jpg",
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "b.jpg"),
		filepath.Join(dir, "c.jpeg"),
	}, got)
}

func TestExpandPathsSkipsOutputDirectories(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"elsa.jpg", "lorcana-card.jpg", "ursula-analysis.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	out := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(out, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(out, "elsa-text.png"), nil, 0o644))

	got, err := ExpandPaths([]string{dir, out}, out, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "elsa.jpg"),
		filepath.Join(dir, "lorcana-card.jpg"),
		filepath.Join(dir, "ursula-analysis.png"),
	}, got)
}

func TestInDirs(t *testing.T) {
	dir := t.TempDir()
	assert.True(t, InDirs(filepath.Join(dir, "out", "a-text.png"), []string{filepath.Join(dir, "out") + "/"}))
	assert.True(t, InDirs(filepath.Join(dir, "out", "a-text.png"), []string{filepath.Join(dir, "x", "..", "out")}))
	assert.False(t, InDirs(filepath.Join(dir, "a.png"), []string{filepath.Join(dir, "out")}))
	assert.False(t, InDirs(filepath.Join(dir, "out", "deeper", "a.png"), []string{filepath.Join(dir, "out")}))
	assert.False(t, InDirs("a.png", []string{""}))
}
