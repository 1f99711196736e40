package corpus

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFrame(t *testing.T, dir, stem string, depth []float32, label []uint8) {
	t.Helper()

	df, err := os.Create(filepath.Join(dir, stem+".depth"))
	require.NoError(t, err)
	defer df.Close()
	require.NoError(t, binary.Write(df, binary.LittleEndian, depth))

	lf, err := os.Create(filepath.Join(dir, stem+".label"))
	require.NoError(t, err)
	defer lf.Close()
	_, err = lf.Write(label)
	require.NoError(t, err)
}

func TestDirLoaderHappyPath(t *testing.T) {
	dir := t.TempDir()
	writeFrame(t, dir, "frame0", []float32{1, 2, 3, 4}, []uint8{0, 1, 1, 0})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index"), []byte("frame0\n"), 0o644))

	l := &DirLoader{DataDir: dir, IndexName: "index", W: 2, H: 2, FOV: 1.0, BgLabel: 0, BgDepth: 1000}
	c, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, 2, c.W)
	assert.Equal(t, 2, c.H)
	assert.Equal(t, 2, c.NLabels)
	require.Len(t, c.Frames, 1)
	assert.Equal(t, []float32{1, 2, 3, 4}, c.Frames[0].Depth.Pix)
	assert.Equal(t, []uint8{0, 1, 1, 0}, c.Frames[0].Label.Pix)
}

func TestDirLoaderMultipleFrames(t *testing.T) {
	dir := t.TempDir()
	writeFrame(t, dir, "a", []float32{1, 1}, []uint8{0, 1})
	writeFrame(t, dir, "b", []float32{2, 2}, []uint8{1, 0})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index"), []byte("a\nb\n"), 0o644))

	l := &DirLoader{DataDir: dir, IndexName: "index", W: 2, H: 1, FOV: 1.0, BgLabel: 0, BgDepth: 1000}
	c, err := l.Load()
	require.NoError(t, err)
	assert.Len(t, c.Frames, 2)
}

func TestDirLoaderMissingIndexIsAnError(t *testing.T) {
	dir := t.TempDir()
	l := &DirLoader{DataDir: dir, IndexName: "index", W: 1, H: 1, FOV: 1.0}
	_, err := l.Load()
	assert.Error(t, err)
}

func TestDirLoaderEmptyIndexIsAnError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index"), []byte(""), 0o644))
	l := &DirLoader{DataDir: dir, IndexName: "index", W: 1, H: 1, FOV: 1.0}
	_, err := l.Load()
	assert.Error(t, err)
}
