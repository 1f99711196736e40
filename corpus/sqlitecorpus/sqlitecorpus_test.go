package sqlitecorpus

import (
	"database/sql"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func TestLoadReadsFramesTableAndPixelFiles(t *testing.T) {
	dir := t.TempDir()

	df, err := os.Create(filepath.Join(dir, "frame0.depth"))
	require.NoError(t, err)
	require.NoError(t, binary.Write(df, binary.LittleEndian, []float32{1, 2, 3, 4}))
	require.NoError(t, df.Close())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "frame0.label"), []byte{0, 1, 1, 0}, 0o644))

	dbPath := filepath.Join(dir, "index.sqlite3")
	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE frames (stem TEXT, w INTEGER, h INTEGER, fov REAL, bg_label INTEGER, bg_depth REAL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO frames (stem, w, h, fov, bg_label, bg_depth) VALUES (?, ?, ?, ?, ?, ?)`, "frame0", 2, 2, 1.2291, 0, 1000.0)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	l := &Loader{DataDir: dir, Path: dbPath}
	c, err := l.Load()
	require.NoError(t, err)
	require.Len(t, c.Frames, 1)
	require.Equal(t, []float32{1, 2, 3, 4}, c.Frames[0].Depth.Pix)
}

func TestLoadMissingDatabaseIsAnError(t *testing.T) {
	l := &Loader{DataDir: t.TempDir(), Path: filepath.Join(t.TempDir(), "does-not-exist", "x.sqlite3")}
	_, err := l.Load()
	require.Error(t, err)
}
