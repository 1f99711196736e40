// Package sqlitecorpus loads a frame corpus indexed by a SQLite database
// instead of a flat index file: the frame pixel data still lives in
// per-stem "<stem>.depth"/"<stem>.label" files under DataDir, but which
// stems belong to the corpus, and its shared FOV/label metadata, come
// from a "frames" table.
package sqlitecorpus

import (
	"database/sql"
	"fmt"

	// Import of sqlite3 driver.
	_ "github.com/mattn/go-sqlite3"

	"github.com/mpraski/rdforest/corpus"
	"github.com/mpraski/rdforest/frame"
)

// Loader reads corpus metadata from a SQLite database at Path. It expects
// a table shaped as:
//
//	CREATE TABLE frames (
//	  stem TEXT NOT NULL,
//	  w INTEGER NOT NULL,
//	  h INTEGER NOT NULL,
//	  fov REAL NOT NULL,
//	  bg_label INTEGER NOT NULL,
//	  bg_depth REAL NOT NULL
//	)
type Loader struct {
	DataDir string
	Path    string
}

var _ corpus.Loader = (*Loader)(nil)

// Load opens the database at l.Path, reads every frame row, and loads the
// pixel data referenced by each row's stem from l.DataDir.
func (l *Loader) Load() (*frame.Corpus, error) {
	db, err := sql.Open("sqlite3", l.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlitecorpus: opening %s: %w", l.Path, err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT stem, w, h, fov, bg_label, bg_depth FROM frames`)
	if err != nil {
		return nil, fmt.Errorf("sqlitecorpus: querying frames: %w", err)
	}
	defer rows.Close()

	var (
		stems               []string
		w, h, bgLabel       int
		fov                 float64
		bgDepth             float32
		haveDimensions      bool
	)
	for rows.Next() {
		var stem string
		var rw, rh, rBgLabel int
		var rFov float64
		var rBgDepth float64
		if err := rows.Scan(&stem, &rw, &rh, &rFov, &rBgLabel, &rBgDepth); err != nil {
			return nil, fmt.Errorf("sqlitecorpus: scanning frame row: %w", err)
		}
		if !haveDimensions {
			w, h, fov, bgLabel, bgDepth = rw, rh, rFov, rBgLabel, float32(rBgDepth)
			haveDimensions = true
		}
		stems = append(stems, stem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlitecorpus: reading frames: %w", err)
	}

	return corpus.LoadFrames(l.DataDir, stems, w, h, fov, bgLabel, bgDepth)
}
