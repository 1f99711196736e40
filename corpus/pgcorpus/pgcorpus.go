// Package pgcorpus loads a frame corpus indexed by a PostgreSQL database,
// mirroring sqlitecorpus's schema and file layout but for deployments that
// already keep frame metadata in Postgres.
package pgcorpus

import (
	"database/sql"
	"fmt"

	// Import of the PostgreSQL driver.
	_ "github.com/lib/pq"

	"github.com/mpraski/rdforest/corpus"
	"github.com/mpraski/rdforest/frame"
)

// Loader reads corpus metadata from a PostgreSQL database at
// ConnectionURL. It expects the same "frames" table shape as sqlitecorpus.
type Loader struct {
	DataDir       string
	ConnectionURL string
}

var _ corpus.Loader = (*Loader)(nil)

// Load opens the database at l.ConnectionURL, reads every frame row, and
// loads the pixel data referenced by each row's stem from l.DataDir.
func (l *Loader) Load() (*frame.Corpus, error) {
	db, err := sql.Open("postgres", l.ConnectionURL)
	if err != nil {
		return nil, fmt.Errorf("pgcorpus: opening database: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT stem, w, h, fov, bg_label, bg_depth FROM frames`)
	if err != nil {
		return nil, fmt.Errorf("pgcorpus: querying frames: %w", err)
	}
	defer rows.Close()

	var (
		stems          []string
		w, h, bgLabel  int
		fov            float64
		bgDepth        float32
		haveDimensions bool
	)
	for rows.Next() {
		var stem string
		var rw, rh, rBgLabel int
		var rFov, rBgDepth float64
		if err := rows.Scan(&stem, &rw, &rh, &rFov, &rBgLabel, &rBgDepth); err != nil {
			return nil, fmt.Errorf("pgcorpus: scanning frame row: %w", err)
		}
		if !haveDimensions {
			w, h, fov, bgLabel, bgDepth = rw, rh, rFov, rBgLabel, float32(rBgDepth)
			haveDimensions = true
		}
		stems = append(stems, stem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgcorpus: reading frames: %w", err)
	}

	return corpus.LoadFrames(l.DataDir, stems, w, h, fov, bgLabel, bgDepth)
}
