// Package mongocorpus loads a frame corpus indexed by a MongoDB
// collection of frame documents, mirroring sqlitecorpus's split between
// database-held metadata and flat-file pixel data.
package mongocorpus

import (
	"fmt"

	mgo "gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"

	"github.com/mpraski/rdforest/corpus"
	"github.com/mpraski/rdforest/frame"
)

const framesCollectionName = "frames"

type frameDoc struct {
	Stem    string  `bson:"stem"`
	W       int     `bson:"w"`
	H       int     `bson:"h"`
	FOV     float64 `bson:"fov"`
	BgLabel int     `bson:"bg_label"`
	BgDepth float32 `bson:"bg_depth"`
}

// Loader reads corpus metadata from a "frames" collection on Session's
// default database.
type Loader struct {
	Session *mgo.Session
	DataDir string
}

var _ corpus.Loader = (*Loader)(nil)

// Load reads every frame document and loads the pixel data referenced by
// each document's stem from l.DataDir.
func (l *Loader) Load() (*frame.Corpus, error) {
	var docs []frameDoc
	if err := l.collection().Find(bson.M{}).All(&docs); err != nil {
		return nil, fmt.Errorf("mongocorpus: querying frames: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("mongocorpus: frames collection is empty")
	}

	stems := make([]string, len(docs))
	for i, d := range docs {
		stems[i] = d.Stem
	}
	first := docs[0]

	return corpus.LoadFrames(l.DataDir, stems, first.W, first.H, first.FOV, first.BgLabel, first.BgDepth)
}

func (l *Loader) collection() *mgo.Collection {
	return l.Session.DB("").C(framesCollectionName)
}
