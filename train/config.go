// Package train grows a randomized decision tree from a frame corpus: it
// draws the sample pixels and candidate bank, then runs a breadth-first,
// barrier-synchronized worker pool (see worker.go) that finds the
// best-gain split for every pending node until every branch has reached a
// leaf or the configured depth.
package train

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrConfiguration is returned when a Config fails validation.
var ErrConfiguration = errors.New("train: invalid configuration")

// ErrCheckpointMismatch is returned when a reloaded tree's shape doesn't
// match the corpus or configuration it's being resumed against.
var ErrCheckpointMismatch = errors.New("train: checkpoint does not match corpus or configuration")

// ErrCheckpointFullyTrained is returned when reloading a checkpoint leaves
// no pending node to resume training from.
var ErrCheckpointFullyTrained = errors.New("train: checkpoint tree is already fully trained")

// Config holds every tunable of a training run. The zero value is not
// valid; use DefaultConfig and override only the fields that need to
// change.
type Config struct {
	DataDir   string
	IndexName string
	OutFile   string
	Reload    bool

	NPixels        int
	NThresholds    int
	ThresholdRange float64
	NUV            int
	UVRange        float64
	MaxDepth       int
	Seed           int64
	Verbose        bool
	NThreads       int
}

// DefaultConfig returns the defaults the reference trainer ships with.
func DefaultConfig() Config {
	return Config{
		IndexName:      "index",
		Reload:         false,
		NPixels:        2000,
		NThresholds:    50,
		ThresholdRange: 1.29,
		NUV:            2000,
		UVRange:        1.29,
		MaxDepth:       20,
		Seed:           0,
		Verbose:        false,
		NThreads:       runtime.GOMAXPROCS(0),
	}
}

// Validate checks that c describes a runnable training session.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("%w: data directory not set", ErrConfiguration)
	}
	if c.IndexName == "" {
		return fmt.Errorf("%w: index name not set", ErrConfiguration)
	}
	if c.OutFile == "" {
		return fmt.Errorf("%w: output file not set", ErrConfiguration)
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("%w: max depth must be at least 1, got %d", ErrConfiguration, c.MaxDepth)
	}
	if c.NPixels < 1 {
		return fmt.Errorf("%w: n_pixels must be at least 1, got %d", ErrConfiguration, c.NPixels)
	}
	if c.NUV < 1 {
		return fmt.Errorf("%w: n_uv must be at least 1, got %d", ErrConfiguration, c.NUV)
	}
	if c.NThresholds < 1 {
		return fmt.Errorf("%w: n_thresholds must be at least 1, got %d", ErrConfiguration, c.NThresholds)
	}
	if c.NThreads < 1 {
		return fmt.Errorf("%w: n_threads must be at least 1, got %d", ErrConfiguration, c.NThreads)
	}
	return nil
}
