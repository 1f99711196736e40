// Package redisstore coordinates concurrent --reload training runs across
// processes: before a Trainer resumes from an out_file checkpoint, it
// acquires a lease keyed by that file's path, so two processes never train
// the same partial tree at once. It has no bearing on the tree itself,
// since the checkpoint payload stays on disk in the file at that path; this
// only arbitrates who is allowed to touch it right now.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/redis.v5"
)

// Lease is a held claim on one checkpoint path. Release must be called
// exactly once, whether or not training succeeded.
type Lease struct {
	rc  *redis.Client
	key string
}

// Store acquires and releases leases over a Redis instance.
type Store struct {
	rc     *redis.Client
	prefix string
	ttl    time.Duration
}

// New returns a Store backed by rc. Leases expire after ttl if never
// released, so a crashed trainer doesn't permanently strand a checkpoint.
func New(rc *redis.Client, prefix string, ttl time.Duration) *Store {
	return &Store{rc: rc, prefix: prefix, ttl: ttl}
}

// Acquire claims path for the caller. It returns an error if another
// process already holds the lease.
func (s *Store) Acquire(ctx context.Context, path string) (*Lease, error) {
	key := s.keyFor(path)
	ok, err := s.rc.SetNX(key, "1", s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("checkpoint: acquiring lease on %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("checkpoint: %s is already leased by another trainer", path)
	}
	if ctx.Err() != nil {
		_, _ = s.rc.Del(key).Result()
		return nil, ctx.Err()
	}
	return &Lease{rc: s.rc, key: key}, nil
}

// Release gives up the lease, allowing another process to acquire it.
func (l *Lease) Release() error {
	if _, err := l.rc.Del(l.key).Result(); err != nil {
		return fmt.Errorf("checkpoint: releasing lease on %s: %w", l.key, err)
	}
	return nil
}

func (s *Store) keyFor(path string) string {
	return fmt.Sprintf("%s:checkpoint-lease:%s", s.prefix, path)
}
