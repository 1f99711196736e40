// Package barrier implements a cyclic rendezvous point for a fixed number
// of participants, equivalent to POSIX's pthread_barrier_t: every
// participant's call to Wait blocks until all of them have called it, then
// all are released together, and the barrier is immediately reusable for
// the next round.
package barrier

import "sync"

// Barrier is a reusable rendezvous point for n participants.
type Barrier struct {
	n          int
	mu         sync.Mutex
	cond       *sync.Cond
	count      int
	generation int
}

// New returns a Barrier that releases its participants once n of them have
// called Wait.
func New(n int) *Barrier {
	b := &Barrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks until n participants (across all goroutines sharing this
// Barrier) have called Wait, then returns. Every write a participant made
// before calling Wait is visible to every other participant after their
// call to Wait returns.
func (b *Barrier) Wait() {
	b.mu.Lock()
	defer b.mu.Unlock()
	gen := b.generation
	b.count++
	if b.count == b.n {
		b.count = 0
		b.generation++
		b.cond.Broadcast()
		return
	}
	for gen == b.generation {
		b.cond.Wait()
	}
}
