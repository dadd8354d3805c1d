package core

import (
	"errors"
	"sync"
)

// ErrBarrierBroken is returned to every current and future waiter of a
// barrier that has been broken.
var ErrBarrierBroken = errors.New("barrier broken")

// Barrier is a reusable rendezvous for a fixed number of parties. Each time
// the last party arrives the barrier trips, releasing everyone, and a new
// generation begins.
type Barrier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	parties    int
	waiting    int
	generation uint64
	broken     bool
}

// NewBarrier creates a barrier for parties participants.
func NewBarrier(parties int) *Barrier {
	if parties < 1 {
		parties = 1
	}
	b := &Barrier{parties: parties}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks until all parties have called Wait for the current generation,
// and returns that generation. It returns ErrBarrierBroken if the barrier is
// broken before it trips.
func (b *Barrier) Wait() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.broken {
		return b.generation, ErrBarrierBroken
	}

	gen := b.generation
	b.waiting++
	if b.waiting == b.parties {
		b.waiting = 0
		b.generation++
		b.cond.Broadcast()
		return gen, nil
	}

	for gen == b.generation && !b.broken {
		b.cond.Wait()
	}
	if gen == b.generation {
		return gen, ErrBarrierBroken
	}
	return gen, nil
}

// Break releases all waiters with ErrBarrierBroken and makes every later
// Wait fail immediately. Breaking twice is a no-op.
func (b *Barrier) Break() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.broken {
		return
	}
	b.broken = true
	b.cond.Broadcast()
}

// Broken reports whether Break has been called.
func (b *Barrier) Broken() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.broken
}

// Parties returns the number of participants required to trip the barrier.
func (b *Barrier) Parties() int {
	return b.parties
}

// Generation returns how many times the barrier has tripped.
func (b *Barrier) Generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generation
}
