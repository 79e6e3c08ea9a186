package renderer

import (
	"sync"
	"sync/atomic"

	"github.com/ItsHoff/rusty/pkg/core"
)

// SplatXY is a splat contribution with resolved pixel coordinates
type SplatXY struct {
	X, Y  int
	Color core.Vec3
}

// SplatQueue collects splat contributions from all workers. Appends take a
// lock-free fast path into a pre-allocated buffer and only lock to grow it.
type SplatQueue struct {
	splats []SplatXY
	length int64
	mu     sync.Mutex
}

// NewSplatQueue creates a splat queue with a pre-allocated buffer
func NewSplatQueue() *SplatQueue {
	return &SplatQueue{
		splats: make([]SplatXY, 65536),
	}
}

// AddSplat records a splat contribution for the given pixel
func (sq *SplatQueue) AddSplat(x, y int, color core.Vec3) {
	index := atomic.AddInt64(&sq.length, 1) - 1

	if int(index) < len(sq.splats) {
		sq.splats[index] = SplatXY{X: x, Y: y, Color: color}
		return
	}

	sq.mu.Lock()
	defer sq.mu.Unlock()
	// Another worker may have grown the buffer while we waited
	for int(index) >= len(sq.splats) {
		grown := make([]SplatXY, 2*len(sq.splats))
		copy(grown, sq.splats)
		sq.splats = grown
	}
	sq.splats[index] = SplatXY{X: x, Y: y, Color: color}
}

// DrainTo flushes all pending splats into the film and clears the queue.
// Callers must make sure no worker is appending concurrently.
func (sq *SplatQueue) DrainTo(film *Film) int {
	sq.mu.Lock()
	defer sq.mu.Unlock()

	count := int(atomic.LoadInt64(&sq.length))
	if count > len(sq.splats) {
		count = len(sq.splats)
	}
	for _, splat := range sq.splats[:count] {
		film.AddSplat(splat.X, splat.Y, splat.Color)
	}
	atomic.StoreInt64(&sq.length, 0)
	return count
}

// Count returns the number of pending splats
func (sq *SplatQueue) Count() int {
	return int(atomic.LoadInt64(&sq.length))
}
