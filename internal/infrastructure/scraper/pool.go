package scraper

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// SessionPool caps how many rendered (headless-browser) sessions may be live
// at once. Each session is memory- and CPU-expensive, so acquisition blocks
// when the pool is saturated.
type SessionPool struct {
	sem    *semaphore.Weighted
	active atomic.Int64
}

// NewSessionPool builds a pool with the given capacity.
func NewSessionPool(max int64) *SessionPool {
	if max <= 0 {
		max = 1
	}
	return &SessionPool{sem: semaphore.NewWeighted(max)}
}

// Acquire checks out one session slot, blocking until one is free or ctx is
// done. The returned release func is safe to call more than once and must be
// deferred so the slot is returned on every exit path.
func (p *SessionPool) Acquire(ctx context.Context) (func(), error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire browser session: %w", err)
	}
	p.active.Add(1)

	var once sync.Once
	release := func() {
		once.Do(func() {
			p.active.Add(-1)
			p.sem.Release(1)
		})
	}
	return release, nil
}

// Active reports how many sessions are currently checked out.
func (p *SessionPool) Active() int64 {
	return p.active.Load()
}
