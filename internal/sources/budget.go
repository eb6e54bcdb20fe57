// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"sync"
	"time"
)

// Budget paces requests to one external source. A single Budget per source
// is shared by every document in a batch; its own mutex is the only lock.
type Budget struct {
	mu       sync.Mutex
	minDelay time.Duration
	next     time.Time
	requests int
}

// NewBudget returns a Budget enforcing minDelay between consecutive
// requests to the source.
func NewBudget(minDelay time.Duration) *Budget {
	return &Budget{minDelay: minDelay}
}

// Wait blocks until the next request slot opens, then claims it. It
// returns early with ctx.Err() if the context is cancelled while waiting.
func (b *Budget) Wait(ctx context.Context) error {
	if b == nil {
		return nil
	}

	b.mu.Lock()
	now := time.Now()
	wait := b.next.Sub(now)
	if wait < 0 {
		wait = 0
	}
	start := now
	if wait > 0 {
		start = b.next
	}
	b.next = start.Add(b.minDelay)
	b.requests++
	b.mu.Unlock()

	if wait == 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

// Requests returns how many slots have been claimed so far.
func (b *Budget) Requests() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests
}
