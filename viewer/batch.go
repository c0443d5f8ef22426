package viewer

import (
	"context"
	"sync"
	"time"
)

// Batch collects load events for a known number of items and runs its
// callback a single time: when every item has loaded, or when maxWait has
// elapsed, whichever happens first.
type Batch struct {
	mu      sync.Mutex
	total   int
	loaded  int
	settled bool
	timer   *time.Timer
	fn      func(loaded, total int)
	done    chan struct{}
}

// NewBatch starts a batch over total items. A total of zero settles
// immediately, calling fn before NewBatch returns. A non-positive maxWait
// disables the fallback timer.
func NewBatch(total int, maxWait time.Duration, fn func(loaded, total int)) *Batch {
	b := &Batch{
		total: total,
		fn:    fn,
		done:  make(chan struct{}),
	}
	if total <= 0 {
		b.mu.Lock()
		b.settleLocked()
		b.mu.Unlock()
		return b
	}
	if maxWait > 0 {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.timer = time.AfterFunc(maxWait, func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.settleLocked()
		})
	}
	return b
}

// Loaded records one finished item. The call that completes the batch runs
// the callback.
func (b *Batch) Loaded() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.settled {
		return
	}
	b.loaded++
	if b.loaded >= b.total {
		b.settleLocked()
	}
}

// Cancel abandons a pending batch without running the callback. It returns
// false if the batch had already settled.
func (b *Batch) Cancel() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.settled {
		return false
	}
	b.settled = true
	b.fn = nil
	if b.timer != nil {
		b.timer.Stop()
	}
	close(b.done)
	return true
}

// Done is closed once the batch settles or is cancelled.
func (b *Batch) Done() <-chan struct{} {
	return b.done
}

// Wait blocks until the batch is done or ctx ends.
func (b *Batch) Wait(ctx context.Context) error {
	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Progress returns the loaded and total counts.
func (b *Batch) Progress() (loaded, total int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loaded, b.total
}

// settleLocked runs with b.mu held; the callback therefore must not call
// back into the batch.
func (b *Batch) settleLocked() {
	if b.settled {
		return
	}
	b.settled = true
	if b.timer != nil {
		b.timer.Stop()
	}
	if b.fn != nil {
		b.fn(b.loaded, b.total)
	}
	close(b.done)
}
