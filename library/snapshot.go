package library

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eringen/gallery/layout"
	"github.com/eringen/gallery/query"
	"github.com/eringen/gallery/viewer"
)

// Snapshot is one immutable view of the library. Callers must not modify
// Records.
type Snapshot struct {
	Records    []Record
	Generation int64
	LoadedAt   time.Time
	Settled    bool // false when the settle timeout cut probing short
	Probed     int
	Pending    int
}

// Filter returns the records matching q, in library order.
func (s *Snapshot) Filter(q query.Query) []Record {
	return query.Filter(s.Records, q)
}

// Len returns the number of records.
func (s *Snapshot) Len() int {
	return len(s.Records)
}

// IndexOf returns the position of file in recs.
func IndexOf(recs []Record, file string) (int, bool) {
	for i, r := range recs {
		if r.File == file {
			return i, true
		}
	}
	return -1, false
}

// Sizes returns the natural sizes of recs for a viewer session.
func Sizes(recs []Record) []viewer.Size {
	out := make([]viewer.Size, len(recs))
	for i, r := range recs {
		out[i] = viewer.Size{Width: float64(r.Width), Height: float64(r.Height)}
	}
	return out
}

// Boxes returns the natural sizes of recs for the layout engine.
func Boxes(recs []Record) []layout.Box {
	out := make([]layout.Box, len(recs))
	for i, r := range recs {
		out[i] = layout.Box{Width: float64(r.Width), Height: float64(r.Height)}
	}
	return out
}

// Holder publishes snapshots and serializes reloads. A reload started while
// another one is pending cancels the older one.
type Holder struct {
	cur atomic.Pointer[Snapshot]
	gen atomic.Int64

	mu     sync.Mutex
	cancel context.CancelFunc
	seq    uint64
}

// Current returns the latest snapshot, or an empty one before the first
// publish.
func (h *Holder) Current() *Snapshot {
	if s := h.cur.Load(); s != nil {
		return s
	}
	return &Snapshot{}
}

// Publish stamps s with the next generation and makes it current.
func (h *Holder) Publish(s *Snapshot) *Snapshot {
	s.Generation = h.gen.Add(1)
	h.cur.Store(s)
	return s
}

// Reload runs l and publishes its snapshot. If a newer Reload starts before
// this one finishes, this one returns context.Canceled and publishes
// nothing.
func (h *Holder) Reload(ctx context.Context, l *Loader) (*Snapshot, error) {
	h.mu.Lock()
	if h.cancel != nil {
		h.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.seq++
	seq := h.seq
	h.mu.Unlock()

	snap, err := l.Load(ctx)

	h.mu.Lock()
	defer h.mu.Unlock()
	if seq == h.seq {
		h.cancel = nil
	}
	cancel()
	if err != nil {
		return nil, err
	}
	if seq != h.seq {
		return nil, context.Canceled
	}
	return h.Publish(snap), nil
}
