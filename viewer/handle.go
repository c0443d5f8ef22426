package viewer

import "sync"

// Destroyer is a resource with an explicit end of life.
type Destroyer interface {
	Destroy()
}

// Handle owns at most one live instance, identified by a key. When the key
// changes the old instance is destroyed before a new one is created.
type Handle[K comparable, V Destroyer] struct {
	mu   sync.Mutex
	key  K
	live V
	has  bool

	created int
}

// With runs fn against the instance for key, creating it with create if no
// instance is live or the live one belongs to another key. fn runs with the
// handle locked, so the instance is never used concurrently.
func (h *Handle[K, V]) With(key K, create func() (V, error), fn func(V) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.has && h.key != key {
		h.destroyLocked()
	}
	if !h.has {
		v, err := create()
		if err != nil {
			return err
		}
		h.key, h.live, h.has = key, v, true
		h.created++
	}
	return fn(h.live)
}

// Reset destroys the live instance, if any.
func (h *Handle[K, V]) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.has {
		h.destroyLocked()
	}
}

// Live reports whether an instance exists and returns its key.
func (h *Handle[K, V]) Live() (K, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.key, h.has
}

// Created returns how many instances the handle has constructed.
func (h *Handle[K, V]) Created() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.created
}

func (h *Handle[K, V]) destroyLocked() {
	h.live.Destroy()
	var zeroK K
	var zeroV V
	h.key, h.live, h.has = zeroK, zeroV, false
}
