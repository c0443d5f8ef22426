package gallery

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when a requested image or cache entry does not exist.
var ErrNotFound = errors.New("gallery: not found")

// Thumb is one rendered thumbnail.
type Thumb struct {
	Data        []byte
	ContentType string
	ModTime     time.Time // of the source file
	Width       int
	Height      int
}

type thumbEntry struct {
	thumb   Thumb
	fetched time.Time
}

// thumbKey names one version of a source file.
type thumbKey struct {
	file    string
	modTime int64
}

// thumbCall is a render in progress. thumb and err are set before done is
// closed.
type thumbCall struct {
	done  chan struct{}
	thumb Thumb
	err   error
}

// ThumbCache is an in-memory cache of downscaled images with TTL. Entries
// are also dropped when the source file changes.
//
// Renders run outside the lock. Concurrent misses on the same file version
// wait for a single render.
type ThumbCache struct {
	mu       sync.RWMutex
	entries  map[string]thumbEntry
	inflight map[thumbKey]*thumbCall
	ttl      time.Duration
	width    int
	dir      string
}

// NewThumbCache creates a ThumbCache rendering images from dir at width px.
func NewThumbCache(dir string, width int, ttl time.Duration) *ThumbCache {
	return &ThumbCache{
		entries:  make(map[string]thumbEntry),
		inflight: make(map[thumbKey]*thumbCall),
		ttl:      ttl,
		width:    width,
		dir:      dir,
	}
}

func (c *ThumbCache) valid(e thumbEntry, modTime time.Time) bool {
	return time.Since(e.fetched) < c.ttl && e.thumb.ModTime.Equal(modTime)
}

// Get returns the thumbnail for file, rendering it on a miss.
func (c *ThumbCache) Get(file string) (Thumb, error) {
	if !safeFileName(file) {
		return Thumb{}, ErrNotFound
	}
	path := filepath.Join(c.dir, file)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return Thumb{}, ErrNotFound
	}

	c.mu.RLock()
	e, ok := c.entries[file]
	c.mu.RUnlock()
	if ok && c.valid(e, info.ModTime()) {
		return e.thumb, nil
	}

	key := thumbKey{file: file, modTime: info.ModTime().UnixNano()}
	c.mu.Lock()
	if e, ok := c.entries[file]; ok && c.valid(e, info.ModTime()) {
		c.mu.Unlock()
		return e.thumb, nil
	}
	if call, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		<-call.done
		return call.thumb, call.err
	}
	call := &thumbCall{done: make(chan struct{})}
	c.inflight[key] = call
	c.mu.Unlock()

	t, err := renderThumbnail(path, c.width)
	if err == nil {
		t.ModTime = info.ModTime()
	}
	call.thumb, call.err = t, err

	c.mu.Lock()
	delete(c.inflight, key)
	// A slower render of an older version must not replace a newer one.
	if old, ok := c.entries[file]; err == nil && (!ok || !old.thumb.ModTime.After(t.ModTime)) {
		c.entries[file] = thumbEntry{thumb: t, fetched: time.Now()}
	}
	c.mu.Unlock()
	close(call.done)

	return call.thumb, call.err
}

// Invalidate clears the cache so the next read renders fresh thumbnails.
func (c *ThumbCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]thumbEntry)
	c.mu.Unlock()
}

// Forget drops the cached thumbnail of one file.
func (c *ThumbCache) Forget(file string) {
	c.mu.Lock()
	delete(c.entries, file)
	c.mu.Unlock()
}

// Len returns the number of cached thumbnails.
func (c *ThumbCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// safeFileName reports whether name is a plain file name inside the
// image folder.
func safeFileName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	return filepath.Base(name) == name && !filepath.IsAbs(name)
}
