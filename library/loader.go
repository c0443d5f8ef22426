package library

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/eringen/gallery/viewer"
)

// DefaultExtensions are the file types picked up by a Loader.
var DefaultExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tif", ".tiff"}

// DimensionCache remembers natural sizes between scans. Entries are keyed
// by file name, size and modification time so edited files are re-probed.
type DimensionCache interface {
	LookupDimensions(file string, size int64, modTime time.Time) (width, height int, ok bool)
	SaveDimensions(file string, size int64, modTime time.Time, width, height int) error
}

// Loader scans a directory into a Snapshot.
type Loader struct {
	Dir        string
	URLPrefix  string   // prefix of Record.Src, e.g. "/images"
	Extensions []string // lower-case with dot; DefaultExtensions when empty
	Workers    int      // concurrent probes, default 4

	// SettleTimeout bounds how long Load waits for probes. When it elapses
	// the snapshot is published with the sizes known so far.
	SettleTimeout time.Duration

	Cache      DimensionCache        // optional
	Log        *logrus.Logger        // optional
	OnProgress func(done, total int) // optional, called after each probe
}

// Scan lists the images in the directory, sorted by file name, without
// probing their sizes.
func (l *Loader) Scan() ([]Record, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, fmt.Errorf("read library dir: %w", err)
	}
	exts := l.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	var recs []Record
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if !hasExtension(e.Name(), exts) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			l.logger().WithError(err).WithField("file", e.Name()).Warn("stat image")
			continue
		}
		r := NewRecord(l.URLPrefix, e.Name())
		r.Size = info.Size()
		r.ModTime = info.ModTime()
		recs = append(recs, r)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].File < recs[j].File })
	return recs, nil
}

// Load scans the directory and probes natural sizes. The snapshot is built
// once, after every probe has finished or SettleTimeout has elapsed.
// Cancelling ctx abandons the load.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	recs, err := l.Scan()
	if err != nil {
		return nil, err
	}

	var pending []int
	for i := range recs {
		if l.Cache != nil {
			if w, h, ok := l.Cache.LookupDimensions(recs[i].File, recs[i].Size, recs[i].ModTime); ok {
				recs[i].Width, recs[i].Height = w, h
				continue
			}
		}
		pending = append(pending, i)
	}

	var (
		mu   sync.Mutex
		snap *Snapshot
	)
	probeCtx, stop := context.WithCancel(ctx)
	defer stop()

	batch := viewer.NewBatch(len(pending), l.SettleTimeout, func(loaded, total int) {
		mu.Lock()
		defer mu.Unlock()
		snap = &Snapshot{
			Records:  append([]Record(nil), recs...),
			LoadedAt: time.Now(),
			Settled:  loaded == total,
			Probed:   loaded,
			Pending:  total - loaded,
		}
	})

	if len(pending) > 0 {
		l.startProbes(probeCtx, recs, pending, &mu, batch)
	}

	if err := batch.Wait(ctx); err != nil {
		batch.Cancel()
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()
	if !snap.Settled {
		l.logger().WithFields(logrus.Fields{
			"probed":  snap.Probed,
			"pending": snap.Pending,
		}).Warn("library settle timeout, publishing partial sizes")
	}
	return snap, nil
}

func (l *Loader) startProbes(ctx context.Context, recs []Record, pending []int, mu *sync.Mutex, batch *viewer.Batch) {
	workers := l.Workers
	if workers <= 0 {
		workers = 4
	}
	jobs := make(chan int)
	go func() {
		defer close(jobs)
		for _, i := range pending {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	var done int
	for w := 0; w < workers; w++ {
		go func() {
			for i := range jobs {
				mu.Lock()
				file, size, mod := recs[i].File, recs[i].Size, recs[i].ModTime
				mu.Unlock()

				width, height, err := probe(filepath.Join(l.Dir, file))
				if err != nil {
					l.logger().WithError(err).WithField("file", file).Warn("probe image size")
				}
				if ctx.Err() != nil {
					return
				}

				mu.Lock()
				recs[i].Width, recs[i].Height = width, height
				done++
				n := done
				mu.Unlock()

				if err == nil && l.Cache != nil {
					if err := l.Cache.SaveDimensions(file, size, mod, width, height); err != nil {
						l.logger().WithError(err).Debug("save image size")
					}
				}
				if l.OnProgress != nil {
					l.OnProgress(n, len(pending))
				}
				batch.Loaded()
			}
		}()
	}
}

func probe(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

func hasExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

func (l *Loader) logger() *logrus.Logger {
	if l.Log != nil {
		return l.Log
	}
	return logrus.StandardLogger()
}
