package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/peterh/liner"
	"github.com/schollz/progressbar/v3"

	"github.com/eringen/gallery"
	"github.com/eringen/gallery/library"
	"github.com/eringen/gallery/logger"
	"github.com/eringen/gallery/query"
	"github.com/eringen/gallery/viewer"
	"github.com/eringen/gallery/views"
)

func runServe(cfg gallery.SiteConfig) error {
	app := gallery.New(cfg, views.Funcs())
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	app.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Shutdown(shutdownCtx)
}

// openLoader returns a loader over the configured image folder, backed by
// the size cache when the database can be opened.
func openLoader(cfg gallery.SiteConfig) (*library.Loader, func()) {
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	l := &library.Loader{
		Dir:           cfg.ImageDir,
		URLPrefix:     "/images",
		Workers:       cfg.ProbeWorkers,
		SettleTimeout: cfg.SettleTimeout,
		Log:           log,
	}
	store, err := gallery.NewStore(cfg.DatabasePath)
	if err != nil {
		log.WithError(err).Warn("size cache unavailable")
		return l, func() {}
	}
	l.Cache = store
	return l, func() { store.Close() }
}

func runList(cfg gallery.SiteConfig, args []string) error {
	l, done := openLoader(cfg)
	defer done()

	snap, err := l.Load(context.Background())
	if err != nil {
		return err
	}
	recs := snap.Filter(query.Parse(strings.Join(args, " ")))
	printRecords(os.Stdout, recs)
	fmt.Printf("%s\n", gallery.CountLabel(cfg.Lang, len(recs)))
	return nil
}

func printRecords(w io.Writer, recs []library.Record) {
	for _, r := range recs {
		size := "?"
		if r.HasSize() {
			size = fmt.Sprintf("%dx%d", r.Width, r.Height)
		}
		fmt.Fprintf(w, "%-10s %-40s %s\n", size, r.Caption(), r.File)
	}
}

func runRepl(cfg gallery.SiteConfig) error {
	l, done := openLoader(cfg)
	defer done()

	snap, err := l.Load(context.Background())
	if err != nil {
		return err
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Printf("%d images loaded. Empty query lists everything, :reload rescans, :q quits.\n", snap.Len())
	for {
		input, err := line.Prompt("gallery> ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		input = strings.TrimSpace(input)
		if input != "" {
			line.AppendHistory(input)
		}

		switch input {
		case ":q", ":quit", "exit":
			return nil
		case ":reload":
			next, err := l.Load(context.Background())
			if err != nil {
				fmt.Fprintf(os.Stderr, "reload: %v\n", err)
				continue
			}
			snap = next
			fmt.Printf("%d images loaded.\n", snap.Len())
			continue
		}

		recs := snap.Filter(query.Parse(input))
		printRecords(os.Stdout, recs)
		fmt.Println(gallery.CountLabel(cfg.Lang, len(recs)))
	}
}

func runIndex(cfg gallery.SiteConfig) error {
	l, done := openLoader(cfg)
	defer done()
	if l.Cache == nil {
		return fmt.Errorf("index needs the size cache at %s", cfg.DatabasePath)
	}
	// Indexing waits for every probe.
	l.SettleTimeout = 0

	var (
		mu   sync.Mutex
		bar  *progressbar.ProgressBar
		last int
	)
	// Probes report from several workers.
	l.OnProgress = func(n, total int) {
		mu.Lock()
		defer mu.Unlock()
		if bar == nil {
			bar = progressbar.Default(int64(total), "probing")
		}
		if n > last {
			last = n
			_ = bar.Set(n)
		}
	}

	start := time.Now()
	snap, err := l.Load(context.Background())
	if err != nil {
		return err
	}
	if bar != nil {
		_ = bar.Finish()
	}
	fmt.Printf("%d images, %d probed, %d unknown in %s\n",
		snap.Len(), snap.Probed, snap.Pending, time.Since(start).Round(time.Millisecond))
	return nil
}

func runFit(cfg gallery.SiteConfig, args []string) error {
	if len(args) != 2 && len(args) != 4 {
		return fmt.Errorf("usage: gallery fit W H [VW VH]")
	}
	nums := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil || v <= 0 {
			return fmt.Errorf("invalid dimension %q", a)
		}
		nums[i] = v
	}

	natural := viewer.Size{Width: nums[0], Height: nums[1]}
	container := viewer.Size{Width: cfg.ViewportWidth, Height: cfg.ViewportHeight}
	if len(nums) == 4 {
		container = viewer.Size{Width: nums[2], Height: nums[3]}
	}
	opts := viewer.Options{
		MinHeight: cfg.ImageMinHeight,
		Coverage:  cfg.InitialCoverage,
		ZoomRatio: cfg.ZoomRatio,
	}
	g, mode := viewer.InitialGeometry(natural, container, cfg.ToolbarHeight, opts)
	if !g.Finite() {
		return fmt.Errorf("dimensions %v x %v are out of range", natural.Width, natural.Height)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Natural   viewer.Size     `json:"natural"`
		Container viewer.Size     `json:"container"`
		Mode      string          `json:"mode"`
		Geometry  viewer.Geometry `json:"geometry"`
	}{natural, container, mode.String(), g})
}
