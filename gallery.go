// Package gallery serves a folder of images as a searchable masonry grid
// with a full-screen viewer, built with Go, Echo, and templ.
//
// Users provide templ components via the ViewFuncs struct; the App owns the
// image library, the viewer sessions, middleware, and the optional admin
// area.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/eringen/gallery/library"
	"github.com/eringen/gallery/logger"
	"github.com/eringen/gallery/query"
	"github.com/eringen/gallery/viewer"
)

// ViewFuncs holds the templ components the App calls when rendering pages.
type ViewFuncs struct {
	Gallery        func(page GalleryPage) templ.Component
	Viewer         func(page ViewerPage) templ.Component
	AdminLogin     func(page AdminLoginPage) templ.Component
	AdminDashboard func(page AdminPage) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
}

// ViewKey identifies a viewer session. A new library generation, viewport
// or filter gets a fresh session.
type ViewKey struct {
	Generation int64
	Viewport   viewer.Size
	Operators  string
	Text       string
}

func newViewKey(generation int64, vp viewer.Size, q query.Query) ViewKey {
	return ViewKey{
		Generation: generation,
		Viewport:   vp,
		Operators:  q.OperatorKey(),
		Text:       q.Text,
	}
}

// App is the central gallery application. It wires together the library,
// stores, caches, handlers, middleware, and user-provided templates.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Store   *Store // nil when the size cache is disabled
	Thumbs  *ThumbCache
	Library *library.Holder
	Views   ViewFuncs
	Log     *logrus.Logger
	Hub     *Hub
	Metrics *Metrics

	viewers      viewer.Handle[ViewKey, *viewer.Session]
	loginLimiter *AttemptLimiter
	customRoutes []func(*App)
	noStore      bool
	description  string
	ready        bool
}

// New creates a gallery App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:  cfg,
		Echo:    echo.New(),
		Views:   views,
		Library: &library.Holder{},
	}

	for _, opt := range opts {
		opt(a)
	}
	if a.Log == nil {
		a.Log = logger.New(cfg.LogLevel, cfg.LogFormat)
	}

	return a
}

// Init opens the store, loads the library, and registers middleware and
// routes. It does not listen; Start calls it before serving.
func (a *App) Init() error {
	if a.ready {
		return nil
	}
	if a.Config.AdminEnabled() && a.Config.SessionSecret == "" {
		return fmt.Errorf("gallery: SessionSecret is required when AdminPassword is set")
	}
	if err := os.MkdirAll(a.Config.ImageDir, 0o755); err != nil {
		return fmt.Errorf("gallery: image dir: %w", err)
	}

	if !a.noStore {
		store, err := NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("gallery: init store: %w", err)
		}
		a.Store = store
	}

	a.Thumbs = NewThumbCache(a.Config.ImageDir, a.Config.ThumbWidth, a.Config.ThumbCacheTTL)
	a.loginLimiter = NewAttemptLimiter(5, time.Minute)
	a.Hub = NewHub(a.Log)
	go a.Hub.Run()
	a.Metrics = NewMetrics(a)
	a.description = SanitizeDescription(a.Config.Description)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	if _, err := a.Reload(context.Background()); err != nil {
		return fmt.Errorf("gallery: load library: %w", err)
	}
	a.ready = true
	return nil
}

// Start initializes the App and serves until the server is closed.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Log.WithFields(logrus.Fields{
		"addr":   a.Config.Addr,
		"images": a.Library.Current().Len(),
		"admin":  a.Config.AdminEnabled(),
	}).Info("gallery listening")

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Embedded page script and styles.
	assets, _ := fs.Sub(EmbeddedAssets, "embedded")
	e.GET("/public/*", echo.WrapHandler(http.StripPrefix("/public/", http.FileServer(http.FS(assets)))))
	e.GET("/robots.txt", a.handleRobots)

	e.GET("/images/*", a.handleOriginal)
	e.GET("/thumbs/*", a.handleThumb)

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	e.GET("/view/", a.handleViewer)
	e.GET("/ws", a.handleWebsocket)
	e.GET("/metrics", a.Metrics.handler())

	api := e.Group("/api", a.apiRateLimiter())
	api.GET("/images/", a.handleAPIImages)
	api.GET("/fit/", a.handleAPIFit)

	if !a.Config.AdminEnabled() {
		return
	}
	admin := e.Group("/admin", a.adminMiddleware()...)
	admin.GET("/", a.handleAdmin)
	admin.POST("/login/", a.handleAdminLogin)
	admin.POST("/logout/", handleAdminLogout)
	admin.POST("/rescan/", a.handleAdminRescan)
	admin.POST("/images/upload/", a.handleImageUpload)
	admin.DELETE("/images/*", a.handleImageDelete)
}

// Shutdown stops the HTTP server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) loader() *library.Loader {
	l := &library.Loader{
		Dir:           a.Config.ImageDir,
		URLPrefix:     "/images",
		Workers:       a.Config.ProbeWorkers,
		SettleTimeout: a.Config.SettleTimeout,
		Log:           a.Log,
	}
	if a.Store != nil {
		l.Cache = a.Store
	}
	return l
}

// Reload rescans the image folder and publishes a new snapshot. The live
// viewer session is destroyed and connected pages are told to refresh. A
// reload superseded by a newer one returns context.Canceled.
func (a *App) Reload(ctx context.Context) (*library.Snapshot, error) {
	entry := logger.For(ctx, a.Log).WithField("dir", a.Config.ImageDir)
	done := logger.Track(entry, "library reload", 5*time.Second)

	snap, err := a.Library.Reload(ctx, a.loader())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			a.Metrics.reload("superseded")
			entry.Debug("library reload superseded")
		} else {
			a.Metrics.reload("error")
			entry.WithError(err).Error("library reload failed")
		}
		return nil, err
	}
	done()

	a.viewers.Reset()
	a.Thumbs.Invalidate()
	if a.Store != nil {
		files := make([]string, len(snap.Records))
		for i, r := range snap.Records {
			files[i] = r.File
		}
		if n, err := a.Store.Prune(files); err != nil {
			entry.WithError(err).Warn("prune size cache")
		} else if n > 0 {
			entry.WithField("removed", n).Debug("pruned size cache")
		}
	}

	a.Metrics.reload("ok")
	a.Hub.Broadcast(snap.Generation)
	entry.WithFields(logrus.Fields{
		"generation": snap.Generation,
		"images":     snap.Len(),
		"settled":    snap.Settled,
	}).Info("library published")
	return snap, nil
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	a.viewers.Reset()
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.Hub != nil {
		a.Hub.Close()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("gallery: required environment variable %s is not set", key)
	}
	return v
}
