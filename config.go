package gallery

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// SiteConfig holds all configuration for a gallery site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Gallery")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // May contain basic HTML; sanitized before rendering
	Lang        string `yaml:"lang"`        // "en" (default) or "ru", selects count labels

	Addr         string `yaml:"addr"`          // Listen address (default ":3000")
	ImageDir     string `yaml:"image_dir"`     // Folder of images (default "images")
	DatabasePath string `yaml:"database_path"` // SQLite size cache (default "data/gallery.db")

	ImageMinHeight  float64 `yaml:"image_min_height"` // Small images are upscaled towards this height (default 768)
	InitialCoverage float64 `yaml:"initial_coverage"` // Share of the viewer an image may fill (default 0.9)
	ZoomRatio       float64 `yaml:"zoom_ratio"`       // Keyboard zoom step (default 0.1)
	ToolbarHeight   float64 `yaml:"toolbar_height"`   // Viewer toolbar height in px (default 56)
	ViewportWidth   float64 `yaml:"viewport_width"`   // Assumed viewport when the client sends none (default 1280)
	ViewportHeight  float64 `yaml:"viewport_height"`  // (default 800)

	GridColumns   int           `yaml:"grid_columns"`    // Masonry columns (default 4)
	ThumbWidth    int           `yaml:"thumb_width"`     // Thumbnail width in px (default 480)
	ThumbCacheTTL time.Duration `yaml:"thumb_cache_ttl"` // (default 1h)
	SettleTimeout time.Duration `yaml:"settle_timeout"`  // Max wait for size probes (default 2s)
	ProbeWorkers  int           `yaml:"probe_workers"`   // (default 4)
	APIRate       float64       `yaml:"api_rate"`        // JSON API requests per second per IP (default 20)

	AdminPassword string `yaml:"admin_password"` // Enables the admin area when set
	SessionSecret string `yaml:"session_secret"` // Required with AdminPassword
	CookieSecure  bool   `yaml:"cookie_secure"`  // Set true for HTTPS

	LogLevel  string `yaml:"log_level"`  // logrus level (default "info")
	LogFormat string `yaml:"log_format"` // "text" (default) or "json"
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Gallery"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimSuffix(c.URL, "/")
	if c.Lang == "" {
		c.Lang = "en"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.ImageDir == "" {
		c.ImageDir = "images"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/gallery.db"
	}
	if c.ImageMinHeight == 0 {
		c.ImageMinHeight = 768
	}
	if c.InitialCoverage <= 0 || c.InitialCoverage > 1 {
		c.InitialCoverage = 0.9
	}
	if c.ZoomRatio <= 0 {
		c.ZoomRatio = 0.1
	}
	if c.ToolbarHeight == 0 {
		c.ToolbarHeight = 56
	}
	if c.ViewportWidth <= 0 {
		c.ViewportWidth = 1280
	}
	if c.ViewportHeight <= 0 {
		c.ViewportHeight = 800
	}
	if c.GridColumns <= 0 {
		c.GridColumns = 4
	}
	if c.ThumbWidth <= 0 {
		c.ThumbWidth = 480
	}
	if c.ThumbCacheTTL == 0 {
		c.ThumbCacheTTL = time.Hour
	}
	if c.SettleTimeout == 0 {
		c.SettleTimeout = 2 * time.Second
	}
	if c.ProbeWorkers <= 0 {
		c.ProbeWorkers = 4
	}
	if c.APIRate <= 0 {
		c.APIRate = 20
	}
}

// AdminEnabled reports whether the admin area is served.
func (c SiteConfig) AdminEnabled() bool {
	return c.AdminPassword != ""
}

// LoadConfigFile reads a YAML config file. A missing file yields an empty
// config and no error.
func LoadConfigFile(path string) (SiteConfig, error) {
	var cfg SiteConfig
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with any environment variables that are set.
// Fields whose variable does not parse keep their value, and the returned
// error names every such variable.
func (c *SiteConfig) ApplyEnv() error {
	var bad []string
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *float64) {
		if v := os.Getenv(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				bad = append(bad, key)
				return
			}
			*dst = f
		}
	}
	integer := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				bad = append(bad, key)
				return
			}
			*dst = n
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				bad = append(bad, key)
				return
			}
			*dst = d
		}
	}

	str("SITE_NAME", &c.Name)
	str("SITE_URL", &c.URL)
	str("SITE_DESCRIPTION", &c.Description)
	str("SITE_LANG", &c.Lang)
	str("ADDR", &c.Addr)
	str("IMAGE_DIR", &c.ImageDir)
	str("DATABASE_PATH", &c.DatabasePath)
	num("IMAGE_MIN_HEIGHT", &c.ImageMinHeight)
	num("INITIAL_COVERAGE", &c.InitialCoverage)
	num("ZOOM_RATIO", &c.ZoomRatio)
	num("TOOLBAR_HEIGHT", &c.ToolbarHeight)
	num("VIEWPORT_WIDTH", &c.ViewportWidth)
	num("VIEWPORT_HEIGHT", &c.ViewportHeight)
	integer("GRID_COLUMNS", &c.GridColumns)
	integer("THUMB_WIDTH", &c.ThumbWidth)
	integer("PROBE_WORKERS", &c.ProbeWorkers)
	num("API_RATE", &c.APIRate)
	dur("THUMB_CACHE_TTL", &c.ThumbCacheTTL)
	dur("SETTLE_TIMEOUT", &c.SettleTimeout)
	str("ADMIN_PASSWORD", &c.AdminPassword)
	str("ADMIN_SESSION_SECRET", &c.SessionSecret)
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		c.CookieSecure = strings.EqualFold(v, "true")
	}
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)

	if len(bad) > 0 {
		return fmt.Errorf("invalid values for %s", strings.Join(bad, ", "))
	}
	return nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithLogger replaces the logger built from LogLevel and LogFormat.
func WithLogger(l *logrus.Logger) Option {
	return func(a *App) {
		a.Log = l
	}
}

// WithoutSizeCache keeps probed sizes in memory only.
func WithoutSizeCache() Option {
	return func(a *App) {
		a.noStore = true
	}
}
