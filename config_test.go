package gallery

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSetDefaults(t *testing.T) {
	var cfg SiteConfig
	cfg.setDefaults()

	if cfg.Name != "Gallery" || cfg.Addr != ":3000" || cfg.Lang != "en" {
		t.Errorf("unexpected site defaults: %+v", cfg)
	}
	if cfg.ImageDir != "images" || cfg.DatabasePath != "data/gallery.db" {
		t.Errorf("unexpected path defaults: %q %q", cfg.ImageDir, cfg.DatabasePath)
	}
	if cfg.ImageMinHeight != 768 || cfg.InitialCoverage != 0.9 || cfg.ZoomRatio != 0.1 {
		t.Errorf("unexpected viewer defaults: %v %v %v", cfg.ImageMinHeight, cfg.InitialCoverage, cfg.ZoomRatio)
	}
	if cfg.GridColumns != 4 || cfg.ThumbWidth != 480 || cfg.ThumbCacheTTL != time.Hour {
		t.Errorf("unexpected grid defaults: %d %d %v", cfg.GridColumns, cfg.ThumbWidth, cfg.ThumbCacheTTL)
	}
	if cfg.SettleTimeout != 2*time.Second || cfg.ProbeWorkers != 4 {
		t.Errorf("unexpected loader defaults: %v %d", cfg.SettleTimeout, cfg.ProbeWorkers)
	}
	if cfg.AdminEnabled() {
		t.Error("admin enabled without a password")
	}
}

func TestSetDefaultsKeepsValues(t *testing.T) {
	cfg := SiteConfig{
		Name:            "Mine",
		URL:             "https://gallery.test/",
		InitialCoverage: 0.5,
		GridColumns:     6,
	}
	cfg.setDefaults()
	if cfg.Name != "Mine" || cfg.InitialCoverage != 0.5 || cfg.GridColumns != 6 {
		t.Errorf("values overwritten: %+v", cfg)
	}
	if cfg.URL != "https://gallery.test" {
		t.Errorf("URL = %q, want trailing slash trimmed", cfg.URL)
	}
}

func TestSetDefaultsCoverageOutOfRange(t *testing.T) {
	cfg := SiteConfig{InitialCoverage: 1.5}
	cfg.setDefaults()
	if cfg.InitialCoverage != 0.9 {
		t.Errorf("InitialCoverage = %v, want 0.9", cfg.InitialCoverage)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SITE_NAME", "Env Gallery")
	t.Setenv("IMAGE_DIR", "/srv/pictures")
	t.Setenv("GRID_COLUMNS", "6")
	t.Setenv("ZOOM_RATIO", "0.25")
	t.Setenv("THUMB_CACHE_TTL", "5m")
	t.Setenv("COOKIE_SECURE", "TRUE")
	t.Setenv("ADMIN_PASSWORD", "pw")
	t.Setenv("VIEWPORT_WIDTH", "1920")
	t.Setenv("VIEWPORT_HEIGHT", "1080")

	cfg := SiteConfig{Name: "File Gallery"}
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Name != "Env Gallery" || cfg.ImageDir != "/srv/pictures" {
		t.Errorf("strings not applied: %+v", cfg)
	}
	if cfg.GridColumns != 6 || cfg.ZoomRatio != 0.25 || cfg.ThumbCacheTTL != 5*time.Minute {
		t.Errorf("numbers not applied: %d %v %v", cfg.GridColumns, cfg.ZoomRatio, cfg.ThumbCacheTTL)
	}
	if cfg.ViewportWidth != 1920 || cfg.ViewportHeight != 1080 {
		t.Errorf("viewport not applied: %v x %v", cfg.ViewportWidth, cfg.ViewportHeight)
	}
	if !cfg.CookieSecure || !cfg.AdminEnabled() {
		t.Errorf("flags not applied: %+v", cfg)
	}
}

func TestApplyEnvBadValues(t *testing.T) {
	t.Setenv("GRID_COLUMNS", "many")
	t.Setenv("ZOOM_RATIO", "big")
	t.Setenv("SETTLE_TIMEOUT", "soon")
	t.Setenv("VIEWPORT_WIDTH", "wide")

	cfg := SiteConfig{GridColumns: 3, ViewportWidth: 1024}
	err := cfg.ApplyEnv()
	if err == nil {
		t.Fatal("expected error for malformed values")
	}
	for _, key := range []string{"GRID_COLUMNS", "ZOOM_RATIO", "SETTLE_TIMEOUT", "VIEWPORT_WIDTH"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not name %s", err, key)
		}
	}
	if cfg.GridColumns != 3 {
		t.Errorf("GridColumns = %d, want the old value kept", cfg.GridColumns)
	}
	if cfg.ViewportWidth != 1024 {
		t.Errorf("ViewportWidth = %v, want the old value kept", cfg.ViewportWidth)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gallery.yaml")
	data := `name: Holiday
image_dir: ./holiday
grid_columns: 5
zoom_ratio: 0.2
thumb_cache_ttl: 90s
cookie_secure: true
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if cfg.Name != "Holiday" || cfg.ImageDir != "./holiday" || cfg.GridColumns != 5 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.ZoomRatio != 0.2 || cfg.ThumbCacheTTL != 90*time.Second || !cfg.CookieSecure {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoadConfigFileMissing(t *testing.T) {
	cfg, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if cfg != (SiteConfig{}) {
		t.Errorf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("grid_columns: [1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfigFile(path); err == nil {
		t.Error("expected parse error")
	}
}
