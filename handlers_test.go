package gallery_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gorilla/websocket"

	"github.com/eringen/gallery"
	"github.com/eringen/gallery/logger"
	"github.com/eringen/gallery/views"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 3), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// setupTestApp serves a library of three images, sorted as
// Pixel.png, Sunset.Jane.png, Tree%20Top.Bob%20Ross.png.
func setupTestApp(t *testing.T, cfg gallery.SiteConfig) (*gallery.App, string) {
	t.Helper()
	dir := t.TempDir()
	files := map[string][2]int{
		"Pixel.png":                 {32, 24},
		"Sunset.Jane.png":           {1600, 1200},
		"Tree%20Top.Bob%20Ross.png": {300, 900},
	}
	for name, size := range files {
		if err := os.WriteFile(filepath.Join(dir, name), pngBytes(t, size[0], size[1]), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg.ImageDir = dir
	if cfg.Name == "" {
		cfg.Name = "Test Gallery"
	}
	cfg.URL = "https://gallery.test"
	cfg.DatabasePath = filepath.Join(t.TempDir(), "gallery.db")
	cfg.SettleTimeout = 10 * time.Second

	app := gallery.New(cfg, views.Funcs(), gallery.WithLogger(logger.Discard()))
	if err := app.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { app.Close() })
	return app, dir
}

func get(t *testing.T, app *gallery.App, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	return rec
}

func parse(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	if err != nil {
		t.Fatalf("parse HTML: %v", err)
	}
	return doc
}

func TestGalleryPage(t *testing.T) {
	app, _ := setupTestApp(t, gallery.SiteConfig{})

	tests := []struct {
		name    string
		target  string
		items   int
		count   string
		authors []string
	}{
		{"all", "/", 3, "3 images", []string{"Jane", "Bob Ross"}},
		{"author operator", "/?q=author:jane", 1, "1 image", []string{"Jane"}},
		{"free text matches author", "/?q=ross", 1, "1 image", []string{"Bob Ross"}},
		{"decoded name", "/?q=name:tree+top", 1, "1 image", []string{"Bob Ross"}},
		{"no match", "/?q=author:nobody", 0, "0 images", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, app, tt.target)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			doc := parse(t, rec)
			if n := doc.Find("a.grid-item").Length(); n != tt.items {
				t.Errorf("grid items = %d, want %d", n, tt.items)
			}
			if got := doc.Find(".count").Text(); !strings.HasPrefix(got, tt.count) {
				t.Errorf("count = %q, want prefix %q", got, tt.count)
			}
			var authors []string
			doc.Find("figcaption .author").Each(func(_ int, s *goquery.Selection) {
				authors = append(authors, s.Text())
			})
			if strings.Join(authors, ",") != strings.Join(tt.authors, ",") {
				t.Errorf("authors = %v, want %v", authors, tt.authors)
			}
			if tt.items == 0 && doc.Find(".empty").Length() != 1 {
				t.Error("empty message missing")
			}
		})
	}
}

func TestGalleryPageLinks(t *testing.T) {
	app, _ := setupTestApp(t, gallery.SiteConfig{})
	doc := parse(t, get(t, app, "/?q=author:jane"))

	item := doc.Find("a.grid-item").First()
	if href, _ := item.Attr("href"); href != "/view/?i=0&q=author%3Ajane" {
		t.Errorf("view link = %q", href)
	}
	if src, _ := item.Find("img").Attr("src"); src != "/thumbs/Sunset.Jane.png" {
		t.Errorf("thumb src = %q", src)
	}
	if w, _ := item.Find("img").Attr("width"); w != "1600" {
		t.Errorf("img width = %q, want natural width", w)
	}
	if doc.Find(`.keys a[data-action="focus-search"]`).Length() != 2 {
		t.Error("focus-search shortcuts missing")
	}
	if ld := doc.Find(`script[type="application/ld+json"]`).Text(); !strings.Contains(ld, `"ImageGallery"`) {
		t.Errorf("JSON-LD = %q", ld)
	}
	if gen, _ := doc.Find("body").Attr("data-generation"); gen != "1" {
		t.Errorf("data-generation = %q, want 1", gen)
	}
}

func TestViewerRedirectsWhenMissing(t *testing.T) {
	app, _ := setupTestApp(t, gallery.SiteConfig{})

	tests := []struct {
		target   string
		location string
	}{
		{"/view/?i=9", "/"},
		{"/view/?i=-1", "/"},
		{"/view/?i=abc", "/"},
		{"/view/?i=1&q=author:jane", "/?q=author%3Ajane"},
		{"/view/?file=nope.png", "/"},
	}
	for _, tt := range tests {
		rec := get(t, app, tt.target)
		if rec.Code != http.StatusSeeOther {
			t.Errorf("%s: status = %d, want 303", tt.target, rec.Code)
			continue
		}
		if loc := rec.Header().Get("Location"); loc != tt.location {
			t.Errorf("%s: Location = %q, want %q", tt.target, loc, tt.location)
		}
	}
}

func TestViewerSmallImageUsesIntegerScale(t *testing.T) {
	app, _ := setupTestApp(t, gallery.SiteConfig{})

	// 32x24 in a 1280x800 stage: floor(768/24) = 32 caps the ratio, the
	// 0.9 coverage of 800 gives 30.
	rec := get(t, app, "/view/?i=0&vw=1280&vh=856")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	doc := parse(t, rec)
	img := doc.Find(".viewer-stage img")
	style, _ := img.Attr("style")
	if style != "left:160.00px;top:40.00px;width:960.00px;height:720.00px" {
		t.Errorf("style = %q", style)
	}
	if class, _ := img.Attr("class"); class != "pixelated" {
		t.Errorf("class = %q, want pixelated", class)
	}
	if mode, _ := doc.Find(".zoom").Attr("data-mode"); mode != "integer" {
		t.Errorf("mode = %q, want integer", mode)
	}
	if got := doc.Find(".position").Text(); got != "1 / 3" {
		t.Errorf("position = %q", got)
	}
	if doc.Find("a.prev").Length() != 0 {
		t.Error("first image has a previous link")
	}
	if href, _ := doc.Find("a.next").Attr("href"); href != "/view/?i=1&vh=856&vw=1280" {
		t.Errorf("next = %q", href)
	}
}

func TestViewerLargeImageUsesCoverage(t *testing.T) {
	app, _ := setupTestApp(t, gallery.SiteConfig{})

	doc := parse(t, get(t, app, "/view/?i=1&vw=1280&vh=856"))
	img := doc.Find(".viewer-stage img")
	if ratio, _ := img.Attr("data-ratio"); ratio != "0.6" {
		t.Errorf("ratio = %q, want 0.6", ratio)
	}
	if class, ok := img.Attr("class"); ok {
		t.Errorf("class = %q, want none", class)
	}
	if mode, _ := doc.Find(".zoom").Attr("data-mode"); mode != "coverage" {
		t.Errorf("mode = %q, want coverage", mode)
	}
	if got := doc.Find(".caption").Text(); got != "Sunset, Jane" {
		t.Errorf("caption = %q", got)
	}

	zoomed := parse(t, get(t, app, "/view/?i=1&vw=1280&vh=856&z=1"))
	if ratio, _ := zoomed.Find(".viewer-stage img").Attr("data-ratio"); ratio == "0.6" || ratio == "" {
		t.Errorf("zoomed ratio = %q, want changed", ratio)
	}

	var actions []string
	doc.Find(".keys a").Each(func(_ int, s *goquery.Selection) {
		a, _ := s.Attr("data-action")
		actions = append(actions, a)
	})
	joined := strings.Join(actions, ",")
	for _, want := range []string{"hide", "zoom-in", "zoom-out", "focus-search"} {
		if !strings.Contains(joined, want) {
			t.Errorf("keys %v missing %s", actions, want)
		}
	}
	if href, _ := doc.Find(`.keys a[data-action="hide"]`).First().Attr("href"); href != "/" {
		t.Errorf("hide link = %q", href)
	}
}

func TestViewerByFileName(t *testing.T) {
	app, _ := setupTestApp(t, gallery.SiteConfig{})
	rec := get(t, app, "/view/?file="+url.QueryEscape("Tree%20Top.Bob%20Ross.png"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := parse(t, rec).Find(".caption").Text(); got != "Tree Top, Bob Ross" {
		t.Errorf("caption = %q", got)
	}
}

func TestAPIImages(t *testing.T) {
	app, _ := setupTestApp(t, gallery.SiteConfig{})

	rec := get(t, app, "/api/images/?q=pixel")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Count   int                      `json:"count"`
		Total   int                      `json:"total"`
		Settled bool                     `json:"settled"`
		Images  []map[string]interface{} `json:"images"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 || resp.Total != 3 || !resp.Settled {
		t.Errorf("unexpected response: %+v", resp)
	}
	if len(resp.Images) != 1 {
		t.Fatalf("images = %d", len(resp.Images))
	}
	img := resp.Images[0]
	if author, ok := img["author"]; !ok || author != nil {
		t.Errorf("author = %v (present %v), want null", author, ok)
	}
	if img["width"] != float64(32) || img["src"] != "/images/Pixel.png" {
		t.Errorf("unexpected image: %v", img)
	}

	rec = get(t, app, "/api/images/?q=nothing-here")
	if !strings.Contains(rec.Body.String(), `"images":[]`) {
		t.Errorf("empty result should be an empty list: %s", rec.Body.String())
	}
}

func TestAPIFit(t *testing.T) {
	app, _ := setupTestApp(t, gallery.SiteConfig{})

	for _, target := range []string{"/api/fit/", "/api/fit/?w=10", "/api/fit/?w=abc&h=5", "/api/fit/?w=-1&h=5"} {
		if rec := get(t, app, target); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}

	rec := get(t, app, "/api/fit/?w=32&h=24&vw=1280&vh=856")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Mode     string `json:"mode"`
		Geometry struct {
			Ratio float64 `json:"ratio"`
			Width float64 `json:"width"`
			X     float64 `json:"x"`
		} `json:"geometry"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Mode != "integer" || resp.Geometry.Ratio != 30 || resp.Geometry.Width != 960 || resp.Geometry.X != 160 {
		t.Errorf("unexpected fit: %+v", resp)
	}
}

func TestAPIFitExtremeSizes(t *testing.T) {
	app, _ := setupTestApp(t, gallery.SiteConfig{})

	tests := []struct {
		name    string
		target  string
		status  int
		natural [2]float64
		width   float64
		height  float64
	}{
		// 800x600 less the 56px toolbar leaves 800x544; 90% coverage.
		{"tall natural kept", "/api/fit/?w=100&h=20000&vw=800&vh=600", http.StatusOK, [2]float64{100, 20000}, 2.448, 489.6},
		{"wide natural kept", "/api/fit/?w=1e308&h=1&vw=800&vh=600", http.StatusOK, [2]float64{1e308, 1}, 720, 7.2e-306},
		{"subnormal overflows", "/api/fit/?w=1e-320&h=1e-320&vw=800&vh=600", http.StatusBadRequest, [2]float64{}, 0, 0},
		{"infinite natural", "/api/fit/?w=Inf&h=5", http.StatusBadRequest, [2]float64{}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, app, tt.target)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			if tt.status != http.StatusOK {
				return
			}
			var resp struct {
				Natural struct {
					Width  float64 `json:"width"`
					Height float64 `json:"height"`
				} `json:"natural"`
				Geometry struct {
					Width  float64 `json:"width"`
					Height float64 `json:"height"`
				} `json:"geometry"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Natural.Width != tt.natural[0] || resp.Natural.Height != tt.natural[1] {
				t.Errorf("natural = %v x %v, want %v", resp.Natural.Width, resp.Natural.Height, tt.natural)
			}
			if !closeTo(resp.Geometry.Width, tt.width) || !closeTo(resp.Geometry.Height, tt.height) {
				t.Errorf("geometry = %v x %v, want %v x %v", resp.Geometry.Width, resp.Geometry.Height, tt.width, tt.height)
			}
		})
	}
}

func closeTo(got, want float64) bool {
	return math.Abs(got-want) <= 1e-6*math.Max(1, math.Abs(want))
}

func TestImageFiles(t *testing.T) {
	app, _ := setupTestApp(t, gallery.SiteConfig{})

	tests := []struct {
		target string
		status int
		ctype  string
	}{
		{"/images/Pixel.png", http.StatusOK, "image/png"},
		{"/images/Tree%2520Top.Bob%2520Ross.png", http.StatusOK, "image/png"},
		{"/images/missing.png", http.StatusNotFound, ""},
		{"/images/..%2Fgo.mod", http.StatusNotFound, ""},
		{"/thumbs/Sunset.Jane.png", http.StatusOK, "image/png"},
		{"/thumbs/missing.png", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		rec := get(t, app, tt.target)
		if rec.Code != tt.status {
			t.Errorf("%s: status = %d, want %d", tt.target, rec.Code, tt.status)
			continue
		}
		if tt.ctype != "" && rec.Header().Get("Content-Type") != tt.ctype {
			t.Errorf("%s: Content-Type = %q", tt.target, rec.Header().Get("Content-Type"))
		}
	}

	rec := get(t, app, "/thumbs/Sunset.Jane.png")
	cfg, err := png.DecodeConfig(rec.Body)
	if err != nil {
		t.Fatalf("thumbnail: %v", err)
	}
	if cfg.Width != 480 || cfg.Height != 360 {
		t.Errorf("thumbnail = %dx%d, want 480x360", cfg.Width, cfg.Height)
	}
}

func TestFeeds(t *testing.T) {
	app, _ := setupTestApp(t, gallery.SiteConfig{})

	robots := get(t, app, "/robots.txt").Body.String()
	for _, want := range []string{"Disallow: /admin/", "Disallow: /api/", "Sitemap: https://gallery.test/sitemap.xml"} {
		if !strings.Contains(robots, want) {
			t.Errorf("robots.txt missing %q:\n%s", want, robots)
		}
	}

	sitemap := get(t, app, "/sitemap.xml").Body.String()
	if !strings.Contains(sitemap, "<loc>https://gallery.test/view/?i=1</loc>") {
		t.Errorf("sitemap missing viewer URL:\n%s", sitemap)
	}
	if !strings.Contains(sitemap, "https://gallery.test/images/Sunset.Jane.png") {
		t.Errorf("sitemap missing image:\n%s", sitemap)
	}

	feed := get(t, app, "/feed.xml")
	if !strings.Contains(feed.Body.String(), "<rss") || strings.Count(feed.Body.String(), "<item>") != 3 {
		t.Errorf("unexpected feed:\n%s", feed.Body.String())
	}
}

func TestUnknownPageRendersNotFound(t *testing.T) {
	app, _ := setupTestApp(t, gallery.SiteConfig{})

	for _, target := range []string{"/nope/", "/admin/"} {
		rec := get(t, app, target)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", target, rec.Code)
			continue
		}
		if got := parse(t, rec).Find("h1").Text(); got != "Not found" {
			t.Errorf("%s: h1 = %q", target, got)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app, _ := setupTestApp(t, gallery.SiteConfig{})
	get(t, app, "/")

	body := get(t, app, "/metrics").Body.String()
	if !strings.Contains(body, "gallery_library_images 3") {
		t.Errorf("metrics missing image gauge:\n%s", body)
	}
}

func TestWebsocketAnnouncesReload(t *testing.T) {
	app, _ := setupTestApp(t, gallery.SiteConfig{})
	srv := httptest.NewServer(app.Echo)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg struct {
		Generation int64 `json:"generation"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("greeting: %v", err)
	}
	if msg.Generation != 1 {
		t.Errorf("greeting generation = %d, want 1", msg.Generation)
	}

	if _, err := app.Reload(t.Context()); err != nil {
		t.Fatal(err)
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	if msg.Generation != 2 {
		t.Errorf("broadcast generation = %d, want 2", msg.Generation)
	}
}

// client keeps cookies across requests to the admin area.
type client struct {
	t       *testing.T
	app     *gallery.App
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, app *gallery.App) *client {
	return &client{t: t, app: app, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.app.Echo.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		c.cookies[ck.Name] = ck
	}
	return rec
}

func (c *client) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func csrfToken(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	token, ok := parse(t, rec).Find(`input[name="_csrf"]`).First().Attr("value")
	if !ok || token == "" {
		t.Fatal("no CSRF token on page")
	}
	return token
}

func TestAdminFlow(t *testing.T) {
	app, dir := setupTestApp(t, gallery.SiteConfig{AdminPassword: "secret", SessionSecret: "0123456789abcdef0123456789abcdef"})
	c := newClient(t, app)

	login := c.do(httptest.NewRequest(http.MethodGet, "/admin/", nil))
	if login.Code != http.StatusOK {
		t.Fatalf("login page status = %d", login.Code)
	}
	token := csrfToken(t, login)

	if rec := c.postForm("/admin/login/", url.Values{"password": {"secret"}}); rec.Code != http.StatusForbidden {
		t.Errorf("login without CSRF token: status = %d, want 403", rec.Code)
	}

	bad := c.postForm("/admin/login/", url.Values{"password": {"wrong"}, "_csrf": {token}})
	if !strings.Contains(bad.Body.String(), "Wrong password.") {
		t.Errorf("wrong password not reported: %d", bad.Code)
	}

	ok := c.postForm("/admin/login/", url.Values{"password": {"secret"}, "_csrf": {token}})
	if ok.Code != http.StatusSeeOther || ok.Header().Get("Location") != "/admin/" {
		t.Fatalf("login: status = %d, Location = %q", ok.Code, ok.Header().Get("Location"))
	}

	dash := c.do(httptest.NewRequest(http.MethodGet, "/admin/", nil))
	doc := parse(t, dash)
	if n := doc.Find(".images tbody tr").Length(); n != 3 {
		t.Errorf("dashboard rows = %d, want 3", n)
	}

	// Upload a new image.
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", "upload.png")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(pngBytes(t, 40, 30))
	mw.WriteField("name", "Moon")
	mw.WriteField("author", "Ann")
	mw.WriteField("_csrf", token)
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/admin/images/upload/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	up := c.do(req)
	if up.Code != http.StatusSeeOther || up.Header().Get("Location") != "/admin/?msg=uploaded" {
		t.Fatalf("upload: status = %d, Location = %q, body %s", up.Code, up.Header().Get("Location"), up.Body.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "Moon.Ann.png")); err != nil {
		t.Errorf("uploaded file missing: %v", err)
	}
	if n := app.Library.Current().Len(); n != 4 {
		t.Errorf("library size after upload = %d, want 4", n)
	}

	// Delete the way the page script does.
	req = httptest.NewRequest(http.MethodDelete, "/admin/images/Pixel.png/", nil)
	req.Header.Set("X-CSRF-Token", token)
	del := c.do(req)
	if del.Code != http.StatusOK {
		t.Fatalf("delete: status = %d", del.Code)
	}
	if got := parse(t, del).Find(".message").Text(); got != "Image deleted." {
		t.Errorf("message = %q", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "Pixel.png")); !os.IsNotExist(err) {
		t.Errorf("deleted file still there: %v", err)
	}

	rescan := c.postForm("/admin/rescan/", url.Values{"_csrf": {token}})
	if rescan.Header().Get("Location") != "/admin/?msg=rescanned" {
		t.Errorf("rescan Location = %q", rescan.Header().Get("Location"))
	}

	c.postForm("/admin/logout/", url.Values{"_csrf": {token}})
	after := c.do(httptest.NewRequest(http.MethodGet, "/admin/", nil))
	if parse(t, after).Find(`input[type="password"]`).Length() != 1 {
		t.Error("still logged in after logout")
	}
}

func TestAdminRequiresSessionSecret(t *testing.T) {
	cfg := gallery.SiteConfig{
		AdminPassword: "secret",
		ImageDir:      t.TempDir(),
		DatabasePath:  filepath.Join(t.TempDir(), "g.db"),
	}
	app := gallery.New(cfg, views.Funcs(), gallery.WithLogger(logger.Discard()))
	defer app.Close()
	if err := app.Init(); err == nil {
		t.Error("Init succeeded without a session secret")
	}
}

func TestWithoutSizeCache(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.png"), pngBytes(t, 10, 20), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := gallery.SiteConfig{ImageDir: dir, DatabasePath: filepath.Join(dir, "never", "g.db")}
	app := gallery.New(cfg, views.Funcs(), gallery.WithLogger(logger.Discard()), gallery.WithoutSizeCache())
	if err := app.Init(); err != nil {
		t.Fatal(err)
	}
	defer app.Close()

	if app.Store != nil {
		t.Error("store opened")
	}
	if _, err := os.Stat(filepath.Join(dir, "never")); !os.IsNotExist(err) {
		t.Error("database directory created")
	}
	recs := app.Library.Current().Records
	if len(recs) != 1 || recs[0].Width != 10 || recs[0].Height != 20 {
		t.Errorf("records = %+v", recs)
	}
}
