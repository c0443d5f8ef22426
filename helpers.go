package gallery

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/eringen/gallery/library"
	"github.com/eringen/gallery/viewer"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// GalleryURL is the gallery page filtered by q.
func GalleryURL(q string) string {
	if strings.TrimSpace(q) == "" {
		return "/"
	}
	return "/?" + url.Values{"q": {q}}.Encode()
}

// ViewURL is the viewer page for image i of the list filtered by q. A zero
// viewport is left for the page script to fill in. zoom is the number of
// zoom steps, negative for zooming out.
func ViewURL(q string, i int, viewport viewer.Size, zoom int) string {
	v := url.Values{"i": {strconv.Itoa(i)}}
	if strings.TrimSpace(q) != "" {
		v.Set("q", q)
	}
	if viewport.Valid() {
		v.Set("vw", strconv.FormatFloat(viewport.Width, 'f', -1, 64))
		v.Set("vh", strconv.FormatFloat(viewport.Height, 'f', -1, 64))
	}
	if zoom != 0 {
		v.Set("z", strconv.Itoa(zoom))
	}
	return "/view/?" + v.Encode()
}

// ThumbURL is the thumbnail of r.
func ThumbURL(r library.Record) string {
	return "/thumbs/" + url.PathEscape(r.File)
}

// Plural picks one of three noun forms for n using Slavic plural rules:
// forms[0] for 1, 21, 31..., forms[1] for 2-4, 22-24..., forms[2] otherwise.
func Plural(n int, forms [3]string) string {
	cases := [6]int{2, 0, 1, 1, 1, 2}
	if n < 0 {
		n = -n
	}
	if n%100 > 4 && n%100 < 20 {
		return forms[2]
	}
	if n%10 < 5 {
		return forms[cases[n%10]]
	}
	return forms[cases[5]]
}

// CountLabel is "N images" in the site language.
func CountLabel(lang string, n int) string {
	switch strings.ToLower(lang) {
	case "ru":
		return fmt.Sprintf("%d %s", n, Plural(n, [3]string{"изображение", "изображения", "изображений"}))
	case "uk":
		return fmt.Sprintf("%d %s", n, Plural(n, [3]string{"зображення", "зображення", "зображень"}))
	}
	if n == 1 {
		return "1 image"
	}
	return fmt.Sprintf("%d images", n)
}

var descriptionPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "strong", "i", "em", "br", "p", "span", "code")
	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	p.RequireNoFollowOnLinks(true)
	return p
}()

// SanitizeDescription strips everything but basic inline HTML from the
// site description.
func SanitizeDescription(s string) string {
	return strings.TrimSpace(descriptionPolicy.Sanitize(s))
}

// StripHTML returns s without any markup, for meta tags and feeds.
func StripHTML(s string) string {
	return strings.TrimSpace(bluemonday.StrictPolicy().Sanitize(s))
}

// GalleryJsonLD returns a JSON-LD string for an ImageGallery schema.
func GalleryJsonLD(cfg SiteConfig, recs []library.Record) string {
	images := make([]map[string]interface{}, 0, len(recs))
	for _, r := range recs {
		img := map[string]interface{}{
			"@type":      "ImageObject",
			"name":       r.Name,
			"contentUrl": strings.TrimSuffix(cfg.URL, "/") + r.Src,
		}
		if r.Author != "" {
			img["author"] = map[string]string{
				"@type": "Person",
				"name":  r.Author,
			}
		}
		if r.HasSize() {
			img["width"] = r.Width
			img["height"] = r.Height
		}
		images = append(images, img)
	}
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "ImageGallery",
		"name":        cfg.Name,
		"url":         BuildURL(cfg.URL),
		"description": StripHTML(cfg.Description),
		"image":       images,
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

const maxViewport = 16384

func parseFloatDefault(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || f <= 0 {
		return fallback
	}
	return math.Min(f, maxViewport)
}

// parseDimension reads an image's natural size. Unlike viewport values it is
// not capped; anything that is not a positive finite number yields 0.
func parseDimension(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	return f
}
