package gallery

import (
	"encoding/xml"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/gallery/viewer"
)

type sitemapURLSet struct {
	XMLName    xml.Name     `xml:"urlset"`
	XMLNS      string       `xml:"xmlns,attr"`
	XMLNSImage string       `xml:"xmlns:image,attr"`
	URLs       []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string         `xml:"loc"`
	LastMod string         `xml:"lastmod,omitempty"`
	Images  []sitemapImage `xml:"image:image,omitempty"`
}

type sitemapImage struct {
	Loc   string `xml:"image:loc"`
	Title string `xml:"image:title,omitempty"`
}

func (a *App) handleSitemap(c echo.Context) error {
	base := a.Config.URL
	snap := a.Library.Current()

	home := sitemapURL{Loc: BuildURL(base)}
	if !snap.LoadedAt.IsZero() {
		home.LastMod = snap.LoadedAt.UTC().Format("2006-01-02")
	}
	urls := []sitemapURL{home}
	for i, r := range snap.Records {
		u := sitemapURL{
			Loc:    base + ViewURL("", i, viewer.Size{}, 0),
			Images: []sitemapImage{{Loc: base + r.Src, Title: r.Caption()}},
		}
		if !r.ModTime.IsZero() {
			u.LastMod = r.ModTime.UTC().Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	sitemap := sitemapURLSet{
		XMLNS:      "http://www.sitemaps.org/schemas/sitemap/0.9",
		XMLNSImage: "http://www.google.com/schemas/sitemap-image/1.1",
		URLs:       urls,
	}
	return renderXML(c, "application/xml; charset=utf-8", sitemap)
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nDisallow: /admin/\nDisallow: /api/\n"
	body += fmt.Sprintf("Sitemap: %s/sitemap.xml\n", a.Config.URL)
	return c.String(http.StatusOK, body)
}
