package gallery

import (
	"encoding/xml"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/gallery/library"
	"github.com/eringen/gallery/viewer"
)

const feedSize = 50

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title     string       `xml:"title"`
	Link      string       `xml:"link"`
	Author    string       `xml:"author,omitempty"`
	PubDate   string       `xml:"pubDate,omitempty"`
	GUID      string       `xml:"guid"`
	Enclosure rssEnclosure `xml:"enclosure"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Length int64  `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

// newestFirst returns up to n records ordered by modification time,
// newest first. recs is not modified.
func newestFirst(recs []library.Record, n int) []library.Record {
	out := append([]library.Record(nil), recs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ModTime.After(out[j].ModTime) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func (a *App) handleFeed(c echo.Context) error {
	base := a.Config.URL
	recs := a.Library.Current().Records

	items := make([]rssItem, 0, feedSize)
	for _, r := range newestFirst(recs, feedSize) {
		i, _ := library.IndexOf(recs, r.File)
		link := base + ViewURL("", i, viewer.Size{}, 0)
		pubDate := ""
		if !r.ModTime.IsZero() {
			pubDate = r.ModTime.UTC().Format(time.RFC1123Z)
		}
		items = append(items, rssItem{
			Title:   r.Caption(),
			Link:    link,
			Author:  r.Author,
			PubDate: pubDate,
			GUID:    base + r.Src,
			Enclosure: rssEnclosure{
				URL:    base + r.Src,
				Length: r.Size,
				Type:   mimeByExtension(r.File),
			},
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        BuildURL(base),
			Description: StripHTML(a.Config.Description),
			Items:       items,
		},
	}
	return renderXML(c, "application/rss+xml; charset=utf-8", feed)
}
