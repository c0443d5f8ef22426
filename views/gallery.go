package views

import (
	"bytes"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/gallery"
)

// Gallery renders the search box and the masonry grid.
func Gallery(p gallery.GalleryPage) templ.Component {
	s := shell{site: p.Site, meta: p.Meta, page: "gallery", generation: p.Generation}
	return component(s, func(buf *bytes.Buffer) {
		buf.WriteString(`<header class="site-header"><div><h1><a href="/">` + esc(p.Site.Name) + `</a></h1>`)
		if p.Site.Description != "" {
			// Sanitized by the App.
			buf.WriteString(`<p class="site-description">` + p.Site.Description + `</p>`)
		}
		buf.WriteString(`</div>`)

		buf.WriteString(`<form class="search" method="get" action="/" role="search">`)
		buf.WriteString(`<input id="search" type="search" name="q" value="` + esc(p.Query) + `" placeholder="name:sunset author:jane" autocomplete="off">`)
		buf.WriteString(`<button type="submit">Search</button></form>`)
		buf.WriteString(`<span class="count" data-count="` + strconv.Itoa(p.Count) + `">` + esc(p.CountLabel))
		if p.Count != p.Total {
			buf.WriteString(` / ` + strconv.Itoa(p.Total))
		}
		buf.WriteString(`</span>`)
		// Ctrl/Cmd+F focuses the search box.
		buf.WriteString(`<nav class="keys"><a href="#search" data-key="f" data-ctrl data-action="focus-search"></a><a href="#search" data-key="f" data-meta data-action="focus-search"></a></nav>`)
		buf.WriteString(`</header>`)

		if p.JsonLD != "" {
			buf.WriteString(`<script type="application/ld+json">` + p.JsonLD + `</script>`)
		}

		if p.Count == 0 {
			buf.WriteString(`<p class="empty">No images match.</p>`)
			return
		}

		buf.WriteString(`<main class="grid" data-columns="` + strconv.Itoa(p.ColumnCount) + `">`)
		for _, col := range p.Columns {
			buf.WriteString(`<div class="grid-column">`)
			for _, item := range col {
				writeGridItem(buf, item)
			}
			buf.WriteString(`</div>`)
		}
		buf.WriteString(`</main>`)
	})
}

func writeGridItem(buf *bytes.Buffer, item gallery.GridItem) {
	r := item.Record
	buf.WriteString(`<a class="grid-item" data-view data-index="` + strconv.Itoa(item.Index) + `" href="` + esc(item.ViewURL) + `">`)
	buf.WriteString(`<figure><img loading="lazy" src="` + esc(item.ThumbURL) + `" alt="` + esc(r.Caption()) + `"`)
	if r.HasSize() {
		buf.WriteString(` width="` + strconv.Itoa(r.Width) + `" height="` + strconv.Itoa(r.Height) + `"`)
	}
	buf.WriteString(`>`)
	buf.WriteString(`<figcaption><span class="name">` + esc(r.Name) + `</span>`)
	if r.Author != "" {
		buf.WriteString(`, <span class="author">` + esc(r.Author) + `</span>`)
	}
	buf.WriteString(`</figcaption></figure></a>`)
}
