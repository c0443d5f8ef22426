// Package views renders the gallery pages as templ components written in
// plain Go.
package views

import (
	"bytes"
	"context"
	"html"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/gallery"
)

// Funcs returns the default page components.
func Funcs() gallery.ViewFuncs {
	return gallery.ViewFuncs{
		Gallery:        Gallery,
		Viewer:         Viewer,
		AdminLogin:     AdminLogin,
		AdminDashboard: AdminDashboard,
		NotFound:       NotFound,
		ServerError:    ServerError,
	}
}

var esc = html.EscapeString

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "px"
}

// shell describes the document around a page body.
type shell struct {
	site       gallery.SiteInfo
	meta       gallery.PageMeta
	page       string // data-page attribute read by gallery.js
	bodyClass  string
	generation int64
}

func component(s shell, body func(buf *bytes.Buffer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		writeHead(&buf, s)
		body(&buf)
		buf.WriteString(`<script src="/public/gallery.js" defer></script></body></html>`)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func writeHead(buf *bytes.Buffer, s shell) {
	lang := s.site.Lang
	if lang == "" {
		lang = "en"
	}
	title := s.meta.Title
	if title == "" {
		title = s.site.Name
	}
	buf.WriteString(`<!DOCTYPE html><html lang="` + esc(lang) + `"><head><meta charset="utf-8">`)
	buf.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	buf.WriteString(`<title>` + esc(title) + `</title>`)
	if s.meta.Description != "" {
		buf.WriteString(`<meta name="description" content="` + esc(s.meta.Description) + `">`)
		buf.WriteString(`<meta property="og:description" content="` + esc(s.meta.Description) + `">`)
	}
	buf.WriteString(`<meta property="og:title" content="` + esc(title) + `">`)
	if s.meta.URL != "" {
		buf.WriteString(`<link rel="canonical" href="` + esc(s.meta.URL) + `">`)
		buf.WriteString(`<meta property="og:url" content="` + esc(s.meta.URL) + `">`)
	}
	if s.meta.OGType != "" {
		buf.WriteString(`<meta property="og:type" content="` + esc(s.meta.OGType) + `">`)
	}
	if s.meta.Image != "" {
		buf.WriteString(`<meta property="og:image" content="` + esc(s.meta.Image) + `">`)
	}
	buf.WriteString(`<link rel="alternate" type="application/rss+xml" title="` + esc(s.site.Name) + `" href="/feed.xml">`)
	buf.WriteString(`<link rel="stylesheet" href="/public/gallery.css"></head>`)

	buf.WriteString(`<body`)
	if s.bodyClass != "" {
		buf.WriteString(` class="` + esc(s.bodyClass) + `"`)
	}
	if s.page != "" {
		buf.WriteString(` data-page="` + esc(s.page) + `"`)
	}
	if s.generation > 0 {
		buf.WriteString(` data-generation="` + strconv.FormatInt(s.generation, 10) + `"`)
	}
	buf.WriteString(`>`)
}
