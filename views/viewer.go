package views

import (
	"bytes"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/gallery"
)

// Viewer renders one image full screen with its toolbar and the keyboard
// shortcut links.
func Viewer(p gallery.ViewerPage) templ.Component {
	s := shell{site: p.Site, meta: p.Meta, page: "viewer", bodyClass: "viewer-page", generation: p.Generation}
	return component(s, func(buf *bytes.Buffer) {
		buf.WriteString(`<div class="viewer-toolbar" style="height:` + px(p.Toolbar) + `">`)
		buf.WriteString(`<a class="close" href="` + esc(p.CloseURL) + `" title="Close (Esc)">&times;</a>`)
		if p.PrevURL != "" {
			buf.WriteString(`<a class="prev" data-view href="` + esc(p.PrevURL) + `">&larr;</a>`)
		}
		buf.WriteString(`<span class="position">` + strconv.Itoa(p.Index+1) + ` / ` + strconv.Itoa(p.Count) + `</span>`)
		if p.NextURL != "" {
			buf.WriteString(`<a class="next" data-view href="` + esc(p.NextURL) + `">&rarr;</a>`)
		}
		buf.WriteString(`<span class="caption">` + esc(p.Record.Name))
		if p.Record.Author != "" {
			buf.WriteString(`, <span class="author">` + esc(p.Record.Author) + `</span>`)
		}
		buf.WriteString(`</span>`)
		if p.Known {
			buf.WriteString(`<span class="zoom" data-mode="` + esc(p.Mode.String()) + `">` +
				strconv.FormatFloat(p.Geometry.Ratio*100, 'f', 0, 64) + `%</span>`)
		}
		buf.WriteString(`<a class="original" href="` + esc(p.Record.Src) + `">Original</a>`)
		buf.WriteString(`</div>`)

		buf.WriteString(`<div class="viewer-stage" style="top:` + px(p.Toolbar) + `">`)
		buf.WriteString(`<img src="` + esc(p.Record.Src) + `" alt="` + esc(p.Caption) + `"`)
		class := ""
		if p.Known {
			g := p.Geometry
			buf.WriteString(` style="left:` + px(g.X) + `;top:` + px(g.Y) + `;width:` + px(g.Width) + `;height:` + px(g.Height) + `"`)
			buf.WriteString(` data-ratio="` + strconv.FormatFloat(g.Ratio, 'f', -1, 64) + `"`)
		} else {
			class = "fluid"
		}
		if p.Pixelated {
			if class != "" {
				class += " "
			}
			class += "pixelated"
		}
		if class != "" {
			buf.WriteString(` class="` + class + `"`)
		}
		buf.WriteString(`></div>`)

		buf.WriteString(`<nav class="keys">`)
		for _, k := range p.Keys {
			buf.WriteString(`<a href="` + esc(k.URL) + `" data-key="` + esc(k.Key) + `" data-action="` + esc(k.Action) + `"`)
			if k.Ctrl {
				buf.WriteString(` data-ctrl`)
			}
			if k.Meta {
				buf.WriteString(` data-meta`)
			}
			if k.Action == "zoom-in" || k.Action == "zoom-out" {
				buf.WriteString(` data-view`)
			}
			buf.WriteString(`>` + esc(k.Action) + `</a>`)
		}
		buf.WriteString(`</nav>`)
	})
}
