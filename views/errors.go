package views

import (
	"bytes"

	"github.com/a-h/templ"

	"github.com/eringen/gallery"
)

func errorPage(title, message string) templ.Component {
	s := shell{meta: gallery.PageMeta{Title: title}}
	return component(s, func(buf *bytes.Buffer) {
		buf.WriteString(`<main class="error-page"><h1>` + esc(title) + `</h1>`)
		buf.WriteString(`<p>` + esc(message) + `</p><p><a href="/">Back to the gallery</a></p></main>`)
	})
}

func NotFound() templ.Component {
	return errorPage("Not found", "There is nothing at this address.")
}

func ServerError() templ.Component {
	return errorPage("Something went wrong", "The gallery could not handle this request.")
}
