package views

import (
	"bytes"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/gallery"
)

func csrfField(token string) string {
	return `<input type="hidden" name="_csrf" value="` + esc(token) + `">`
}

// AdminLogin renders the password form.
func AdminLogin(p gallery.AdminLoginPage) templ.Component {
	s := shell{site: p.Site, meta: gallery.PageMeta{Title: "Admin | " + p.Site.Name}, page: "admin"}
	return component(s, func(buf *bytes.Buffer) {
		buf.WriteString(`<main class="admin"><h1>Admin</h1>`)
		if p.ShowError {
			buf.WriteString(`<p class="error">Wrong password.</p>`)
		}
		buf.WriteString(`<form method="post" action="/admin/login/">` + csrfField(p.CSRFToken))
		buf.WriteString(`<label>Password <input type="password" name="password" autofocus required></label> `)
		buf.WriteString(`<button type="submit">Log in</button></form></main>`)
	})
}

// AdminDashboard renders the library status, upload form and image list.
func AdminDashboard(p gallery.AdminPage) templ.Component {
	s := shell{site: p.Site, meta: gallery.PageMeta{Title: "Admin | " + p.Site.Name}, page: "admin", generation: p.Generation}
	return component(s, func(buf *bytes.Buffer) {
		buf.WriteString(`<main class="admin"><h1>Admin</h1>`)
		if p.Message != "" {
			buf.WriteString(`<p class="message">` + esc(p.Message) + `</p>`)
		}

		buf.WriteString(`<section class="status"><p>Generation ` + strconv.FormatInt(p.Generation, 10))
		if !p.LoadedAt.IsZero() {
			buf.WriteString(`, loaded ` + esc(p.LoadedAt.Format("2006-01-02 15:04:05")))
		}
		buf.WriteString(`. ` + strconv.Itoa(len(p.Images)) + ` images, ` + strconv.Itoa(p.Thumbs) + ` thumbnails cached.`)
		if !p.Settled {
			buf.WriteString(` <strong>` + strconv.Itoa(p.Pending) + ` sizes still unknown.</strong>`)
		}
		buf.WriteString(`</p>`)
		buf.WriteString(`<form class="inline" method="post" action="/admin/rescan/">` + csrfField(p.CSRFToken) + `<button type="submit">Rescan</button></form> `)
		buf.WriteString(`<form class="inline" method="post" action="/admin/logout/">` + csrfField(p.CSRFToken) + `<button type="submit">Log out</button></form>`)
		buf.WriteString(`</section>`)

		buf.WriteString(`<section class="upload"><h2>Upload</h2>`)
		buf.WriteString(`<form method="post" action="/admin/images/upload/" enctype="multipart/form-data">` + csrfField(p.CSRFToken))
		buf.WriteString(`<input type="file" name="image" accept="image/*" required> `)
		buf.WriteString(`<input type="text" name="name" placeholder="Name"> `)
		buf.WriteString(`<input type="text" name="author" placeholder="Author"> `)
		buf.WriteString(`<button type="submit">Upload</button></form></section>`)

		buf.WriteString(`<section class="images"><h2>Images</h2><table><thead><tr>`)
		buf.WriteString(`<th>Name</th><th>Author</th><th>File</th><th>Size</th><th></th></tr></thead><tbody>`)
		for _, r := range p.Images {
			buf.WriteString(`<tr><td><a href="` + esc(r.Src) + `">` + esc(r.Name) + `</a></td>`)
			buf.WriteString(`<td>` + esc(r.Author) + `</td><td><code>` + esc(r.File) + `</code></td><td>`)
			if r.HasSize() {
				buf.WriteString(strconv.Itoa(r.Width) + `&times;` + strconv.Itoa(r.Height))
			} else {
				buf.WriteString(`unknown`)
			}
			buf.WriteString(`</td><td><form class="inline" data-method="DELETE" method="post" action="/admin/images/` + esc(url.PathEscape(r.File)) + `/">`)
			buf.WriteString(csrfField(p.CSRFToken) + `<button type="submit">Delete</button></form></td></tr>`)
		}
		buf.WriteString(`</tbody></table></section></main>`)
	})
}
