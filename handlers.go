package gallery

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/eringen/gallery/layout"
	"github.com/eringen/gallery/library"
	"github.com/eringen/gallery/logger"
	"github.com/eringen/gallery/query"
	"github.com/eringen/gallery/viewer"
)

const (
	maxColumns   = 12
	maxZoomSteps = 60
	gridWidth    = 1200
	gridGutter   = 8
)

func (a *App) siteInfo() SiteInfo {
	return SiteInfo{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.description,
		Lang:        a.Config.Lang,
		Admin:       a.Config.AdminEnabled(),
	}
}

func (a *App) handleHome(c echo.Context) error {
	raw := c.QueryParam("q")
	snap := a.Library.Current()
	recs := snap.Filter(query.Parse(raw))

	cols := a.Config.GridColumns
	if n, err := strconv.Atoi(c.QueryParam("cols")); err == nil && n > 0 {
		cols = min(n, maxColumns)
	}
	colWidth := math.Floor((gridWidth - float64(cols-1)*gridGutter) / float64(cols))
	lay := layout.Pack(library.Boxes(recs), layout.Options{
		Columns:     cols,
		ColumnWidth: colWidth,
		Gutter:      gridGutter,
	})

	columns := make([][]GridItem, lay.Columns)
	for ci, idxs := range lay.ColumnIndexes() {
		for _, i := range idxs {
			p := lay.Items[i]
			columns[ci] = append(columns[ci], GridItem{
				Index:    i,
				Record:   recs[i],
				ViewURL:  ViewURL(raw, i, viewer.Size{}, 0),
				ThumbURL: ThumbURL(recs[i]),
				Width:    p.Width,
				Height:   p.Height,
			})
		}
	}

	meta := PageMeta{
		Title:       a.Config.Name,
		Description: StripHTML(a.Config.Description),
		URL:         BuildURL(a.Config.URL),
		OGType:      "website",
	}
	if len(recs) > 0 {
		meta.Image = a.Config.URL + recs[0].Src
	}
	if strings.TrimSpace(raw) != "" {
		meta.Title = raw + " | " + a.Config.Name
	}

	return Render(c, a.Views.Gallery(GalleryPage{
		Site:        a.siteInfo(),
		Meta:        meta,
		Query:       raw,
		Columns:     columns,
		ColumnCount: lay.Columns,
		ColumnWidth: colWidth,
		Count:       len(recs),
		Total:       snap.Len(),
		CountLabel:  CountLabel(a.Config.Lang, len(recs)),
		Generation:  snap.Generation,
		Settled:     snap.Settled,
		JsonLD:      GalleryJsonLD(a.Config, recs),
	}))
}

// viewerOptions are the session options derived from the site config.
func (a *App) viewerOptions() viewer.Options {
	return viewer.Options{
		MinHeight:     a.Config.ImageMinHeight,
		Coverage:      a.Config.InitialCoverage,
		ZoomRatio:     a.Config.ZoomRatio,
		ToolbarHeight: a.Config.ToolbarHeight,
	}
}

func (a *App) handleViewer(c echo.Context) error {
	raw := c.QueryParam("q")
	q := query.Parse(raw)
	snap := a.Library.Current()
	recs := snap.Filter(q)
	log := logger.For(c.Request().Context(), a.Log)

	index, ok := lookupIndex(c, recs)
	if !ok {
		a.Metrics.viewer("missing")
		log.WithFields(logrus.Fields{
			"i":    c.QueryParam("i"),
			"file": c.QueryParam("file"),
			"q":    raw,
		}).Warn("viewer: no image at requested position")
		return c.Redirect(http.StatusSeeOther, GalleryURL(raw))
	}

	vp := viewer.Size{
		Width:  parseFloatDefault(c.QueryParam("vw"), a.Config.ViewportWidth),
		Height: parseFloatDefault(c.QueryParam("vh"), a.Config.ViewportHeight),
	}
	zoom, _ := strconv.Atoi(c.QueryParam("z"))
	zoom = max(-maxZoomSteps, min(zoom, maxZoomSteps))

	page := ViewerPage{
		Site:       a.siteInfo(),
		Record:     recs[index],
		Index:      index,
		Count:      len(recs),
		Query:      raw,
		Caption:    recs[index].Caption(),
		Zoom:       zoom,
		Viewport:   vp,
		Toolbar:    a.Config.ToolbarHeight,
		CloseURL:   GalleryURL(raw),
		Generation: snap.Generation,
	}

	err := a.viewers.With(newViewKey(snap.Generation, vp, q), func() (*viewer.Session, error) {
		return viewer.NewSession(library.Sizes(recs), vp, a.viewerOptions()), nil
	}, func(s *viewer.Session) error {
		if err := s.Show(index); err != nil {
			return err
		}
		for i := 0; i < abs(zoom); i++ {
			delta := a.Config.ZoomRatio
			if zoom < 0 {
				delta = -delta
			}
			if err := s.Zoom(delta); err != nil {
				return err
			}
		}
		page.Known = true
		page.Geometry = s.Geometry()
		page.Mode = s.Mode()
		page.Pixelated = s.Pixelated()
		return nil
	})
	switch {
	case errors.Is(err, viewer.ErrUnknownSize):
		// Shown without geometry; the browser sizes the image itself.
		a.Metrics.viewer("unknown_size")
		log.WithField("file", recs[index].File).Debug("viewer: natural size unknown")
	case errors.Is(err, viewer.ErrIndexOutOfRange):
		a.Metrics.viewer("missing")
		log.WithField("i", index).Warn("viewer: session list does not hold the requested position")
		return c.Redirect(http.StatusSeeOther, GalleryURL(raw))
	case err != nil:
		return err
	default:
		a.Metrics.viewer("ok")
	}

	if index > 0 {
		page.PrevURL = ViewURL(raw, index-1, vp, 0)
	}
	if index < len(recs)-1 {
		page.NextURL = ViewURL(raw, index+1, vp, 0)
	}
	page.Keys = a.keyLinks(raw, index, vp, zoom)
	page.Meta = PageMeta{
		Title:       page.Caption + " | " + a.Config.Name,
		Description: page.Caption,
		URL:         a.Config.URL + ViewURL("", indexInLibrary(snap, recs[index]), viewer.Size{}, 0),
		OGType:      "website",
		Image:       a.Config.URL + recs[index].Src,
	}
	return Render(c, a.Views.Viewer(page))
}

// lookupIndex resolves the image a viewer request points at, by file name
// or by position in the filtered list.
func lookupIndex(c echo.Context, recs []library.Record) (int, bool) {
	if file := c.QueryParam("file"); file != "" {
		return library.IndexOf(recs, file)
	}
	i, err := strconv.Atoi(c.QueryParam("i"))
	if err != nil || i < 0 || i >= len(recs) {
		return -1, false
	}
	return i, true
}

func indexInLibrary(snap *library.Snapshot, r library.Record) int {
	i, _ := library.IndexOf(snap.Records, r.File)
	return i
}

// keyLinks renders the keymap as links the page script follows.
func (a *App) keyLinks(raw string, index int, vp viewer.Size, zoom int) []KeyLink {
	links := make([]KeyLink, 0, len(viewer.DefaultKeymap))
	for _, b := range viewer.DefaultKeymap {
		link := KeyLink{
			Key:    b.Key.Name,
			Ctrl:   b.Key.Ctrl,
			Meta:   b.Key.Meta,
			Action: b.Action.String(),
		}
		switch b.Action {
		case viewer.ActionHide:
			link.URL = GalleryURL(raw)
		case viewer.ActionZoomIn:
			link.URL = ViewURL(raw, index, vp, min(zoom+1, maxZoomSteps))
		case viewer.ActionZoomOut:
			link.URL = ViewURL(raw, index, vp, max(zoom-1, -maxZoomSteps))
		case viewer.ActionFocusSearch:
			link.URL = GalleryURL(raw) + "#search"
		default:
			continue
		}
		links = append(links, link)
	}
	return links
}

type imagesResponse struct {
	Query      query.Query      `json:"query"`
	Count      int              `json:"count"`
	Total      int              `json:"total"`
	Generation int64            `json:"generation"`
	Settled    bool             `json:"settled"`
	Images     []library.Record `json:"images"`
}

func (a *App) handleAPIImages(c echo.Context) error {
	q := query.Parse(c.QueryParam("q"))
	snap := a.Library.Current()
	recs := snap.Filter(q)
	if recs == nil {
		recs = []library.Record{}
	}
	return c.JSON(http.StatusOK, imagesResponse{
		Query:      q,
		Count:      len(recs),
		Total:      snap.Len(),
		Generation: snap.Generation,
		Settled:    snap.Settled,
		Images:     recs,
	})
}

type fitResponse struct {
	Natural  viewer.Size     `json:"natural"`
	Viewport viewer.Size     `json:"viewport"`
	Mode     string          `json:"mode"`
	Geometry viewer.Geometry `json:"geometry"`
}

func (a *App) handleAPIFit(c echo.Context) error {
	natural := viewer.Size{
		Width:  parseDimension(c.QueryParam("w")),
		Height: parseDimension(c.QueryParam("h")),
	}
	if !natural.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "w and h must be positive numbers")
	}
	container := viewer.Size{
		Width:  parseFloatDefault(c.QueryParam("vw"), a.Config.ViewportWidth),
		Height: parseFloatDefault(c.QueryParam("vh"), a.Config.ViewportHeight),
	}
	g, mode := viewer.InitialGeometry(natural, container, a.Config.ToolbarHeight, a.viewerOptions())
	if !g.Finite() {
		return echo.NewHTTPError(http.StatusBadRequest, "w and h are out of range")
	}
	return c.JSON(http.StatusOK, fitResponse{
		Natural:  natural,
		Viewport: container,
		Mode:     mode.String(),
		Geometry: g,
	})
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if strings.HasPrefix(c.Request().URL.Path, "/api/") {
		a.Echo.DefaultHTTPErrorHandler(err, c)
		return
	}
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		logger.For(c.Request().Context(), a.Log).WithError(err).Error("server error")
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
