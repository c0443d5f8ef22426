package gallery

import (
	"time"

	"github.com/eringen/gallery/library"
	"github.com/eringen/gallery/viewer"
)

// SiteInfo is the site-wide data every page template receives.
type SiteInfo struct {
	Name        string
	URL         string
	Description string // sanitized HTML
	Lang        string
	Admin       bool // admin area enabled
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website"
	Image       string // og:image, absolute
}

// GridItem is one thumbnail placed in the masonry grid.
type GridItem struct {
	Index    int // position in the filtered list
	Record   library.Record
	ViewURL  string
	ThumbURL string
	Width    float64 // scaled to the column width
	Height   float64
}

// GalleryPage is the data for the gallery grid.
type GalleryPage struct {
	Site        SiteInfo
	Meta        PageMeta
	Query       string // search box contents
	Columns     [][]GridItem
	ColumnCount int
	ColumnWidth float64
	Count       int // images matching Query
	Total       int // images in the library
	CountLabel  string
	Generation  int64
	Settled     bool
	JsonLD      string // ImageGallery structured data, safe to embed
}

// KeyLink is a keyboard shortcut rendered as a link the page script follows.
type KeyLink struct {
	Key    string // DOM key name
	Ctrl   bool
	Meta   bool
	Action string
	URL    string
}

// ViewerPage is the data for the full-screen viewer.
type ViewerPage struct {
	Site       SiteInfo
	Meta       PageMeta
	Record     library.Record
	Index      int
	Count      int
	Query      string
	Caption    string
	Known      bool // natural size known, Geometry is meaningful
	Geometry   viewer.Geometry
	Mode       viewer.Mode
	Pixelated  bool
	Zoom       int
	Viewport   viewer.Size
	Toolbar    float64 // toolbar height, the stage starts below it
	CloseURL   string
	PrevURL    string // empty on the first image
	NextURL    string // empty on the last image
	Keys       []KeyLink
	Generation int64
}

// AdminLoginPage is the data for the admin login form.
type AdminLoginPage struct {
	Site      SiteInfo
	ShowError bool
	CSRFToken string
}

// AdminPage is the data for the admin dashboard.
type AdminPage struct {
	Site       SiteInfo
	Images     []library.Record
	Generation int64
	LoadedAt   time.Time
	Settled    bool
	Pending    int
	Thumbs     int // cached thumbnails
	Message    string
	CSRFToken  string
}
