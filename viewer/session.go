package viewer

import (
	"errors"
	"math"
)

var (
	// ErrIndexOutOfRange is returned by Show for an index outside the gallery.
	ErrIndexOutOfRange = errors.New("viewer: index out of range")
	// ErrUnknownSize is returned by Show when the image has no natural size yet.
	ErrUnknownSize = errors.New("viewer: natural size unknown")
	// ErrDestroyed is returned by every operation after Destroy.
	ErrDestroyed = errors.New("viewer: destroyed")
	// ErrHidden is returned by Zoom when no image is shown.
	ErrHidden = errors.New("viewer: no image shown")
)

const (
	minZoomRatio = 0.01
	maxZoomRatio = 100
)

// Viewer is the full-screen viewer contract the gallery drives.
type Viewer interface {
	Show(index int) error
	Hide()
	Zoom(delta float64) error
	Destroy()
}

// Options configure a Session.
type Options struct {
	// MinHeight is the display height small images are upscaled towards.
	// Zero disables integer upscaling.
	MinHeight float64
	// Coverage is the share of the viewport an image may fill, in (0, 1].
	Coverage float64
	// ZoomRatio is the zoom step bound to keyboard shortcuts.
	ZoomRatio float64
	// ToolbarHeight is subtracted from the container height.
	ToolbarHeight float64
	// OnBeforeShow may adjust the initial geometry before it is applied.
	OnBeforeShow func(index int, g Geometry) Geometry
}

func (o Options) coverage() float64 {
	if o.Coverage <= 0 || o.Coverage > 1 {
		return DefaultCoverage
	}
	return o.Coverage
}

// Session is one viewer instance over a fixed list of images.
type Session struct {
	sizes     []Size
	container Size
	opts      Options

	index     int
	visible   bool
	destroyed bool
	mode      Mode
	geometry  Geometry
}

var _ Viewer = (*Session)(nil)

// NewSession creates a hidden viewer over images with the given natural
// sizes, displayed in a container of the given size. sizes is copied.
func NewSession(sizes []Size, container Size, opts Options) *Session {
	return &Session{
		sizes:     append([]Size(nil), sizes...),
		container: container,
		opts:      opts,
		index:     -1,
	}
}

// Show displays image index and computes its initial geometry. Showing the
// same index again resets any zoom.
func (s *Session) Show(index int) error {
	if s.destroyed {
		return ErrDestroyed
	}
	if index < 0 || index >= len(s.sizes) {
		return ErrIndexOutOfRange
	}
	s.index = index
	s.visible = true

	natural := s.sizes[index]
	if !natural.Valid() {
		s.geometry = Geometry{}
		return ErrUnknownSize
	}
	g, mode := InitialGeometry(natural, s.container, s.opts.ToolbarHeight, s.opts)
	if s.opts.OnBeforeShow != nil {
		g = s.opts.OnBeforeShow(index, g)
	}
	s.geometry, s.mode = g, mode
	return nil
}

// Hide closes the viewer, keeping the last index.
func (s *Session) Hide() {
	s.visible = false
}

// Zoom scales the shown image around its center. A positive delta zooms in
// by 1+delta, a negative one zooms out by 1/(1-delta).
func (s *Session) Zoom(delta float64) error {
	if s.destroyed {
		return ErrDestroyed
	}
	if !s.visible || s.index < 0 {
		return ErrHidden
	}
	natural := s.sizes[s.index]
	if !natural.Valid() {
		return ErrUnknownSize
	}

	factor := 1 + delta
	if delta < 0 {
		factor = 1 / (1 - delta)
	}
	ratio := math.Min(math.Max(s.geometry.Ratio*factor, minZoomRatio), maxZoomRatio)

	cx := s.geometry.X + s.geometry.Width/2
	cy := s.geometry.Y + s.geometry.Height/2
	g := Geometry{
		Ratio:  ratio,
		Width:  natural.Width * ratio,
		Height: natural.Height * ratio,
	}
	g.X = cx - g.Width/2
	g.Y = cy - g.Height/2
	s.geometry = g
	return nil
}

// Destroy releases the session. It is safe to call more than once.
func (s *Session) Destroy() {
	s.destroyed = true
	s.visible = false
	s.sizes = nil
}

// Destroyed reports whether Destroy was called.
func (s *Session) Destroyed() bool { return s.destroyed }

// Visible reports whether an image is shown.
func (s *Session) Visible() bool { return s.visible }

// Index returns the last shown index, or -1.
func (s *Session) Index() int { return s.index }

// Len returns the number of images in the session.
func (s *Session) Len() int { return len(s.sizes) }

// Geometry returns the current placement of the shown image.
func (s *Session) Geometry() Geometry { return s.geometry }

// Mode returns the fitting rule used by the last Show.
func (s *Session) Mode() Mode { return s.mode }

// Pixelated reports whether the shown image is upscaled by the integer rule
// and should be drawn without smoothing.
func (s *Session) Pixelated() bool {
	return s.visible && s.mode == ModeInteger && s.geometry.Ratio > 1
}
