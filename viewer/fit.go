// Package viewer holds the full-screen image viewer model: the initial fit
// geometry of a shown image, zooming, the single live viewer instance and
// the batching used to settle a gallery before it is laid out.
package viewer

import (
	"fmt"
	"math"
)

// DefaultCoverage is used when Options.Coverage is outside (0, 1].
const DefaultCoverage = 0.9

// Size is a width and height in CSS pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

func (s Size) String() string {
	return fmt.Sprintf("%gx%g", s.Width, s.Height)
}

// Geometry is the on-screen placement of an image inside the viewer.
type Geometry struct {
	Ratio  float64 `json:"ratio"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Finite reports whether every field of g is a finite number. Extreme
// natural sizes can overflow the fit to infinity.
func (g Geometry) Finite() bool {
	for _, v := range [...]float64{g.Ratio, g.Width, g.Height, g.X, g.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Mode tells which fitting rule produced a Geometry.
type Mode int

const (
	// ModeCoverage fits the image into Coverage of the viewport without
	// upscaling beyond its natural size.
	ModeCoverage Mode = iota
	// ModeInteger upscales small images by a whole-number factor.
	ModeInteger
)

func (m Mode) String() string {
	if m == ModeInteger {
		return "integer"
	}
	return "coverage"
}

// ComputeFit sizes an image whose natural height is below minHeight.
//
// The ratio never exceeds the coverage constrained fit in either direction
// nor floor(minHeight / natural.Height), which keeps low resolution art on
// exact pixel multiples. The result is centered in viewport.
func ComputeFit(natural, viewport Size, minHeight, coverage float64) Geometry {
	maxIntegerRatio := math.Floor(minHeight / natural.Height)
	ratio := math.Min(
		math.Min(viewport.Width*coverage/natural.Width, viewport.Height*coverage/natural.Height),
		maxIntegerRatio,
	)
	return place(natural, viewport, ratio)
}

// InitialGeometry computes where an image first appears in a viewer of size
// container whose toolbar takes toolbarHeight pixels of its height.
func InitialGeometry(natural, container Size, toolbarHeight float64, opts Options) (Geometry, Mode) {
	viewport := Size{Width: container.Width, Height: math.Max(container.Height-toolbarHeight, 0)}
	coverage := opts.coverage()

	if opts.MinHeight > 0 && natural.Height < opts.MinHeight {
		return ComputeFit(natural, viewport, opts.MinHeight, coverage), ModeInteger
	}

	ratio := math.Min(
		math.Min(viewport.Width*coverage/natural.Width, viewport.Height*coverage/natural.Height),
		1,
	)
	return place(natural, viewport, ratio), ModeCoverage
}

func place(natural, viewport Size, ratio float64) Geometry {
	g := Geometry{
		Ratio:  ratio,
		Width:  natural.Width * ratio,
		Height: natural.Height * ratio,
	}
	g.X = (viewport.Width - g.Width) / 2
	g.Y = (viewport.Height - g.Height) / 2
	return g
}
