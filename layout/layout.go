// Package layout packs gallery items into balanced columns.
package layout

// Box is the natural size of an item. A zero size packs as a square.
type Box struct {
	Width  float64
	Height float64
}

// Options control packing.
type Options struct {
	Columns     int     // number of columns, at least 1
	ColumnWidth float64 // width every item is scaled to
	Gutter      float64 // vertical and horizontal gap between items
}

// Placement is where one item ended up.
type Placement struct {
	Index  int
	Column int
	X, Y   float64
	Width  float64
	Height float64
}

// Layout is the result of Pack.
type Layout struct {
	Columns int
	Width   float64
	Height  float64
	Items   []Placement // in input order
}

// Pack places each box, in order, at the bottom of the currently shortest
// column. Ties go to the leftmost column, so items inside a column stay in
// their original relative order.
func Pack(boxes []Box, opts Options) Layout {
	cols := opts.Columns
	if cols < 1 {
		cols = 1
	}
	if cols > len(boxes) && len(boxes) > 0 {
		cols = len(boxes)
	}
	colW := opts.ColumnWidth
	if colW <= 0 {
		colW = 1
	}

	heights := make([]float64, cols)
	l := Layout{
		Columns: cols,
		Width:   float64(cols)*colW + float64(cols-1)*opts.Gutter,
		Items:   make([]Placement, len(boxes)),
	}

	for i, b := range boxes {
		c := shortest(heights)
		h := colW
		if b.Width > 0 && b.Height > 0 {
			h = colW * b.Height / b.Width
		}
		y := heights[c]
		if y > 0 {
			y += opts.Gutter
		}
		l.Items[i] = Placement{
			Index:  i,
			Column: c,
			X:      float64(c) * (colW + opts.Gutter),
			Y:      y,
			Width:  colW,
			Height: h,
		}
		heights[c] = y + h
	}

	for _, h := range heights {
		if h > l.Height {
			l.Height = h
		}
	}
	return l
}

// ColumnIndexes groups item indexes by column, top to bottom.
func (l Layout) ColumnIndexes() [][]int {
	out := make([][]int, l.Columns)
	for _, p := range l.Items {
		out[p.Column] = append(out[p.Column], p.Index)
	}
	return out
}

func shortest(heights []float64) int {
	best := 0
	for i, h := range heights {
		if h < heights[best] {
			best = i
		}
	}
	return best
}
