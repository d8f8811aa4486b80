package core

import "fmt"

// LayoutKind distinguishes strips from 2D matrices.
type LayoutKind string

const (
	// LayoutStrip is a linear run of pixels.
	LayoutStrip LayoutKind = "strip"
	// LayoutGrid is a W×H matrix wired row by row.
	LayoutGrid LayoutKind = "grid"
)

// LayoutSpec describes how physical pixel indices are arranged.
type LayoutSpec struct {
	Kind       LayoutKind
	Count      int
	Width      int
	Height     int
	Serpentine bool
	FlipX      bool
	FlipY      bool
	Rotate     int
}

// Layout maps logical (x, y) coordinates onto physical pixel indices.
// Logical coordinates are row-major over the rotated view; physical indices
// follow the wiring order of the panel.
type Layout struct {
	spec     LayoutSpec
	w, h     int
	toPhys   []int
	toLogicl []int
}

// NewLayout builds the index tables for spec. Non-positive dimensions are
// raised to 1 so that every layout has at least one pixel.
func NewLayout(spec LayoutSpec) *Layout {
	pw, ph := spec.Width, spec.Height
	if spec.Kind != LayoutGrid {
		spec.Kind = LayoutStrip
		pw, ph = spec.Count, 1
		spec.Serpentine, spec.FlipY = false, false
		if spec.Rotate != 180 {
			spec.Rotate = 0
		}
	}
	if pw <= 0 {
		pw = 1
	}
	if ph <= 0 {
		ph = 1
	}
	switch spec.Rotate {
	case 0, 90, 180, 270:
	default:
		spec.Rotate = 0
	}
	spec.Width, spec.Height, spec.Count = pw, ph, pw*ph

	lw, lh := pw, ph
	if spec.Rotate == 90 || spec.Rotate == 270 {
		lw, lh = ph, pw
	}
	l := &Layout{
		spec:     spec,
		w:        lw,
		h:        lh,
		toPhys:   make([]int, pw*ph),
		toLogicl: make([]int, pw*ph),
	}
	for y := 0; y < lh; y++ {
		for x := 0; x < lw; x++ {
			px, py := x, y
			switch spec.Rotate {
			case 90:
				px, py = y, ph-1-x
			case 180:
				px, py = pw-1-x, ph-1-y
			case 270:
				px, py = pw-1-y, x
			}
			if spec.FlipX {
				px = pw - 1 - px
			}
			if spec.FlipY {
				py = ph - 1 - py
			}
			if spec.Serpentine && py%2 == 1 {
				px = pw - 1 - px
			}
			phys := py*pw + px
			logical := y*lw + x
			l.toPhys[logical] = phys
			l.toLogicl[phys] = logical
		}
	}
	return l
}

// Strip is shorthand for a linear layout of n pixels.
func Strip(n int) *Layout {
	return NewLayout(LayoutSpec{Kind: LayoutStrip, Count: n})
}

// Grid is shorthand for an unmapped w×h matrix.
func Grid(w, h int) *Layout {
	return NewLayout(LayoutSpec{Kind: LayoutGrid, Width: w, Height: h})
}

// Spec returns the normalized description this layout was built from.
func (l *Layout) Spec() LayoutSpec { return l.spec }

// Kind reports whether the layout is a strip or a grid.
func (l *Layout) Kind() LayoutKind { return l.spec.Kind }

// Len returns the number of physical pixels.
func (l *Layout) Len() int { return len(l.toPhys) }

// Size returns the logical dimensions after rotation.
func (l *Layout) Size() Size { return Size{W: l.w, H: l.h} }

// Index returns the physical index for logical coordinates (x, y), or -1
// when the coordinates fall outside the layout.
func (l *Layout) Index(x, y int) int {
	if x < 0 || x >= l.w || y < 0 || y >= l.h {
		return -1
	}
	return l.toPhys[y*l.w+x]
}

// Coord returns the logical coordinates of physical index i.
func (l *Layout) Coord(i int) (int, int) {
	if i < 0 || i >= len(l.toLogicl) {
		return -1, -1
	}
	logical := l.toLogicl[i]
	return logical % l.w, logical / l.w
}

// Wrap applies toroidal wrapping to the provided logical coordinates.
func (l *Layout) Wrap(x, y int) (int, int) {
	x = (x%l.w + l.w) % l.w
	y = (y%l.h + l.h) % l.h
	return x, y
}

// Key identifies the layout for caches that must be dropped when the
// topology changes.
func (l *Layout) Key() string {
	s := l.spec
	return fmt.Sprintf("%s:%dx%d:s%t:fx%t:fy%t:r%d", s.Kind, s.Width, s.Height, s.Serpentine, s.FlipX, s.FlipY, s.Rotate)
}
