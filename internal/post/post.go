// Package post applies frame-wide effects to the composited buffer: spatial
// bleed between neighbors, then a temporal trail.
package post

import (
	"pixelcore/internal/core"
	"pixelcore/internal/project"
)

// Settings selects effect strengths. Amounts are clamped to [0,1].
type Settings struct {
	Bleed  float64
	Radius int
	Trail  float64
}

// FromProject reads the project's post block.
func FromProject(p project.Post) Settings {
	return Settings{Bleed: p.Bleed, Radius: p.BleedRadius, Trail: p.Trail}
}

// Processor holds the one-frame trail history and a cached neighbor table.
type Processor struct {
	history    core.Buffer
	historyKey string

	neighbors    [][]int
	neighborsKey string
	radius       int
}

// New returns a processor with empty history.
func New() *Processor { return &Processor{} }

// Reset forgets the trail history.
func (p *Processor) Reset() {
	p.history = nil
	p.historyKey = ""
}

// Apply returns the post-processed frame. buf is not modified. The trail
// history is replaced by the result even when both amounts are zero.
func (p *Processor) Apply(buf core.Buffer, layout *core.Layout, s Settings) core.Buffer {
	out := buf.Clone()
	if a := core.Clamp(s.Bleed, 0, 1); a > 0 {
		p.bleed(out, buf, layout, s.Radius, a)
	}
	key := layout.Key()
	if a := core.Clamp(s.Trail, 0, 1); a > 0 && p.historyKey == key && len(p.history) == len(out) {
		for i := range out {
			out[i] = mix(out[i], p.history[i], a)
		}
	}
	p.history = out.Clone()
	p.historyKey = key
	return out
}

// bleed blends each pixel of dst toward the mean of its neighbors in src.
func (p *Processor) bleed(dst, src core.Buffer, layout *core.Layout, radius int, a float64) {
	if radius < 1 {
		radius = 1
	}
	// No pair of pixels is further apart than the layout's extent.
	if size := layout.Size(); radius > size.W+size.H {
		radius = size.W + size.H
	}
	table := p.neighborTable(layout, radius)
	for i, ns := range table {
		if len(ns) == 0 || i >= len(src) {
			continue
		}
		var r, g, b float64
		for _, j := range ns {
			r += float64(src[j].R)
			g += float64(src[j].G)
			b += float64(src[j].B)
		}
		k := float64(len(ns))
		avg := core.RGB{R: core.Channel(r / k), G: core.Channel(g / k), B: core.Channel(b / k)}
		dst[i] = mix(src[i], avg, a)
	}
}

// neighborTable lists, per physical index, the physical indices within
// radius in logical space: ±radius along a strip, the Manhattan ball on a
// grid.
func (p *Processor) neighborTable(layout *core.Layout, radius int) [][]int {
	key := layout.Key()
	if p.neighbors != nil && p.neighborsKey == key && p.radius == radius {
		return p.neighbors
	}
	n := layout.Len()
	table := make([][]int, n)
	for i := 0; i < n; i++ {
		x, y := layout.Coord(i)
		var ns []int
		for dy := -radius; dy <= radius; dy++ {
			if layout.Kind() == core.LayoutStrip && dy != 0 {
				continue
			}
			for dx := -radius; dx <= radius; dx++ {
				d := abs(dx) + abs(dy)
				if d == 0 || d > radius {
					continue
				}
				if j := layout.Index(x+dx, y+dy); j >= 0 {
					ns = append(ns, j)
				}
			}
		}
		table[i] = ns
	}
	p.neighbors, p.neighborsKey, p.radius = table, key, radius
	return table
}

func mix(a, b core.RGB, t float64) core.RGB {
	return core.RGB{
		R: core.Channel(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: core.Channel(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: core.Channel(float64(a.B) + (float64(b.B)-float64(a.B))*t),
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
