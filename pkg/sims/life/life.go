package life

import (
	"pixelcore/internal/core"
	"pixelcore/internal/signal"
	pcore "pixelcore/pkg/core"
)

// Life implements Conway's Game of Life with toroidal wrapping.
type Life struct {
	w, h int
	cur  []uint8
	nxt  []uint8
}

// New returns a Life simulation with the provided dimensions.
func New(w, h int) *Life {
	cells := make([]uint8, w*h)
	return &Life{w: w, h: h, cur: cells, nxt: make([]uint8, len(cells))}
}

// Size returns the grid dimensions.
func (l *Life) Size() core.Size { return core.Size{W: l.w, H: l.h} }

// Cells exposes the current grid values.
func (l *Life) Cells() []uint8 { return l.cur }

// Seed fills the board with live cells at the given density.
func (l *Life) Seed(rng *pcore.RNG, density float64) {
	pcore.FillDensity(rng, l.cur, density)
}

// Population counts live cells.
func (l *Life) Population() int {
	n := 0
	for _, c := range l.cur {
		n += int(c)
	}
	return n
}

// Step advances the simulation by one generation.
func (l *Life) Step() {
	w, h := l.w, l.h
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			neighbors := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx := (x + dx + w) % w
					ny := (y + dy + h) % h
					neighbors += int(l.cur[ny*w+nx])
				}
			}
			idx := y*w + x
			alive := l.cur[idx] == 1
			l.nxt[idx] = 0
			if (alive && (neighbors == 2 || neighbors == 3)) || (!alive && neighbors == 3) {
				l.nxt[idx] = 1
			}
		}
	}
	l.cur, l.nxt = l.nxt, l.cur
}

var (
	schema = core.NewSchema(
		core.Float("rate", 8, 0, 60),
		core.Float("density", 0.35, 0, 1),
		core.Bool("reseed", true),
		core.Color("color", core.RGB{G: 255, B: 64}),
	)
	slotRate    = schema.MustSlot("rate")
	slotDensity = schema.MustSlot("density")
	slotReseed  = schema.MustSlot("reseed")
	slotColor   = schema.MustSlot("color")
)

// Behavior renders Life on the layout's logical grid. A strip is a single
// wrapped row.
type Behavior struct{}

func (Behavior) Name() string         { return "life" }
func (Behavior) Schema() *core.Schema { return schema }

func (Behavior) NewInstance(layout *core.Layout, seed uint64) core.Instance {
	size := layout.Size()
	return &instance{life: New(size.W, size.H), rng: pcore.NewRNG(seed)}
}

type instance struct {
	life    *Life
	rng     *pcore.RNG
	stepper pcore.Stepper
	seeded  bool
}

func (in *instance) Tick(p core.Values, dt, _ float64, _ signal.Audio) {
	if !in.seeded {
		in.life.Seed(in.rng, p.Float(slotDensity))
		in.seeded = true
	}
	for i := in.stepper.Steps(p.Float(slotRate), dt); i > 0; i-- {
		in.life.Step()
	}
	if p.Bool(slotReseed) && in.life.Population() == 0 {
		in.life.Seed(in.rng, p.Float(slotDensity))
	}
}

func (in *instance) Render(n int, p core.Values, _ float64, layout *core.Layout) (core.Buffer, error) {
	buf := core.NewBuffer(n)
	c := p.Color(slotColor)
	w := in.life.w
	for i, cell := range in.life.cur {
		if cell == 0 {
			continue
		}
		if idx := layout.Index(i%w, i/w); idx >= 0 && idx < n {
			buf[idx] = c
		}
	}
	return buf, nil
}
