package elementary

import (
	"pixelcore/internal/core"
	"pixelcore/internal/signal"
	pcore "pixelcore/pkg/core"
)

// Elementary implements a one-dimensional Wolfram code projected vertically.
// Row 0 is the newest generation; older rows scroll downwards.
type Elementary struct {
	w, h int
	rule uint8
	cur  []uint8
	tmp  []uint8
}

// New creates an automaton with the given dimensions and rule.
func New(w, h int, rule uint8) *Elementary {
	total := w * h
	return &Elementary{w: w, h: h, rule: rule, cur: make([]uint8, total), tmp: make([]uint8, w)}
}

// Size returns the simulation grid dimensions.
func (e *Elementary) Size() core.Size { return core.Size{W: e.w, H: e.h} }

// Cells exposes the render buffer.
func (e *Elementary) Cells() []uint8 { return e.cur }

// SetRule changes the Wolfram code used by later steps.
func (e *Elementary) SetRule(rule uint8) { e.rule = rule }

// Reset clears the grid and seeds the top row with a single active cell.
func (e *Elementary) Reset() {
	for i := range e.cur {
		e.cur[i] = 0
	}
	e.cur[e.w/2] = 1
}

// Randomize clears the grid and fills the top row at random.
func (e *Elementary) Randomize(rng *pcore.RNG) {
	for i := range e.cur {
		e.cur[i] = 0
	}
	pcore.FillDensity(rng, e.cur[:e.w], 0.5)
}

// Step computes the next generation and scrolls history downwards.
func (e *Elementary) Step() {
	copy(e.tmp, e.cur[:e.w])
	copy(e.cur[e.w:], e.cur[:e.w*(e.h-1)])
	for x := 0; x < e.w; x++ {
		left := e.tmp[(x-1+e.w)%e.w]
		center := e.tmp[x]
		right := e.tmp[(x+1)%e.w]
		idx := (left << 2) | (center << 1) | right
		bit := (e.rule >> idx) & 1
		e.cur[x] = bit
	}
}

var (
	schema = core.NewSchema(
		core.Int("rule", 110, 0, 255),
		core.Float("rate", 6, 0, 60),
		core.Bool("random", false),
		core.Color("color", core.RGB{R: 255, G: 160}),
	)
	slotRule   = schema.MustSlot("rule")
	slotRate   = schema.MustSlot("rate")
	slotRandom = schema.MustSlot("random")
	slotColor  = schema.MustSlot("color")
)

// Behavior scrolls an elementary automaton across the layout. On a strip
// only the newest generation is visible.
type Behavior struct{}

// Name identifies the behavior.
func (Behavior) Name() string { return "elementary" }

// Schema declares the behavior's parameters.
func (Behavior) Schema() *core.Schema { return schema }

// NewInstance allocates history sized to the layout.
func (Behavior) NewInstance(layout *core.Layout, seed uint64) core.Instance {
	size := layout.Size()
	return &instance{ca: New(size.W, size.H, 110), rng: pcore.NewRNG(seed)}
}

type instance struct {
	ca      *Elementary
	rng     *pcore.RNG
	stepper pcore.Stepper
	seeded  bool
}

func (in *instance) Tick(p core.Values, dt, _ float64, _ signal.Audio) {
	if !in.seeded {
		if p.Bool(slotRandom) {
			in.ca.Randomize(in.rng)
		} else {
			in.ca.Reset()
		}
		in.seeded = true
	}
	in.ca.SetRule(uint8(p.Int(slotRule)))
	for i := in.stepper.Steps(p.Float(slotRate), dt); i > 0; i-- {
		in.ca.Step()
	}
}

func (in *instance) Render(n int, p core.Values, _ float64, layout *core.Layout) (core.Buffer, error) {
	buf := core.NewBuffer(n)
	c := p.Color(slotColor)
	w := in.ca.w
	for i, cell := range in.ca.cur {
		if cell == 0 {
			continue
		}
		if idx := layout.Index(i%w, i/w); idx >= 0 && idx < n {
			buf[idx] = c
		}
	}
	return buf, nil
}
