package briansbrain

import (
	"pixelcore/internal/core"
	"pixelcore/internal/signal"
	pcore "pixelcore/pkg/core"
)

const (
	stateDead  = 0
	stateOn    = 1
	stateDying = 2
)

// Brain implements Brian's Brain cellular automaton.
type Brain struct {
	w, h int
	cur  []uint8
	nxt  []uint8
}

// New creates a Brain simulation with the provided dimensions.
func New(w, h int) *Brain {
	cells := make([]uint8, w*h)
	return &Brain{w: w, h: h, cur: cells, nxt: make([]uint8, len(cells))}
}

// Size returns the grid dimensions.
func (b *Brain) Size() core.Size { return core.Size{W: b.w, H: b.h} }

// Cells exposes the current state buffer.
func (b *Brain) Cells() []uint8 { return b.cur }

// Seed sets cells firing with probability p and clears the rest.
func (b *Brain) Seed(rng *pcore.RNG, p float64) {
	for i := range b.cur {
		if rng.Chance(p) {
			b.cur[i] = stateOn
			continue
		}
		b.cur[i] = stateDead
	}
}

// Firing counts cells in the on state.
func (b *Brain) Firing() int {
	n := 0
	for _, c := range b.cur {
		if c == stateOn {
			n++
		}
	}
	return n
}

// Step advances the automaton by one tick.
func (b *Brain) Step() {
	w, h := b.w, b.h
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			switch b.cur[idx] {
			case stateOn:
				b.nxt[idx] = stateDying
			case stateDying:
				b.nxt[idx] = stateDead
			default:
				neighbors := 0
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						nx := (x + dx + w) % w
						ny := (y + dy + h) % h
						if b.cur[ny*w+nx] == stateOn {
							neighbors++
						}
					}
				}
				if neighbors == 2 {
					b.nxt[idx] = stateOn
				} else {
					b.nxt[idx] = stateDead
				}
			}
		}
	}
	b.cur, b.nxt = b.nxt, b.cur
}

var (
	schema = core.NewSchema(
		core.Float("rate", 12, 0, 60),
		core.Float("density", 0.125, 0, 1),
		core.Color("on_color", core.RGB{R: 255, G: 255, B: 255}),
		core.Color("dying_color", core.RGB{B: 255, G: 64}),
	)
	slotRate    = schema.MustSlot("rate")
	slotDensity = schema.MustSlot("density")
	slotOn      = schema.MustSlot("on_color")
	slotDying   = schema.MustSlot("dying_color")
)

// Behavior renders Brian's Brain over the layout's logical grid and reseeds
// when activity dies out.
type Behavior struct{}

// Name identifies the behavior.
func (Behavior) Name() string { return "briansbrain" }

// Schema declares the behavior's parameters.
func (Behavior) Schema() *core.Schema { return schema }

// NewInstance allocates a board sized to the layout.
func (Behavior) NewInstance(layout *core.Layout, seed uint64) core.Instance {
	size := layout.Size()
	return &instance{brain: New(size.W, size.H), rng: pcore.NewRNG(seed)}
}

type instance struct {
	brain   *Brain
	rng     *pcore.RNG
	stepper pcore.Stepper
	seeded  bool
}

func (in *instance) Tick(p core.Values, dt, _ float64, _ signal.Audio) {
	if !in.seeded || in.brain.Firing() == 0 {
		in.brain.Seed(in.rng, p.Float(slotDensity))
		in.seeded = true
	}
	for i := in.stepper.Steps(p.Float(slotRate), dt); i > 0; i-- {
		in.brain.Step()
	}
}

func (in *instance) Render(n int, p core.Values, _ float64, layout *core.Layout) (core.Buffer, error) {
	buf := core.NewBuffer(n)
	on, dying := p.Color(slotOn), p.Color(slotDying)
	w := in.brain.w
	for i, cell := range in.brain.cur {
		var c core.RGB
		switch cell {
		case stateOn:
			c = on
		case stateDying:
			c = dying
		default:
			continue
		}
		if idx := layout.Index(i%w, i/w); idx >= 0 && idx < n {
			buf[idx] = c
		}
	}
	return buf, nil
}
