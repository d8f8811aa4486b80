// Package sparkle lights random pixels that fade out exponentially. Audio
// energy can push the spawn rate up.
package sparkle

import (
	"math"

	"pixelcore/internal/core"
	"pixelcore/internal/signal"
	pcore "pixelcore/pkg/core"
)

var (
	schema = core.NewSchema(
		core.Float("rate", 20, 0, 500),
		core.Float("decay", 3, 0.1, 20),
		core.Float("audio_gain", 0, 0, 10),
		core.Color("color", core.RGB{R: 255, G: 255, B: 255}),
	)
	slotRate      = schema.MustSlot("rate")
	slotDecay     = schema.MustSlot("decay")
	slotAudioGain = schema.MustSlot("audio_gain")
	slotColor     = schema.MustSlot("color")
)

// Behavior keeps one brightness level per pixel.
type Behavior struct{}

// Name identifies the behavior.
func (Behavior) Name() string { return "sparkle" }

// Schema declares the behavior's parameters.
func (Behavior) Schema() *core.Schema { return schema }

// NewInstance allocates per-pixel levels for the layout.
func (Behavior) NewInstance(layout *core.Layout, seed uint64) core.Instance {
	return &instance{level: make([]float64, layout.Len()), rng: pcore.NewRNG(seed)}
}

type instance struct {
	level []float64
	rng   *pcore.RNG
	due   float64
}

func (in *instance) Tick(p core.Values, dt, _ float64, audio signal.Audio) {
	fade := math.Exp(-p.Float(slotDecay) * dt)
	for i := range in.level {
		in.level[i] *= fade
	}
	rate := p.Float(slotRate) * (1 + p.Float(slotAudioGain)*audio.Energy())
	in.due += rate * dt
	for ; in.due >= 1; in.due-- {
		if len(in.level) == 0 {
			in.due = 0
			break
		}
		in.level[in.rng.IntN(len(in.level))] = 1
	}
}

func (in *instance) Render(n int, p core.Values, _ float64, _ *core.Layout) (core.Buffer, error) {
	buf := core.NewBuffer(n)
	c := p.Color(slotColor)
	for i := 0; i < n && i < len(in.level); i++ {
		if in.level[i] > 0 {
			buf[i] = c.Scale(in.level[i])
		}
	}
	return buf, nil
}
