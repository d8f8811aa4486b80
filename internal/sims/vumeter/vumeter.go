// Package vumeter draws an audio level bar with a falling peak hold.
package vumeter

import (
	"math"

	"pixelcore/internal/core"
	"pixelcore/internal/signal"
)

var (
	schema = core.NewSchema(
		// band -1 reads overall energy; 0..6 read the mono spectrum.
		core.Int("band", -1, -1, signal.Bands-1),
		core.Float("decay", 1.5, 0, 20),
		core.Float("gain", 1, 0, 8),
		core.Color("color", core.RGB{G: 255}),
		core.Color("peak_color", core.RGB{R: 255}),
	)
	slotBand  = schema.MustSlot("band")
	slotDecay = schema.MustSlot("decay")
	slotGain  = schema.MustSlot("gain")
	slotColor = schema.MustSlot("color")
	slotPeak  = schema.MustSlot("peak_color")
)

// Behavior fills each logical column bottom-up; a strip is one row filled
// from the left.
type Behavior struct{}

func (Behavior) Name() string         { return "vumeter" }
func (Behavior) Schema() *core.Schema { return schema }

func (Behavior) NewInstance(*core.Layout, uint64) core.Instance { return &instance{} }

type instance struct {
	level float64
	peak  float64
}

func (in *instance) Tick(p core.Values, dt, _ float64, audio signal.Audio) {
	var v float64
	if band := p.Int(slotBand); band < 0 {
		v = audio.Energy()
	} else {
		v = audio.Band("mono", band)
	}
	v = core.Clamp(v*p.Float(slotGain), 0, 1)
	fall := p.Float(slotDecay) * dt
	in.level = math.Max(v, in.level-fall)
	in.peak = math.Max(in.level, in.peak-fall/2)
}

func (in *instance) Render(n int, p core.Values, _ float64, layout *core.Layout) (core.Buffer, error) {
	buf := core.NewBuffer(n)
	size := layout.Size()
	if layout.Kind() == core.LayoutStrip {
		in.paintRow(buf, p, layout, size.W)
		return buf, nil
	}
	lit := int(math.Round(in.level * float64(size.H)))
	peak := int(math.Round(in.peak*float64(size.H))) - 1
	c, pc := p.Color(slotColor), p.Color(slotPeak)
	for x := 0; x < size.W; x++ {
		for k := 0; k < lit; k++ {
			if idx := layout.Index(x, size.H-1-k); idx >= 0 {
				buf[idx] = c
			}
		}
		if peak >= 0 {
			if idx := layout.Index(x, size.H-1-peak); idx >= 0 {
				buf[idx] = pc
			}
		}
	}
	return buf, nil
}

func (in *instance) paintRow(buf core.Buffer, p core.Values, layout *core.Layout, w int) {
	lit := int(math.Round(in.level * float64(w)))
	peak := int(math.Round(in.peak*float64(w))) - 1
	c := p.Color(slotColor)
	for x := 0; x < lit; x++ {
		if idx := layout.Index(x, 0); idx >= 0 {
			buf[idx] = c
		}
	}
	if peak >= 0 {
		if idx := layout.Index(peak, 0); idx >= 0 {
			buf[idx] = p.Color(slotPeak)
		}
	}
}
