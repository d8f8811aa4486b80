// Package rainbow sweeps the hue wheel across the layout over time.
package rainbow

import "pixelcore/internal/core"

var (
	schema = core.NewSchema(
		core.Float("speed", 0.2, -5, 5),
		core.Float("scale", 1, 0, 16),
		core.Float("saturation", 1, 0, 1),
		core.Float("brightness", 1, 0, 1),
	)
	slotSpeed      = schema.MustSlot("speed")
	slotScale      = schema.MustSlot("scale")
	slotSaturation = schema.MustSlot("saturation")
	slotBrightness = schema.MustSlot("brightness")
)

// Behavior is a pure function of t and position.
type Behavior struct{}

func (Behavior) Name() string                                   { return "rainbow" }
func (Behavior) Schema() *core.Schema                           { return schema }
func (Behavior) NewInstance(*core.Layout, uint64) core.Instance { return instance{} }

type instance struct{}

// Render walks logical coordinates so the gradient follows the panel's
// orientation rather than its wiring.
func (instance) Render(n int, p core.Values, t float64, layout *core.Layout) (core.Buffer, error) {
	buf := core.NewBuffer(n)
	size := layout.Size()
	span := float64(size.W + size.H - 1)
	offset := t * p.Float(slotSpeed)
	scale := p.Float(slotScale)
	sat, val := p.Float(slotSaturation), p.Float(slotBrightness)
	for y := 0; y < size.H; y++ {
		for x := 0; x < size.W; x++ {
			idx := layout.Index(x, y)
			if idx < 0 || idx >= n {
				continue
			}
			pos := float64(x+y) / span
			buf[idx] = core.HSV(offset+pos*scale, sat, val)
		}
	}
	return buf, nil
}
