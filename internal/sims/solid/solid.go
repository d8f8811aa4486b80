// Package solid fills the target with a single color.
package solid

import "pixelcore/internal/core"

var (
	schema = core.NewSchema(
		core.Color("color", core.RGB{R: 255, G: 255, B: 255}),
		core.Float("brightness", 1, 0, 1),
	)
	slotColor      = schema.MustSlot("color")
	slotBrightness = schema.MustSlot("brightness")
)

// Behavior is stateless.
type Behavior struct{}

func (Behavior) Name() string                                   { return "solid" }
func (Behavior) Schema() *core.Schema                           { return schema }
func (Behavior) NewInstance(*core.Layout, uint64) core.Instance { return instance{} }

type instance struct{}

func (instance) Render(n int, p core.Values, _ float64, _ *core.Layout) (core.Buffer, error) {
	buf := core.NewBuffer(n)
	c := p.Color(slotColor)
	if b := p.Float(slotBrightness); b < 1 {
		c = c.Scale(b)
	}
	buf.Fill(c)
	return buf, nil
}
