// Package params merges a layer's stored parameters, modulation bindings and
// rule overrides into one immutable value set per frame.
package params

import (
	"pixelcore/internal/core"
	"pixelcore/internal/modulation"
	"pixelcore/internal/project"
	"pixelcore/internal/signal"
)

// Resolve produces the frame's parameters for layer. Precedence, lowest to
// highest: schema defaults, stored params, modulation bindings in list order,
// rule overrides. Numeric slots are clamped to their declared bounds after
// every stage. Keys the schema does not declare are ignored.
func Resolve(layer project.Layer, schema *core.Schema, t float64, snap signal.Snapshot, overrides map[string]float64) core.Values {
	slots := schema.Defaults()

	for key, raw := range layer.Params {
		i, ok := schema.Slot(key)
		if !ok {
			continue
		}
		ctl := schema.Control(i)
		if ctl.Type == core.ParamTypeColor {
			if c, ok := ParseColor(raw); ok {
				slots[i].Color = c
			}
			continue
		}
		if v, ok := Number(raw); ok {
			slots[i].Num = ctl.Bound(v)
		}
	}

	for _, b := range layer.Modulations() {
		b = b.Normalized()
		if !b.IsEnabled() {
			continue
		}
		i, ok := schema.Slot(b.Target)
		if !ok {
			continue
		}
		ctl := schema.Control(i)
		if ctl.Type == core.ParamTypeColor {
			continue
		}
		sig := modulation.Sample(b, t, snap)
		slots[i].Num = ctl.Bound(modulation.Apply(slots[i].Num, sig, b.Mode, b.Amount))
	}

	for key, v := range overrides {
		i, ok := schema.Slot(key)
		if !ok {
			continue
		}
		ctl := schema.Control(i)
		if ctl.Type == core.ParamTypeColor {
			continue
		}
		slots[i].Num = ctl.Bound(v)
	}

	return core.NewValues(schema, slots)
}
