package compositor

import (
	"math"

	"pixelcore/internal/core"
	"pixelcore/internal/project"
)

// Operator kinds.
const (
	OpGain      = "gain"
	OpGamma     = "gamma"
	OpClamp     = "clamp"
	OpPosterize = "posterize"
	OpThreshold = "threshold"
	OpInvert    = "invert"
)

type lut [256]uint8

// gammaLUT returns the cached table for g, building it on first use.
func (c *Compositor) gammaLUT(g float64) *lut {
	if t, ok := c.luts[g]; ok {
		return t
	}
	t := new(lut)
	for i := range t {
		t[i] = core.Channel(255 * math.Pow(float64(i)/255, g))
	}
	c.luts[g] = t
	return t
}

// channelFunc builds the per-channel transform of op. Unknown kinds return nil.
func (c *Compositor) channelFunc(op project.Operator) func(uint8) uint8 {
	switch op.Kind {
	case OpGain:
		g := op.GainValue()
		return func(v uint8) uint8 { return core.Channel(float64(v) * g) }
	case OpGamma:
		t := c.gammaLUT(op.GammaValue())
		return func(v uint8) uint8 { return t[v] }
	case OpClamp:
		lo, hi := op.Bounds()
		return func(v uint8) uint8 { return core.Channel(core.Clamp(float64(v), lo, hi)) }
	case OpPosterize:
		step := 255 / float64(op.LevelsValue()-1)
		return func(v uint8) uint8 { return core.Channel(math.Round(float64(v)/step) * step) }
	case OpThreshold:
		cut := op.CutValue()
		return func(v uint8) uint8 {
			if float64(v) >= cut {
				return 255
			}
			return 0
		}
	case OpInvert:
		return func(v uint8) uint8 { return 255 - v }
	}
	return nil
}

// applyOperator transforms buf in place at the given indices.
func applyOperator(buf core.Buffer, fn func(uint8) uint8, idx []int) {
	for _, i := range idx {
		buf[i] = buf[i].Map(fn)
	}
}
