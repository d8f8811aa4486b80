package compositor

import (
	"math"

	"pixelcore/internal/core"
	"pixelcore/internal/project"
)

// Blend combines src into dst at the given indices. Pixels not listed are
// left untouched.
func Blend(dst, src core.Buffer, idx []int, mode project.BlendMode, opacity float64) {
	opacity = core.Clamp(opacity, 0, 1)
	fn := blendFunc(mode)
	for _, i := range idx {
		if i < 0 || i >= len(dst) || i >= len(src) {
			continue
		}
		d, s := dst[i], src[i]
		dst[i] = core.RGB{
			R: fn(float64(d.R), float64(s.R), opacity),
			G: fn(float64(d.G), float64(s.G), opacity),
			B: fn(float64(d.B), float64(s.B), opacity),
		}
	}
}

func blendFunc(mode project.BlendMode) func(d, s, a float64) uint8 {
	switch mode {
	case project.BlendAdd:
		return func(d, s, a float64) uint8 { return core.Channel(math.Min(255, d+s*a)) }
	case project.BlendMax:
		return func(d, s, a float64) uint8 { return core.Channel(math.Max(d, s*a)) }
	case project.BlendMultiply:
		return func(d, s, a float64) uint8 { return core.Channel(lerp(d, d*s/255, a)) }
	case project.BlendScreen:
		return func(d, s, a float64) uint8 { return core.Channel(lerp(d, 255-(255-d)*(255-s)/255, a)) }
	default:
		return func(d, s, a float64) uint8 { return core.Channel(lerp(d, s, a)) }
	}
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
