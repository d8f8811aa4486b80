package ecology

import "pixelcore/internal/core"

var (
	fireColor = core.RGB{R: 255, G: 130, B: 40}
	dirtColor = core.RGB{R: 70, G: 52, B: 32}
	rockColor = core.RGB{R: 130, G: 130, B: 130}
)

// ColorAt returns the display color of cell i.
func (w *World) ColorAt(i int) core.RGB {
	if w.burnTTL[i] > 0 {
		return fireColor
	}
	base, weight := dirtColor, 0.75
	if w.ground[i] == GroundRock {
		base, weight = rockColor, 0.65
	}
	veg := w.vegCurr[i]
	if veg == VegetationNone {
		return base
	}
	return blendColors(base, vegetationColor(veg), weight)
}

func vegetationColor(veg Vegetation) core.RGB {
	switch veg {
	case VegetationGrass:
		return core.RGB{R: 70, G: 160, B: 80}
	case VegetationShrub:
		return core.RGB{R: 60, G: 125, B: 60}
	case VegetationTree:
		return core.RGB{R: 40, G: 100, B: 55}
	default:
		return core.Black
	}
}

func blendColors(base, overlay core.RGB, w float64) core.RGB {
	inv := 1 - w
	return core.RGB{
		R: core.Channel(float64(base.R)*inv + float64(overlay.R)*w),
		G: core.Channel(float64(base.G)*inv + float64(overlay.G)*w),
		B: core.Channel(float64(base.B)*inv + float64(overlay.B)*w),
	}
}
