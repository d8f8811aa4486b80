// Package ecology grows vegetation over a rocky field. Grass spreads onto
// dirt, crowded grass turns to shrub and crowded shrub to forest. Loud audio
// can set trees alight; fire spreads to neighbouring plants and burns them
// back to bare dirt.
package ecology

import (
	"pixelcore/internal/core"
	pcore "pixelcore/pkg/core"
)

// Ground enumerates the terrain layer values.
type Ground uint8

// Vegetation enumerates the vegetation layer values.
type Vegetation uint8

const (
	GroundDirt Ground = iota
	GroundRock
)

const (
	VegetationNone Vegetation = iota
	VegetationGrass
	VegetationShrub
	VegetationTree
)

// Params holds the tunable thresholds and probabilities.
type Params struct {
	RockChance   float64
	Patches      int
	PatchRadius  int
	GrassSpread  float64
	ShrubGrowth  float64
	TreeGrowth   float64
	IgniteChance float64
	BurnTTL      int
}

// DefaultParams returns the standard tuning.
func DefaultParams() Params {
	return Params{
		RockChance:   0.05,
		Patches:      3,
		PatchRadius:  2,
		GrassSpread:  0.2,
		ShrubGrowth:  0.04,
		TreeGrowth:   0.02,
		IgniteChance: 0.002,
		BurnTTL:      3,
	}
}

// World stores the field state.
type World struct {
	w, h int

	ground  []Ground
	vegCurr []Vegetation
	vegNext []Vegetation
	burnTTL []uint8
	burnNxt []uint8
}

// New returns an empty w*h world.
func New(w, h int) *World {
	total := max(w*h, 0)
	return &World{
		w:       w,
		h:       h,
		ground:  make([]Ground, total),
		vegCurr: make([]Vegetation, total),
		vegNext: make([]Vegetation, total),
		burnTTL: make([]uint8, total),
		burnNxt: make([]uint8, total),
	}
}

// Size reports the grid dimensions.
func (w *World) Size() core.Size { return core.Size{W: w.w, H: w.h} }

// Ground exposes the terrain layer.
func (w *World) Ground() []Ground { return w.ground }

// Vegetation exposes the active vegetation layer.
func (w *World) Vegetation() []Vegetation { return w.vegCurr }

// Burning reports whether cell i is on fire.
func (w *World) Burning(i int) bool { return w.burnTTL[i] > 0 }

// Reset clears the field, sprinkles rock and seeds grass patches.
func (w *World) Reset(rng *pcore.RNG, p Params) {
	for i := range w.ground {
		w.ground[i] = GroundDirt
		w.vegCurr[i] = VegetationNone
		w.vegNext[i] = VegetationNone
		w.burnTTL[i] = 0
		if rng.Chance(p.RockChance) {
			w.ground[i] = GroundRock
		}
	}
	w.seedGrassPatches(rng, p)
}

func (w *World) seedGrassPatches(rng *pcore.RNG, p Params) {
	if len(w.ground) == 0 {
		return
	}
	radius := max(p.PatchRadius, 0)
	r2 := radius * radius
	for n := 0; n < p.Patches; n++ {
		x, y := rng.IntN(w.w), rng.IntN(w.h)
		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				xp, yp := x+dx, y+dy
				if xp < 0 || xp >= w.w || yp < 0 || yp >= w.h || dx*dx+dy*dy > r2 {
					continue
				}
				if idx := yp*w.w + xp; w.ground[idx] == GroundDirt {
					w.vegCurr[idx] = VegetationGrass
				}
			}
		}
	}
}

// Step applies one round of succession and fire. ignite scales the chance
// that a tree catches fire on its own.
func (w *World) Step(rng *pcore.RNG, p Params, ignite float64) {
	grass, shrub, fire := w.mooreNeighborCounts()
	ttl := uint8(min(max(p.BurnTTL, 1), 255))

	for i := range w.vegCurr {
		cur := w.vegCurr[i]
		next := cur
		burn := w.burnTTL[i]

		switch {
		case burn > 0:
			burn--
			if burn == 0 {
				next = VegetationNone
			}
		case cur != VegetationNone && fire[i] > 0 && rng.Chance(0.5):
			burn = ttl
		case cur == VegetationTree && rng.Chance(p.IgniteChance*ignite):
			burn = ttl
		case cur == VegetationNone:
			if w.ground[i] == GroundDirt && grass[i] >= 1 && rng.Chance(p.GrassSpread) {
				next = VegetationGrass
			}
		case cur == VegetationGrass:
			if grass[i] >= 3 && rng.Chance(p.ShrubGrowth) {
				next = VegetationShrub
			}
		case cur == VegetationShrub:
			if shrub[i] >= 2 && rng.Chance(p.TreeGrowth) {
				next = VegetationTree
			}
		}
		w.vegNext[i] = next
		w.burnNxt[i] = burn
	}

	w.vegCurr, w.vegNext = w.vegNext, w.vegCurr
	w.burnTTL, w.burnNxt = w.burnNxt, w.burnTTL
}

func (w *World) mooreNeighborCounts() (grass, shrub, fire []uint8) {
	total := len(w.vegCurr)
	grass = make([]uint8, total)
	shrub = make([]uint8, total)
	fire = make([]uint8, total)

	for y := 0; y < w.h; y++ {
		for x := 0; x < w.w; x++ {
			idx := y*w.w + x
			val := w.vegCurr[idx]
			burning := w.burnTTL[idx] > 0
			if val != VegetationGrass && val != VegetationShrub && !burning {
				continue
			}
			for dy := -1; dy <= 1; dy++ {
				ny := y + dy
				if ny < 0 || ny >= w.h {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					nx := x + dx
					if nx < 0 || nx >= w.w || (dx == 0 && dy == 0) {
						continue
					}
					n := ny*w.w + nx
					switch {
					case burning:
						fire[n]++
					case val == VegetationGrass:
						grass[n]++
					default:
						shrub[n]++
					}
				}
			}
		}
	}
	return grass, shrub, fire
}
