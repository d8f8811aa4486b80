package ecology

import (
	"pixelcore/internal/core"
	"pixelcore/internal/signal"
	pcore "pixelcore/pkg/core"
)

var (
	schema = core.NewSchema(
		core.Float("rate", 4, 0, 60),
		core.Float("rock_chance", 0.05, 0, 1),
		core.Int("patches", 3, 0, 64),
		core.Int("patch_radius", 2, 0, 16),
		core.Float("grass_spread", 0.2, 0, 1),
		core.Float("shrub_growth", 0.04, 0, 1),
		core.Float("tree_growth", 0.02, 0, 1),
		core.Float("ignite_chance", 0.002, 0, 1),
		core.Int("burn_ttl", 3, 1, 32),
		core.Float("audio_gain", 4, 0, 32),
	)
	slotRate      = schema.MustSlot("rate")
	slotRock      = schema.MustSlot("rock_chance")
	slotPatches   = schema.MustSlot("patches")
	slotRadius    = schema.MustSlot("patch_radius")
	slotGrass     = schema.MustSlot("grass_spread")
	slotShrub     = schema.MustSlot("shrub_growth")
	slotTree      = schema.MustSlot("tree_growth")
	slotIgnite    = schema.MustSlot("ignite_chance")
	slotBurnTTL   = schema.MustSlot("burn_ttl")
	slotAudioGain = schema.MustSlot("audio_gain")
)

func paramsFrom(v core.Values) Params {
	return Params{
		RockChance:   v.Float(slotRock),
		Patches:      v.Int(slotPatches),
		PatchRadius:  v.Int(slotRadius),
		GrassSpread:  v.Float(slotGrass),
		ShrubGrowth:  v.Float(slotShrub),
		TreeGrowth:   v.Float(slotTree),
		IgniteChance: v.Float(slotIgnite),
		BurnTTL:      v.Int(slotBurnTTL),
	}
}

// Behavior renders the ecology field on the layout's logical grid. When the
// field is bare it is reseeded.
type Behavior struct{}

func (Behavior) Name() string         { return "ecology" }
func (Behavior) Schema() *core.Schema { return schema }

func (Behavior) NewInstance(layout *core.Layout, seed uint64) core.Instance {
	size := layout.Size()
	return &instance{world: New(size.W, size.H), rng: pcore.NewRNG(seed)}
}

type instance struct {
	world   *World
	rng     *pcore.RNG
	stepper pcore.Stepper
	seeded  bool
}

func (in *instance) Tick(v core.Values, dt, _ float64, audio signal.Audio) {
	p := paramsFrom(v)
	if !in.seeded || in.bare() {
		in.world.Reset(in.rng, p)
		in.seeded = true
	}
	ignite := 1 + v.Float(slotAudioGain)*audio.Energy()
	for i := in.stepper.Steps(v.Float(slotRate), dt); i > 0; i-- {
		in.world.Step(in.rng, p, ignite)
	}
}

func (in *instance) bare() bool {
	for _, veg := range in.world.vegCurr {
		if veg != VegetationNone {
			return false
		}
	}
	return true
}

func (in *instance) Render(n int, _ core.Values, _ float64, layout *core.Layout) (core.Buffer, error) {
	buf := core.NewBuffer(n)
	w := in.world.w
	for i := range in.world.vegCurr {
		if idx := layout.Index(i%w, i/w); idx >= 0 && idx < n {
			buf[idx] = in.world.ColorAt(i)
		}
	}
	return buf, nil
}
