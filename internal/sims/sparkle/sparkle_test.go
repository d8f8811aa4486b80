package sparkle

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelcore/internal/core"
	"pixelcore/internal/signal"
)

func run(seed uint64, frames int) core.Buffer {
	layout := core.Strip(64)
	slots := schema.Defaults()
	slots[slotRate].Num = 100
	p := core.NewValues(schema, slots)
	inst := Behavior{}.NewInstance(layout, seed).(*instance)
	for i := 0; i < frames; i++ {
		inst.Tick(p, 1.0/60, float64(i)/60, nil)
	}
	buf, _ := inst.Render(layout.Len(), p, 0, layout)
	return buf
}

func TestSameSeedSameSparkles(t *testing.T) {
	assert.Equal(t, run(42, 30), run(42, 30))
}

func TestSparklesSpawnAtFullColorThenFade(t *testing.T) {
	layout := core.Strip(64)
	slots := schema.Defaults()
	slots[slotRate].Num = 100
	inst := Behavior{}.NewInstance(layout, 7).(*instance)
	inst.Tick(core.NewValues(schema, slots), 0.1, 0, signal.Audio{})

	buf, err := inst.Render(64, core.NewValues(schema, slots), 0, layout)
	require.NoError(t, err)
	var lit []int
	for i, px := range buf {
		if px != core.Black {
			assert.Equal(t, core.RGB{R: 255, G: 255, B: 255}, px)
			lit = append(lit, i)
		}
	}
	require.NotEmpty(t, lit)
	assert.LessOrEqual(t, len(lit), 10)

	slots[slotRate].Num = 0
	inst.Tick(core.NewValues(schema, slots), 0.1, 0.1, signal.Audio{})
	buf, err = inst.Render(64, core.NewValues(schema, slots), 0.1, layout)
	require.NoError(t, err)
	faded := core.Channel(255 * math.Exp(-0.3))
	for _, i := range lit {
		assert.Equal(t, core.RGB{R: faded, G: faded, B: faded}, buf[i])
	}
}

func TestAudioEnergyRaisesRate(t *testing.T) {
	layout := core.Strip(8)
	slots := schema.Defaults()
	slots[slotRate].Num = 10
	slots[slotAudioGain].Num = 1
	inst := Behavior{}.NewInstance(layout, 1).(*instance)
	inst.Tick(core.NewValues(schema, slots), 0.1, 0, signal.Audio{"energy": 1})
	// 10/s doubled by full energy over 0.1s spawns two sparkles.
	assert.InDelta(t, 0, inst.due, 1e-9)
}
