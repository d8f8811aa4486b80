package vumeter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelcore/internal/core"
	"pixelcore/internal/signal"
)

func TestStripFillsFromTheLeft(t *testing.T) {
	layout := core.Strip(10)
	p := core.NewValues(schema, schema.Defaults())
	inst := Behavior{}.NewInstance(layout, 0).(*instance)
	inst.Tick(p, 1.0/60, 0, signal.Audio{"energy": 0.5})

	buf, err := inst.Render(10, p, 0, layout)
	require.NoError(t, err)
	green, red := core.RGB{G: 255}, core.RGB{R: 255}
	assert.Equal(t, core.Buffer{green, green, green, green, red, {}, {}, {}, {}, {}}, buf)
}

func TestGridColumnsReadBand(t *testing.T) {
	layout := core.Grid(2, 4)
	slots := schema.Defaults()
	slots[slotBand].Num = 0
	p := core.NewValues(schema, slots)
	inst := Behavior{}.NewInstance(layout, 0).(*instance)
	inst.Tick(p, 1.0/60, 0, signal.Audio{"mono0": 1, "energy": 0})

	buf, err := inst.Render(8, p, 0, layout)
	require.NoError(t, err)
	for x := 0; x < 2; x++ {
		assert.Equal(t, core.RGB{R: 255}, buf[layout.Index(x, 0)], "peak in column %d", x)
		for y := 1; y < 4; y++ {
			assert.Equal(t, core.RGB{G: 255}, buf[layout.Index(x, y)], "cell %d,%d", x, y)
		}
	}
}

func TestLevelFallsAndPeakHolds(t *testing.T) {
	p := core.NewValues(schema, schema.Defaults())
	inst := Behavior{}.NewInstance(core.Strip(4), 0).(*instance)
	inst.Tick(p, 0.1, 0, signal.Audio{"energy": 1})
	inst.Tick(p, 0.1, 0.1, signal.Audio{})

	assert.InDelta(t, 0.85, inst.level, 1e-9)
	assert.InDelta(t, 0.925, inst.peak, 1e-9)
}
