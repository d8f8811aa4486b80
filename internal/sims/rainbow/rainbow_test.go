package rainbow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelcore/internal/core"
)

func TestHueFollowsPosition(t *testing.T) {
	layout := core.Strip(4)
	inst := Behavior{}.NewInstance(layout, 0)
	buf, err := inst.Render(4, core.NewValues(schema, schema.Defaults()), 0, layout)
	require.NoError(t, err)

	assert.Equal(t, core.RGB{R: 255}, buf[0])
	// Half way along the strip is the opposite hue.
	assert.Equal(t, core.RGB{G: 255, B: 255}, buf[2])
}

func TestZeroSaturationIsGray(t *testing.T) {
	layout := core.Grid(3, 2)
	slots := schema.Defaults()
	slots[slotSaturation].Num = 0
	slots[slotBrightness].Num = 0.5
	inst := Behavior{}.NewInstance(layout, 0)
	buf, err := inst.Render(6, core.NewValues(schema, slots), 1.7, layout)
	require.NoError(t, err)
	for i, px := range buf {
		assert.Equal(t, core.RGB{R: 128, G: 128, B: 128}, px, "pixel %d", i)
	}
}
