package briansbrain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelcore/internal/core"
)

func TestCellCycle(t *testing.T) {
	b := New(6, 6)
	w := b.Size().W
	// Two firing cells give their shared neighbors exactly two on neighbors.
	b.Cells()[2*w+2] = stateOn
	b.Cells()[2*w+3] = stateOn

	b.Step()
	cells := b.Cells()
	assert.Equal(t, uint8(stateDying), cells[2*w+2])
	assert.Equal(t, uint8(stateDying), cells[2*w+3])
	assert.Equal(t, uint8(stateOn), cells[1*w+2])
	assert.Equal(t, uint8(stateOn), cells[3*w+3])

	b.Step()
	assert.Equal(t, uint8(stateDead), b.Cells()[2*w+2])
}

func TestRenderMapsThroughLayout(t *testing.T) {
	layout := core.NewLayout(core.LayoutSpec{Kind: core.LayoutGrid, Width: 3, Height: 2, Serpentine: true})
	inst := Behavior{}.NewInstance(layout, 1).(*instance)
	inst.brain.Cells()[3] = stateOn // logical (0,1)

	p := core.NewValues(schema, schema.Defaults())
	buf, err := inst.Render(layout.Len(), p, 0, layout)
	require.NoError(t, err)
	// Row 1 runs right to left on a serpentine panel.
	assert.Equal(t, core.RGB{R: 255, G: 255, B: 255}, buf[5])
}
