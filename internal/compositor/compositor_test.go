package compositor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelcore/internal/core"
	"pixelcore/internal/project"
	"pixelcore/internal/signal"
)

var fillSchema = core.NewSchema(core.Color("color", core.RGB{R: 255}))

// fill paints every pixel with its color param.
type fill struct{ name string }

func (f fill) Name() string                                   { return f.name }
func (f fill) Schema() *core.Schema                           { return fillSchema }
func (f fill) NewInstance(*core.Layout, uint64) core.Instance { return fillInstance{} }

type fillInstance struct{}

func (fillInstance) Render(n int, p core.Values, _ float64, _ *core.Layout) (core.Buffer, error) {
	buf := core.NewBuffer(n)
	buf.Fill(p.Color(0))
	return buf, nil
}

// broken misbehaves in the way selected by mode.
type broken struct{ mode string }

func (b broken) Name() string                                   { return "broken-" + b.mode }
func (b broken) Schema() *core.Schema                           { return nil }
func (b broken) NewInstance(*core.Layout, uint64) core.Instance { return brokenInstance(b) }

type brokenInstance broken

func (b brokenInstance) Render(n int, _ core.Values, _ float64, _ *core.Layout) (core.Buffer, error) {
	switch b.mode {
	case "panic":
		panic("boom")
	case "short":
		return core.NewBuffer(n - 1), nil
	}
	return nil, errors.New("render failed")
}

// counter counts ticks and renders the count into the red channel.
type counter struct{ created *int }

func (c counter) Name() string         { return "counter" }
func (c counter) Schema() *core.Schema { return nil }
func (c counter) NewInstance(*core.Layout, uint64) core.Instance {
	*c.created++
	return &counterInstance{}
}

type counterInstance struct{ ticks int }

func (c *counterInstance) Tick(core.Values, float64, float64, signal.Audio) { c.ticks++ }

func (c *counterInstance) Render(n int, _ core.Values, _ float64, _ *core.Layout) (core.Buffer, error) {
	buf := core.NewBuffer(n)
	buf.Fill(core.RGB{R: uint8(c.ticks)})
	return buf, nil
}

func testRegistry(t *testing.T, extra ...core.Behavior) *core.Registry {
	t.Helper()
	bs := append([]core.Behavior{
		fill{name: "solid"},
		broken{mode: "panic"},
		broken{mode: "short"},
		broken{mode: "error"},
	}, extra...)
	reg, err := core.NewRegistry(bs...)
	require.NoError(t, err)
	return reg
}

func ptr[T any](v T) *T { return &v }

func solidLayer(uid string, c core.RGB) project.Layer {
	return project.Layer{
		UID:      uid,
		Behavior: "solid",
		Params:   map[string]any{"color": []any{int(c.R), int(c.G), int(c.B)}},
	}
}

func TestSolidLayerFillsStrip(t *testing.T) {
	c := New(testRegistry(t), 1)
	p := &project.Project{Layers: []project.Layer{solidLayer("a", core.RGB{R: 255})}}
	out, err := c.Render(p, core.Strip(10), Frame{})
	require.NoError(t, err)
	require.Len(t, out, 10)
	for i, px := range out {
		assert.Equal(t, core.RGB{R: 255}, px, "pixel %d", i)
	}
	assert.Empty(t, c.Faults())
}

func TestLayerMaskRestrictsBlend(t *testing.T) {
	c := New(testRegistry(t), 1)
	layer := solidLayer("a", core.RGB{R: 255})
	layer.Mask = "head"
	p := &project.Project{
		Layers: []project.Layer{layer},
		Masks:  map[string]project.Mask{"head": {Indices: []int{0, 1, 2}}},
	}
	out, err := c.Render(p, core.Strip(10), Frame{})
	require.NoError(t, err)
	for i, px := range out {
		if i <= 2 {
			assert.Equal(t, core.RGB{R: 255}, px, "pixel %d", i)
		} else {
			assert.Equal(t, core.Black, px, "pixel %d", i)
		}
	}
}

func TestTargetIntersectsGlobalMask(t *testing.T) {
	c := New(testRegistry(t), 1)
	layer := solidLayer("a", core.RGB{G: 9})
	layer.TargetKind = project.TargetZone
	layer.TargetRef = "left"
	p := &project.Project{
		Layers: []project.Layer{layer},
		Zones:  []project.Zone{{Name: "left", Start: 0, End: 5}},
		Masks:  map[string]project.Mask{"odd": {Indices: []int{1, 3, 5, 7}}},
	}
	out, err := c.Render(p, core.Strip(8), Frame{GlobalMask: "odd"})
	require.NoError(t, err)
	lit := []int{}
	for i, px := range out {
		if px != core.Black {
			lit = append(lit, i)
		}
	}
	assert.Equal(t, []int{1, 3}, lit)
}

func TestGlobalMaskErrorIsReturned(t *testing.T) {
	c := New(testRegistry(t), 1)
	p := &project.Project{Layers: []project.Layer{solidLayer("a", core.RGB{R: 1})}}
	out, err := c.Render(p, core.Strip(4), Frame{GlobalMask: "missing"})
	require.Error(t, err)
	assert.Len(t, out, 4)
}

func TestFaultsSubstituteBlack(t *testing.T) {
	for _, mode := range []string{"panic", "short", "error"} {
		t.Run(mode, func(t *testing.T) {
			c := New(testRegistry(t), 1)
			p := &project.Project{Layers: []project.Layer{
				solidLayer("base", core.RGB{R: 200, G: 200, B: 200}),
				{UID: "bad", Behavior: "broken-" + mode, Opacity: ptr(0.5)},
			}}
			out, err := c.Render(p, core.Strip(3), Frame{})
			require.NoError(t, err)
			for _, px := range out {
				assert.Equal(t, core.RGB{R: 100, G: 100, B: 100}, px)
			}
			require.Len(t, c.Faults(), 1)
			assert.Equal(t, "bad", c.Faults()[0].UID)
			if mode == "short" {
				assert.ErrorIs(t, c.Faults()[0], ErrBadBuffer)
			}
		})
	}
}

func TestUnknownBehaviorIsFault(t *testing.T) {
	c := New(testRegistry(t), 1)
	p := &project.Project{Layers: []project.Layer{{UID: "x", Behavior: "nope"}}}
	_, err := c.Render(p, core.Strip(2), Frame{})
	require.NoError(t, err)
	require.Len(t, c.Faults(), 1)
	assert.ErrorIs(t, c.Faults()[0], core.ErrUnknownBehavior)
}

func TestTickerAdvancesAndStateIsPruned(t *testing.T) {
	created := 0
	c := New(testRegistry(t, counter{created: &created}), 1)
	p := &project.Project{Layers: []project.Layer{{UID: "c", Behavior: "counter"}}}
	layout := core.Strip(2)

	out, err := c.Render(p, layout, Frame{Steps: 2})
	require.NoError(t, err)
	assert.Equal(t, uint8(2), out[0].R)
	out, _ = c.Render(p, layout, Frame{Steps: 3})
	assert.Equal(t, uint8(5), out[0].R)
	assert.Equal(t, 1, created)

	// Layout change rebuilds state.
	out, _ = c.Render(p, core.Strip(4), Frame{Steps: 1})
	assert.Equal(t, uint8(1), out[0].R)
	assert.Equal(t, 2, created)

	_, _ = c.Render(&project.Project{}, layout, Frame{})
	assert.Equal(t, 0, c.Instances())
}

func TestDisabledLayerSkipped(t *testing.T) {
	c := New(testRegistry(t), 1)
	layer := solidLayer("a", core.RGB{R: 255})
	layer.Enabled = ptr(false)
	out, _ := c.Render(&project.Project{Layers: []project.Layer{layer}}, core.Strip(3), Frame{})
	for _, px := range out {
		assert.Equal(t, core.Black, px)
	}
}

func TestOperatorRestrictedToOwnTarget(t *testing.T) {
	c := New(testRegistry(t), 1)
	layer := solidLayer("a", core.RGB{R: 10, G: 20, B: 30})
	layer.Operators = []project.Operator{{Kind: OpInvert, TargetKind: project.TargetGroup, TargetRef: "tips"}}
	p := &project.Project{
		Layers: []project.Layer{layer},
		Groups: []project.Group{{Name: "tips", Indices: []int{0, 3}}},
	}
	out, err := c.Render(p, core.Strip(4), Frame{})
	require.NoError(t, err)
	assert.Equal(t, core.RGB{R: 245, G: 235, B: 225}, out[0])
	assert.Equal(t, core.RGB{R: 10, G: 20, B: 30}, out[1])
	assert.Equal(t, core.RGB{R: 245, G: 235, B: 225}, out[3])
}

func TestOverridesReachParams(t *testing.T) {
	reg := testRegistry(t)
	c := New(reg, 1)
	layer := project.Layer{UID: "a", Behavior: "solid"}
	out, err := c.Render(&project.Project{Layers: []project.Layer{layer}}, core.Strip(1), Frame{
		Overrides: map[string]map[string]float64{"a": {"color": 1}},
	})
	require.NoError(t, err)
	// Color slots ignore numeric overrides.
	assert.Equal(t, core.RGB{R: 255}, out[0])
}
