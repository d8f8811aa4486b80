package engine

import (
	"crypto/sha256"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelcore/internal/core"
	"pixelcore/internal/mask"
	"pixelcore/internal/post"
	"pixelcore/internal/project"
	"pixelcore/internal/signal"
	"pixelcore/internal/sims"
)

func newEngine(t *testing.T, p *project.Project) *Engine {
	t.Helper()
	reg, err := sims.Registry()
	require.NoError(t, err)
	e, err := New(DefaultConfig(), reg)
	require.NoError(t, err)
	require.NoError(t, e.SetProject(p))
	return e
}

func redStrip() *project.Project {
	return &project.Project{
		Layout: project.Layout{Kind: "strip", Count: 10},
		Layers: []project.Layer{{
			UID:      "red",
			Behavior: "solid",
			Blend:    project.BlendOver,
			Params:   map[string]any{"color": []any{255, 0, 0}},
		}},
	}
}

func TestSolidRedStrip(t *testing.T) {
	e := newEngine(t, redStrip())
	out := e.Render(0)
	require.Len(t, out, 10)
	for i, px := range out {
		assert.Equal(t, core.RGB{R: 255}, px, "pixel %d", i)
	}
}

func TestMaskedRedStrip(t *testing.T) {
	p := redStrip()
	p.Masks = map[string]project.Mask{"first3": {Indices: []int{0, 1, 2}}}
	p.Layers[0].Mask = "first3"
	e := newEngine(t, p)
	out := e.Render(0)
	for i, px := range out {
		if i < 3 {
			assert.Equal(t, core.RGB{R: 255}, px, "pixel %d", i)
		} else {
			assert.Equal(t, core.Black, px, "pixel %d", i)
		}
	}
}

func busyProject() *project.Project {
	return &project.Project{
		Layout: project.Layout{Kind: "grid", Width: 8, Height: 4, Serpentine: true},
		Layers: []project.Layer{
			{UID: "bg", Behavior: "rainbow", Params: map[string]any{"speed": 0.5}},
			{UID: "life", Behavior: "life", Blend: project.BlendAdd, Opacity: ptr(0.7)},
			{
				UID: "spark", Behavior: "sparkle", Blend: project.BlendScreen,
				Modulators: []project.Modulation{{Source: "sine", Target: "rate", Mode: "mul", Amount: 1, RateHz: 0.5}},
			},
		},
		Rules: []project.Rule{{
			ID: "count", Name: "count",
			Action: project.Action{Kind: "add_var", Var: "frames", Value: 1},
		}},
		Post: project.Post{Bleed: 0.2, BleedRadius: 1, Trail: 0.3},
	}
}

func renderHash(t *testing.T, p *project.Project, times []float64) [32]byte {
	t.Helper()
	e := newEngine(t, p)
	e.SetAudio(signal.Audio{"energy": 0.4, "mono0": 0.9})
	h := sha256.New()
	for _, ts := range times {
		_, _ = h.Write(e.Render(ts).Bytes())
	}
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

func TestDeterministicAcrossEngines(t *testing.T) {
	times := make([]float64, 90)
	for i := range times {
		times[i] = float64(i) / 30
	}
	a := renderHash(t, busyProject(), times)
	b := renderHash(t, busyProject(), times)
	assert.Equal(t, a, b)
}

func TestFixedTickStepsPerFrame(t *testing.T) {
	e := newEngine(t, redStrip())
	var simTimes []float64
	for _, ts := range []float64{0, 1.0 / 30, 2.0 / 30, 2.0 / 30, 1.0 / 30, 2.0 / 30} {
		e.Render(ts)
		simTimes = append(simTimes, e.clock.SimTime())
	}
	// 0 steps, +2, +2, +0, backwards resets, then a first call again.
	want := []float64{0, 2.0 / 60, 4.0 / 60, 4.0 / 60, 0, 0}
	for i := range want {
		assert.InDelta(t, want[i], simTimes[i], 1e-9, "frame %d", i)
	}
}

func TestRulesPersistVariablesAndParams(t *testing.T) {
	p := redStrip()
	p.Variables.Number = map[string]float64{"frames": 0}
	p.Rules = []project.Rule{
		{ID: "count", Name: "a", Action: project.Action{Kind: "add_var", Var: "frames", Value: 1}},
		{
			ID: "dim", Name: "b",
			Conditions: []project.Condition{{Signal: signal.NumberVar("frames"), Op: ">=", Value: 2}},
			Action:     project.Action{Kind: "set_layer_param", Layer: "red", Param: "brightness", Value: 0.5},
		},
	}
	e := newEngine(t, p)

	out := e.Render(0)
	assert.Equal(t, core.RGB{R: 255}, out[0])
	e.Render(0.1)
	out = e.Render(0.2)
	// frames was 2 when the third frame started, so the override applies now.
	assert.Equal(t, core.RGB{R: 128}, out[0])
	assert.Equal(t, 3.0, e.Variables().Number["frames"])

	eff := e.EffectiveProject()
	assert.Equal(t, 0.5, eff.Layers[0].Params["brightness"])
	// The caller's project is untouched.
	_, stored := p.Layers[0].Params["brightness"]
	assert.False(t, stored)

	// Reset clears overrides and variables.
	e.Reset()
	out = e.Render(0)
	assert.Equal(t, core.RGB{R: 255}, out[0])
}

func TestRuleErrorsAreRecordedPerFrame(t *testing.T) {
	p := redStrip()
	p.Rules = []project.Rule{{
		ID:         "bad",
		Conditions: []project.Condition{{Signal: "no.such.signal", Op: ">", Value: 0}},
		Action:     project.Action{Kind: "set_var", Var: "x", Value: 1},
	}}
	e := newEngine(t, p)
	out := e.Render(0)
	assert.Len(t, out, 10)
	errs := e.RuleErrors()
	require.Contains(t, errs, "bad")
}

func TestSetProjectRejectsMaskCycles(t *testing.T) {
	e := newEngine(t, redStrip())
	bad := redStrip()
	bad.Masks = map[string]project.Mask{
		"a": {Op: "union", A: &project.MaskRef{Name: "b"}, B: &project.MaskRef{Name: "b"}},
		"b": {Op: "union", A: &project.MaskRef{Name: "a"}, B: &project.MaskRef{Name: "a"}},
	}
	err := e.SetProject(bad)
	require.ErrorIs(t, err, mask.ErrCycleDetected)
	// The previous project stays active.
	assert.Equal(t, core.RGB{R: 255}, e.Render(0)[9])
}

func TestFaultingLayerDoesNotAbortFrame(t *testing.T) {
	p := redStrip()
	p.Layers = append(p.Layers, project.Layer{UID: "ghost", Behavior: "missing"})
	e := newEngine(t, p)
	out := e.Render(0)
	// The unknown behavior contributes black over the red layer.
	assert.Equal(t, core.Black, out[0])
	require.Len(t, e.Faults(), 1)
	assert.ErrorIs(t, e.Faults()[0], core.ErrUnknownBehavior)
}

func TestGlobalMaskFromConfig(t *testing.T) {
	reg, err := sims.Registry()
	require.NoError(t, err)
	cfg := DefaultConfig()
	cfg.GlobalMask = "zone:tail"
	e, err := New(cfg, reg)
	require.NoError(t, err)
	p := redStrip()
	p.Zones = []project.Zone{{Name: "tail", Start: 8, End: 10}}
	require.NoError(t, e.SetProject(p))

	out := e.Render(0)
	assert.Equal(t, core.Black, out[7])
	assert.Equal(t, core.RGB{R: 255}, out[8])
	assert.Equal(t, core.RGB{R: 255}, out[9])
}

func TestConfigFromMap(t *testing.T) {
	c := FromMap(map[string]string{"tick_hz": "120", "max_frame_delta": "-1", "seed": "7", "global_mask": "m"})
	assert.Equal(t, 120.0, c.TickHz)
	assert.Equal(t, 0.5, c.MaxFrameDelta)
	assert.Equal(t, int64(7), c.Seed)
	assert.Equal(t, "m", c.GlobalMask)
	require.NoError(t, c.Validate())

	c.TickHz = 0
	assert.Error(t, c.Validate())
	_, err := New(c, nil)
	assert.Error(t, err)
}

func TestFaultWithUnregisteredLabelKeepsLowerLayers(t *testing.T) {
	p := redStrip()
	p.Layers = append(p.Layers, project.Layer{UID: "odd", Behavior: "\xff", Opacity: ptr(0.0)})
	e := newEngine(t, p)
	unknown := counterValue(t, "pixelcore_layer_faults_total", "unknown")

	out := e.Render(0)
	require.NoError(t, e.Err())
	assert.Equal(t, core.RGB{R: 255}, out[0])
	require.Len(t, e.Faults(), 1)
	assert.ErrorIs(t, e.Faults()[0], core.ErrUnknownBehavior)
	assert.Equal(t, unknown+1, counterValue(t, "pixelcore_layer_faults_total", "unknown"))
}

type explodingPost struct{}

func (explodingPost) Apply(core.Buffer, *core.Layout, post.Settings) core.Buffer {
	panic("post stage exploded")
}

func (explodingPost) Reset() {}

func TestPanicPastCompositorReturnsBlackFrame(t *testing.T) {
	e := newEngine(t, redStrip())
	e.post = explodingPost{}
	failures := counterValue(t, "pixelcore_frame_failures_total", "")

	out := e.Render(0)
	require.Len(t, out, 10)
	for i, px := range out {
		assert.Equal(t, core.Black, px, "pixel %d", i)
	}
	require.Error(t, e.Err())
	assert.Contains(t, e.Err().Error(), "post stage exploded")
	assert.Equal(t, failures+1, counterValue(t, "pixelcore_frame_failures_total", ""))

	// The next healthy frame clears the error.
	e.post = post.New()
	out = e.Render(0.1)
	assert.NoError(t, e.Err())
	assert.Equal(t, core.RGB{R: 255}, out[0])
}

func TestSetProjectRejectsBadLayerTargets(t *testing.T) {
	tests := map[string]func(p *project.Project){
		"unknown zone target": func(p *project.Project) {
			p.Layers[0].TargetKind, p.Layers[0].TargetRef = project.TargetZone, "nowhere"
		},
		"unknown group target": func(p *project.Project) {
			p.Layers[0].TargetKind, p.Layers[0].TargetRef = project.TargetGroup, "nobody"
		},
		"unknown mask target": func(p *project.Project) {
			p.Layers[0].TargetKind, p.Layers[0].TargetRef = project.TargetMask, "ghost"
		},
		"unknown layer mask": func(p *project.Project) {
			p.Layers[0].Mask = "ghost"
		},
		"unknown operator target": func(p *project.Project) {
			p.Layers[0].Operators = []project.Operator{{Kind: "invert", TargetKind: project.TargetZone, TargetRef: "nowhere"}}
		},
	}
	for name, edit := range tests {
		t.Run(name, func(t *testing.T) {
			e := newEngine(t, redStrip())
			bad := redStrip()
			edit(bad)
			err := e.SetProject(bad)
			require.ErrorIs(t, err, mask.ErrUnknownReference)
			assert.Contains(t, err.Error(), "layer red")
		})
	}
}

func TestLayerCount(t *testing.T) {
	e := newEngine(t, busyProject())
	assert.Equal(t, 3, e.LayerCount())
	require.NoError(t, e.SetProject(redStrip()))
	assert.Equal(t, 1, e.LayerCount())
}

// counterValue sums the default registry's counter samples for name,
// restricted to the given behavior label when it is non-empty.
func counterValue(t *testing.T, name, behavior string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	var sum float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			if behavior != "" && !hasLabel(m.GetLabel(), "behavior", behavior) {
				continue
			}
			sum += m.GetCounter().GetValue()
		}
	}
	return sum
}

func hasLabel(pairs []*dto.LabelPair, name, value string) bool {
	for _, lp := range pairs {
		if lp.GetName() == name && lp.GetValue() == value {
			return true
		}
	}
	return false
}

func ptr[T any](v T) *T { return &v }
