package modulation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"pixelcore/internal/project"
	"pixelcore/internal/signal"
)

func TestSineLFOShape(t *testing.T) {
	b := project.Modulation{Source: "lfo", RateHz: 1, Amount: 1}
	snap := signal.Snapshot{}

	assert.InDelta(t, 0.5, Sample(b, 0, snap), 1e-9)
	assert.InDelta(t, 1.0, Sample(b, 0.25, snap), 1e-9)
	assert.InDelta(t, 0.5, Sample(b, 0.5, snap), 1e-9)
	assert.InDelta(t, 0.0, Sample(b, 0.75, snap), 1e-9)

	b.Phase = 0.25
	assert.InDelta(t, 1.0, Sample(b, 0, snap), 1e-9)
}

func TestWaveformsStayBounded(t *testing.T) {
	snap := signal.Snapshot{}
	for _, src := range []string{WaveLFO, WaveSine, WaveTriangle, WaveSaw, WaveSquare} {
		b := project.Modulation{Source: src, RateHz: 3.7, Phase: 0.1}
		for i := 0; i < 500; i++ {
			v := Sample(b, float64(i)*0.013, snap)
			if v < 0 || v > 1 || math.IsNaN(v) {
				t.Fatalf("%s produced %f at step %d", src, v, i)
			}
		}
	}
}

func TestRateIsClampedOnRead(t *testing.T) {
	snap := signal.Snapshot{}
	fast := project.Modulation{Source: WaveSaw, RateHz: 100}
	capped := project.Modulation{Source: WaveSaw, RateHz: 10}
	assert.InDelta(t, Sample(capped, 0.033, snap), Sample(fast, 0.033, snap), 1e-12)
}

func TestAudioSourcesReadSnapshot(t *testing.T) {
	snap := signal.Build(signal.Frame{}, signal.Audio{"energy": 0.4, "mono2": 0.9, "L0": 2}, nil, nil)

	assert.InDelta(t, 0.4, Sample(project.Modulation{Source: "energy"}, 0, snap), 1e-12)
	assert.InDelta(t, 0.9, Sample(project.Modulation{Source: "mono2"}, 0, snap), 1e-12)
	assert.InDelta(t, 1.0, Sample(project.Modulation{Source: "L0"}, 0, snap), 1e-12)
	assert.InDelta(t, 0.9, Sample(project.Modulation{Source: "audio.mono2"}, 0, snap), 1e-12)
	assert.Zero(t, Sample(project.Modulation{Source: "nonexistent"}, 0, snap))
}

func TestApplyModes(t *testing.T) {
	assert.InDelta(t, 15.0, Apply(10, 0.5, ModeAdd, 10), 1e-12)
	assert.InDelta(t, 5.0, Apply(10, 0.5, ModeSet, 10), 1e-12)
	assert.InDelta(t, 15.0, Apply(10, 0.5, ModeMul, 1), 1e-12)
	assert.InDelta(t, 15.0, Apply(10, 0.5, "", 1), 1e-12)
}
