package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestFrameCounters(t *testing.T) {
	frames := testutil.ToFloat64(framesTotal)
	steps := testutil.ToFloat64(simSteps)

	Frame(2, 0.001)
	Frame(3, 0.002)

	assert.Equal(t, frames+2, testutil.ToFloat64(framesTotal))
	assert.Equal(t, steps+5, testutil.ToFloat64(simSteps))
}

func TestFaultAndErrorCounters(t *testing.T) {
	before := testutil.ToFloat64(layerFaults.WithLabelValues("sparkle"))
	LayerFault("sparkle")
	assert.Equal(t, before+1, testutil.ToFloat64(layerFaults.WithLabelValues("sparkle")))

	rules := testutil.ToFloat64(ruleErrors)
	RuleErrors(0)
	RuleErrors(3)
	assert.Equal(t, rules+3, testutil.ToFloat64(ruleErrors))

	failures := testutil.ToFloat64(frameFailures)
	FrameFailure()
	assert.Equal(t, failures+1, testutil.ToFloat64(frameFailures))
}

func TestLayerFaultDropsInvalidLabel(t *testing.T) {
	assert.NotPanics(t, func() { LayerFault("\xff") })
}
