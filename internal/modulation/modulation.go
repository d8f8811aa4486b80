// Package modulation samples bounded waveforms and audio channels and folds
// them into base parameter values.
package modulation

import (
	"math"
	"strings"

	"pixelcore/internal/project"
	"pixelcore/internal/signal"
)

// Fold modes.
const (
	ModeAdd = "add"
	ModeMul = "mul"
	ModeSet = "set"
)

// Waveform sources. All produce values in [0, 1].
const (
	WaveLFO      = "lfo"
	WaveSine     = "sine"
	WaveTriangle = "triangle"
	WaveSaw      = "saw"
	WaveSquare   = "square"
)

// Sample evaluates a binding's source at time t. Waveforms are functions of
// t, rate and phase; anything else is read from the snapshot. Missing
// signals sample as 0. The result is always within [0, 1].
func Sample(b project.Modulation, t float64, snap signal.Snapshot) float64 {
	b = b.Normalized()
	if phase, ok := wavePhase(b, t); ok {
		return clamp01(wave(b.Source, phase))
	}
	v, ok := snap.Get(audioKey(b.Source))
	if !ok || math.IsNaN(v) {
		return 0
	}
	return clamp01(v)
}

// Apply folds a sampled signal into base according to mode.
func Apply(base, sig float64, mode string, amount float64) float64 {
	switch mode {
	case ModeAdd:
		return base + sig*amount
	case ModeSet:
		return sig * amount
	default:
		return base * (1 + sig*amount)
	}
}

func wavePhase(b project.Modulation, t float64) (float64, bool) {
	switch b.Source {
	case WaveLFO, WaveSine, WaveTriangle, WaveSaw, WaveSquare:
		p := b.RateHz*t + b.Phase
		return p - math.Floor(p), true
	}
	return 0, false
}

func wave(source string, phase float64) float64 {
	switch source {
	case WaveTriangle:
		if phase < 0.5 {
			return 2 * phase
		}
		return 2 - 2*phase
	case WaveSaw:
		return phase
	case WaveSquare:
		if phase < 0.5 {
			return 1
		}
		return 0
	default:
		return 0.5 + 0.5*math.Sin(2*math.Pi*phase)
	}
}

// audioKey maps a short channel id ("energy", "mono3", "L0", "bass") onto
// its snapshot name. Fully qualified names pass through unchanged.
func audioKey(source string) string {
	if strings.Contains(source, ".") {
		return source
	}
	return "audio." + source
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
