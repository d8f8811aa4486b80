// Package signal holds the per-frame named-value table that rules,
// modulators and behaviors read from.
package signal

import (
	"math"
	"sort"
	"strconv"
)

// Bands is the number of spectrum bands per audio channel.
const Bands = 7

// Well-known signal names.
const (
	TimeT       = "time.t"
	TimeDT      = "time.dt"
	TimeSim     = "time.sim"
	EngineFrame = "engine.frame"
	EngineSteps = "engine.steps"
	AudioEnergy = "audio.energy"
	AudioBass   = "audio.bass"
	AudioMid    = "audio.mid"
	AudioTreble = "audio.treble"
	AudioPeak   = "audio.peak"

	numberPrefix = "vars.number."
	togglePrefix = "vars.toggle."
)

// Audio is the flat map supplied by the audio provider: energy, mono0..6,
// L0..6 and R0..6, each expected in [0,1].
type Audio map[string]float64

// Get returns a clamped channel value, 0 when absent.
func (a Audio) Get(key string) float64 {
	v, ok := a[key]
	if !ok || math.IsNaN(v) {
		return 0
	}
	return clamp01(v)
}

// Energy is shorthand for the overall loudness value.
func (a Audio) Energy() float64 { return a.Get("energy") }

// Band returns the given band of a channel ("mono", "L" or "R").
func (a Audio) Band(channel string, band int) float64 {
	if band < 0 || band >= Bands {
		return 0
	}
	return a.Get(channel + strconv.Itoa(band))
}

// Frame carries the engine-provided values that are not variables or audio.
type Frame struct {
	T       float64
	DT      float64
	SimTime float64
	Index   int64
	Steps   int
}

// Snapshot is an immutable table of named values for one frame.
type Snapshot struct {
	values map[string]float64
}

// Build assembles a snapshot from frame timing, audio and the current variables.
func Build(f Frame, audio Audio, numbers map[string]float64, toggles map[string]bool) Snapshot {
	values := make(map[string]float64, 32+len(numbers)+len(toggles))
	values[TimeT] = f.T
	values[TimeDT] = f.DT
	values[TimeSim] = f.SimTime
	values[EngineFrame] = float64(f.Index)
	values[EngineSteps] = float64(f.Steps)
	values[AudioEnergy] = audio.Energy()

	var mono [Bands]float64
	peak := 0.0
	for _, ch := range []string{"mono", "L", "R"} {
		for b := 0; b < Bands; b++ {
			v := audio.Band(ch, b)
			values["audio."+ch+strconv.Itoa(b)] = v
			if ch == "mono" {
				mono[b] = v
				peak = math.Max(peak, v)
			}
		}
	}
	values[AudioBass] = (mono[0] + mono[1]) / 2
	values[AudioMid] = (mono[2] + mono[3] + mono[4]) / 3
	values[AudioTreble] = (mono[5] + mono[6]) / 2
	values[AudioPeak] = peak

	for k, v := range numbers {
		values[numberPrefix+k] = v
	}
	for k, v := range toggles {
		if v {
			values[togglePrefix+k] = 1
		} else {
			values[togglePrefix+k] = 0
		}
	}
	return Snapshot{values: values}
}

// FromMap builds a snapshot holding exactly the given values. It is mostly
// useful for tests and tooling.
func FromMap(m map[string]float64) Snapshot {
	values := make(map[string]float64, len(m))
	for k, v := range m {
		values[k] = v
	}
	return Snapshot{values: values}
}

// Get returns a numeric signal.
func (s Snapshot) Get(name string) (float64, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Bool interprets a signal as a boolean (non-zero is true).
func (s Snapshot) Bool(name string) (bool, bool) {
	v, ok := s.values[name]
	return ok && v != 0, ok
}

// T returns the frame timestamp.
func (s Snapshot) T() float64 { return s.values[TimeT] }

// Names lists every signal in sorted order.
func (s Snapshot) Names() []string {
	out := make([]string, 0, len(s.values))
	for k := range s.values {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// NumberVar returns the signal name of a number variable.
func NumberVar(name string) string { return numberPrefix + name }

// ToggleVar returns the signal name of a toggle variable.
func ToggleVar(name string) string { return togglePrefix + name }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
