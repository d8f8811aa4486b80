package core

// DefaultMaxFrameDelta bounds how much wall time a single Advance call may
// feed into the accumulator.
const DefaultMaxFrameDelta = 0.5

// stepEpsilon absorbs float drift when wall deltas are exact multiples of dt.
const stepEpsilon = 1e-9

// FixedClock converts irregular wall timestamps (seconds) into whole
// fixed-duration simulation steps. It never reads the wall clock itself.
type FixedClock struct {
	dt          float64
	maxDelta    float64
	accumulator float64
	simTime     float64
	last        float64
	started     bool
}

// NewFixedClock constructs a clock ticking at the given rate in Hz.
func NewFixedClock(hz float64) *FixedClock {
	c := &FixedClock{maxDelta: DefaultMaxFrameDelta}
	c.SetRate(hz)
	return c
}

// SetRate changes the tick rate. Non-positive rates fall back to 60 Hz.
func (c *FixedClock) SetRate(hz float64) {
	if hz <= 0 {
		hz = 60
	}
	c.dt = 1 / hz
}

// SetMaxDelta changes the catch-up clamp. Non-positive values restore the default.
func (c *FixedClock) SetMaxDelta(d float64) {
	if d <= 0 {
		d = DefaultMaxFrameDelta
	}
	c.maxDelta = d
}

// Step returns the fixed simulation step in seconds.
func (c *FixedClock) Step() float64 { return c.dt }

// SimTime returns the simulated time consumed so far.
func (c *FixedClock) SimTime() float64 { return c.simTime }

// Reset forgets every timestamp, as if the clock was just created.
func (c *FixedClock) Reset() {
	c.accumulator = 0
	c.simTime = 0
	c.last = 0
	c.started = false
}

// Advance feeds a wall timestamp and reports how many fixed steps the
// simulation should run. The first call and any call that moves backwards
// return 0; a backwards call also resets all state so the next call behaves
// like a first call.
func (c *FixedClock) Advance(wallT float64) int {
	if !c.started {
		c.started = true
		c.last = wallT
		return 0
	}
	if wallT < c.last {
		c.Reset()
		return 0
	}
	delta := wallT - c.last
	c.last = wallT
	if delta > c.maxDelta {
		delta = c.maxDelta
	}
	c.accumulator += delta
	steps := 0
	for c.accumulator+stepEpsilon >= c.dt {
		c.accumulator -= c.dt
		c.simTime += c.dt
		steps++
	}
	if c.accumulator < 0 {
		c.accumulator = 0
	}
	return steps
}
