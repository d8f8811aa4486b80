package core

// MaxStepsPerTick bounds the generations a Stepper may release for one tick.
const MaxStepsPerTick = 8

// Stepper converts a generations-per-second rate into whole generations,
// carrying the fractional remainder between ticks.
type Stepper struct {
	acc float64
}

// Steps returns how many generations to run for a tick of dt seconds.
func (s *Stepper) Steps(rate, dt float64) int {
	if rate <= 0 || dt <= 0 {
		return 0
	}
	s.acc += rate * dt
	n := int(s.acc)
	s.acc -= float64(n)
	if n > MaxStepsPerTick {
		n = MaxStepsPerTick
	}
	return n
}
