package engine

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Config controls the frame driver. Project-specific settings such as the
// layout live in the project file instead.
type Config struct {
	// TickHz is the fixed simulation rate.
	TickHz float64 `validate:"gt=0,lte=1000"`
	// MaxFrameDelta caps the wall time one frame may feed the clock.
	MaxFrameDelta float64 `validate:"gt=0,lte=10"`
	// Seed is mixed into every layer's instance seed.
	Seed int64
	// GlobalMask, when set, overrides the project's target_mask.
	GlobalMask string
}

var configValidate = validator.New()

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		TickHz:        60,
		MaxFrameDelta: 0.5,
		Seed:          1337,
	}
}

// FromMap populates the config from a string map (flag-style key/value pairs).
// Unparsable or out-of-range entries keep their defaults.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["tick_hz"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 && parsed <= 1000 {
			c.TickHz = parsed
		}
	}
	if v, ok := cfg["max_frame_delta"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 && parsed <= 10 {
			c.MaxFrameDelta = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	if v, ok := cfg["global_mask"]; ok {
		c.GlobalMask = v
	}
	return c
}

// Validate checks the struct constraints.
func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("engine config: %w", err)
	}
	return nil
}
