package ui

import (
	"fmt"
	"sort"
	"strconv"

	"pixelcore/internal/compositor"
	"pixelcore/internal/rules"
)

// Status is what the HUD shows about the engine after a frame.
type Status struct {
	Title      string
	Frame      int64
	Time       float64
	Paused     bool
	Layers     int
	Mask       string
	Faults     []compositor.Fault
	RuleErrors map[string]error
	Variables  *rules.Variables
	FrameErr   error
	ReloadErr  error
}

// Lines formats the status as HUD text, top to bottom.
func (s Status) Lines() []string {
	lines := []string{s.Title}
	head := fmt.Sprintf("frame %d  t %.2fs", s.Frame, s.Time)
	if s.Paused {
		head += "  paused"
	}
	lines = append(lines, head, fmt.Sprintf("layers %d", s.Layers))
	if s.Mask != "" {
		lines = append(lines, "mask "+s.Mask)
	}
	if s.ReloadErr != nil {
		lines = append(lines, "reload: "+s.ReloadErr.Error())
	}
	if s.FrameErr != nil {
		lines = append(lines, "frame: "+s.FrameErr.Error())
	}
	if len(s.Faults) > 0 {
		lines = append(lines, "faults")
		for _, f := range s.Faults {
			lines = append(lines, fmt.Sprintf("  %s: %v", f.UID, f.Err))
		}
	}
	if len(s.RuleErrors) > 0 {
		keys := make([]string, 0, len(s.RuleErrors))
		for k := range s.RuleErrors {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines = append(lines, "rule errors")
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("  %s: %v", k, s.RuleErrors[k]))
		}
	}
	if s.Variables != nil {
		numbers, toggles := s.Variables.Names()
		if len(numbers)+len(toggles) > 0 {
			lines = append(lines, "variables")
		}
		for _, k := range numbers {
			lines = append(lines, "  "+k+" = "+strconv.FormatFloat(s.Variables.Number[k], 'f', 2, 64))
		}
		for _, k := range toggles {
			v := "off"
			if s.Variables.Toggle[k] {
				v = "on"
			}
			lines = append(lines, "  "+k+" = "+v)
		}
	}
	return lines
}
