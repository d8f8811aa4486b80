package ui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelcore/internal/compositor"
	"pixelcore/internal/project"
	"pixelcore/internal/rules"
)

func TestStatusLines(t *testing.T) {
	vars := rules.NewVariables()
	vars.Number["speed"] = 1.5
	vars.Toggle["armed"] = true
	s := Status{
		Title:      "show",
		Frame:      12,
		Time:       0.2,
		Paused:     true,
		Layers:     2,
		Mask:       "edge",
		Faults:     []compositor.Fault{{UID: "a", Behavior: "x", Err: errors.New("boom")}},
		RuleErrors: map[string]error{"r2": errors.New("late"), "r1": errors.New("early")},
		Variables:  vars,
	}
	assert.Equal(t, []string{
		"show",
		"frame 12  t 0.20s  paused",
		"layers 2",
		"mask edge",
		"faults",
		"  a: boom",
		"rule errors",
		"  r1: early",
		"  r2: late",
		"variables",
		"  speed = 1.50",
		"  armed = on",
	}, s.Lines())
}

func TestStatusLinesMinimal(t *testing.T) {
	assert.Equal(t, []string{"", "frame 0  t 0.00s", "layers 0"}, Status{}.Lines())
}

func cyclerProject() *project.Project {
	return &project.Project{
		Layout: project.Layout{Kind: "strip", Count: 6},
		Masks: map[string]project.Mask{
			"b": {Indices: []int{4}},
			"a": {Indices: []int{0, 1}},
		},
		Zones:  []project.Zone{{Name: "head", Start: 0, End: 3}},
		Groups: []project.Group{{Name: "ends", Indices: []int{0, 5}}},
	}
}

func TestMaskCyclerOrderAndWrap(t *testing.T) {
	c := NewMaskCycler()
	c.SetProject(cyclerProject(), 6)
	assert.Equal(t, "", c.Selected())
	var seen []string
	for i := 0; i < 5; i++ {
		seen = append(seen, c.Next())
	}
	assert.Equal(t, []string{"a", "b", "zone:head", "group:ends", ""}, seen)
}

func TestMaskCyclerResolvesSelection(t *testing.T) {
	c := NewMaskCycler()
	p := cyclerProject()
	c.SetProject(p, 6)
	set, err := c.Set()
	assert.NoError(t, err)
	assert.Zero(t, set.Len())

	c.Next()
	c.Next()
	c.Next()
	set, err = c.Set()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, set.Indices())

	// The selection survives a reload that keeps the zone.
	p.Zones[0].End = 2
	c.SetProject(p, 6)
	assert.Equal(t, "zone:head", c.Selected())
	set, err = c.Set()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, set.Indices())
}
