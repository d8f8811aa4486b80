package rules

import (
	"maps"
	"sort"

	"pixelcore/internal/project"
)

// Variables is the persistent variable store rules read and write.
type Variables struct {
	Number map[string]float64
	Toggle map[string]bool
}

// NewVariables returns an empty store.
func NewVariables() *Variables {
	return &Variables{Number: map[string]float64{}, Toggle: map[string]bool{}}
}

// Seed adds every variable the project declares that the store does not
// hold yet. Values already present survive project edits.
func (v *Variables) Seed(p *project.Project) {
	for k, val := range p.Variables.Number {
		if _, ok := v.Number[k]; !ok {
			v.Number[k] = val
		}
	}
	for k, val := range p.Variables.Toggle {
		if _, ok := v.Toggle[k]; !ok {
			v.Toggle[k] = val
		}
	}
	for _, l := range p.Layers {
		for _, d := range l.Variables {
			if d.Kind == "toggle" {
				if _, ok := v.Toggle[d.Name]; !ok {
					v.Toggle[d.Name] = d.Value.Bool()
				}
				continue
			}
			if _, ok := v.Number[d.Name]; !ok {
				v.Number[d.Name] = float64(d.Value)
			}
		}
	}
}

// Reset discards every runtime value and reseeds from the project.
func (v *Variables) Reset(p *project.Project) {
	v.Number = map[string]float64{}
	v.Toggle = map[string]bool{}
	v.Seed(p)
}

// Clone returns an independent copy.
func (v *Variables) Clone() *Variables {
	return &Variables{Number: maps.Clone(v.Number), Toggle: maps.Clone(v.Toggle)}
}

// Names lists number and toggle names, each sorted.
func (v *Variables) Names() (numbers, toggles []string) {
	for k := range v.Number {
		numbers = append(numbers, k)
	}
	for k := range v.Toggle {
		toggles = append(toggles, k)
	}
	sort.Strings(numbers)
	sort.Strings(toggles)
	return numbers, toggles
}
