package core

import (
	"fmt"
	"math"
	"strconv"
)

// ParamType enumerates supported parameter value kinds.
type ParamType string

const (
	// ParamTypeInt denotes integer-valued parameters.
	ParamTypeInt ParamType = "int"
	// ParamTypeFloat denotes floating-point parameters.
	ParamTypeFloat ParamType = "float"
	// ParamTypeBool denotes boolean parameters.
	ParamTypeBool ParamType = "bool"
	// ParamTypeColor denotes RGB triples.
	ParamTypeColor ParamType = "color"
)

// Parameter is a display-ready rendering of a single resolved value.
type Parameter struct {
	Key         string
	Label       string
	Type        ParamType
	Value       string
	Description string
}

// ParameterGroup clusters related parameters for presentation purposes.
type ParameterGroup struct {
	Name    string
	Params  []Parameter
	Summary string
}

// ParameterSnapshot captures a set of resolved values for display.
type ParameterSnapshot struct {
	Groups []ParameterGroup
}

// ParameterControl declares one parameter a behavior understands. Bounds are
// optional and only apply to numeric kinds.
type ParameterControl struct {
	Key   string
	Label string
	Type  ParamType

	Default      float64
	DefaultColor RGB

	Min    float64
	Max    float64
	HasMin bool
	HasMax bool
}

// Float declares a bounded floating-point parameter.
func Float(key string, def, lo, hi float64) ParameterControl {
	return ParameterControl{Key: key, Type: ParamTypeFloat, Default: def, Min: lo, Max: hi, HasMin: true, HasMax: true}
}

// Int declares a bounded integer parameter.
func Int(key string, def, lo, hi int) ParameterControl {
	return ParameterControl{Key: key, Type: ParamTypeInt, Default: float64(def), Min: float64(lo), Max: float64(hi), HasMin: true, HasMax: true}
}

// Bool declares a boolean parameter.
func Bool(key string, def bool) ParameterControl {
	d := 0.0
	if def {
		d = 1
	}
	return ParameterControl{Key: key, Type: ParamTypeBool, Default: d, Min: 0, Max: 1, HasMin: true, HasMax: true}
}

// Color declares an RGB parameter.
func Color(key string, def RGB) ParameterControl {
	return ParameterControl{Key: key, Type: ParamTypeColor, DefaultColor: def}
}

// Bound clamps v to the control's declared range and kind.
func (p ParameterControl) Bound(v float64) float64 {
	if math.IsNaN(v) {
		v = p.Default
	}
	if p.HasMin && v < p.Min {
		v = p.Min
	}
	if p.HasMax && v > p.Max {
		v = p.Max
	}
	switch p.Type {
	case ParamTypeInt:
		v = math.Round(v)
	case ParamTypeBool:
		if v >= 0.5 {
			return 1
		}
		return 0
	}
	return v
}

// Value is one resolved parameter slot.
type Value struct {
	Num   float64
	Color RGB
}

// Schema is the fixed slot table for a behavior's parameters. It is built
// once and shared by every layer using that behavior.
type Schema struct {
	controls []ParameterControl
	index    map[string]int
}

// NewSchema builds a schema from the given declarations. Duplicate keys
// keep the first declaration.
func NewSchema(controls ...ParameterControl) *Schema {
	s := &Schema{index: make(map[string]int, len(controls))}
	for _, c := range controls {
		if _, dup := s.index[c.Key]; dup || c.Key == "" {
			continue
		}
		if c.Label == "" {
			c.Label = c.Key
		}
		s.index[c.Key] = len(s.controls)
		s.controls = append(s.controls, c)
	}
	return s
}

// Len returns the number of slots.
func (s *Schema) Len() int { return len(s.controls) }

// Control returns the declaration for slot i.
func (s *Schema) Control(i int) ParameterControl { return s.controls[i] }

// ParameterControls exposes all declarations in slot order.
func (s *Schema) ParameterControls() []ParameterControl {
	out := make([]ParameterControl, len(s.controls))
	copy(out, s.controls)
	return out
}

// Slot looks up a key.
func (s *Schema) Slot(key string) (int, bool) {
	i, ok := s.index[key]
	return i, ok
}

// MustSlot looks up a key that the caller declared itself. It panics on a
// miss, which can only happen when a behavior's schema and its slot lookups
// disagree.
func (s *Schema) MustSlot(key string) int {
	i, ok := s.index[key]
	if !ok {
		panic(fmt.Sprintf("core: parameter %q not declared", key))
	}
	return i
}

// Defaults returns a fresh slot vector holding every declared default.
func (s *Schema) Defaults() []Value {
	out := make([]Value, len(s.controls))
	for i, c := range s.controls {
		out[i] = Value{Num: c.Bound(c.Default), Color: c.DefaultColor}
	}
	return out
}

// Values is an immutable resolved parameter set.
type Values struct {
	schema *Schema
	slots  []Value
}

// NewValues copies slots into an immutable set bound to schema.
func NewValues(schema *Schema, slots []Value) Values {
	cp := make([]Value, len(slots))
	copy(cp, slots)
	return Values{schema: schema, slots: cp}
}

// Schema returns the slot table the values were resolved against.
func (v Values) Schema() *Schema { return v.schema }

// Float returns the numeric value in slot i.
func (v Values) Float(i int) float64 {
	if i < 0 || i >= len(v.slots) {
		return 0
	}
	return v.slots[i].Num
}

// Int returns the numeric value in slot i truncated to an int.
func (v Values) Int(i int) int { return int(v.Float(i)) }

// Bool reports whether slot i is set.
func (v Values) Bool(i int) bool { return v.Float(i) >= 0.5 }

// Color returns the color in slot i.
func (v Values) Color(i int) RGB {
	if i < 0 || i >= len(v.slots) {
		return Black
	}
	return v.slots[i].Color
}

// Lookup finds a value by key. It is meant for tooling, not per-pixel code.
func (v Values) Lookup(key string) (Value, bool) {
	if v.schema == nil {
		return Value{}, false
	}
	i, ok := v.schema.Slot(key)
	if !ok || i >= len(v.slots) {
		return Value{}, false
	}
	return v.slots[i], true
}

// Snapshot renders the values for display under a single group.
func (v Values) Snapshot(name string) ParameterSnapshot {
	if v.schema == nil {
		return ParameterSnapshot{}
	}
	group := ParameterGroup{Name: name}
	for i, c := range v.schema.controls {
		group.Params = append(group.Params, Parameter{
			Key:   c.Key,
			Label: c.Label,
			Type:  c.Type,
			Value: formatValue(c.Type, v.slots[i]),
		})
	}
	return ParameterSnapshot{Groups: []ParameterGroup{group}}
}

func formatValue(t ParamType, v Value) string {
	switch t {
	case ParamTypeInt:
		return strconv.Itoa(int(v.Num))
	case ParamTypeBool:
		return strconv.FormatBool(v.Num >= 0.5)
	case ParamTypeColor:
		return fmt.Sprintf("#%02x%02x%02x", v.Color.R, v.Color.G, v.Color.B)
	default:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
}
