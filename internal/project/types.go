// Package project defines the persisted project shape consumed by the core:
// layout, layers, masks, zones, groups, rules and variables.
package project

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"pixelcore/internal/core"
)

// Project is the root document. The core never mutates a Project it was
// handed; edits produce a new value.
type Project struct {
	Layout     Layout          `yaml:"layout" json:"layout"`
	Layers     []Layer         `yaml:"layers" json:"layers" validate:"dive"`
	Masks      map[string]Mask `yaml:"masks" json:"masks"`
	Zones      []Zone          `yaml:"zones" json:"zones" validate:"dive"`
	Groups     []Group         `yaml:"groups" json:"groups" validate:"dive"`
	Rules      []Rule          `yaml:"rules_v6" json:"rules_v6" validate:"dive"`
	Variables  Variables       `yaml:"variables" json:"variables"`
	Post       Post            `yaml:"post" json:"post"`
	TargetMask string          `yaml:"target_mask" json:"target_mask"`
}

// Layout is the persisted pixel topology.
type Layout struct {
	Kind       string `yaml:"kind" json:"kind" validate:"omitempty,oneof=strip grid"`
	Count      int    `yaml:"count" json:"count" validate:"gte=0"`
	Width      int    `yaml:"width" json:"width" validate:"gte=0"`
	Height     int    `yaml:"height" json:"height" validate:"gte=0"`
	Serpentine bool   `yaml:"serpentine" json:"serpentine"`
	FlipX      bool   `yaml:"flip_x" json:"flip_x"`
	FlipY      bool   `yaml:"flip_y" json:"flip_y"`
	Rotate     int    `yaml:"rotate" json:"rotate" validate:"oneof=0 90 180 270"`
}

// Build converts the persisted layout into index tables.
func (l Layout) Build() *core.Layout {
	kind := core.LayoutStrip
	if l.Kind == string(core.LayoutGrid) {
		kind = core.LayoutGrid
	}
	return core.NewLayout(core.LayoutSpec{
		Kind:       kind,
		Count:      l.Count,
		Width:      l.Width,
		Height:     l.Height,
		Serpentine: l.Serpentine,
		FlipX:      l.FlipX,
		FlipY:      l.FlipY,
		Rotate:     l.Rotate,
	})
}

// Zone is a contiguous index range [Start, End).
type Zone struct {
	Name  string `yaml:"name" json:"name" validate:"required"`
	Start int    `yaml:"start" json:"start"`
	End   int    `yaml:"end" json:"end"`
}

// Group is an arbitrary index set.
type Group struct {
	Name    string `yaml:"name" json:"name" validate:"required"`
	Indices []int  `yaml:"indices" json:"indices"`
}

// Variables holds the initial values of project variables.
type Variables struct {
	Number map[string]float64 `yaml:"number" json:"number"`
	Toggle map[string]bool    `yaml:"toggle" json:"toggle"`
}

// VariableDecl declares a variable from inside a layer.
type VariableDecl struct {
	Name  string `yaml:"name" json:"name" validate:"required"`
	Kind  string `yaml:"kind" json:"kind" validate:"omitempty,oneof=number toggle"`
	Value Scalar `yaml:"value" json:"value"`
}

// Post configures frame-wide post-processing.
type Post struct {
	Bleed       float64 `yaml:"bleed" json:"bleed"`
	BleedRadius int     `yaml:"bleed_radius" json:"bleed_radius" validate:"gte=0,lte=64"`
	Trail       float64 `yaml:"trail" json:"trail"`
}

// BlendMode selects how a layer is combined with the layers below it.
type BlendMode string

const (
	BlendOver     BlendMode = "over"
	BlendAdd      BlendMode = "add"
	BlendMax      BlendMode = "max"
	BlendMultiply BlendMode = "multiply"
	BlendScreen   BlendMode = "screen"
)

// TargetKind selects what a layer or operator target reference names.
type TargetKind string

const (
	TargetAll   TargetKind = "all"
	TargetZone  TargetKind = "zone"
	TargetGroup TargetKind = "group"
	TargetMask  TargetKind = "mask"
	// TargetLayer restricts an operator to its layer's target.
	TargetLayer TargetKind = "layer"
)

// Layer is one entry of the composition stack.
type Layer struct {
	UID              string         `yaml:"uid" json:"uid"`
	Enabled          *bool          `yaml:"enabled" json:"enabled"`
	Behavior         string         `yaml:"behavior" json:"behavior" validate:"required"`
	Opacity          *float64       `yaml:"opacity" json:"opacity"`
	Blend            BlendMode      `yaml:"blend_mode" json:"blend_mode" validate:"omitempty,oneof=over add max multiply screen"`
	TargetKind       TargetKind     `yaml:"target_kind" json:"target_kind" validate:"omitempty,oneof=all zone group mask"`
	TargetRef        string         `yaml:"target_ref" json:"target_ref"`
	Mask             string         `yaml:"mask" json:"mask"`
	Operators        []Operator     `yaml:"operators" json:"operators" validate:"dive"`
	Modulators       []Modulation   `yaml:"modulators" json:"modulators"`
	LegacyModulators []Modulation   `yaml:"modulotors" json:"modulotors"`
	Variables        []VariableDecl `yaml:"variables" json:"variables" validate:"dive"`
	Rules            []Rule         `yaml:"rules" json:"rules" validate:"dive"`
	Params           map[string]any `yaml:"params" json:"params"`
}

// IsEnabled reports whether the layer takes part in compositing.
func (l Layer) IsEnabled() bool { return l.Enabled == nil || *l.Enabled }

// OpacityValue returns the clamped opacity, 1 when unset.
func (l Layer) OpacityValue() float64 {
	if l.Opacity == nil {
		return 1
	}
	return core.Clamp(*l.Opacity, 0, 1)
}

// BlendMode returns the layer's blend mode, over when unset.
func (l Layer) BlendMode() BlendMode {
	if l.Blend == "" {
		return BlendOver
	}
	return l.Blend
}

// Modulations returns the bindings in declaration order, including ones
// stored under the legacy key.
func (l Layer) Modulations() []Modulation {
	if len(l.LegacyModulators) == 0 {
		return l.Modulators
	}
	out := make([]Modulation, 0, len(l.Modulators)+len(l.LegacyModulators))
	out = append(out, l.Modulators...)
	return append(out, l.LegacyModulators...)
}

// Operator is a post-render per-pixel transform.
type Operator struct {
	Kind       string     `yaml:"kind" json:"kind" validate:"oneof=gain gamma clamp posterize threshold invert"`
	Enabled    *bool      `yaml:"enabled" json:"enabled"`
	Gain       *float64   `yaml:"gain" json:"gain"`
	Gamma      *float64   `yaml:"gamma" json:"gamma"`
	Min        *float64   `yaml:"min" json:"min"`
	Max        *float64   `yaml:"max" json:"max"`
	Levels     int        `yaml:"levels" json:"levels"`
	Cut        *float64   `yaml:"cut" json:"cut"`
	TargetKind TargetKind `yaml:"target_kind" json:"target_kind" validate:"omitempty,oneof=layer all zone group mask"`
	TargetRef  string     `yaml:"target_ref" json:"target_ref"`
}

// IsEnabled reports whether the operator runs.
func (o Operator) IsEnabled() bool { return o.Enabled == nil || *o.Enabled }

// GainValue returns the gain factor, 1 when unset.
func (o Operator) GainValue() float64 { return orDefault(o.Gain, 1, 0, math.MaxFloat64) }

// GammaValue returns the gamma exponent, 1 when unset.
func (o Operator) GammaValue() float64 { return orDefault(o.Gamma, 1, 0.01, 10) }

// Bounds returns the clamp range, [0,255] when unset.
func (o Operator) Bounds() (float64, float64) {
	lo := orDefault(o.Min, 0, 0, 255)
	hi := orDefault(o.Max, 255, 0, 255)
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo, hi
}

// LevelsValue returns the posterize level count, clamped to [2,256].
func (o Operator) LevelsValue() int {
	switch {
	case o.Levels < 2:
		return 2
	case o.Levels > 256:
		return 256
	}
	return o.Levels
}

// CutValue returns the threshold cut, 128 when unset.
func (o Operator) CutValue() float64 { return orDefault(o.Cut, 128, 0, 255) }

// Modulation continuously varies one parameter from a waveform or audio signal.
type Modulation struct {
	Enabled *bool   `yaml:"enabled" json:"enabled"`
	Source  string  `yaml:"source" json:"source"`
	Amount  float64 `yaml:"amount" json:"amount"`
	Target  string  `yaml:"target" json:"target"`
	Mode    string  `yaml:"mode" json:"mode"`
	RateHz  float64 `yaml:"rate_hz" json:"rate_hz"`
	Phase   float64 `yaml:"phase" json:"phase"`
}

// Normalized returns a copy with every field clamped into range and the
// mode defaulted. Callers read bindings through this.
func (m Modulation) Normalized() Modulation {
	enabled := m.Enabled == nil || *m.Enabled
	m.Enabled = &enabled
	m.Amount = core.Clamp(m.Amount, 0, 1)
	m.RateHz = core.Clamp(m.RateHz, 0, 10)
	m.Phase = core.Clamp(m.Phase, 0, 1)
	switch m.Mode {
	case "add", "set", "mul":
	default:
		m.Mode = "mul"
	}
	if m.Source == "" {
		m.Source = "lfo"
	}
	return m
}

// IsEnabled reports whether the binding is active.
func (m Modulation) IsEnabled() bool { return m.Enabled == nil || *m.Enabled }

// Rule is a trigger/condition/action unit.
type Rule struct {
	ID         string      `yaml:"id" json:"id" validate:"required"`
	Enabled    *bool       `yaml:"enabled" json:"enabled"`
	Name       string      `yaml:"name" json:"name"`
	Trigger    Trigger     `yaml:"trigger" json:"trigger"`
	Match      string      `yaml:"match" json:"match" validate:"omitempty,oneof=all any"`
	Conditions []Condition `yaml:"conditions" json:"conditions"`
	Action     Action      `yaml:"action" json:"action"`
}

// IsEnabled reports whether the rule is evaluated.
func (r Rule) IsEnabled() bool { return r.Enabled == nil || *r.Enabled }

// Trigger decides when a rule is considered.
type Trigger struct {
	Kind       string  `yaml:"kind" json:"kind"`
	Signal     string  `yaml:"signal" json:"signal"`
	Value      float64 `yaml:"value" json:"value"`
	Hysteresis float64 `yaml:"hysteresis" json:"hysteresis"`
}

// Condition compares a signal against a constant.
type Condition struct {
	Signal string  `yaml:"signal" json:"signal"`
	Op     string  `yaml:"op" json:"op"`
	Value  float64 `yaml:"value" json:"value"`
}

// Action is what a rule does when it passes.
type Action struct {
	Kind   string `yaml:"kind" json:"kind"`
	Var    string `yaml:"var" json:"var"`
	Layer  string `yaml:"layer" json:"layer"`
	Param  string `yaml:"param" json:"param"`
	Value  Scalar `yaml:"value" json:"value"`
	Policy string `yaml:"policy" json:"policy"`
}

// Scalar is a number that also accepts booleans (true=1, false=0).
type Scalar float64

// UnmarshalYAML decodes a number or a boolean.
func (s *Scalar) UnmarshalYAML(value *yaml.Node) error {
	var b bool
	if value.Tag == "!!bool" {
		if err := value.Decode(&b); err != nil {
			return err
		}
		if b {
			*s = 1
		} else {
			*s = 0
		}
		return nil
	}
	var f float64
	if err := value.Decode(&f); err != nil {
		return fmt.Errorf("invalid scalar %q: %w", value.Value, err)
	}
	*s = Scalar(f)
	return nil
}

// Bool interprets the scalar as a toggle value.
func (s Scalar) Bool() bool { return s != 0 }

// Mask is either a leaf (explicit indices, a zone or a group) or a boolean
// combination of two references.
type Mask struct {
	Op      string   `yaml:"op,omitempty" json:"op,omitempty"`
	Indices []int    `yaml:"indices,omitempty" json:"indices,omitempty"`
	Zone    string   `yaml:"zone,omitempty" json:"zone,omitempty"`
	Group   string   `yaml:"group,omitempty" json:"group,omitempty"`
	A       *MaskRef `yaml:"a,omitempty" json:"a,omitempty"`
	B       *MaskRef `yaml:"b,omitempty" json:"b,omitempty"`
}

// IsLeaf reports whether the mask has no operator.
func (m Mask) IsLeaf() bool { return m.Op == "" }

// MaskRef names another mask, a zone ("zone:<name>"), a group
// ("group:<name>"), or holds an inline mask.
type MaskRef struct {
	Name   string
	Inline *Mask
}

// UnmarshalYAML accepts a scalar name, a list of indices, or an inline mask mapping.
func (r *MaskRef) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		return value.Decode(&r.Name)
	case yaml.SequenceNode:
		var idx []int
		if err := value.Decode(&idx); err != nil {
			return fmt.Errorf("invalid inline mask indices: %w", err)
		}
		r.Inline = &Mask{Indices: idx}
		return nil
	case yaml.MappingNode:
		var m Mask
		if err := value.Decode(&m); err != nil {
			return err
		}
		r.Inline = &m
		return nil
	default:
		return fmt.Errorf("invalid mask reference at line %d", value.Line)
	}
}

// MarshalYAML writes the reference back in the shape it was read.
func (r MaskRef) MarshalYAML() (any, error) {
	if r.Inline != nil {
		return r.Inline, nil
	}
	return r.Name, nil
}

func orDefault(p *float64, def, lo, hi float64) float64 {
	if p == nil {
		return def
	}
	return core.Clamp(*p, lo, hi)
}
