package project

import "maps"

// Clone returns a deep copy. Edits are made on clones so that nothing the
// engine holds is ever changed through an alias.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	out := *p
	out.Layers = make([]Layer, len(p.Layers))
	for i, l := range p.Layers {
		out.Layers[i] = l.Clone()
	}
	out.Masks = make(map[string]Mask, len(p.Masks))
	for k, m := range p.Masks {
		out.Masks[k] = m.Clone()
	}
	out.Zones = append([]Zone(nil), p.Zones...)
	out.Groups = make([]Group, len(p.Groups))
	for i, g := range p.Groups {
		out.Groups[i] = Group{Name: g.Name, Indices: append([]int(nil), g.Indices...)}
	}
	out.Rules = cloneRules(p.Rules)
	out.Variables = Variables{
		Number: maps.Clone(p.Variables.Number),
		Toggle: maps.Clone(p.Variables.Toggle),
	}
	return &out
}

// Clone returns a deep copy of the layer.
func (l Layer) Clone() Layer {
	out := l
	if l.Enabled != nil {
		v := *l.Enabled
		out.Enabled = &v
	}
	if l.Opacity != nil {
		v := *l.Opacity
		out.Opacity = &v
	}
	out.Operators = append([]Operator(nil), l.Operators...)
	out.Modulators = append([]Modulation(nil), l.Modulators...)
	out.LegacyModulators = append([]Modulation(nil), l.LegacyModulators...)
	out.Variables = append([]VariableDecl(nil), l.Variables...)
	out.Rules = cloneRules(l.Rules)
	out.Params = make(map[string]any, len(l.Params))
	for k, v := range l.Params {
		out.Params[k] = cloneAny(v)
	}
	return out
}

// Clone returns a deep copy of the mask tree.
func (m Mask) Clone() Mask {
	out := m
	out.Indices = append([]int(nil), m.Indices...)
	out.A = m.A.clone()
	out.B = m.B.clone()
	return out
}

func (r *MaskRef) clone() *MaskRef {
	if r == nil {
		return nil
	}
	out := &MaskRef{Name: r.Name}
	if r.Inline != nil {
		m := r.Inline.Clone()
		out.Inline = &m
	}
	return out
}

func cloneRules(rules []Rule) []Rule {
	if rules == nil {
		return nil
	}
	out := make([]Rule, len(rules))
	for i, r := range rules {
		out[i] = r
		out[i].Conditions = append([]Condition(nil), r.Conditions...)
	}
	return out
}

func cloneAny(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneAny(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneAny(e)
		}
		return out
	default:
		return v
	}
}
