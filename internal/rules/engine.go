// Package rules evaluates trigger/condition/action rules against a signal
// snapshot. Actions are staged first and reduced per target afterwards, so
// every rule in a tick sees the same pre-tick values.
package rules

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"pixelcore/internal/project"
	"pixelcore/internal/signal"
)

var (
	// ErrMissingSignal is recorded when a rule references a signal the
	// snapshot does not contain.
	ErrMissingSignal = errors.New("missing signal")
	// ErrInvalidRule is recorded for malformed triggers, comparators or actions.
	ErrInvalidRule = errors.New("invalid rule")
)

// Trigger kinds.
const (
	TriggerTick      = "tick"
	TriggerRising    = "rising"
	TriggerThreshold = "threshold"
)

// Action kinds.
const (
	ActionSetVar        = "set_var"
	ActionAddVar        = "add_var"
	ActionSetToggle     = "set_toggle"
	ActionFlipToggle    = "flip_toggle"
	ActionSetLayerParam = "set_layer_param"
)

// Conflict policies.
const (
	PolicyLast  = "last"
	PolicyFirst = "first"
	PolicyMax   = "max"
	PolicyMin   = "min"
	PolicyAdd   = "add"
	PolicyOr    = "or"
	PolicyAnd   = "and"
	PolicyXor   = "xor"
)

// Outcome is the reduced result of one evaluation.
type Outcome struct {
	// Numbers and Toggles hold the new value of every variable written.
	Numbers map[string]float64
	Toggles map[string]bool
	// Params holds rule-driven layer parameter writes keyed by layer uid.
	Params map[string]map[string]float64
	// Fired lists the keys of rules whose action was staged, in evaluation order.
	Fired []string
	// Errors holds per-rule evaluation failures. Those rules were skipped.
	Errors map[string]error
}

// Apply writes the outcome's variable values into vars.
func (o Outcome) Apply(vars *Variables) {
	for k, v := range o.Numbers {
		vars.Number[k] = v
	}
	for k, v := range o.Toggles {
		vars.Toggle[k] = v
	}
}

// Engine owns the per-rule trigger memory: last seen value of rising-edge
// signals and on/off state of threshold triggers, keyed by rule.
type Engine struct {
	edges   map[string]bool
	latched map[string]bool
}

// New returns an engine with empty trigger memory.
func New() *Engine {
	return &Engine{edges: map[string]bool{}, latched: map[string]bool{}}
}

// Reset forgets all trigger memory.
func (e *Engine) Reset() {
	e.edges = map[string]bool{}
	e.latched = map[string]bool{}
}

type boundRule struct {
	key   string
	layer string
	rule  project.Rule
}

type targetKind uint8

const (
	targetNumber targetKind = iota
	targetToggle
	targetParam
)

type targetKey struct {
	kind  targetKind
	layer string
	name  string
}

type write struct {
	proposed float64
	policy   string
}

// Evaluate runs every enabled rule of p once against snap. Project rules are
// keyed by id and layer rules by "<uid>/<id>"; rules run sorted by
// (name, key). Nothing is applied: callers use Outcome.Apply and
// Outcome.Params.
func (e *Engine) Evaluate(p *project.Project, snap signal.Snapshot, vars *Variables) Outcome {
	out := Outcome{
		Numbers: map[string]float64{},
		Toggles: map[string]bool{},
		Params:  map[string]map[string]float64{},
		Errors:  map[string]error{},
	}
	rules := collect(p)
	e.prune(rules)

	staged := map[targetKey][]write{}
	var order []targetKey
	for _, br := range rules {
		if !br.rule.IsEnabled() {
			continue
		}
		key, w, ok, err := e.evaluate(br, snap, vars)
		if err != nil {
			out.Errors[br.key] = fmt.Errorf("rule %s: %w", br.key, err)
			continue
		}
		if !ok {
			continue
		}
		if _, seen := staged[key]; !seen {
			order = append(order, key)
		}
		staged[key] = append(staged[key], w)
		out.Fired = append(out.Fired, br.key)
	}

	for _, key := range order {
		writes := staged[key]
		switch key.kind {
		case targetNumber:
			out.Numbers[key.name] = reduceNumber(vars.Number[key.name], writes)
		case targetToggle:
			out.Toggles[key.name] = reduceToggle(vars.Toggle[key.name], writes)
		case targetParam:
			if out.Params[key.layer] == nil {
				out.Params[key.layer] = map[string]float64{}
			}
			out.Params[key.layer][key.name] = reduceNumber(0, writes)
		}
	}
	return out
}

func collect(p *project.Project) []boundRule {
	out := make([]boundRule, 0, len(p.Rules))
	for _, r := range p.Rules {
		out = append(out, boundRule{key: r.ID, rule: r})
	}
	for _, l := range p.Layers {
		if !l.IsEnabled() {
			continue
		}
		for _, r := range l.Rules {
			out = append(out, boundRule{key: l.UID + "/" + r.ID, layer: l.UID, rule: r})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].rule.Name != out[j].rule.Name {
			return out[i].rule.Name < out[j].rule.Name
		}
		return out[i].key < out[j].key
	})
	return out
}

func (e *Engine) prune(rules []boundRule) {
	live := make(map[string]struct{}, len(rules))
	for _, br := range rules {
		live[br.key] = struct{}{}
	}
	for k := range e.edges {
		if _, ok := live[k]; !ok {
			delete(e.edges, k)
		}
	}
	for k := range e.latched {
		if _, ok := live[k]; !ok {
			delete(e.latched, k)
		}
	}
}

func (e *Engine) evaluate(br boundRule, snap signal.Snapshot, vars *Variables) (targetKey, write, bool, error) {
	fired, err := e.trigger(br.key, br.rule.Trigger, snap)
	if err != nil || !fired {
		return targetKey{}, write{}, false, err
	}
	pass, err := conditions(br.rule.Match, br.rule.Conditions, snap)
	if err != nil || !pass {
		return targetKey{}, write{}, false, err
	}
	key, w, err := stage(br, vars)
	if err != nil {
		return targetKey{}, write{}, false, err
	}
	return key, w, true, nil
}

func (e *Engine) trigger(key string, tr project.Trigger, snap signal.Snapshot) (bool, error) {
	switch tr.Kind {
	case "", TriggerTick:
		return true, nil
	case TriggerRising, "rising_edge", "edge":
		if tr.Signal == "" {
			return false, fmt.Errorf("%w: rising trigger without signal", ErrInvalidRule)
		}
		v, ok := snap.Bool(tr.Signal)
		if !ok {
			e.edges[key] = false
			return false, fmt.Errorf("%w: %q", ErrMissingSignal, tr.Signal)
		}
		prev := e.edges[key]
		e.edges[key] = v
		return v && !prev, nil
	case TriggerThreshold:
		if tr.Signal == "" || tr.Hysteresis < 0 || math.IsNaN(tr.Value) {
			return false, fmt.Errorf("%w: threshold needs a signal and non-negative hysteresis", ErrInvalidRule)
		}
		v, ok := snap.Get(tr.Signal)
		if !ok {
			return false, fmt.Errorf("%w: %q", ErrMissingSignal, tr.Signal)
		}
		on := e.latched[key]
		if !on && v >= tr.Value+tr.Hysteresis {
			e.latched[key] = true
			return true, nil
		}
		if on && v < tr.Value-tr.Hysteresis {
			e.latched[key] = false
		}
		return false, nil
	}
	return false, fmt.Errorf("%w: trigger kind %q", ErrInvalidRule, tr.Kind)
}

func conditions(match string, conds []project.Condition, snap signal.Snapshot) (bool, error) {
	if len(conds) == 0 {
		return true, nil
	}
	anyMatch := match == "any"
	if match != "" && match != "all" && !anyMatch {
		return false, fmt.Errorf("%w: match %q", ErrInvalidRule, match)
	}
	all, some := true, false
	for _, c := range conds {
		v, ok := snap.Get(c.Signal)
		if !ok {
			return false, fmt.Errorf("%w: %q", ErrMissingSignal, c.Signal)
		}
		pass, err := compare(v, c.Op, c.Value)
		if err != nil {
			return false, err
		}
		all = all && pass
		some = some || pass
	}
	if anyMatch {
		return some, nil
	}
	return all, nil
}

func compare(v float64, op string, c float64) (bool, error) {
	switch op {
	case ">":
		return v > c, nil
	case ">=":
		return v >= c, nil
	case "<":
		return v < c, nil
	case "<=":
		return v <= c, nil
	case "==", "=":
		return v == c, nil
	case "!=":
		return v != c, nil
	}
	return false, fmt.Errorf("%w: comparator %q", ErrInvalidRule, op)
}

func stage(br boundRule, vars *Variables) (targetKey, write, error) {
	a := br.rule.Action
	value := float64(a.Value)
	switch a.Kind {
	case ActionSetVar, ActionAddVar:
		if a.Var == "" {
			return targetKey{}, write{}, fmt.Errorf("%w: %s without var", ErrInvalidRule, a.Kind)
		}
		def := PolicyLast
		proposed := value
		if a.Kind == ActionAddVar {
			def = PolicyAdd
			proposed = vars.Number[a.Var] + value
		}
		policy, err := numberPolicy(a.Policy, def)
		if err != nil {
			return targetKey{}, write{}, err
		}
		return targetKey{kind: targetNumber, name: a.Var}, write{proposed: proposed, policy: policy}, nil
	case ActionSetToggle, ActionFlipToggle:
		if a.Var == "" {
			return targetKey{}, write{}, fmt.Errorf("%w: %s without var", ErrInvalidRule, a.Kind)
		}
		def := PolicyLast
		proposed := a.Value.Bool()
		if a.Kind == ActionFlipToggle {
			def = PolicyXor
			proposed = !vars.Toggle[a.Var]
		}
		policy, err := togglePolicy(a.Policy, def)
		if err != nil {
			return targetKey{}, write{}, err
		}
		return targetKey{kind: targetToggle, name: a.Var}, write{proposed: boolFloat(proposed), policy: policy}, nil
	case ActionSetLayerParam:
		layer := a.Layer
		if layer == "" {
			layer = br.layer
		}
		if layer == "" || a.Param == "" {
			return targetKey{}, write{}, fmt.Errorf("%w: set_layer_param needs layer and param", ErrInvalidRule)
		}
		policy, err := numberPolicy(a.Policy, PolicyLast)
		if err != nil {
			return targetKey{}, write{}, err
		}
		return targetKey{kind: targetParam, layer: layer, name: a.Param}, write{proposed: value, policy: policy}, nil
	}
	return targetKey{}, write{}, fmt.Errorf("%w: action kind %q", ErrInvalidRule, a.Kind)
}

func numberPolicy(p, def string) (string, error) {
	switch p {
	case "":
		return def, nil
	case PolicyLast, PolicyFirst, PolicyMax, PolicyMin, PolicyAdd:
		return p, nil
	}
	return "", fmt.Errorf("%w: policy %q for a number target", ErrInvalidRule, p)
}

func togglePolicy(p, def string) (string, error) {
	switch p {
	case "":
		return def, nil
	case PolicyLast, PolicyFirst, PolicyOr, PolicyAnd, PolicyXor:
		return p, nil
	case PolicyMax:
		return PolicyOr, nil
	case PolicyMin:
		return PolicyAnd, nil
	}
	return "", fmt.Errorf("%w: policy %q for a toggle target", ErrInvalidRule, p)
}

// reduceNumber combines every write to one number target. The policy is the
// one declared by the last writer in evaluation order.
func reduceNumber(pre float64, writes []write) float64 {
	switch writes[len(writes)-1].policy {
	case PolicyFirst:
		return writes[0].proposed
	case PolicyMax:
		v := writes[0].proposed
		for _, w := range writes[1:] {
			v = math.Max(v, w.proposed)
		}
		return v
	case PolicyMin:
		v := writes[0].proposed
		for _, w := range writes[1:] {
			v = math.Min(v, w.proposed)
		}
		return v
	case PolicyAdd:
		v := pre
		for _, w := range writes {
			v += w.proposed - pre
		}
		return v
	default:
		return writes[len(writes)-1].proposed
	}
}

// reduceToggle combines every write to one toggle target. or/and/xor fold
// over all writers; xor flips the pre-tick value once per writer that
// proposed a change.
func reduceToggle(pre bool, writes []write) bool {
	switch writes[len(writes)-1].policy {
	case PolicyFirst:
		return writes[0].proposed != 0
	case PolicyOr:
		for _, w := range writes {
			if w.proposed != 0 {
				return true
			}
		}
		return false
	case PolicyAnd:
		for _, w := range writes {
			if w.proposed == 0 {
				return false
			}
		}
		return true
	case PolicyXor:
		v := pre
		for _, w := range writes {
			if (w.proposed != 0) != pre {
				v = !v
			}
		}
		return v
	default:
		return writes[len(writes)-1].proposed != 0
	}
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
