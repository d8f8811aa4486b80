// Package engine is the per-frame driver: it advances the fixed-tick clock,
// builds the signal snapshot, evaluates rules, composites the layer stack
// and post-processes the result.
package engine

import (
	"errors"
	"fmt"
	"maps"
	"runtime/debug"
	"sort"
	"time"

	"pixelcore/internal/compositor"
	"pixelcore/internal/core"
	"pixelcore/internal/mask"
	"pixelcore/internal/metrics"
	"pixelcore/internal/post"
	"pixelcore/internal/project"
	"pixelcore/internal/rules"
	"pixelcore/internal/signal"
)

// Engine renders one project. Calls must be serialized by the host; two
// engines never share state.
type Engine struct {
	cfg      Config
	registry *core.Registry

	clock *core.FixedClock
	rules *rules.Engine
	vars  *rules.Variables
	comp  *compositor.Compositor
	post  postStage

	project *project.Project
	layout  *core.Layout
	audio   signal.Audio

	// overrides persists rule-driven parameter writes, keyed by layer uid.
	overrides map[string]map[string]float64

	frame      int64
	lastT      float64
	hasLast    bool
	faults     []compositor.Fault
	ruleErrors map[string]error
	frameErr   error
}

// postStage is the frame-wide effect pass run after compositing.
type postStage interface {
	Apply(buf core.Buffer, layout *core.Layout, s post.Settings) core.Buffer
	Reset()
}

// New builds an engine rendering an empty one-pixel strip until SetProject
// is called.
func New(cfg Config, registry *core.Registry) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if registry == nil {
		return nil, errors.New("engine: nil behavior registry")
	}
	clock := core.NewFixedClock(cfg.TickHz)
	clock.SetMaxDelta(cfg.MaxFrameDelta)
	empty := &project.Project{Layout: project.Layout{Kind: "strip", Count: 1}}
	empty.Normalize()
	return &Engine{
		cfg:        cfg,
		registry:   registry,
		clock:      clock,
		rules:      rules.New(),
		vars:       rules.NewVariables(),
		comp:       compositor.New(registry, uint64(cfg.Seed)),
		post:       post.New(),
		project:    empty,
		layout:     empty.Layout.Build(),
		overrides:  map[string]map[string]float64{},
		ruleErrors: map[string]error{},
	}, nil
}

// SetProject validates p and swaps it in. The engine keeps its own copy.
// Mask errors are returned and leave the current project in place. Runtime
// state of layers whose uid survives the swap is kept.
func (e *Engine) SetProject(p *project.Project) error {
	if p == nil {
		return fmt.Errorf("%w: nil project", project.ErrInvalidProject)
	}
	next := p.Clone()
	next.Normalize()
	if err := next.Validate(); err != nil {
		return err
	}
	layout := next.Layout.Build()
	if err := checkMasks(next, layout.Len(), e.globalMask(next)); err != nil {
		return err
	}

	e.project = next
	e.layout = layout
	e.vars.Seed(next)
	for uid := range e.overrides {
		if _, ok := next.Layer(uid); !ok {
			delete(e.overrides, uid)
		}
	}
	core.Logger().Debug("project set", "layers", len(next.Layers), "pixels", layout.Len(), "layout", layout.Key())
	return nil
}

// checkMasks resolves every named mask, the global mask and each layer and
// operator target so authoring mistakes surface before the first frame.
func checkMasks(p *project.Project, n int, global string) error {
	failures := map[string]error{}
	for name, err := range mask.ValidateAll(p, n) {
		failures["mask "+name] = err
	}
	res := mask.NewResolver(p, n)
	if global != "" {
		if _, err := res.Resolve(global); err != nil {
			failures["global mask"] = err
		}
	}
	for _, l := range p.Layers {
		if _, err := res.Target(l.TargetKind, l.TargetRef); err != nil {
			failures["layer "+l.UID+" target"] = err
		}
		if l.Mask != "" {
			if _, err := res.Resolve(l.Mask); err != nil {
				failures["layer "+l.UID+" mask"] = err
			}
		}
		for i, op := range l.Operators {
			switch op.TargetKind {
			case "", project.TargetLayer:
				continue
			}
			if _, err := res.Target(op.TargetKind, op.TargetRef); err != nil {
				failures[fmt.Sprintf("layer %s operator %d target", l.UID, i)] = err
			}
		}
	}
	if len(failures) == 0 {
		return nil
	}
	names := make([]string, 0, len(failures))
	for k := range failures {
		names = append(names, k)
	}
	sort.Strings(names)
	return fmt.Errorf("%s: %w", names[0], failures[names[0]])
}

func (e *Engine) globalMask(p *project.Project) string {
	if e.cfg.GlobalMask != "" {
		return e.cfg.GlobalMask
	}
	return p.TargetMask
}

// SetAudio replaces the audio values read by subsequent frames.
func (e *Engine) SetAudio(a signal.Audio) {
	e.audio = maps.Clone(a)
}

// Render produces the frame for timestamp t (seconds). It always returns
// exactly Layout().Len() pixels; a frame that fails as a whole is black.
func (e *Engine) Render(t float64) (out core.Buffer) {
	n := e.layout.Len()
	defer func() {
		if r := recover(); r != nil {
			e.frameErr = fmt.Errorf("frame panic: %v", r)
			core.Logger().Error("frame failed", "t", t, "err", e.frameErr, "stack", string(debug.Stack()))
			metrics.FrameFailure()
			out = core.NewBuffer(n)
		}
	}()
	start := time.Now()
	e.frameErr = nil

	steps := e.clock.Advance(t)
	dt := 0.0
	if e.hasLast && t >= e.lastT {
		dt = t - e.lastT
	}
	e.lastT, e.hasLast = t, true

	snap := signal.Build(signal.Frame{
		T:       t,
		DT:      dt,
		SimTime: e.clock.SimTime(),
		Index:   e.frame,
		Steps:   steps,
	}, e.audio, e.vars.Number, e.vars.Toggle)

	e.applyRules(snap)

	buf, err := e.comp.Render(e.project, e.layout, compositor.Frame{
		T:          t,
		DT:         e.clock.Step(),
		Steps:      steps,
		Snapshot:   snap,
		Audio:      e.audio,
		Overrides:  e.overrides,
		GlobalMask: e.globalMask(e.project),
	})
	if err != nil {
		e.frameErr = err
		core.Logger().Warn("composite failed", "t", t, "err", err)
	}
	e.faults = e.comp.Faults()
	for _, f := range e.faults {
		metrics.LayerFault(e.faultLabel(f.Behavior))
	}

	out = e.post.Apply(buf, e.layout, post.FromProject(e.project.Post))
	e.frame++
	core.Logger().Debug("frame", "t", t, "steps", steps, "faults", len(e.faults))
	metrics.Frame(steps, time.Since(start).Seconds())
	return out
}

// faultLabel bounds the metric label to registered behavior names.
func (e *Engine) faultLabel(behavior string) string {
	if _, err := e.registry.Lookup(behavior); err != nil {
		return "unknown"
	}
	return behavior
}

func (e *Engine) applyRules(snap signal.Snapshot) {
	outcome := e.rules.Evaluate(e.project, snap, e.vars)
	outcome.Apply(e.vars)
	for uid, ps := range outcome.Params {
		if e.overrides[uid] == nil {
			e.overrides[uid] = map[string]float64{}
		}
		for k, v := range ps {
			e.overrides[uid][k] = v
		}
	}
	e.ruleErrors = outcome.Errors
	for key, err := range outcome.Errors {
		core.Logger().Warn("rule skipped", "rule", key, "err", err)
	}
	metrics.RuleErrors(len(outcome.Errors))
}

// Layout returns the current topology.
func (e *Engine) Layout() *core.Layout { return e.layout }

// LayerCount returns the number of layers in the current project.
func (e *Engine) LayerCount() int { return len(e.project.Layers) }

// Frame returns the number of frames rendered since creation or Reset.
func (e *Engine) Frame() int64 { return e.frame }

// Variables returns a copy of the variable store.
func (e *Engine) Variables() *rules.Variables { return e.vars.Clone() }

// Faults returns the layer faults of the last frame.
func (e *Engine) Faults() []compositor.Fault {
	out := make([]compositor.Fault, len(e.faults))
	copy(out, e.faults)
	return out
}

// RuleErrors returns the rule evaluation errors of the last frame keyed by
// rule key.
func (e *Engine) RuleErrors() map[string]error { return maps.Clone(e.ruleErrors) }

// Err returns the frame-level error of the last frame, if any.
func (e *Engine) Err() error { return e.frameErr }

// EffectiveProject returns a copy of the current project with rule-driven
// parameter writes folded into each layer's params.
func (e *Engine) EffectiveProject() *project.Project {
	p := e.project.Clone()
	for i := range p.Layers {
		l := &p.Layers[i]
		ov := e.overrides[l.UID]
		if len(ov) == 0 {
			continue
		}
		if l.Params == nil {
			l.Params = map[string]any{}
		}
		for k, v := range ov {
			l.Params[k] = v
		}
	}
	return p
}

// Reset returns the engine to its just-loaded state: clock, trigger memory,
// variables, overrides, runtime instances and trail history.
func (e *Engine) Reset() {
	e.clock.Reset()
	e.rules.Reset()
	e.vars.Reset(e.project)
	e.comp.Reset()
	e.post.Reset()
	e.overrides = map[string]map[string]float64{}
	e.frame = 0
	e.hasLast = false
	e.faults = nil
	e.ruleErrors = map[string]error{}
	e.frameErr = nil
}
