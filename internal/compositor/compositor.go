// Package compositor drives the ordered layer stack: it renders each layer's
// behavior, applies the layer's operators and blends the result into a shared
// accumulator.
package compositor

import (
	"errors"
	"fmt"
	"hash/fnv"
	"runtime/debug"

	"pixelcore/internal/core"
	"pixelcore/internal/mask"
	"pixelcore/internal/params"
	"pixelcore/internal/project"
	"pixelcore/internal/signal"
)

// ErrBadBuffer is the fault cause when a behavior returns the wrong number
// of pixels.
var ErrBadBuffer = errors.New("render returned wrong pixel count")

// Frame carries everything the compositor needs beyond the project itself.
type Frame struct {
	T        float64
	DT       float64
	Steps    int
	Snapshot signal.Snapshot
	Audio    signal.Audio
	// Overrides holds rule-driven parameter values keyed by layer uid.
	Overrides map[string]map[string]float64
	// GlobalMask, when set, restricts every layer.
	GlobalMask string
}

type instance struct {
	behavior  string
	layoutKey string
	core.Instance
}

// Compositor owns per-layer runtime state for one project. It is not safe
// for concurrent use.
type Compositor struct {
	registry  *core.Registry
	seed      uint64
	instances map[string]*instance
	luts      map[float64]*lut
	faults    []Fault
}

// New returns a compositor that looks behaviors up in registry.
func New(registry *core.Registry, seed uint64) *Compositor {
	return &Compositor{
		registry:  registry,
		seed:      seed,
		instances: make(map[string]*instance),
		luts:      make(map[float64]*lut),
	}
}

// Faults returns the faults recorded by the last Render.
func (c *Compositor) Faults() []Fault { return c.faults }

// Instances reports how many layers currently hold runtime state.
func (c *Compositor) Instances() int { return len(c.instances) }

// Reset drops every runtime instance.
func (c *Compositor) Reset() {
	c.instances = make(map[string]*instance)
	c.faults = nil
}

// Render composites p for one frame. The returned error is only non-nil when
// the global mask cannot be resolved; per-layer problems are recorded as
// faults.
func (c *Compositor) Render(p *project.Project, layout *core.Layout, f Frame) (core.Buffer, error) {
	n := layout.Len()
	acc := core.NewBuffer(n)
	c.faults = nil
	c.prune(p)

	res := mask.NewResolver(p, n)
	global := mask.All(n)
	if f.GlobalMask != "" {
		s, err := res.Resolve(f.GlobalMask)
		if err != nil {
			return acc, fmt.Errorf("global mask: %w", err)
		}
		global = s
	}

	for _, layer := range p.Layers {
		if !layer.IsEnabled() {
			continue
		}
		c.renderLayer(acc, layer, layout, res, global, f)
	}
	return acc, nil
}

func (c *Compositor) renderLayer(acc core.Buffer, layer project.Layer, layout *core.Layout, res *mask.Resolver, global mask.Set, f Frame) {
	n := layout.Len()
	target, err := layerTarget(layer, res, global)
	if err != nil {
		c.fault(layer, err)
		return
	}

	buf, err := c.renderBehavior(layer, layout, f)
	if err != nil {
		c.fault(layer, err)
		buf = core.NewBuffer(n)
	}

	for _, op := range layer.Operators {
		if !op.IsEnabled() {
			continue
		}
		fn := c.channelFunc(op)
		if fn == nil {
			c.fault(layer, fmt.Errorf("operator %q: unsupported", op.Kind))
			continue
		}
		idx := target
		switch op.TargetKind {
		case "", project.TargetLayer:
		default:
			s, err := res.Target(op.TargetKind, op.TargetRef)
			if err != nil {
				c.fault(layer, fmt.Errorf("operator %s target: %w", op.Kind, err))
				continue
			}
			idx = s
		}
		applyOperator(buf, fn, idx.Indices())
	}

	Blend(acc, buf, target.Indices(), layer.BlendMode(), layer.OpacityValue())
}

func layerTarget(layer project.Layer, res *mask.Resolver, global mask.Set) (mask.Set, error) {
	target, err := res.Target(layer.TargetKind, layer.TargetRef)
	if err != nil {
		return mask.Set{}, fmt.Errorf("target: %w", err)
	}
	if layer.Mask != "" {
		m, err := res.Resolve(layer.Mask)
		if err != nil {
			return mask.Set{}, fmt.Errorf("mask: %w", err)
		}
		target = target.Intersect(m)
	}
	return target.Intersect(global), nil
}

// renderBehavior resolves params, advances the layer's instance and renders
// it. Panics inside behavior code are returned as errors.
func (c *Compositor) renderBehavior(layer project.Layer, layout *core.Layout, f Frame) (buf core.Buffer, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r, stack: debug.Stack()}
		}
	}()

	b, err := c.registry.Lookup(layer.Behavior)
	if err != nil {
		return nil, err
	}
	schema := b.Schema()
	if schema == nil {
		schema = core.NewSchema()
	}
	values := params.Resolve(layer, schema, f.T, f.Snapshot, f.Overrides[layer.UID])

	inst := c.instance(layer.UID, b, layout)
	if t, ok := inst.Instance.(core.Ticker); ok {
		for i := 0; i < f.Steps; i++ {
			t.Tick(values, f.DT, f.T, f.Audio)
		}
	}

	n := layout.Len()
	buf, err = inst.Render(n, values, f.T, layout)
	if err != nil {
		return nil, err
	}
	if len(buf) != n {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrBadBuffer, len(buf), n)
	}
	return buf.Clone(), nil
}

// instance returns the runtime state for uid, creating it when missing or
// when the behavior or layout changed.
func (c *Compositor) instance(uid string, b core.Behavior, layout *core.Layout) *instance {
	key := layout.Key()
	if inst, ok := c.instances[uid]; ok && inst.behavior == b.Name() && inst.layoutKey == key {
		return inst
	}
	inst := &instance{
		behavior:  b.Name(),
		layoutKey: key,
		Instance:  b.NewInstance(layout, c.layerSeed(uid)),
	}
	c.instances[uid] = inst
	core.Logger().Debug("layer instance created", "uid", uid, "behavior", b.Name(), "layout", key)
	return inst
}

func (c *Compositor) layerSeed(uid string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(uid))
	return h.Sum64() ^ c.seed
}

// prune drops state for uids that left the project.
func (c *Compositor) prune(p *project.Project) {
	if len(c.instances) == 0 {
		return
	}
	live := make(map[string]struct{}, len(p.Layers))
	for _, l := range p.Layers {
		live[l.UID] = struct{}{}
	}
	for uid := range c.instances {
		if _, ok := live[uid]; !ok {
			delete(c.instances, uid)
			core.Logger().Debug("layer instance pruned", "uid", uid)
		}
	}
}

func (c *Compositor) fault(layer project.Layer, err error) {
	f := Fault{UID: layer.UID, Behavior: layer.Behavior, Err: err}
	c.faults = append(c.faults, f)
	var pe *panicError
	if errors.As(err, &pe) {
		core.Logger().Warn("layer fault", "uid", layer.UID, "behavior", layer.Behavior, "err", err, "stack", string(pe.stack))
		return
	}
	core.Logger().Warn("layer fault", "uid", layer.UID, "behavior", layer.Behavior, "err", err)
}
