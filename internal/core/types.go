package core

import (
	"errors"
	"fmt"
	"sort"

	"pixelcore/internal/signal"
)

// ErrUnknownBehavior is returned when a layer names a behavior that is not
// in the capability table.
var ErrUnknownBehavior = errors.New("unknown behavior")

// Size describes logical grid dimensions.
type Size struct {
	W int
	H int
}

// Behavior is a render unit: a named effect with a parameter schema that can
// spawn per-layer instances.
type Behavior interface {
	Name() string
	Schema() *Schema
	NewInstance(layout *Layout, seed uint64) Instance
}

// Instance is the runtime state of one layer's behavior. Only the behavior
// that created it knows its concrete type.
type Instance interface {
	// Render returns exactly n pixels for time t. It must not block.
	Render(n int, p Values, t float64, layout *Layout) (Buffer, error)
}

// Ticker is implemented by stateful instances that advance in fixed steps
// before each render.
type Ticker interface {
	Tick(p Values, dt, t float64, audio signal.Audio)
}

// Registry is the capability table of behaviors available to a compositor.
// It is built once at startup and passed by reference.
type Registry struct {
	behaviors map[string]Behavior
}

// NewRegistry builds a registry from the given behaviors.
func NewRegistry(behaviors ...Behavior) (*Registry, error) {
	r := &Registry{behaviors: make(map[string]Behavior, len(behaviors))}
	for _, b := range behaviors {
		if err := r.Register(b); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a behavior under its name.
func (r *Registry) Register(b Behavior) error {
	if b == nil || b.Name() == "" {
		return errors.New("behavior must be non-nil and named")
	}
	if _, dup := r.behaviors[b.Name()]; dup {
		return fmt.Errorf("behavior %q registered twice", b.Name())
	}
	r.behaviors[b.Name()] = b
	return nil
}

// Lookup returns the behavior registered under name.
func (r *Registry) Lookup(name string) (Behavior, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBehavior, name)
	}
	b, ok := r.behaviors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBehavior, name)
	}
	return b, nil
}

// Names lists the registered behaviors in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.behaviors))
	for k := range r.behaviors {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
