// Package mask resolves named masks, zones and groups into concrete index
// sets. Resolution errors are returned to the caller and never swallowed:
// they mean the project definition is broken.
package mask

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"pixelcore/internal/project"
)

var (
	// ErrUnknownReference is returned when a mask, zone or group name does not exist.
	ErrUnknownReference = errors.New("unknown mask reference")
	// ErrCycleDetected is returned when a mask refers back to itself.
	ErrCycleDetected = errors.New("mask cycle detected")
	// ErrInvalidMask is returned for malformed nodes, such as an unknown operator.
	ErrInvalidMask = errors.New("invalid mask")
)

const (
	zonePrefix  = "zone:"
	groupPrefix = "group:"
	maskPrefix  = "mask:"
)

// Resolver evaluates references against one project and pixel count.
// Results are memoized for the lifetime of the resolver, which callers keep
// for at most one frame.
type Resolver struct {
	p         *project.Project
	n         int
	cache     map[string]Set
	resolving map[string]bool
	stack     []string
}

// NewResolver binds a resolver to a project and pixel count.
func NewResolver(p *project.Project, n int) *Resolver {
	return &Resolver{
		p:         p,
		n:         n,
		cache:     make(map[string]Set),
		resolving: make(map[string]bool),
	}
}

// Resolve is the one-shot form of Resolver.Resolve.
func Resolve(p *project.Project, name string, n int) (Set, error) {
	return NewResolver(p, n).Resolve(name)
}

// PixelCount returns the size of the index space.
func (r *Resolver) PixelCount() int { return r.n }

// Resolve evaluates a reference: a mask name, "mask:<name>", "zone:<name>"
// or "group:<name>".
func (r *Resolver) Resolve(ref string) (Set, error) {
	switch {
	case strings.HasPrefix(ref, zonePrefix):
		return r.Zone(strings.TrimPrefix(ref, zonePrefix))
	case strings.HasPrefix(ref, groupPrefix):
		return r.Group(strings.TrimPrefix(ref, groupPrefix))
	case strings.HasPrefix(ref, maskPrefix):
		return r.named(strings.TrimPrefix(ref, maskPrefix))
	}
	return r.named(ref)
}

// Target resolves a layer or operator target. TargetAll and an empty kind
// select every pixel.
func (r *Resolver) Target(kind project.TargetKind, ref string) (Set, error) {
	switch kind {
	case "", project.TargetAll:
		return All(r.n), nil
	case project.TargetZone:
		return r.Zone(ref)
	case project.TargetGroup:
		return r.Group(ref)
	case project.TargetMask:
		return r.Resolve(ref)
	}
	return Set{}, fmt.Errorf("%w: target kind %q", ErrInvalidMask, kind)
}

// Zone resolves a zone by name.
func (r *Resolver) Zone(name string) (Set, error) {
	for _, z := range r.p.Zones {
		if z.Name == name {
			return Range(z.Start, z.End, r.n), nil
		}
	}
	return Set{}, fmt.Errorf("%w: zone %q", ErrUnknownReference, name)
}

// Group resolves a group by name.
func (r *Resolver) Group(name string) (Set, error) {
	for _, g := range r.p.Groups {
		if g.Name == name {
			return FromIndices(g.Indices, r.n), nil
		}
	}
	return Set{}, fmt.Errorf("%w: group %q", ErrUnknownReference, name)
}

func (r *Resolver) named(name string) (Set, error) {
	if s, ok := r.cache[name]; ok {
		return s, nil
	}
	if r.resolving[name] {
		path := append(append([]string(nil), r.stack...), name)
		return Set{}, fmt.Errorf("%w: %s", ErrCycleDetected, strings.Join(path, " -> "))
	}
	m, ok := r.p.Masks[name]
	if !ok {
		return Set{}, fmt.Errorf("%w: mask %q", ErrUnknownReference, name)
	}
	r.resolving[name] = true
	r.stack = append(r.stack, name)
	s, err := r.eval(m)
	r.stack = r.stack[:len(r.stack)-1]
	delete(r.resolving, name)
	if err != nil {
		return Set{}, err
	}
	r.cache[name] = s
	return s, nil
}

// ResolveRef evaluates a reference that may hold an inline mask.
func (r *Resolver) ResolveRef(ref *project.MaskRef) (Set, error) {
	if ref == nil {
		return Set{}, fmt.Errorf("%w: missing operand", ErrInvalidMask)
	}
	if ref.Inline != nil {
		return r.eval(*ref.Inline)
	}
	return r.Resolve(ref.Name)
}

func (r *Resolver) eval(m project.Mask) (Set, error) {
	if m.IsLeaf() {
		s := FromIndices(m.Indices, r.n)
		if m.Zone != "" {
			z, err := r.Zone(m.Zone)
			if err != nil {
				return Set{}, err
			}
			s = s.Union(z)
		}
		if m.Group != "" {
			g, err := r.Group(m.Group)
			if err != nil {
				return Set{}, err
			}
			s = s.Union(g)
		}
		return s, nil
	}
	a, err := r.ResolveRef(m.A)
	if err != nil {
		return Set{}, err
	}
	b, err := r.ResolveRef(m.B)
	if err != nil {
		return Set{}, err
	}
	switch strings.ToLower(m.Op) {
	case "union", "or":
		return a.Union(b), nil
	case "intersect", "and":
		return a.Intersect(b), nil
	case "subtract", "difference", "diff":
		return a.Subtract(b), nil
	case "xor":
		return a.Xor(b), nil
	}
	return Set{}, fmt.Errorf("%w: operator %q", ErrInvalidMask, m.Op)
}

// ValidateAll resolves every named mask and returns the failures keyed by
// mask name. It is meant for authoring-time feedback.
func ValidateAll(p *project.Project, n int) map[string]error {
	names := make([]string, 0, len(p.Masks))
	for k := range p.Masks {
		names = append(names, k)
	}
	sort.Strings(names)
	failures := make(map[string]error)
	for _, name := range names {
		if _, err := NewResolver(p, n).Resolve(name); err != nil {
			failures[name] = err
		}
	}
	return failures
}
