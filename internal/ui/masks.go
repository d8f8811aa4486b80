package ui

import (
	"slices"
	"sort"

	"pixelcore/internal/mask"
	"pixelcore/internal/project"
)

// MaskCycler steps through every mask, zone and group a project defines so
// the overlay can highlight one at a time.
type MaskCycler struct {
	names []string
	pos   int

	p   *project.Project
	n   int
	set mask.Set
	err error
	ok  bool
}

// NewMaskCycler returns a cycler with nothing selected.
func NewMaskCycler() *MaskCycler { return &MaskCycler{pos: -1} }

// SetProject rebuilds the name list. The current selection survives when
// the new project still defines it.
func (c *MaskCycler) SetProject(p *project.Project, n int) {
	selected := c.Selected()
	names := make([]string, 0, len(p.Masks)+len(p.Zones)+len(p.Groups))
	for k := range p.Masks {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, z := range p.Zones {
		names = append(names, "zone:"+z.Name)
	}
	for _, g := range p.Groups {
		names = append(names, "group:"+g.Name)
	}
	c.names = names
	c.pos = slices.Index(names, selected)
	if selected == "" {
		c.pos = -1
	}
	c.p, c.n = p, n
	c.ok = false
}

// Next advances the selection. After the last name it wraps to "none".
func (c *MaskCycler) Next() string {
	c.pos++
	if c.pos >= len(c.names) {
		c.pos = -1
	}
	c.ok = false
	return c.Selected()
}

// Selected returns the highlighted reference, or "" when none is.
func (c *MaskCycler) Selected() string {
	if c.pos < 0 || c.pos >= len(c.names) {
		return ""
	}
	return c.names[c.pos]
}

// Set resolves the selection. It returns an empty set when nothing is
// selected.
func (c *MaskCycler) Set() (mask.Set, error) {
	ref := c.Selected()
	if ref == "" || c.p == nil {
		return mask.Set{}, nil
	}
	if !c.ok {
		c.set, c.err = mask.Resolve(c.p, ref, c.n)
		c.ok = true
	}
	return c.set, c.err
}
