package project

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ErrInvalidProject wraps every structural validation failure.
var ErrInvalidProject = errors.New("invalid project")

// uidNamespace seeds deterministic uids for layers saved without one, so
// reloading the same file yields the same runtime-state keys.
var uidNamespace = uuid.MustParse("6f1c9a52-3d0e-4b8e-9c41-7a2d5e0b9f13")

var projectValidate *validator.Validate

func init() {
	projectValidate = validator.New()
}

// Load reads and parses a project file. YAML and JSON documents are both accepted.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes, normalizes and validates a project document.
func Parse(data []byte) (*Project, error) {
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProject, err)
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Normalize fills in defaults that do not change meaning: missing layer uids
// and empty maps.
func (p *Project) Normalize() {
	if p.Layout.Kind == "" {
		p.Layout.Kind = "strip"
	}
	if p.Masks == nil {
		p.Masks = map[string]Mask{}
	}
	if p.Variables.Number == nil {
		p.Variables.Number = map[string]float64{}
	}
	if p.Variables.Toggle == nil {
		p.Variables.Toggle = map[string]bool{}
	}
	for i := range p.Layers {
		l := &p.Layers[i]
		if l.UID == "" {
			l.UID = uuid.NewSHA1(uidNamespace, []byte(strconv.Itoa(i)+"/"+l.Behavior)).String()
		}
		if l.Params == nil {
			l.Params = map[string]any{}
		}
	}
}

// Validate checks struct constraints plus cross-references that the tags
// cannot express. Mask graphs are deliberately not resolved here.
func (p *Project) Validate() error {
	if err := projectValidate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProject, err)
	}
	if p.Layout.Kind == "grid" && (p.Layout.Width <= 0 || p.Layout.Height <= 0) {
		return fmt.Errorf("%w: grid layout needs positive width and height", ErrInvalidProject)
	}
	if p.Layout.Kind != "grid" && p.Layout.Count <= 0 {
		return fmt.Errorf("%w: strip layout needs a positive count", ErrInvalidProject)
	}
	uids := make(map[string]struct{}, len(p.Layers))
	for _, l := range p.Layers {
		if _, dup := uids[l.UID]; dup {
			return fmt.Errorf("%w: duplicate layer uid %q", ErrInvalidProject, l.UID)
		}
		uids[l.UID] = struct{}{}
		ids := make(map[string]struct{}, len(l.Rules))
		for _, r := range l.Rules {
			if _, dup := ids[r.ID]; dup {
				return fmt.Errorf("%w: duplicate rule id %q in layer %q", ErrInvalidProject, r.ID, l.UID)
			}
			ids[r.ID] = struct{}{}
		}
	}
	ruleIDs := make(map[string]struct{}, len(p.Rules))
	for _, r := range p.Rules {
		if _, dup := ruleIDs[r.ID]; dup {
			return fmt.Errorf("%w: duplicate rule id %q", ErrInvalidProject, r.ID)
		}
		ruleIDs[r.ID] = struct{}{}
	}
	return nil
}

// PixelCount returns the number of pixels the layout describes.
func (p *Project) PixelCount() int {
	return p.Layout.Build().Len()
}

// Layer returns the layer with the given uid.
func (p *Project) Layer(uid string) (Layer, bool) {
	for _, l := range p.Layers {
		if l.UID == uid {
			return l, true
		}
	}
	return Layer{}, false
}

// Marshal encodes the project back into YAML.
func (p *Project) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}
