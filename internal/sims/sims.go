// Package sims assembles the default behavior table.
package sims

import (
	"pixelcore/internal/core"
	"pixelcore/internal/sims/briansbrain"
	"pixelcore/internal/sims/ecology"
	"pixelcore/internal/sims/elementary"
	"pixelcore/internal/sims/rainbow"
	"pixelcore/internal/sims/solid"
	"pixelcore/internal/sims/sparkle"
	"pixelcore/internal/sims/vumeter"
	"pixelcore/pkg/sims/life"
)

// Builtin lists every bundled behavior.
func Builtin() []core.Behavior {
	return []core.Behavior{
		solid.Behavior{},
		rainbow.Behavior{},
		sparkle.Behavior{},
		vumeter.Behavior{},
		life.Behavior{},
		briansbrain.Behavior{},
		elementary.Behavior{},
		ecology.Behavior{},
	}
}

// Registry returns a fresh capability table holding the bundled behaviors.
// Hosts may Register additional behaviors on the result.
func Registry() (*core.Registry, error) {
	return core.NewRegistry(Builtin()...)
}
