// Package app hosts an engine in a preview window.
package app

import (
	"errors"

	"pixelcore/internal/engine"
	"pixelcore/internal/project"
)

// ErrHeadless is returned by Run in builds without the ebiten tag.
var ErrHeadless = errors.New("app: preview requires building with the 'ebiten' tag")

// Options configures a preview window.
type Options struct {
	Engine *engine.Engine
	// Project is the project Engine was loaded with. It seeds the mask overlay.
	Project *project.Project
	Title   string
	Scale   int
	TPS     int
	// Reload delivers edited projects. Nil disables live reload.
	Reload <-chan Reload
}

// Reload is one result of watching the project file.
type Reload struct {
	Project *project.Project
	Err     error
}

func (o *Options) defaults() {
	if o.Scale <= 0 {
		o.Scale = 8
	}
	if o.TPS <= 0 {
		o.TPS = 60
	}
	if o.Title == "" {
		o.Title = "pixelcore"
	}
}
