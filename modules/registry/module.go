// Package registry provides the in-process session registry that drives the
// authoritative room roster.
package registry

import (
	"context"
	"log"

	"github.com/go-monolith/mono"
)

// Module exposes the session registry to the rest of the application.
type Module struct {
	sessions *Registry
}

var _ mono.Module = (*Module)(nil)

// NewModule creates a new registry module.
func NewModule() *Module {
	return &Module{
		sessions: New(),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "registry"
}

// Start starts the module.
func (m *Module) Start(_ context.Context) error {
	log.Println("[registry] Module started")
	return nil
}

// Stop stops the module.
func (m *Module) Stop(_ context.Context) error {
	log.Printf("[registry] Module stopped (%d live sessions)", m.sessions.Len())
	return nil
}

// Sessions returns the session registry.
func (m *Module) Sessions() *Registry {
	return m.sessions
}
