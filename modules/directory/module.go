// Package directory provides the room directory: identity, display name,
// PIN verification hash and capability kind.
package directory

import (
	"context"
	"log"

	"github.com/go-monolith/mono"

	"github.com/AnthonyVillarreal2001/chat-espe-backend/modules/storage"
)

// Module wires the directory service to the durable store.
type Module struct {
	store   *storage.Module
	service *Service
}

var _ mono.Module = (*Module)(nil)

// NewModule creates a new directory module.
func NewModule(store *storage.Module) *Module {
	return &Module{
		store: store,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "directory"
}

// Start builds the directory service over the storage repositories.
func (m *Module) Start(_ context.Context) error {
	m.service = NewService(m.store.Rooms())
	log.Println("[directory] Module started")
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[directory] Module stopped")
	return nil
}

// Service returns the directory service.
func (m *Module) Service() *Service {
	return m.service
}
