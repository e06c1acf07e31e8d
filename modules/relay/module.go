// Package relay validates inbound messages against room capability and size
// limits, persists them and fans them out to the room.
package relay

import (
	"context"
	"fmt"
	"log"

	"github.com/go-monolith/mono"

	"github.com/AnthonyVillarreal2001/chat-espe-backend/modules/directory"
	"github.com/AnthonyVillarreal2001/chat-espe-backend/modules/registry"
	"github.com/AnthonyVillarreal2001/chat-espe-backend/modules/storage"
)

// Module wires the relay service to its collaborators.
type Module struct {
	store       *storage.Module
	registry    *registry.Module
	directory   *directory.Module
	broadcaster Broadcaster
	service     *Service
}

var _ mono.Module = (*Module)(nil)

// NewModule creates a new relay module.
func NewModule(store *storage.Module, reg *registry.Module, dir *directory.Module) *Module {
	return &Module{
		store:     store,
		registry:  reg,
		directory: dir,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "relay"
}

// SetBroadcaster injects the fan-out sink. The connection table lives in the
// API module and is wired in before startup.
func (m *Module) SetBroadcaster(b Broadcaster) {
	m.broadcaster = b
}

// Start builds the relay service.
func (m *Module) Start(_ context.Context) error {
	if m.broadcaster == nil {
		return fmt.Errorf("broadcaster not set")
	}
	m.service = NewService(
		m.registry.Sessions(),
		m.directory.Service(),
		m.store.Messages(),
		m.broadcaster,
	)
	log.Println("[relay] Module started")
	return nil
}

// Stop stops the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[relay] Module stopped")
	return nil
}

// Service returns the relay service.
func (m *Module) Service() *Service {
	return m.service
}
