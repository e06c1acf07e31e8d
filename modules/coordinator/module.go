// Package coordinator runs the join protocol that ties the room directory,
// presence lock, session registry and message relay together.
package coordinator

import (
	"context"
	"fmt"
	"log"

	"github.com/go-monolith/mono"

	"github.com/AnthonyVillarreal2001/chat-espe-backend/modules/directory"
	"github.com/AnthonyVillarreal2001/chat-espe-backend/modules/presence"
	"github.com/AnthonyVillarreal2001/chat-espe-backend/modules/registry"
	"github.com/AnthonyVillarreal2001/chat-espe-backend/modules/relay"
	"github.com/AnthonyVillarreal2001/chat-espe-backend/modules/storage"
)

// Module wires the coordinator service to its collaborators.
type Module struct {
	directory   *directory.Module
	presence    *presence.Module
	registry    *registry.Module
	storage     *storage.Module
	relay       *relay.Module
	broadcaster Broadcaster
	service     *Service
}

var _ mono.Module = (*Module)(nil)

// NewModule creates a new coordinator module.
func NewModule(dir *directory.Module, pres *presence.Module, reg *registry.Module, store *storage.Module, rel *relay.Module) *Module {
	return &Module{
		directory: dir,
		presence:  pres,
		registry:  reg,
		storage:   store,
		relay:     rel,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "coordinator"
}

// SetBroadcaster injects the fan-out sink, wired in before startup.
func (m *Module) SetBroadcaster(b Broadcaster) {
	m.broadcaster = b
}

// Start builds the coordinator service.
func (m *Module) Start(_ context.Context) error {
	if m.broadcaster == nil {
		return fmt.Errorf("broadcaster not set")
	}
	m.service = NewService(
		m.directory.Service(),
		m.presence.Lock(),
		m.registry.Sessions(),
		m.storage.Sessions(),
		m.relay.Service(),
		m.broadcaster,
	)
	log.Println("[coordinator] Module started")
	return nil
}

// Stop stops the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[coordinator] Module stopped")
	return nil
}

// Service returns the coordinator service.
func (m *Module) Service() *Service {
	return m.service
}
