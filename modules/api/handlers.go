package api

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/AnthonyVillarreal2001/chat-espe-backend/domain/chat"
	"github.com/AnthonyVillarreal2001/chat-espe-backend/modules/coordinator"
	"github.com/AnthonyVillarreal2001/chat-espe-backend/modules/registry"
	"github.com/AnthonyVillarreal2001/chat-espe-backend/modules/relay"
	"github.com/AnthonyVillarreal2001/chat-espe-backend/modules/storage"
)

// Handlers contains the HTTP and WebSocket handlers.
type Handlers struct {
	coordinator *coordinator.Service
	relay       *relay.Service
	directory   DirectoryService
	conns       *ConnTable
	auth        *AdminAuth
	logger      *slog.Logger
}

// DirectoryService is the room-creation surface the admin API needs.
type DirectoryService interface {
	CreateRoom(name, pin, kind string) (*chat.Room, error)
}

// NewHandlers creates the handler set.
func NewHandlers(coord *coordinator.Service, rel *relay.Service, dir DirectoryService, conns *ConnTable, auth *AdminAuth) *Handlers {
	return &Handlers{
		coordinator: coord,
		relay:       rel,
		directory:   dir,
		conns:       conns,
		auth:        auth,
		logger:      slog.Default(),
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createRoomRequest struct {
	Name string `json:"name"`
	Pin  string `json:"pin"`
	Type string `json:"type"`
}

// AdminLogin handles POST /api/admin/login.
func (h *Handlers) AdminLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	token, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
	})
}

// CreateRoom handles POST /api/admin/rooms.
func (h *Handlers) CreateRoom(c *fiber.Ctx) error {
	var req createRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	room, err := h.directory.CreateRoom(req.Name, req.Pin, req.Type)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "could not allocate a room id, try again",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"room_id": room.ID,
	})
}

// HealthCheck handles GET /health.
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":      "healthy",
		"service":     "chat-espe-backend",
		"connections": h.conns.Len(),
	})
}

// AdminRequired validates the bearer token on admin routes.
func AdminRequired(auth *AdminAuth) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authorization required",
			})
		}

		token := strings.TrimPrefix(header, "Bearer ")
		claims, err := auth.Validate(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}

		c.Locals("admin", claims.Username)
		return c.Next()
	}
}

// joinErrorMessage maps join failures to the human-readable error event.
func joinErrorMessage(err error) string {
	switch {
	case errors.Is(err, coordinator.ErrInvalidPin):
		return "incorrect PIN"
	case errors.Is(err, coordinator.ErrOriginAlreadyJoined):
		return "already connected to this room"
	case errors.Is(err, registry.ErrAlreadyJoined):
		return "connection already joined a room"
	case errors.Is(err, chat.ErrNicknameEmpty),
		errors.Is(err, chat.ErrNicknameTooLong),
		errors.Is(err, chat.ErrNicknameInvalid):
		return err.Error()
	default:
		return "join failed, try again later"
	}
}

// relayErrorMessage maps message failures to the human-readable error event.
func relayErrorMessage(err error) string {
	switch {
	case errors.Is(err, relay.ErrCapabilityDenied):
		return "room does not allow files"
	case errors.Is(err, relay.ErrPayloadTooLarge):
		return "file exceeds the 10MB limit"
	default:
		return "message could not be delivered"
	}
}
