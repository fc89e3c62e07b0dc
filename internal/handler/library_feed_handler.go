package handler

import (
	"research-library-be/internal/pkg/logger"
	"research-library-be/internal/pkg/serverutils"
	internalWS "research-library-be/internal/websocket"
	"research-library-be/pkg/library"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type LibraryFeedHandler struct {
	hub       *internalWS.Hub
	jwtSecret string
	logger    logger.ILogger
}

func NewLibraryFeedHandler(hub *internalWS.Hub, jwtSecret string, log logger.ILogger) *LibraryFeedHandler {
	return &LibraryFeedHandler{
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

// resolveScope authenticates the handshake. Browsers cannot set headers on
// a websocket, so the token and guest id may also come as query params.
func (h *LibraryFeedHandler) resolveScope(c *fiber.Ctx) (library.Scope, error) {
	tokenStr, present := c.Query("token"), false
	if tokenStr == "" {
		tokenStr, present = serverutils.BearerToken(c)
	}
	if tokenStr != "" || present {
		userId, err := serverutils.ParseUserToken(h.jwtSecret, tokenStr)
		if err != nil {
			return library.Scope{}, err
		}
		return library.Persistent(userId), nil
	}

	raw := c.Query("guest_id")
	if raw == "" {
		raw = c.Get(serverutils.GuestHeader)
	}
	guestId, err := uuid.Parse(raw)
	if err != nil || guestId == uuid.Nil {
		return library.Scope{}, serverutils.ErrMissingToken
	}
	return library.Local(guestId), nil
}

// ServeWs streams the caller's library changes over a websocket.
func (h *LibraryFeedHandler) ServeWs(c *fiber.Ctx) error {
	scope, err := h.resolveScope(c)
	if err != nil {
		h.logger.Warn("LibraryFeed", "Rejected websocket handshake", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Missing or invalid token or guest id"))
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("LibraryFeed", "Starting WebSocket session", map[string]interface{}{"scope": scope.String()})
			internalWS.ServeWs(h.hub, conn, scope.String())
			h.logger.Info("LibraryFeed", "WebSocket session ended", map[string]interface{}{"scope": scope.String()})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}
