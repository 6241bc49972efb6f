package session

import (
	"context"
	"strings"

	"estate-backend/internal/middleware"
	"estate-backend/internal/pkg/response"
	"estate-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Handlers holds dependencies for the wallet session endpoints.
type Handlers struct {
	Rdb    *redis.Client
	Config middleware.SessionConfig
}

type ConnectRequest struct {
	AccountKey string `json:"account_key"`
}

// Connect POST /api/v1/session/connect starts a session for the account.
func (h *Handlers) Connect(c *fiber.Ctx) error {
	var req ConnectRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "account_key is required")
	}
	address := strings.TrimSpace(req.AccountKey)
	if address == "" {
		return response.BadRequest(c, "account_key is required")
	}
	if !validation.IsValidAccountKey(address) {
		return response.BadRequest(c, "Invalid account_key")
	}

	if old := middleware.GetSessionID(c); old != "" && h.Rdb != nil {
		_ = h.Rdb.Del(context.Background(), middleware.SessionRedisPrefix+old).Err()
	}
	sessionID := middleware.RegenerateSessionID(c)
	middleware.SetSessionAccount(c, address)
	c.Cookie(middleware.SessionCookie(h.Config, sessionID))

	log.Info().Str("trace_id", middleware.GetTraceID(c)).Msg("session connected")
	return response.Success(c, "Account connected", fiber.Map{"account_key": address}, nil)
}

// Me GET /api/v1/session/me
func (h *Handlers) Me(c *fiber.Ctx) error {
	address := middleware.GetAccount(c)
	if address == "" {
		return response.Unauthorized(c, "Account not connected")
	}
	return response.Success(c, "Connected", fiber.Map{"account_key": address}, nil)
}

// Disconnect DELETE /api/v1/session/disconnect drops the session and its cookie.
func (h *Handlers) Disconnect(c *fiber.Ctx) error {
	if sessionID := middleware.GetSessionID(c); sessionID != "" && h.Rdb != nil {
		if err := h.Rdb.Del(context.Background(), middleware.SessionRedisPrefix+sessionID).Err(); err != nil {
			log.Warn().Err(err).Msg("session delete failed")
		}
	}
	middleware.DestroySession(c)
	c.Cookie(middleware.SessionCookie(h.Config, ""))
	return response.Success(c, "Account disconnected", nil, nil)
}
