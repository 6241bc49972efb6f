package middleware

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// SessionConfig holds cookie flags for the Redis-backed session.
type SessionConfig struct {
	AllowCrossSiteDev bool
	IsProduction      bool
}

const (
	SessionCookieName  = "estate.sid"
	SessionRedisPrefix = "session:"
	sessionMaxAge      = 24 * time.Hour

	accountKeyField = "account_key"
	sessionDataKey  = "session_data"
	sessionIDKey    = "session_id"
)

// Session loads the session for the estate.sid cookie into Locals and saves
// it back after the handler chain when a session id is present.
func Session(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(SessionCookieName)

		var data map[string]interface{}
		if sessionID != "" && rdb != nil {
			b, err := rdb.Get(c.UserContext(), SessionRedisPrefix+sessionID).Bytes()
			if err == nil {
				_ = json.Unmarshal(b, &data)
			} else if err != redis.Nil {
				log.Warn().Err(err).Msg("session load failed")
			}
		}
		if data == nil {
			data = make(map[string]interface{})
		}

		c.Locals(sessionDataKey, data)
		c.Locals(sessionIDKey, sessionID)
		c.Locals(accountLocal, accountFromData(data))

		if err := c.Next(); err != nil {
			return err
		}

		sid, _ := c.Locals(sessionIDKey).(string)
		if sid == "" || rdb == nil {
			return nil
		}
		updated, _ := c.Locals(sessionDataKey).(map[string]interface{})
		if len(updated) == 0 {
			return nil
		}
		b, _ := json.Marshal(updated)
		if err := rdb.Set(c.UserContext(), SessionRedisPrefix+sid, b, sessionMaxAge).Err(); err != nil {
			log.Warn().Err(err).Str("session_id", sid).Msg("session save failed")
		}
		return nil
	}
}

func accountFromData(data map[string]interface{}) string {
	s, _ := data[accountKeyField].(string)
	return s
}

// GetSessionID returns the current session id ("" when the request has none).
func GetSessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(sessionIDKey).(string)
	return sid
}

// SetSessionAccount stores the connected account address in the session.
func SetSessionAccount(c *fiber.Ctx, address string) {
	data, _ := c.Locals(sessionDataKey).(map[string]interface{})
	if data == nil {
		data = make(map[string]interface{})
	}
	data[accountKeyField] = address
	c.Locals(sessionDataKey, data)
	c.Locals(accountLocal, address)
}

// RegenerateSessionID assigns a fresh session id; the handler sets the cookie.
func RegenerateSessionID(c *fiber.Ctx) string {
	newID := uuid.New().String()
	c.Locals(sessionIDKey, newID)
	return newID
}

// DestroySession clears the session from Locals. The caller deletes the Redis
// key and clears the cookie.
func DestroySession(c *fiber.Ctx) {
	c.Locals(sessionDataKey, make(map[string]interface{}))
	c.Locals(sessionIDKey, "")
	c.Locals(accountLocal, "")
}

// SessionCookie returns the estate.sid cookie carrying value.
func SessionCookie(cfg SessionConfig, value string) *fiber.Cookie {
	sameSite := fiber.CookieSameSiteLaxMode
	if cfg.AllowCrossSiteDev {
		sameSite = fiber.CookieSameSiteNoneMode
	}
	maxAge := int(sessionMaxAge.Seconds())
	if value == "" {
		maxAge = -1
	}
	return &fiber.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HTTPOnly: true,
		Secure:   cfg.IsProduction || cfg.AllowCrossSiteDev,
		SameSite: sameSite,
	}
}
