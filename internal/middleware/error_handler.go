package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"estate-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const errorLogSize = 50

// ErrorHandler returns the global error handler. It logs the error, pushes
// it onto the Redis error log read by /health/errors and answers with the
// standard error body.
func ErrorHandler(rdb *redis.Client) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}

		ev := log.Error()
		if code < fiber.StatusInternalServerError {
			ev = log.Warn()
		}
		ev.Err(err).Str("trace_id", GetTraceID(c)).Str("method", c.Method()).Str("path", c.Path()).Int("status", code).Msg("request failed")

		if rdb != nil {
			entry, _ := json.Marshal(map[string]interface{}{
				"time":       time.Now(),
				"method":     c.Method(),
				"path":       c.OriginalURL(),
				"statusCode": code,
				"message":    err.Error(),
				"trace_id":   GetTraceID(c),
			})
			ctx := context.Background()
			pipe := rdb.TxPipeline()
			pipe.LPush(ctx, KeyErrorLog, entry)
			pipe.LTrim(ctx, KeyErrorLog, 0, errorLogSize-1)
			if _, perr := pipe.Exec(ctx); perr != nil {
				log.Warn().Err(perr).Msg("error log push failed")
			}
		}

		return response.Error(c, message, code, nil)
	}
}
