package server

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// maxQueryLogLen is the maximum length for logged query strings before truncation.
const maxQueryLogLen = 200

// slowRequestThreshold is the duration above which requests are logged at WARN level.
const slowRequestThreshold = 100 * time.Millisecond

// LoggingMiddleware logs every request with timing. Slow requests (>100ms)
// are logged at WARN level; query strings are truncated to 200 characters.
func LoggingMiddleware(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start)

		attrs := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration_ms", duration.Milliseconds(),
			"request_id", c.Locals("requestid"),
		}
		if q := string(c.Request().URI().QueryString()); q != "" {
			attrs = append(attrs, "query", truncate(q, maxQueryLogLen))
		}

		if err != nil {
			attrs = append(attrs, "error", err.Error())
			logger.Error("request failed", attrs...)
		} else if duration > slowRequestThreshold {
			logger.Warn("slow request", attrs...)
		} else {
			logger.Debug("request completed", attrs...)
		}

		return err
	}
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
