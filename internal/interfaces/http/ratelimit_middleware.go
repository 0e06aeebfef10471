package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Auth-api/internal/domain"
	"github.com/jhoicas/Auth-api/internal/infrastructure/ratelimit"
)

// RateLimit limita por IP de cliente con el limitador dado. Al rechazar responde 429 con Retry-After.
func RateLimit(l *ratelimit.Limiter, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d := l.Check(c.IP())
		c.Set("X-RateLimit-Limit", strconv.Itoa(l.Max()))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			return &domain.RateLimitError{RetryAfter: d.RetryAfter, Message: message}
		}
		return c.Next()
	}
}
