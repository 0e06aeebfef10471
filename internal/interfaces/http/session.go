package http

import (
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/jhoicas/Auth-api/pkg/config"
)

// NewSessionStore cookie de sesión: HttpOnly, SameSite=Lax, Secure en producción.
// El almacenamiento es la memoria del proceso (no se replica entre nodos).
func NewSessionStore(cfg config.SessionConfig, production bool) *session.Store {
	name := cfg.CookieName
	if name == "" {
		name = "sessionId"
	}
	return session.New(session.Config{
		Expiration:     cfg.MaxAge(),
		KeyLookup:      "cookie:" + name,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieSecure:   production,
		CookiePath:     "/",
	})
}
