package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Auth-api/internal/application/usecase"
	"github.com/jhoicas/Auth-api/internal/domain"
	"github.com/jhoicas/Auth-api/internal/domain/entity"
	"github.com/jhoicas/Auth-api/internal/domain/rbac"
	"github.com/jhoicas/Auth-api/pkg/jwt"
)

// Locals keys con la identidad del token.
const (
	LocalUserID = "user_id"
	LocalEmail  = "email"
	LocalRole   = "role"
)

// TokenVerifier verifica tokens de identidad (*jwt.Issuer).
type TokenVerifier interface {
	Verify(token string) (*jwt.Claims, error)
}

// AuthMiddleware valida el Bearer Token y deja id, email y rol en c.Locals.
// Es la única compuerta de autenticación: los handlers protegidos asumen identidad presente.
func AuthMiddleware(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return withCode("MISSING_TOKEN", domain.Unauthorized("No token provided"))
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return withCode("MISSING_TOKEN", domain.Unauthorized("No token provided"))
		}
		claims, err := verifier.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			code := "INVALID_TOKEN"
			if errors.Is(err, jwt.ErrTokenExpired) {
				code = "TOKEN_EXPIRED"
			}
			return withCode(code, domain.Unauthorized("Invalid or expired token"))
		}
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalEmail, claims.Email)
		c.Locals(LocalRole, claims.Role)
		return c.Next()
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string { return localString(c, LocalUserID) }

// GetEmail email del token.
func GetEmail(c *fiber.Ctx) string { return localString(c, LocalEmail) }

// GetRole rol del token.
func GetRole(c *fiber.Ctx) entity.Role { return entity.Role(localString(c, LocalRole)) }

// CurrentActor identidad del llamador para los casos de uso.
func CurrentActor(c *fiber.Ctx) usecase.Actor {
	return usecase.Actor{UserID: GetUserID(c), Role: GetRole(c)}
}

func localString(c *fiber.Ctx, key string) string {
	s, _ := c.Locals(key).(string)
	return s
}

// guard comparte el chequeo de identidad de todas las compuertas RBAC.
func guard(allow func(entity.Role) bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetUserID(c) == "" {
			return domain.Unauthorized("Authentication required")
		}
		role := GetRole(c)
		if role == "" {
			return withCode("MISSING_ROLE", domain.Unauthorized("Authentication required"))
		}
		if !allow(role) {
			return domain.Forbidden("Insufficient permissions")
		}
		return c.Next()
	}
}

// RequireRole pasa si el rol del token alcanza alguno de los roles dados (jerarquía admin > manager > user).
func RequireRole(roles ...entity.Role) fiber.Handler {
	return guard(func(r entity.Role) bool {
		for _, want := range roles {
			if rbac.HasRoleAtLeast(r, want) {
				return true
			}
		}
		return false
	})
}

// RequireMinimumRole pasa si el rol es al menos minimum.
func RequireMinimumRole(minimum entity.Role) fiber.Handler {
	return guard(func(r entity.Role) bool { return rbac.HasRoleAtLeast(r, minimum) })
}

// RequirePermission exige un permiso concreto.
func RequirePermission(perm rbac.Permission) fiber.Handler {
	return guard(func(r entity.Role) bool { return rbac.HasPermission(r, perm) })
}

// RequireAnyPermission exige al menos uno de los permisos.
func RequireAnyPermission(perms ...rbac.Permission) fiber.Handler {
	return guard(func(r entity.Role) bool { return rbac.HasAny(r, perms...) })
}

// RequireAllPermissions exige todos los permisos.
func RequireAllPermissions(perms ...rbac.Permission) fiber.Handler {
	return guard(func(r entity.Role) bool { return rbac.HasAll(r, perms...) })
}
