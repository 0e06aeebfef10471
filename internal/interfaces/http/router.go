package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/jhoicas/Auth-api/internal/application/auth"
	"github.com/jhoicas/Auth-api/internal/application/usecase"
	"github.com/jhoicas/Auth-api/internal/domain/entity"
	"github.com/jhoicas/Auth-api/internal/domain/rbac"
	"github.com/jhoicas/Auth-api/internal/infrastructure/ratelimit"
	"github.com/jhoicas/Auth-api/pkg/logger"
)

// AppOptions configuración del servidor Fiber.
type AppOptions struct {
	Name       string
	Production bool
	CORSOrigin string
	Log        *logger.Logger
}

// NewApp crea la app con el manejador de errores común y los middlewares transversales.
func NewApp(opts AppOptions) *fiber.App {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	app := fiber.New(fiber.Config{
		AppName:      opts.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: NewErrorHandler(opts.Production, opts.Log.Component("http")),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(RequestLogger(opts.Log.Component("http")))
	if opts.CORSOrigin != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigin,
			AllowCredentials: opts.CORSOrigin != "*",
			AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		}))
	}
	return app
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	UserUC      *usecase.UserUseCase
	Tokens      TokenVerifier
	Sessions    *session.Store
	AuthLimiter *ratelimit.Limiter
	APILimiter  *ratelimit.Limiter
	ServiceName string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})

	api := app.Group("/api")
	bearer := AuthMiddleware(deps.Tokens)
	strict := RateLimit(deps.AuthLimiter, "Too many authentication attempts, please try again later.")
	lenient := RateLimit(deps.APILimiter, "Too many requests, please try again later.")

	// Auth (público, límite estricto)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC, deps.Sessions)
	authGroup.Post("/register", strict, authHandler.Register)
	authGroup.Post("/login", strict, authHandler.Login)
	authGroup.Post("/forgot-password", strict, authHandler.ForgotPassword)
	authGroup.Post("/reset-password", strict, authHandler.ResetPassword)
	authGroup.Post("/logout", authHandler.Logout)
	authGroup.Get("/me", bearer, authHandler.Me)
	authGroup.Get("/sessions", bearer, authHandler.Sessions)
	authGroup.Post("/logout-all", bearer, authHandler.LogoutAll)

	// Users (protegido, límite laxo)
	users := api.Group("/users", lenient, bearer)
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/", RequirePermission(rbac.PermUserRead), userHandler.List)
	users.Get("/:id", RequirePermission(rbac.PermUserRead), userHandler.GetByID)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", RequirePermission(rbac.PermUserDelete), userHandler.Delete)
	users.Patch("/:id/role", RequireRole(entity.RoleAdmin), userHandler.UpdateRole)
}
