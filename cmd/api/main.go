package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/jackc/pgx/v5/pgxpool"

	_ "github.com/jhoicas/Auth-api/docs"
	"github.com/jhoicas/Auth-api/internal/application/auth"
	appsession "github.com/jhoicas/Auth-api/internal/application/session"
	"github.com/jhoicas/Auth-api/internal/application/usecase"
	"github.com/jhoicas/Auth-api/internal/domain/repository"
	"github.com/jhoicas/Auth-api/internal/infrastructure/email"
	"github.com/jhoicas/Auth-api/internal/infrastructure/memory"
	"github.com/jhoicas/Auth-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Auth-api/internal/infrastructure/ratelimit"
	httpRouter "github.com/jhoicas/Auth-api/internal/interfaces/http"
	"github.com/jhoicas/Auth-api/pkg/config"
	"github.com/jhoicas/Auth-api/pkg/jwt"
	"github.com/jhoicas/Auth-api/pkg/logger"
	"github.com/jhoicas/Auth-api/pkg/password"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	var (
		userRepo    repository.UserRepository
		sessionRepo repository.SessionRepository
		txRunner    usecase.TxRunner
		pool        *pgxpool.Pool
	)
	switch cfg.DB.Driver {
	case config.StorageMemory:
		users, sessions := memory.NewUserRepository(), memory.NewSessionRepository()
		userRepo, sessionRepo = users, sessions
		txRunner = memory.NewTxRunner(users, sessions)
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err = postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		userRepo = postgres.NewUserRepository(pool)
		sessionRepo = postgres.NewSessionRepository(pool)
		txRunner = postgres.NewTxRunner(pool)
	}

	issuer, err := jwt.NewIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL())
	if err != nil {
		log.Fatal().Err(err).Msg("emisor JWT")
	}
	hasher := password.NewHasher(cfg.Security.BcryptCost)
	notifier := email.NewSMTPNotifier(cfg.SMTP, cfg.App.FrontendURL)

	sessionStore := appsession.NewStore(sessionRepo, cfg.Session.MaxAge(),
		appsession.WithLogger(log.Component("session")))
	authLimiter := ratelimit.New(cfg.RateLimit.AuthMax, time.Duration(cfg.RateLimit.AuthWindowMinutes)*time.Minute)
	apiLimiter := ratelimit.New(cfg.RateLimit.APIMax, time.Duration(cfg.RateLimit.APIWindowMinutes)*time.Minute)

	authUC := auth.NewAuthUseCase(userRepo, sessionStore, hasher, issuer, notifier,
		auth.WithLogger(log.Component("auth")))
	userUC := usecase.NewUserUseCase(userRepo, txRunner, log.Component("users"))

	housekeeping := time.Duration(cfg.Session.HousekeepingMinutes) * time.Minute
	go sessionStore.RunHousekeeping(ctx, housekeeping)
	go authLimiter.RunSweeper(ctx, time.Minute)
	go apiLimiter.RunSweeper(ctx, time.Minute)

	app := httpRouter.NewApp(httpRouter.AppOptions{
		Name:       cfg.App.Name,
		Production: cfg.App.IsProduction(),
		CORSOrigin: cfg.HTTP.CORSOrigin,
		Log:        log,
	})

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Auth API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		UserUC:      userUC,
		Tokens:      issuer,
		Sessions:    httpRouter.NewSessionStore(cfg.Session, cfg.App.IsProduction()),
		AuthLimiter: authLimiter,
		APILimiter:  apiLimiter,
		ServiceName: cfg.App.Name,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
