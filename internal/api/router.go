package api

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/regionalitapevi/admin-portal/internal/api/handler"
	"github.com/regionalitapevi/admin-portal/internal/api/middleware"
	"github.com/regionalitapevi/admin-portal/internal/core/ports"
	"github.com/regionalitapevi/admin-portal/internal/core/service"
	"github.com/regionalitapevi/admin-portal/internal/infrastructure/config"
	"github.com/regionalitapevi/admin-portal/internal/infrastructure/db/postgres"
	"github.com/regionalitapevi/admin-portal/internal/infrastructure/db/redis"
)

// businessModules are the route prefixes guarded by the permission gate.
var businessModules = []string{
	"dashboard", "musicians", "organists", "churches", "reports", "users", "settings",
}

// NewRouter builds the Echo instance with the full access-control pipeline:
// recover → request id → security headers → authentication gate → permission
// gate → request audit → handler.
func NewRouter(pool *pgxpool.Pool, rdb *goredis.Client, auditLogger ports.AuditLogger, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Dependencies ---
	userRepo := postgres.NewUserRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)
	rbacRepo := postgres.NewRBACRepository(pool)
	throttle := redis.NewLoginThrottle(rdb, log)

	sessions := service.NewSessionManager(sessionRepo, userRepo, cfg.Session.TTL, cfg.Session.RememberTTL, log)
	authorizer := service.NewAuthorizer(rbacRepo)
	authService := service.NewAuthService(userRepo, rbacRepo, sessions, auditLogger, throttle, cfg.Session.ResetSecret, log)

	authHandler := handler.NewAuthHandler(authService, authorizer, cfg.Session.CookieSecure)
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(pool, rdb)
	moduleHandler := handler.NewModuleHandler()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.Authenticate(sessions, log))
	e.Use(middleware.Authorize(authorizer, auditLogger, log))
	e.Use(middleware.AccessLog(auditLogger, log))

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)
	e.GET("/auth/me", authHandler.Me)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/change-password", authHandler.ChangePassword)
	e.POST("/auth/forgot-password", authHandler.ForgotPassword)
	e.POST("/auth/reset-password", authHandler.ResetPassword)

	// Browser redirect target for unauthenticated requests.
	e.GET("/login", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "login required", "login": "/auth/login"})
	})

	// --- Business module routes (guarded by the gates above) ---
	for _, module := range businessModules {
		e.Any("/"+module, moduleHandler.Serve)
		e.Any("/"+module+"/*", moduleHandler.Serve)
	}

	// --- Health probes and metrics (no auth required) ---
	e.GET("/health", healthHandler.Liveness)          // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}
