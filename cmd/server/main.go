package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/regionalitapevi/admin-portal/internal/api"
	"github.com/regionalitapevi/admin-portal/internal/core/service"
	"github.com/regionalitapevi/admin-portal/internal/infrastructure/audit"
	"github.com/regionalitapevi/admin-portal/internal/infrastructure/config"
	"github.com/regionalitapevi/admin-portal/internal/infrastructure/db/postgres"
	"github.com/regionalitapevi/admin-portal/internal/infrastructure/db/redis"
	"github.com/regionalitapevi/admin-portal/pkg/logger"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{})
		bootLog.Fatal().Err(err).Msg("configuration")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.IsDevelopment(),
	})

	// Restricted pool for the request path.
	pool, err := postgres.Connect(ctx, cfg.Postgres.URL, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis")
	}
	defer func() { _ = rdb.Close() }()

	if cfg.Provision {
		if err := provision(ctx, cfg, log); err != nil {
			log.Fatal().Err(err).Msg("provisioning")
		}
	}

	auditDispatcher := audit.NewDispatcher(0, postgres.NewAccessLogRepository(pool), log)
	auditDispatcher.Start(ctx)

	e := api.NewRouter(pool, rdb, auditDispatcher, cfg, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("admin portal started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

// provision runs the idempotent seed with the elevated service-tier
// credentials; the request path never uses them.
func provision(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	servicePool, err := postgres.Connect(ctx, cfg.Postgres.ServiceURL, 0)
	if err != nil {
		return err
	}
	defer servicePool.Close()

	if err := postgres.EnsureSchema(ctx, servicePool); err != nil {
		return err
	}

	provisioner := service.NewProvisioner(postgres.NewProvisionStore(servicePool), log)
	return provisioner.Run(ctx, service.AdminSeed{
		Email:     cfg.Admin.Email,
		Password:  cfg.Admin.Password,
		FirstName: cfg.Admin.FirstName,
		LastName:  cfg.Admin.LastName,
	})
}
