// @title                       CRM API
// @version                     1.0
// @description                 Lead capture, staff authentication and admin dashboard.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vreta/crm-api/docs"
	"github.com/vreta/crm-api/internal/api"
	"github.com/vreta/crm-api/internal/api/handler"
	"github.com/vreta/crm-api/internal/core/service"
	"github.com/vreta/crm-api/internal/infrastructure/db/mongo"
	"github.com/vreta/crm-api/internal/infrastructure/db/redis"
	"github.com/vreta/crm-api/internal/infrastructure/queue"
	"github.com/vreta/crm-api/internal/pkg/config"
	"github.com/vreta/crm-api/internal/pkg/password"
	"github.com/vreta/crm-api/internal/pkg/token"
	"github.com/vreta/crm-api/pkg/logger"
)

const (
	serviceName     = "crm-api"
	shutdownTimeout = 10 * time.Second
)

func main() {
	ctx := context.Background()

	// 1. Configuration and logging
	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{Service: serviceName})
		l.Fatal().Err(err).Msg("failed to load configuration")
	}
	log := logger.Init(logger.ForEnv(cfg.Env, cfg.LogLevel, serviceName))
	if cfg.GeneratedSecret {
		log.Warn().Msg("JWT_SECRET not set, using a random secret for this process; tokens will not survive a restart")
	}

	// 2. Backing services
	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer rdb.Close()

	users := mongo.NewUserRepository(db)
	customers := mongo.NewCustomerRepository(db)
	contacts := mongo.NewContactRepository(db)
	if err := mongo.EnsureIndexes(ctx, users, customers, contacts); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	// 3. Services
	workerCtx, stopWorkers := context.WithCancel(ctx)
	recorder := queue.NewLoginRecorder(cfg.LoginWorkers, users, logger.Named("login-recorder"))
	recorder.Start(workerCtx)

	hasher := password.NewHasher(password.DefaultCost)
	tokens := token.NewIssuer(cfg.JWTSecret, token.DefaultTTL)

	authService := service.NewAuthService(users, hasher, tokens, recorder, logger.Named("auth"))
	adminService := service.NewAdminService(users, customers, contacts, hasher, logger.Named("admin"))
	leadService := service.NewLeadService(customers, contacts,
		redis.NewIdempotencyStore(rdb, cfg.IdempotencyTTL), logger.Named("leads"))

	// 4. HTTP
	docs.SwaggerInfo.BasePath = "/"
	e := api.NewRouter(api.Deps{
		Auth:        authService,
		Admin:       adminService,
		Leads:       leadService,
		Tokens:      tokens,
		Health:      handler.NewHealthHandler(db, rdb),
		Log:         logger.Named("http"),
		CORSOrigins: cfg.CORSOrigins,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting CRM API")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	// 5. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}

	stopWorkers()
	recorder.Wait()
	log.Info().Msg("shutdown complete")
}
