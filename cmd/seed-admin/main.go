// Command seed-admin creates the first administrator from SEED_ADMIN_* when
// no admin account exists yet.
package main

import (
	"context"
	"os"
	"time"

	"github.com/vreta/crm-api/internal/core/ports"
	"github.com/vreta/crm-api/internal/core/service"
	"github.com/vreta/crm-api/internal/infrastructure/db/mongo"
	"github.com/vreta/crm-api/internal/pkg/config"
	"github.com/vreta/crm-api/internal/pkg/password"
	"github.com/vreta/crm-api/pkg/logger"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{Service: "seed-admin"})
		l.Fatal().Err(err).Msg("failed to load configuration")
	}
	log := logger.Init(logger.ForEnv(cfg.Env, cfg.LogLevel, "seed-admin"))

	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	users := mongo.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create user indexes")
	}

	admins := service.NewAdminService(users, mongo.NewCustomerRepository(db), mongo.NewContactRepository(db),
		password.NewHasher(password.DefaultCost), log)

	created, err := admins.BootstrapAdmin(ctx, ports.BootstrapAdminInput{
		Username: cfg.Seed.AdminUsername,
		Password: cfg.Seed.AdminPassword,
		Email:    cfg.Seed.AdminEmail,
		FullName: cfg.Seed.AdminFullName,
	})
	if err != nil {
		log.Error().Err(err).Msg("admin bootstrap failed")
		os.Exit(1)
	}
	if created {
		log.Info().Str("username", cfg.Seed.AdminUsername).Msg("admin user seeded")
	}
}
