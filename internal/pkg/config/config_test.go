package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, "vreta_crm", cfg.Mongo.Database)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.Equal(t, 4, cfg.LoginWorkers)
}

func TestLoadFrom_DevelopmentGeneratesSecret(t *testing.T) {
	a, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)
	b, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.True(t, a.GeneratedSecret)
	assert.Len(t, a.JWTSecret, 64)
	assert.NotEqual(t, a.JWTSecret, b.JWTSecret, "secret must not be a fixed literal")
}

func TestLoadFrom_ProductionRequiresSecret(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV": "production",
	}))
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestLoadFrom_ProductionRejectsShortSecret(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":        "production",
		"JWT_SECRET": "short",
	}))
	assert.ErrorIs(t, err, ErrWeakSecret)
}

func TestLoadFrom_ProductionWithSecret(t *testing.T) {
	secret := strings.Repeat("s", 40)
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":        "production",
		"JWT_SECRET": secret,
		"MONGO_URI":  "mongodb://db:27017",
	}))
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.GeneratedSecret)
	assert.Equal(t, secret, cfg.JWTSecret)
	assert.Equal(t, "mongodb://db:27017", cfg.Mongo.URI)
}
