package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 20, cfg.API.PageSize)
	assert.Equal(t, "0 0 3 * * *", cfg.Retention.Schedule)
	assert.Equal(t, 0, cfg.Retention.Days)
	assert.Equal(t, "development", cfg.App.Environment)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("DB_NAME", "other")
	t.Setenv("API_PAGE_SIZE", "50")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RETENTION_DAYS", "90")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, "other", cfg.Database.Name)
	assert.Equal(t, 50, cfg.API.PageSize)
	assert.Equal(t, 2.5, cfg.API.RateLimitRPS)
	assert.Equal(t, 90, cfg.Retention.Days)
}

func TestInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("RATE_LIMIT_RPS", "lots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, float64(0), cfg.API.RateLimitRPS)
}

func TestValidate(t *testing.T) {
	t.Setenv("API_PAGE_SIZE", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "svc",
		Password: "pw",
		Name:     "modelapi",
	}
	assert.Equal(t,
		"host=db.internal port=5433 user=svc password=pw dbname=modelapi sslmode=disable",
		db.DSN())
}
