package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/users")
	t.Setenv("MIN_AGE_FOR_REGISTRATION", "")
	t.Setenv("STORAGE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 18, cfg.MinAgeForRegistration)
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, "pgx", cfg.DatabaseDriver)
	assert.Equal(t, 600, cfg.RateLimitRPM)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE", "MEMORY")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("MIN_AGE_FOR_REGISTRATION", "21")
	t.Setenv("RATE_LIMIT_RPM", "0")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("USER_REGISTRY_ADDR", ":9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, 21, cfg.MinAgeForRegistration)
	assert.Equal(t, 0, cfg.RateLimitRPM)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, ":9090", cfg.Addr)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without url", map[string]string{"STORAGE": "postgres", "DATABASE_URL": ""}},
		{"unknown storage", map[string]string{"STORAGE": "redis", "DATABASE_URL": "x"}},
		{"non numeric age", map[string]string{"STORAGE": "memory", "MIN_AGE_FOR_REGISTRATION": "eighteen"}},
		{"negative age", map[string]string{"STORAGE": "memory", "MIN_AGE_FOR_REGISTRATION": "-1"}},
		{"bad timeout", map[string]string{"STORAGE": "memory", "SHUTDOWN_TIMEOUT": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
