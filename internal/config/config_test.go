package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/guestbook")
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("PORT", "")
	t.Setenv("TRUST_PROXY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/guestbook", cfg.Database.URL)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 30, cfg.PostRateLimit)
	assert.Equal(t, time.Minute, cfg.PostRateWindow)
	assert.False(t, cfg.TrustProxy)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "  ")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_CollectsAllProblems(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATABASE_DRIVER", "oracle")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "oracle")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "file:guestbook.db")
	t.Setenv("DATABASE_DRIVER", "sqlite3")
	t.Setenv("PORT", "9000")
	t.Setenv("POST_RATE_LIMIT_MAX", "3")
	t.Setenv("POST_RATE_LIMIT_WINDOW_SECONDS", "5")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("TRUST_PROXY", "yes")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 3, cfg.PostRateLimit)
	assert.Equal(t, 5*time.Second, cfg.PostRateWindow)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.TrustProxy)
}

func TestLoad_RejectsUnparseableValues(t *testing.T) {
	t.Setenv("DATABASE_URL", "file:guestbook.db")
	t.Setenv("DATABASE_DRIVER", "sqlite3")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("POST_RATE_LIMIT_MAX", "0")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "-5")
	t.Setenv("TRUST_PROXY", "maybe")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `DB_MAX_OPEN_CONNS must be a positive integer, got "not-a-number"`)
	assert.Contains(t, err.Error(), `POST_RATE_LIMIT_MAX must be a positive integer, got "0"`)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT_SECONDS")
	assert.Contains(t, err.Error(), `TRUST_PROXY must be a boolean, got "maybe"`)
}

func TestLoadAuth(t *testing.T) {
	t.Run("requires secret and algorithm", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		t.Setenv("JWT_ALGORITHM", "")

		_, err := LoadAuth()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET")
		assert.Contains(t, err.Error(), "JWT_ALGORITHM")
	})

	t.Run("reads values", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("JWT_ALGORITHM", "hs512")
		t.Setenv("JWT_EXPIRES_MINUTES", "")

		cfg, err := LoadAuth()
		require.NoError(t, err)
		assert.Equal(t, "s3cret", cfg.JWTSecret)
		assert.Equal(t, "HS512", cfg.JWTAlgorithm)
		assert.Equal(t, time.Hour, cfg.TokenTTL)
	})

	t.Run("rejects a bad lifetime", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("JWT_ALGORITHM", "HS256")
		t.Setenv("JWT_EXPIRES_MINUTES", "soon")

		_, err := LoadAuth()
		assert.ErrorContains(t, err, "JWT_EXPIRES_MINUTES")
	})
}

func TestEnvBoolOrDefault(t *testing.T) {
	cases := map[string]bool{"1": true, "YES": true, "on": true, "0": false, "No": false, "off": false}
	for raw, want := range cases {
		t.Setenv("GUESTBOOK_FLAG", raw)
		assert.Equal(t, want, EnvBoolOrDefault("GUESTBOOK_FLAG", !want), raw)
	}

	t.Setenv("GUESTBOOK_FLAG", "maybe")
	assert.True(t, EnvBoolOrDefault("GUESTBOOK_FLAG", true))
}
