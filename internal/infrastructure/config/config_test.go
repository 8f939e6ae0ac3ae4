package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEnvKeys = []string{
	"MITRA_APP_NAME",
	"MITRA_APP_ENV",
	"MITRA_APP_PORT",
	"MITRA_DATABASE_HOST",
	"MITRA_DATABASE_PORT",
	"MITRA_DATABASE_PASSWORD",
	"MITRA_DATABASE_SSLMODE",
	"MITRA_DATABASE_MAX_OPEN_CONNS",
	"MITRA_DATABASE_MAX_IDLE_CONNS",
	"MITRA_JWT_SECRET",
	"MITRA_PARTNER_TOKEN_URL",
	"MITRA_PARTNER_CLIENT_ID",
	"MITRA_PARTNER_CLIENT_SECRET",
	"MITRA_PARTNER_MAX_ATTEMPTS",
	"MITRA_PARTNER_REQUEST_TIMEOUT",
}

func clearTestEnv(t *testing.T) {
	t.Helper()
	for _, k := range testEnvKeys {
		if v, ok := os.LookupEnv(k); ok {
			orig := v
			key := k
			t.Cleanup(func() { os.Setenv(key, orig) })
			os.Unsetenv(k)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearTestEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mitra-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "mitra", cfg.Database.DBName)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenExpiration)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "customer:write", cfg.Partner.Scope)
	assert.Equal(t, 2*time.Minute, cfg.Partner.RequestTimeout)
	assert.Equal(t, 3, cfg.Partner.MaxAttempts)
	assert.Equal(t, 5*time.Minute, cfg.Partner.ConfigCacheTTL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearTestEnv(t)
	t.Setenv("MITRA_APP_NAME", "mitra-test")
	t.Setenv("MITRA_DATABASE_HOST", "db.internal")
	t.Setenv("MITRA_PARTNER_TOKEN_URL", "https://sso.partner.example/oauth/token")
	t.Setenv("MITRA_PARTNER_CLIENT_ID", "client-1")
	t.Setenv("MITRA_PARTNER_MAX_ATTEMPTS", "5")
	t.Setenv("MITRA_PARTNER_REQUEST_TIMEOUT", "45s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mitra-test", cfg.App.Name)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "https://sso.partner.example/oauth/token", cfg.Partner.TokenURL)
	assert.Equal(t, "client-1", cfg.Partner.ClientID)
	assert.Equal(t, 5, cfg.Partner.MaxAttempts)
	assert.Equal(t, 45*time.Second, cfg.Partner.RequestTimeout)
}

func TestLoad_Validation(t *testing.T) {
	t.Run("idle conns cannot exceed open conns", func(t *testing.T) {
		clearTestEnv(t)
		t.Setenv("MITRA_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("MITRA_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("negative max attempts rejected", func(t *testing.T) {
		clearTestEnv(t)
		t.Setenv("MITRA_PARTNER_MAX_ATTEMPTS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_attempts")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setProduction := func(t *testing.T) {
		clearTestEnv(t)
		t.Setenv("MITRA_APP_ENV", "production")
		t.Setenv("MITRA_JWT_SECRET", strings.Repeat("s", 32))
		t.Setenv("MITRA_DATABASE_PASSWORD", "prod-password")
		t.Setenv("MITRA_DATABASE_SSLMODE", "require")
		t.Setenv("MITRA_PARTNER_CLIENT_SECRET", "prod-client-secret")
	}

	t.Run("complete production config passes", func(t *testing.T) {
		setProduction(t)

		_, err := Load()
		assert.NoError(t, err)
	})

	t.Run("short jwt secret rejected", func(t *testing.T) {
		setProduction(t)
		t.Setenv("MITRA_JWT_SECRET", "short")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})

	t.Run("sslmode disable rejected", func(t *testing.T) {
		setProduction(t)
		t.Setenv("MITRA_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})

	t.Run("missing partner client secret rejected", func(t *testing.T) {
		setProduction(t)
		t.Setenv("MITRA_PARTNER_CLIENT_SECRET", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "partner.client_secret")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "mitra",
		Password: "p@ss/word",
		DBName:   "mitra",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()

	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "localhost:5432")
	assert.Contains(t, dsn, "sslmode=disable")
	// Special characters in the password survive URL escaping.
	assert.NotContains(t, dsn, "p@ss/word")
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "cache.internal", Port: 6380}
	assert.Equal(t, "cache.internal:6380", cfg.Addr())
}
