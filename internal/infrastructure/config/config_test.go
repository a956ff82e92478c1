package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	originalEnv := map[string]string{
		"ORDERDESK_APP_NAME":          os.Getenv("ORDERDESK_APP_NAME"),
		"ORDERDESK_APP_ENV":           os.Getenv("ORDERDESK_APP_ENV"),
		"ORDERDESK_APP_PORT":          os.Getenv("ORDERDESK_APP_PORT"),
		"ORDERDESK_DATABASE_HOST":     os.Getenv("ORDERDESK_DATABASE_HOST"),
		"ORDERDESK_DATABASE_PASSWORD": os.Getenv("ORDERDESK_DATABASE_PASSWORD"),
		"ORDERDESK_DATABASE_SSLMODE":  os.Getenv("ORDERDESK_DATABASE_SSLMODE"),
		"ORDERDESK_JWT_SECRET":        os.Getenv("ORDERDESK_JWT_SECRET"),
		"ORDERDESK_REDIS_HOST":        os.Getenv("ORDERDESK_REDIS_HOST"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "orderdesk-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "orderdesk", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
		assert.Equal(t, "orderdesk.notifications", cfg.Redis.Channel)
		assert.False(t, cfg.IsProduction())
	})

	t.Run("environment variables override defaults", func(t *testing.T) {
		clearEnv()
		os.Setenv("ORDERDESK_APP_PORT", "9090")
		os.Setenv("ORDERDESK_DATABASE_HOST", "db.internal")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.App.Port)
		assert.Equal(t, "db.internal", cfg.Database.Host)
	})

	t.Run("production requires a strong jwt secret", func(t *testing.T) {
		clearEnv()
		os.Setenv("ORDERDESK_APP_ENV", "production")
		os.Setenv("ORDERDESK_DATABASE_PASSWORD", "secret")
		os.Setenv("ORDERDESK_DATABASE_SSLMODE", "require")
		os.Setenv("ORDERDESK_JWT_SECRET", "short")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})

	t.Run("production rejects disabled ssl", func(t *testing.T) {
		clearEnv()
		os.Setenv("ORDERDESK_APP_ENV", "production")
		os.Setenv("ORDERDESK_DATABASE_PASSWORD", "secret")
		os.Setenv("ORDERDESK_JWT_SECRET", "0123456789abcdef0123456789abcdef")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "p@ss/word",
		DBName:   "orderdesk",
		SSLMode:  "disable",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "localhost:5432")
	assert.Contains(t, dsn, "sslmode=disable")
	// Special characters in the password must be escaped
	assert.NotContains(t, dsn, "p@ss/word")
}

func TestRedisConfig_Addr(t *testing.T) {
	r := RedisConfig{Host: "cache.internal", Port: 6380}
	assert.Equal(t, "cache.internal:6380", r.Addr())
}
