package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"FAMBRI_APP_NAME":                   os.Getenv("FAMBRI_APP_NAME"),
		"FAMBRI_APP_ENV":                    os.Getenv("FAMBRI_APP_ENV"),
		"FAMBRI_APP_PORT":                   os.Getenv("FAMBRI_APP_PORT"),
		"FAMBRI_DATABASE_HOST":              os.Getenv("FAMBRI_DATABASE_HOST"),
		"FAMBRI_DATABASE_PORT":              os.Getenv("FAMBRI_DATABASE_PORT"),
		"FAMBRI_DATABASE_USER":              os.Getenv("FAMBRI_DATABASE_USER"),
		"FAMBRI_DATABASE_PASSWORD":          os.Getenv("FAMBRI_DATABASE_PASSWORD"),
		"FAMBRI_DATABASE_DBNAME":            os.Getenv("FAMBRI_DATABASE_DBNAME"),
		"FAMBRI_DATABASE_SSLMODE":           os.Getenv("FAMBRI_DATABASE_SSLMODE"),
		"FAMBRI_DATABASE_MAX_OPEN_CONNS":    os.Getenv("FAMBRI_DATABASE_MAX_OPEN_CONNS"),
		"FAMBRI_DATABASE_MAX_IDLE_CONNS":    os.Getenv("FAMBRI_DATABASE_MAX_IDLE_CONNS"),
		"FAMBRI_JWT_SECRET":                 os.Getenv("FAMBRI_JWT_SECRET"),
		"FAMBRI_PRICING_GENERATION_WORKERS": os.Getenv("FAMBRI_PRICING_GENERATION_WORKERS"),
		"FAMBRI_MARKET_DEFAULT_VAT_RATE":    os.Getenv("FAMBRI_MARKET_DEFAULT_VAT_RATE"),
		"FAMBRI_PRICING_SIGNIFICANT_CHANGE_THRESHOLD_PERCENT": os.Getenv("FAMBRI_PRICING_SIGNIFICANT_CHANGE_THRESHOLD_PERCENT"),
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

		assert.Equal(t, "fambrifarms-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "", cfg.Database.Password)
		assert.Equal(t, "fambrifarms", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	})

	t.Run("pricing and market defaults", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 10.0, cfg.Pricing.SignificantChangeThresholdPercent)
		assert.Equal(t, 7, cfg.Pricing.PriceListValidityDays)
		assert.Equal(t, 4, cfg.Pricing.GenerationWorkers)
		assert.Equal(t, "Tshwane Fresh Produce Market", cfg.Pricing.MarketDataSourceName)
		assert.Equal(t, 30, cfg.Market.VolatilityWindowDays)
		assert.Equal(t, 0.15, cfg.Market.VolatilityCVThreshold)
		assert.Equal(t, 0.15, cfg.Market.DefaultVATRate)
		assert.Equal(t, time.Hour, cfg.Market.CacheTTL)
	})

	t.Run("loads values from environment variables with FAMBRI prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("FAMBRI_APP_NAME", "test-app")
		os.Setenv("FAMBRI_APP_ENV", "testing")
		os.Setenv("FAMBRI_APP_PORT", "9000")
		os.Setenv("FAMBRI_DATABASE_HOST", "testdb.local")
		os.Setenv("FAMBRI_DATABASE_PORT", "5433")
		os.Setenv("FAMBRI_DATABASE_USER", "testuser")
		os.Setenv("FAMBRI_DATABASE_PASSWORD", "testpass")
		os.Setenv("FAMBRI_DATABASE_DBNAME", "testdb")
		os.Setenv("FAMBRI_DATABASE_SSLMODE", "require")
		os.Setenv("FAMBRI_DATABASE_MAX_OPEN_CONNS", "50")
		os.Setenv("FAMBRI_DATABASE_MAX_IDLE_CONNS", "10")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, "require", cfg.Database.SSLMode)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("FAMBRI_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("FAMBRI_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("zero MaxOpenConns uses default", func(t *testing.T) {
		clearEnv()
		os.Setenv("FAMBRI_DATABASE_MAX_OPEN_CONNS", "0")

		cfg, err := Load()
		require.NoError(t, err)
		// 0 is treated as "not set", so default (25) is used
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		clearEnv()
		os.Setenv("FAMBRI_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})

	t.Run("explicit zero significance threshold is kept", func(t *testing.T) {
		clearEnv()
		os.Setenv("FAMBRI_PRICING_SIGNIFICANT_CHANGE_THRESHOLD_PERCENT", "0")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 0.0, cfg.Pricing.SignificantChangeThresholdPercent)
	})

	t.Run("validates generation workers must be positive", func(t *testing.T) {
		clearEnv()
		os.Setenv("FAMBRI_PRICING_GENERATION_WORKERS", "-2")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "pricing.generation_workers must be at least 1")
	})

	t.Run("validates VAT rate is a fraction below 1", func(t *testing.T) {
		clearEnv()
		os.Setenv("FAMBRI_MARKET_DEFAULT_VAT_RATE", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "market.default_vat_rate")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	originalEnv := map[string]string{
		"FAMBRI_APP_ENV":                 os.Getenv("FAMBRI_APP_ENV"),
		"FAMBRI_JWT_SECRET":              os.Getenv("FAMBRI_JWT_SECRET"),
		"FAMBRI_DATABASE_PASSWORD":       os.Getenv("FAMBRI_DATABASE_PASSWORD"),
		"FAMBRI_DATABASE_SSLMODE":        os.Getenv("FAMBRI_DATABASE_SSLMODE"),
		"FAMBRI_HTTP_CORS_ALLOW_ORIGINS": os.Getenv("FAMBRI_HTTP_CORS_ALLOW_ORIGINS"),
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

	// Helper to set valid production base config
	setValidProductionBase := func() {
		os.Setenv("FAMBRI_APP_ENV", "production")
		os.Setenv("FAMBRI_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		os.Setenv("FAMBRI_DATABASE_PASSWORD", "secure-password")
		os.Setenv("FAMBRI_DATABASE_SSLMODE", "require")
	}

	t.Run("requires jwt.secret in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("FAMBRI_APP_ENV", "production")
		os.Setenv("FAMBRI_DATABASE_PASSWORD", "secure-password")
		os.Setenv("FAMBRI_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret is required in production")
	})

	t.Run("requires jwt.secret at least 32 characters in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("FAMBRI_APP_ENV", "production")
		os.Setenv("FAMBRI_JWT_SECRET", "short-secret")
		os.Setenv("FAMBRI_DATABASE_PASSWORD", "secure-password")
		os.Setenv("FAMBRI_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret must be at least 32 characters")
	})

	t.Run("requires database.password in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("FAMBRI_APP_ENV", "production")
		os.Setenv("FAMBRI_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		os.Setenv("FAMBRI_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("FAMBRI_APP_ENV", "production")
		os.Setenv("FAMBRI_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		os.Setenv("FAMBRI_DATABASE_PASSWORD", "secure-password")
		os.Setenv("FAMBRI_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("rejects wildcard CORS origin in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("FAMBRI_HTTP_CORS_ALLOW_ORIGINS", "*")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cors_allow_origins cannot be '*' in production")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		// URL-encoded password should be in the DSN
		assert.Contains(t, dsn, "pass%40word%23123")
	})

	t.Run("handles empty password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.NotEmpty(t, dsn)
	})
}
