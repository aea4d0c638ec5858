package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "locaflow", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "locaflow", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Security.MaxLoginAttempts)
		assert.Equal(t, 15*time.Minute, cfg.Security.LockoutDuration)
		assert.Equal(t, time.Hour, cfg.Security.ResetTokenTTL)
		assert.Equal(t, 24*time.Hour, cfg.Lookup.CacheTTL)
		assert.Equal(t, 30*time.Second, cfg.FocusNFe.Timeout)
		assert.Equal(t, "lf_session", cfg.Cookie.AccessName)
		assert.Empty(t, cfg.HTTP.CORSAllowOrigins)
		assert.False(t, cfg.Asaas.Enabled())
		assert.False(t, cfg.FocusNFe.Enabled())
	})

	t.Run("loads values from environment variables with LOCAFLOW prefix", func(t *testing.T) {
		t.Setenv("LOCAFLOW_APP_NAME", "test-app")
		t.Setenv("LOCAFLOW_APP_PORT", "9000")
		t.Setenv("LOCAFLOW_DATABASE_DRIVER", "sqlite")
		t.Setenv("LOCAFLOW_DATABASE_PATH", ":memory:")
		t.Setenv("LOCAFLOW_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("LOCAFLOW_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("LOCAFLOW_ASAAS_API_KEY", "key")
		t.Setenv("LOCAFLOW_SCHEDULER_RECURRING_SCHEDULE", "0 3 * * *")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, ":memory:", cfg.Database.Path)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.True(t, cfg.Asaas.Enabled())
		assert.Equal(t, "0 3 * * *", cfg.Scheduler.RecurringSchedule)
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		t.Setenv("LOCAFLOW_DATABASE_DRIVER", "mysql")

		_, err := Load()
		assert.ErrorContains(t, err, "database.driver")
	})
}

func validProduction() *Config {
	cfg := &Config{App: AppConfig{Env: "production"}}
	applyDefaults(cfg)
	cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
	cfg.Database.Password = "secret"
	cfg.Database.SSLMode = "require"
	cfg.Cookie.Secure = true
	cfg.HTTP.CORSAllowOrigins = []string{"https://app.locaflow.com.br"}
	return cfg
}

func TestValidate_Production(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid", func(*Config) {}, ""},
		{"short jwt secret", func(c *Config) { c.JWT.Secret = "short" }, "jwt.secret"},
		{"insecure cookie", func(c *Config) { c.Cookie.Secure = false }, "cookie.secure"},
		{"ssl disabled", func(c *Config) { c.Database.SSLMode = "disable" }, "sslmode"},
		{"wildcard cors", func(c *Config) { c.HTTP.CORSAllowOrigins = []string{"*"} }, "cors_allow_origins"},
		{"sqlite", func(c *Config) { c.Database.Driver = "sqlite" }, "postgres in production"},
		{"asaas without webhook token", func(c *Config) { c.Asaas.APIKey = "key" }, "asaas.webhook_token"},
		{"open swagger", func(c *Config) { c.Swagger.Enabled = true }, "swagger"},
		{"full sql in traces", func(c *Config) { c.Telemetry.DBLogFullSQL = true }, "db_log_full_sql"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validProduction()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestValidate_Common(t *testing.T) {
	t.Run("same site none needs secure", func(t *testing.T) {
		cfg := &Config{}
		applyDefaults(cfg)
		cfg.Cookie.SameSite = "none"
		assert.ErrorContains(t, cfg.validate(), "same_site=none")
	})

	t.Run("storage needs bucket", func(t *testing.T) {
		cfg := &Config{}
		applyDefaults(cfg)
		cfg.Storage.Enabled = true
		assert.ErrorContains(t, cfg.validate(), "storage.bucket")
	})

	t.Run("sampling ratio bounds", func(t *testing.T) {
		cfg := &Config{}
		applyDefaults(cfg)
		cfg.Telemetry.SamplingRatio = 1.5
		assert.ErrorContains(t, cfg.validate(), "sampling_ratio")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss word", DBName: "locaflow", SSLMode: "require"}
	assert.Equal(t, "postgres://app:p%40ss%20word@db:5432/locaflow?sslmode=require", d.DSN())
}
