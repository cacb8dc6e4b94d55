package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:            "3000",
		Env:             "development",
		StoreBackend:    StoreMemory,
		SessionBackend:  SessionStore,
		SessionTTL:      24 * time.Hour,
		TracingExporter: "stdout",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"Defaults", func(c *Config) {}, false},
		{"Postgres without DATABASE_URL", func(c *Config) { c.StoreBackend = StorePostgres }, true},
		{"Postgres with DATABASE_URL", func(c *Config) {
			c.StoreBackend = StorePostgres
			c.DatabaseURL = "postgres://localhost/stays"
		}, false},
		{"Mongo without MONGO_URI", func(c *Config) { c.StoreBackend = StoreMongo }, true},
		{"Unknown store", func(c *Config) { c.StoreBackend = "sqlite" }, true},
		{"Redis sessions without URL", func(c *Config) {
			c.SessionBackend = SessionRedis
			c.RedisURL = ""
		}, true},
		{"Unknown session backend", func(c *Config) { c.SessionBackend = "cookie" }, true},
		{"Zero session TTL", func(c *Config) { c.SessionTTL = 0 }, true},
		{"OIDC issuer without client", func(c *Config) { c.OIDCIssuer = "https://id.example.com" }, true},
		{"OIDC complete", func(c *Config) {
			c.OIDCIssuer = "https://id.example.com"
			c.OIDCClientID = "stays"
			c.OIDCRedirectURL = "http://localhost:3000/auth/sso/callback"
		}, false},
		{"Unknown tracing exporter", func(c *Config) {
			c.TracingEnabled = true
			c.TracingExporter = "zipkin"
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("PORT", "")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "3000", c.Port)
	assert.Equal(t, StoreMemory, c.StoreBackend)
	assert.Equal(t, 24*time.Hour, c.SessionTTL)
	assert.Equal(t, "sample_airbnb", c.MongoDatabase)
	assert.False(t, c.SSOEnabled())
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/stays?sslmode=disable")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("APP_ENV", "production")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, StorePostgres, c.StoreBackend)
	assert.Equal(t, 2*time.Hour, c.SessionTTL)
	assert.True(t, c.IsProduction())
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("STORE_BACKEND", "mongo")
	t.Setenv("MONGO_URI", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}
