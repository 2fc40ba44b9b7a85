package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodSecret = "0123456789abcdef0123456789abcdef"

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, EnvDev, c.App.Env)
	assert.Equal(t, "/api", c.Server.APIPrefix)
	assert.Equal(t, 10*time.Minute, c.Codes.TTL)
	assert.Equal(t, 30*24*time.Hour, c.JWT.AccessTTL)
	assert.Equal(t, 100, c.Rate.MaxRequests)
	assert.Equal(t, 15*time.Minute, c.Rate.Window)
	assert.Equal(t, DefaultFrontendURL, c.FrontendURL())
	assert.Equal(t, DriverMemory, c.CodesDriver())
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	p := writeYAML(t, `
app:
  env: prod
server:
  api_prefix: v1/
frontend:
  url: https://portal.example.com
storage:
  driver: postgres
  dsn: postgres://localhost/devportal
codes:
  driver: redis
jwt:
  secret: short
  access_ttl: 1h
`)
	t.Setenv("JWT_SECRET", goodSecret)
	t.Setenv("REDIS_ADDR", "redis:6380")

	c, err := Load(p)
	require.NoError(t, err)
	assert.True(t, c.IsProd())
	assert.Equal(t, "/v1", c.Server.APIPrefix)
	assert.Equal(t, goodSecret, c.JWT.Secret)
	assert.Equal(t, time.Hour, c.JWT.AccessTTL)
	assert.Equal(t, "redis:6380", c.Cache.Redis.Addr)
	assert.Equal(t, DriverRedis, c.CodesDriver())
	assert.Equal(t, "https://portal.example.com", c.FrontendURL())
	require.NoError(t, c.Validate())
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeYAML(t, "server: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"missing secret", func(c *Config) { c.JWT.Secret = "" }, "jwt.secret is required"},
		{"short secret in prod", func(c *Config) {
			c.App.Env = EnvProd
			c.Frontend.URL = "https://portal.example.com"
			c.JWT.Secret = "short"
		}, "at least 32 bytes"},
		{"prod without frontend", func(c *Config) { c.App.Env = EnvProd }, "frontend.url is required"},
		{"relative frontend", func(c *Config) { c.Frontend.URL = "/portal" }, "not an absolute URL"},
		{"unknown storage", func(c *Config) { c.Storage.Driver = "mongo" }, "unknown storage.driver"},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = DriverPostgres }, "storage.dsn is required"},
		{"unknown codes", func(c *Config) { c.Codes.Driver = "etcd" }, "unknown codes.driver"},
		{"pg codes on memory", func(c *Config) { c.Codes.Driver = DriverPostgres }, "requires storage.driver postgres"},
		{"zero code ttl", func(c *Config) { c.Codes.TTL = 0 }, "codes.ttl must be positive"},
		{"zero redis grace", func(c *Config) { c.Codes.RedisGrace = 0 }, "codes.redis_grace must be positive"},
		{"zero access ttl", func(c *Config) { c.JWT.AccessTTL = 0 }, "jwt.access_ttl must be positive"},
		{"bad rate", func(c *Config) { c.Rate.MaxRequests = 0 }, "rate.window and rate.max_requests"},
		{"bad sweep", func(c *Config) { c.Sweep.Interval = 0 }, "sweep.interval must be positive"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			c.JWT.Secret = goodSecret
			tc.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestValidate_DevShortSecretAllowed(t *testing.T) {
	c := Default()
	c.JWT.Secret = "dev"
	assert.NoError(t, c.Validate())
}
