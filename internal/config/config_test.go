package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8888", cfg.Backend.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend:
  base_url: https://shop.example.com
  timeout: 5s
redis:
  addr: localhost:6379
log:
  level: debug
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("SHOP_BACKEND__BASE_URL", "https://env.example.com")
	t.Setenv("SHOP_LOG__LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_MissingExplicitFileIsAnError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate_TokenSourcesAreExclusive(t *testing.T) {
	var cfg Config
	cfg.Backend.BaseURL = "http://localhost:8888"
	cfg.Auth.Token = "raw"
	cfg.Auth.TokenFile = "/tmp/token"

	assert.Error(t, cfg.Validate())
}

func TestBearerToken_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("  the-token\n"), 0o600))

	var cfg Config
	cfg.Auth.TokenFile = path

	tok, err := cfg.BearerToken()
	require.NoError(t, err)
	assert.Equal(t, "the-token", tok)
}

func TestBearerToken_NoneConfigured(t *testing.T) {
	var cfg Config
	_, err := cfg.BearerToken()
	assert.Error(t, err)
}
