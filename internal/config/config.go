// Package config loads the console's layered configuration: built-in
// defaults, then an optional YAML file, then SHOP_-prefixed environment
// variables (nested keys with __, e.g. SHOP_BACKEND__BASE_URL).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "SHOP_"

type Config struct {
	Backend struct {
		BaseURL string        `koanf:"base_url"`
		Timeout time.Duration `koanf:"timeout"`
	} `koanf:"backend"`

	Auth struct {
		// Token is the raw bearer credential issued by the identity provider.
		// TokenFile points at a file holding it instead, for tokens refreshed
		// out of band. Exactly one of the two must be set.
		Token     string `koanf:"token"`
		TokenFile string `koanf:"token_file"`
	} `koanf:"auth"`

	Redis struct {
		// Addr enables the shared Redis catalog cache; empty means the
		// process-local in-memory cache.
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
	} `koanf:"redis"`

	Log struct {
		Level string `koanf:"level"`
		File  string `koanf:"file"`
	} `koanf:"log"`

	Trace struct {
		Enabled bool `koanf:"enabled"`
	} `koanf:"trace"`
}

func defaults() map[string]any {
	return map[string]any{
		"backend.base_url": "http://localhost:8888",
		"backend.timeout":  "15s",
		"log.level":        "info",
	}
}

// Load builds the config. path may be empty; a missing explicit file is an
// error, since the operator asked for it.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url required")
	}
	if c.Auth.Token != "" && c.Auth.TokenFile != "" {
		return fmt.Errorf("auth.token and auth.token_file are mutually exclusive")
	}
	return nil
}

// BearerToken resolves the configured credential.
func (c Config) BearerToken() (string, error) {
	if c.Auth.Token != "" {
		return c.Auth.Token, nil
	}
	if c.Auth.TokenFile == "" {
		return "", fmt.Errorf("no bearer token configured (auth.token or auth.token_file)")
	}
	b, err := os.ReadFile(c.Auth.TokenFile)
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}
