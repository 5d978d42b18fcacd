// Package config loads swipematch settings from an optional YAML file and
// SWIPEMATCH_* environment variables. Environment values win.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/MJE43/swipematch/internal/catalog"
	"github.com/MJE43/swipematch/internal/engine"
	"github.com/MJE43/swipematch/internal/gesture"
	"gopkg.in/yaml.v3"
)

const envPrefix = "SWIPEMATCH_"

// Config is the full application configuration.
type Config struct {
	HTTPAddr string `yaml:"http_addr"`
	DBPath   string `yaml:"db_path"`
	LogLevel string `yaml:"log_level"`
	// RequestTimeout bounds each API request.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	Catalog CatalogConfig  `yaml:"catalog"`
	Keyring KeyringConfig  `yaml:"keyring"`
	Gesture gesture.Config `yaml:"gesture"`
	// Ranges holds the identifier bounds [min, max) per entity kind.
	Ranges map[string]engine.Bounds `yaml:"ranges"`
}

// CatalogConfig configures the upstream catalog client.
type CatalogConfig struct {
	PokemonBaseURL string        `yaml:"pokemon_base_url"`
	CatBaseURL     string        `yaml:"cat_base_url"`
	MaxRetries     uint64        `yaml:"max_retries"`
	BaseRetryDelay time.Duration `yaml:"base_retry_delay"`
	MaxRetryDelay  time.Duration `yaml:"max_retry_delay"`
	Concurrency    int           `yaml:"concurrency"`
}

// KeyringConfig configures where the cat API key is stored.
type KeyringConfig struct {
	Service      string `yaml:"service"`
	FallbackPath string `yaml:"fallback_path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	dataDir := defaultDataDir()
	return &Config{
		HTTPAddr:       ":8080",
		DBPath:         filepath.Join(dataDir, "swipematch.db"),
		LogLevel:       "info",
		RequestTimeout: 30 * time.Second,
		Catalog: CatalogConfig{
			PokemonBaseURL: "https://pokeapi.co/api/v2",
			CatBaseURL:     "https://api.thecatapi.com/v1",
			MaxRetries:     3,
			BaseRetryDelay: 500 * time.Millisecond,
			MaxRetryDelay:  5 * time.Second,
			Concurrency:    8,
		},
		Keyring: KeyringConfig{
			Service:      "swipematch",
			FallbackPath: filepath.Join(dataDir, "secrets.json"),
		},
		Gesture: gesture.DefaultConfig(),
		Ranges: map[string]engine.Bounds{
			catalog.KindPokemon: {Min: 1, Max: 1019},
			catalog.KindCat:     {Min: 1, Max: 1000},
		},
	}
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "swipematch")
	}
	return "."
}

// Load reads path (when non-empty and present), then applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	c.HTTPAddr = envOr("HTTP_ADDR", c.HTTPAddr)
	c.DBPath = envOr("DB_PATH", c.DBPath)
	c.LogLevel = envOr("LOG_LEVEL", c.LogLevel)
	c.Catalog.PokemonBaseURL = envOr("POKEMON_BASE_URL", c.Catalog.PokemonBaseURL)
	c.Catalog.CatBaseURL = envOr("CAT_BASE_URL", c.Catalog.CatBaseURL)
	c.Keyring.Service = envOr("KEYRING_SERVICE", c.Keyring.Service)
	c.Keyring.FallbackPath = envOr("KEYRING_FALLBACK", c.Keyring.FallbackPath)

	if v := os.Getenv(envPrefix + "REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid %sREQUEST_TIMEOUT %q: %w", envPrefix, v, err)
		}
		c.RequestTimeout = d
	}
	if v := os.Getenv(envPrefix + "MAX_RETRIES"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: invalid %sMAX_RETRIES %q: %w", envPrefix, v, err)
		}
		c.Catalog.MaxRetries = n
	}
	if v := os.Getenv(envPrefix + "CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid %sCONCURRENCY %q: %w", envPrefix, v, err)
		}
		c.Catalog.Concurrency = n
	}
	return nil
}

// Validate checks the settings the rest of the program relies on.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: invalid log level %q", c.LogLevel)
	}
	if c.DBPath == "" {
		return fmt.Errorf("config: db_path is required")
	}
	if c.Catalog.Concurrency < 1 {
		return fmt.Errorf("config: catalog concurrency must be at least 1")
	}
	for kind, b := range c.Ranges {
		if !catalog.ValidKind(kind) {
			return fmt.Errorf("config: range for unknown kind %q", kind)
		}
		if err := b.Validate(); err != nil {
			return fmt.Errorf("config: range %s: %w", kind, err)
		}
	}
	if err := c.Gesture.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Range returns the identifier bounds for kind.
func (c *Config) Range(kind string) (engine.Bounds, bool) {
	b, ok := c.Ranges[kind]
	return b, ok
}

// CatalogClientConfig converts the catalog section to client settings.
func (c *Config) CatalogClientConfig(apiKey, userAgent string) catalog.Config {
	return catalog.Config{
		PokemonBaseURL: c.Catalog.PokemonBaseURL,
		CatBaseURL:     c.Catalog.CatBaseURL,
		CatAPIKey:      apiKey,
		MaxRetries:     c.Catalog.MaxRetries,
		BaseRetryDelay: c.Catalog.BaseRetryDelay,
		MaxRetryDelay:  c.Catalog.MaxRetryDelay,
		Concurrency:    c.Catalog.Concurrency,
		UserAgent:      userAgent,
	}
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: mkdir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(envPrefix + key); v != "" {
		return v
	}
	return fallback
}
