// Package config loads the application configuration: built-in defaults, then an
// optional YAML or JSON file, then RECIPIENT_* environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. RECIPIENT_STORE_DRIVER.
const EnvPrefix = "RECIPIENT"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverLoam   = "loam"
	DriverSQL    = "sql"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config is the full application configuration.
type Config struct {
	LogLevel    string          `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	RecipientID string          `mapstructure:"recipient_id" yaml:"recipient_id" json:"recipient_id"`
	Store       StoreConfig     `mapstructure:"store" yaml:"store" json:"store"`
	Transport   TransportConfig `mapstructure:"transport" yaml:"transport" json:"transport"`
	HTTP        HTTPConfig      `mapstructure:"http" yaml:"http" json:"http"`
}

// StoreConfig selects and configures the record store.
type StoreConfig struct {
	Driver string      `mapstructure:"driver" yaml:"driver" json:"driver"`
	Redis  RedisConfig `mapstructure:"redis" yaml:"redis" json:"redis"`
	Loam   LoamConfig  `mapstructure:"loam" yaml:"loam" json:"loam"`
	SQL    SQLConfig   `mapstructure:"sql" yaml:"sql" json:"sql"`

	Encryption EncryptionConfig `mapstructure:"encryption" yaml:"encryption" json:"encryption"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr" json:"addr"`
	Password string        `mapstructure:"password" yaml:"password" json:"password"`
	DB       int           `mapstructure:"db" yaml:"db" json:"db"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix" json:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl" json:"ttl"`
}

type LoamConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir" json:"dir"`
}

type SQLConfig struct {
	DSN string `mapstructure:"dsn" yaml:"dsn" json:"dsn"`
}

// EncryptionConfig seals account numbers at rest. Keys are base64 AES-256 keys;
// an empty Key disables encryption.
type EncryptionConfig struct {
	Key          string   `mapstructure:"key" yaml:"key" json:"key"`
	FallbackKeys []string `mapstructure:"fallback_keys" yaml:"fallback_keys" json:"fallback_keys"`
}

// TransportConfig shapes the simulated network.
type TransportConfig struct {
	Latency   time.Duration `mapstructure:"latency" yaml:"latency" json:"latency"`
	RateLimit float64       `mapstructure:"rate_limit" yaml:"rate_limit" json:"rate_limit"`
	Burst     int           `mapstructure:"burst" yaml:"burst" json:"burst"`
}

// HTTPConfig configures the screen server.
type HTTPConfig struct {
	Addr      string  `mapstructure:"addr" yaml:"addr" json:"addr"`
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit" json:"rate_limit"`
	Burst     int     `mapstructure:"burst" yaml:"burst" json:"burst"`
}

func defaults() map[string]any {
	return map[string]any{
		"log_level":    "info",
		"recipient_id": "1",
		"store": map[string]any{
			"driver": DriverMemory,
			"redis": map[string]any{
				"addr":     "localhost:6379",
				"password": "",
				"db":       0,
				"prefix":   "recipient:",
				"ttl":      "0s",
			},
			"loam": map[string]any{"dir": "./recipients"},
			"sql":  map[string]any{"dsn": "recipients.db"},
			"encryption": map[string]any{
				"key":           "",
				"fallback_keys": "",
			},
		},
		"transport": map[string]any{
			"latency":    "1s",
			"rate_limit": 0,
			"burst":      0,
		},
		"http": map[string]any{
			"addr":       ":8080",
			"rate_limit": 20,
			"burst":      40,
		},
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg, err := decode(defaults())
	if err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return cfg
}

// Load builds the configuration. path may be empty; a missing file is an error
// only when a path was given.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	raw := defaults()

	if path != "" {
		file, err := readFile(path)
		if err != nil {
			return nil, err
		}
		merge(raw, file)
	}

	applyEnv(raw, nil, lookup)

	cfg, err := decode(raw)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	out := map[string]any{}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return out, nil
	}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return out, nil
}

// merge copies src into dst, descending into nested sections.
func merge(dst, src map[string]any) {
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			if existing, ok := dst[k].(map[string]any); ok {
				merge(existing, sub)
				continue
			}
		}
		dst[k] = v
	}
}

// applyEnv overrides every known leaf with RECIPIENT_<PATH>, e.g. RECIPIENT_HTTP_ADDR.
func applyEnv(raw map[string]any, path []string, lookup func(string) (string, bool)) {
	for k, v := range raw {
		keyPath := append(append([]string{}, path...), k)
		if sub, ok := v.(map[string]any); ok {
			applyEnv(sub, keyPath, lookup)
			continue
		}
		if val, ok := lookup(EnvName(keyPath...)); ok {
			raw[k] = val
		}
	}
}

// EnvName returns the environment variable overriding the given key path.
func EnvName(path ...string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.Join(path, "_"))
}

func decode(raw map[string]any) (*Config, error) {
	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	var problems []string

	switch c.Store.Driver {
	case DriverMemory, DriverRedis, DriverLoam, DriverSQL:
	default:
		problems = append(problems, fmt.Sprintf("store.driver %q is not one of memory, redis, loam, sql", c.Store.Driver))
	}
	if c.Transport.Latency < 0 {
		problems = append(problems, "transport.latency must not be negative")
	}
	if c.Transport.RateLimit < 0 || c.HTTP.RateLimit < 0 {
		problems = append(problems, "rate_limit must not be negative")
	}
	if c.RecipientID == "" {
		problems = append(problems, "recipient_id is required")
	}

	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
}
