// Package config loads the server configuration file.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so config files can use "15m" style values.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Store selects the run persistence backend.
type Store string

const (
	StoreFile  Store = "file"
	StoreRedis Store = "redis"
)

// Config holds everything the serve command needs. Zero values are filled
// in by defaults; the webhook secret can also come from the environment.
type Config struct {
	// Listen is the HTTP bind address.
	Listen string `yaml:"listen"`

	// WorkflowDir points at a directory of workflow YAML files. Empty
	// means the embedded catalog.
	WorkflowDir string `yaml:"workflow_dir"`

	// Store selects run persistence: "file" or "redis".
	Store Store `yaml:"store"`

	// StateDir is where the file store keeps run records.
	StateDir string `yaml:"state_dir"`

	// RedisAddr is the redis host:port, used when Store is "redis".
	RedisAddr string `yaml:"redis_addr"`

	// WebhookSecret authenticates incoming event deliveries. Falls back
	// to the GANTRY_WEBHOOK_SECRET environment variable.
	WebhookSecret string `yaml:"webhook_secret"`

	// EncryptionKey seals run records at rest. Base64-encoded 32 bytes;
	// empty disables encryption.
	EncryptionKey string `yaml:"encryption_key"`

	// Redact lists regular expressions masked out of step output before a
	// run record is persisted.
	Redact []string `yaml:"redact"`

	// RateLimit caps event intake, deliveries per second.
	RateLimit float64 `yaml:"rate_limit"`

	// TokenTTL bounds the lifetime of minted publish tokens.
	TokenTTL Duration `yaml:"token_ttl"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Listen:    ":8420",
		Store:     StoreFile,
		StateDir:  ".gantry/runs",
		RedisAddr: "localhost:6379",
		RateLimit: 20,
		TokenTTL:  Duration(15 * time.Minute),
	}
}

// Load reads a config file and applies defaults. An empty path returns the
// defaults; a missing file at an explicit path is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		applyEnv(&cfg)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnv(&cfg)
	return cfg, cfg.validate()
}

func applyEnv(cfg *Config) {
	if cfg.WebhookSecret == "" {
		cfg.WebhookSecret = os.Getenv("GANTRY_WEBHOOK_SECRET")
	}
}

// EncryptionKeyBytes decodes the configured key, nil when disabled.
func (c Config) EncryptionKeyBytes() ([]byte, error) {
	if c.EncryptionKey == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption_key is not valid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption_key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

func (c Config) validate() error {
	switch c.Store {
	case StoreFile, StoreRedis:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store)
	}
	if _, err := c.EncryptionKeyBytes(); err != nil {
		return err
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("rate_limit must be positive, got %v", c.RateLimit)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive, got %v", c.TokenTTL)
	}
	return nil
}
