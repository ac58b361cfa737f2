package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rpggio/projtrack/internal/domain/project"
	"gopkg.in/yaml.v3"
)

// Transport modes.
const (
	TransportHTTP  = "http"
	TransportStdio = "stdio"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	Registry  RegistryConfig  `yaml:"registry"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"`
}

// RegistryConfig sets the defaults for sessions that do not pick their own.
type RegistryConfig struct {
	Variant  string `yaml:"variant"`
	IDPolicy string `yaml:"id_policy"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: TransportHTTP,
		},
		Registry: RegistryConfig{
			Variant:  string(project.VariantFull),
			IDPolicy: string(project.IDSequence),
		},
		DB: DBConfig{
			Path: "projtrack.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads .env, then an optional YAML file, then environment variables.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path := os.Getenv("PROJTRACK_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("PROJTRACK_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("PROJTRACK_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PROJTRACK_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("PROJTRACK_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("PROJTRACK_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("PROJTRACK_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if mode := os.Getenv("PROJTRACK_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if variant := os.Getenv("PROJTRACK_VARIANT"); variant != "" {
		cfg.Registry.Variant = variant
	}
	if policy := os.Getenv("PROJTRACK_ID_POLICY"); policy != "" {
		cfg.Registry.IDPolicy = policy
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated settings and normalizes their case.
func (c *Config) Validate() error {
	mode := strings.ToLower(strings.TrimSpace(c.Transport.Mode))
	switch mode {
	case TransportHTTP, TransportStdio:
		c.Transport.Mode = mode
	default:
		return fmt.Errorf("invalid transport mode %q", c.Transport.Mode)
	}

	variant, err := project.ParseVariant(c.Registry.Variant)
	if err != nil {
		return fmt.Errorf("registry.variant: %w", err)
	}
	c.Registry.Variant = string(variant)

	policy, err := project.ParseIDPolicy(c.Registry.IDPolicy)
	if err != nil {
		return fmt.Errorf("registry.id_policy: %w", err)
	}
	c.Registry.IDPolicy = string(policy)

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// VariantValue returns the validated default variant.
func (c Config) VariantValue() project.Variant {
	return project.Variant(c.Registry.Variant)
}

// IDPolicyValue returns the validated default id policy.
func (c Config) IDPolicyValue() project.IDPolicy {
	return project.IDPolicy(c.Registry.IDPolicy)
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
