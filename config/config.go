package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the server configuration, loaded from YAML with
// environment overrides for deployment.
type Config struct {
	HTTP   HTTPConfig   `yaml:"http"`
	Log    LogConfig    `yaml:"log"`
	AWS    AWSConfig    `yaml:"aws"`
	Auth   AuthConfig   `yaml:"auth"`
	Worker WorkerConfig `yaml:"worker"`
}

type HTTPConfig struct {
	Addr        string        `yaml:"addr"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type AWSConfig struct {
	Region string `yaml:"region"`
}

type AuthConfig struct {
	JWTSecret       string        `yaml:"jwt_secret"`
	FreshnessMargin time.Duration `yaml:"freshness_margin"`
	RefreshTimeout  time.Duration `yaml:"refresh_timeout"`
}

type WorkerConfig struct {
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"`
}

// Load reads the config file at path (optional) and applies
// environment overrides and defaults.
func Load(path string) (Config, error) {
	cfg := Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if cfg.Auth.JWTSecret == "" {
		return Config{}, fmt.Errorf("auth jwt secret is required")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.HTTP.Addr = ":" + v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.AWS.Region = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("MATCH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Worker.Workers = n
		}
	}
	if v := os.Getenv("MATCH_QUEUE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Worker.QueueSize = n
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.ReadTimeout <= 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout <= 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Auth.FreshnessMargin <= 0 {
		cfg.Auth.FreshnessMargin = 5 * time.Minute
	}
	if cfg.Auth.RefreshTimeout <= 0 {
		cfg.Auth.RefreshTimeout = 10 * time.Second
	}
	if cfg.Worker.Workers <= 0 {
		cfg.Worker.Workers = 2
	}
	if cfg.Worker.QueueSize <= 0 {
		cfg.Worker.QueueSize = 256
	}
}
