// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr            string        `yaml:"addr"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Database struct {
		URL             string        `yaml:"url"`
		MaxOpenConns    int           `yaml:"max_open_conns"`
		MaxIdleConns    int           `yaml:"max_idle_conns"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	} `yaml:"database"`

	RabbitMQ struct {
		URL         string `yaml:"url"`
		Exchange    string `yaml:"exchange"`
		AlertsQueue string `yaml:"alerts_queue"`
	} `yaml:"rabbitmq"`

	Redis struct {
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		CacheTTL time.Duration `yaml:"cache_ttl"`
	} `yaml:"redis"`

	Workers int `yaml:"workers"`

	Auth struct {
		JWTSecret string        `yaml:"jwt_secret"`
		TokenTTL  time.Duration `yaml:"token_ttl"`
	} `yaml:"auth"`

	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
}

// Default returns a config with every optional setting filled in.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Addr = ":8080"
	cfg.Server.ReadTimeout = 15 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Database.MaxOpenConns = 20
	cfg.Database.MaxIdleConns = 5
	cfg.Database.ConnMaxLifetime = 30 * time.Minute
	cfg.RabbitMQ.Exchange = "velocity.events"
	cfg.RabbitMQ.AlertsQueue = "velocity_alerts_queue"
	cfg.Redis.CacheTTL = 30 * time.Second
	cfg.Workers = 4
	cfg.Auth.TokenTTL = 24 * time.Hour
	cfg.Log.Level = "info"
	return cfg
}

// LoadConfig reads the YAML file over the defaults and then applies
// VELOCITY_* environment overrides. A missing file is not an error when the
// environment supplies what Validate needs.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Addr, "VELOCITY_HTTP_ADDR")
	setString(&c.Database.URL, "VELOCITY_DATABASE_URL")
	setString(&c.RabbitMQ.URL, "VELOCITY_RABBITMQ_URL")
	setString(&c.Redis.Addr, "VELOCITY_REDIS_ADDR")
	setString(&c.Redis.Password, "VELOCITY_REDIS_PASSWORD")
	setString(&c.Auth.JWTSecret, "VELOCITY_JWT_SECRET")
	setString(&c.Log.Level, "VELOCITY_LOG_LEVEL")
	if v := os.Getenv("VELOCITY_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("VELOCITY_WORKERS: %w", err)
		}
		c.Workers = n
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	return nil
}
