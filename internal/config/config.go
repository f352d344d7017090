// Package config loads service configuration from file and environment.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Actor      ActorConfig      `mapstructure:"actor"`
	Migration  MigrationConfig  `mapstructure:"migration"`
	Validation ValidationConfig `mapstructure:"validation"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// ConnString renders a pgx-compatible connection string.
func (d DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type NATSConfig struct {
	URL           string        `mapstructure:"url"`
	Name          string        `mapstructure:"name"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Stream        string        `mapstructure:"stream"`
}

type ActorConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type MigrationConfig struct {
	BatchSize int `mapstructure:"batch_size"`
}

type ValidationConfig struct {
	MaxStringLength int    `mapstructure:"max_string_length"`
	SampleSize      int    `mapstructure:"sample_size"`
	MinDate         string `mapstructure:"min_date"`
	Strict          bool   `mapstructure:"strict"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Default returns the built-in defaults, matching the SetDefault block in
// Load. Commands fall back to it when no config can be loaded.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8787,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "sitepulse",
			Database: "sitepulse",
			SSLMode:  "disable",
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			CacheTTL: 5 * time.Minute,
		},
		NATS: NATSConfig{
			URL:           "nats://localhost:4222",
			Name:          "sitepulse",
			MaxReconnects: -1,
			ReconnectWait: 2 * time.Second,
			Timeout:       5 * time.Second,
			Stream:        "DUALWRITE",
		},
		Actor: ActorConfig{
			BaseURL: "http://localhost:8788",
			Timeout: 30 * time.Second,
		},
		Migration: MigrationConfig{BatchSize: 50},
		Validation: ValidationConfig{
			MaxStringLength: 2000,
			SampleSize:      100,
			MinDate:         "2020-01-01",
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

// Load reads configuration from the given path, falling back to ./config.yaml
// and /etc/sitepulse. Environment variables with the SITEPULSE_ prefix override
// file values.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8787)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "sitepulse")
	v.SetDefault("database.database", "sitepulse")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", "5m")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.name", "sitepulse")
	v.SetDefault("nats.max_reconnects", -1)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.timeout", "5s")
	v.SetDefault("nats.stream", "DUALWRITE")
	v.SetDefault("actor.base_url", "http://localhost:8788")
	v.SetDefault("actor.timeout", "30s")
	v.SetDefault("migration.batch_size", 50)
	v.SetDefault("validation.max_string_length", 2000)
	v.SetDefault("validation.sample_size", 100)
	v.SetDefault("validation.min_date", "2020-01-01")
	v.SetDefault("validation.strict", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/sitepulse")
	}

	v.SetEnvPrefix("SITEPULSE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No config file; defaults plus environment apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Migration.BatchSize < 1 {
		return fmt.Errorf("migration batch_size must be positive, got %d", cfg.Migration.BatchSize)
	}
	if cfg.Validation.MaxStringLength < 1 {
		return fmt.Errorf("validation max_string_length must be positive, got %d", cfg.Validation.MaxStringLength)
	}
	if cfg.Actor.BaseURL == "" {
		return fmt.Errorf("actor base_url is required")
	}
	return nil
}
