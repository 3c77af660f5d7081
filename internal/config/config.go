// Package config provides hierarchical configuration loading for TaskForge.
// Precedence: defaults < YAML file < environment variables.
package config

import "time"

// Config holds all runtime configuration for the TaskForge core service.
type Config struct {
	Server   Server   `yaml:"server"`
	Logging  Logging  `yaml:"logging"`
	NATS     NATS     `yaml:"nats"`
	Postgres Postgres `yaml:"postgres"`
	Breaker  Breaker  `yaml:"breaker"`
	Cache    Cache    `yaml:"cache"`
	Foreman  Foreman  `yaml:"foreman"`
}

// Foreman holds plan execution configuration.
type Foreman struct {
	MaxParallel    int           `yaml:"max_parallel"`     // Max concurrent delegations per pipeline (default: 4)
	MaxRetries     int           `yaml:"max_retries"`      // Retries after the first failed attempt (default: 2)
	MaxPlanNodes   int           `yaml:"max_plan_nodes"`   // Plan construction node cap (default: 10)
	TaskSLA        time.Duration `yaml:"task_sla"`         // Per-delegation deadline (default: 5m)
	RetryBaseDelay time.Duration `yaml:"retry_base_delay"` // First retry delay (default: 2s)
	RetryMaxDelay  time.Duration `yaml:"retry_max_delay"`  // Backoff cap (default: 30s)
}

// Server holds HTTP server configuration.
type Server struct {
	Port       string `yaml:"port"`
	CORSOrigin string `yaml:"cors_origin"`
}

// NATS holds delegation transport configuration.
type NATS struct {
	URL string `yaml:"url"`
}

// Postgres holds the optional result archive connection. An empty DSN
// disables archiving; the pipeline itself never depends on it.
type Postgres struct {
	DSN      string        `yaml:"dsn"`
	MaxConns int32         `yaml:"max_conns"`
	MinConns int32         `yaml:"min_conns"`
	MaxLife  time.Duration `yaml:"max_conn_lifetime"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
	Async   bool   `yaml:"async"`
}

// Breaker holds delegation circuit breaker configuration.
type Breaker struct {
	MaxFailures int           `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Cache holds the delegation dedup cache configuration.
type Cache struct {
	MaxSizeMB int64         `yaml:"max_size_mb"`
	TTL       time.Duration `yaml:"ttl"`
}

// Defaults returns a Config with sensible default values for local development.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:       "8080",
			CORSOrigin: "http://localhost:3000",
		},
		Logging: Logging{
			Level:   "info",
			Service: "taskforge-core",
		},
		NATS: NATS{
			URL: "nats://localhost:4222",
		},
		Postgres: Postgres{
			MaxConns: 10,
			MinConns: 1,
			MaxLife:  time.Hour,
		},
		Breaker: Breaker{
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		},
		Cache: Cache{
			MaxSizeMB: 64,
			TTL:       10 * time.Minute,
		},
		Foreman: Foreman{
			MaxParallel:    4,
			MaxRetries:     2,
			MaxPlanNodes:   10,
			TaskSLA:        5 * time.Minute,
			RetryBaseDelay: 2 * time.Second,
			RetryMaxDelay:  30 * time.Second,
		},
	}
}
