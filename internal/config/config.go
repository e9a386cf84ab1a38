package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the service configuration. A YAML file supplies the base values;
// PORT, DATABASE_URL, and REDIS_URL environment variables override it so
// container deployments need no file at all.
type Config struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`
	RedisURL    string `yaml:"redis_url"`

	Routing struct {
		CacheTTL     time.Duration `yaml:"cache_ttl"`
		HistoryLimit int           `yaml:"history_limit"`
	} `yaml:"routing"`

	Optimizer struct {
		PopulationSize int     `yaml:"population_size"`
		Generations    int     `yaml:"generations"`
		MutationRate   float64 `yaml:"mutation_rate"`
	} `yaml:"optimizer"`

	RateLimit struct {
		PerSecond float64 `yaml:"per_second"`
		Burst     int     `yaml:"burst"`
	} `yaml:"rate_limit"`
}

// Load reads the YAML file at path when it exists, applies environment
// overrides, and fills defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// fall through to env/defaults
		default:
			return Config{}, err
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.Routing.CacheTTL <= 0 {
		c.Routing.CacheTTL = 5 * time.Minute
	}
	if c.Routing.HistoryLimit <= 0 {
		c.Routing.HistoryLimit = 256
	}
	if c.Optimizer.PopulationSize <= 0 {
		c.Optimizer.PopulationSize = 50
	}
	if c.Optimizer.Generations <= 0 {
		c.Optimizer.Generations = 100
	}
	if c.Optimizer.MutationRate <= 0 {
		c.Optimizer.MutationRate = 0.1
	}
	if c.RateLimit.PerSecond <= 0 {
		c.RateLimit.PerSecond = 50
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 100
	}
}

func (c *Config) validate() error {
	if c.Optimizer.MutationRate > 1 {
		return fmt.Errorf("optimizer.mutation_rate %v out of range (0,1]", c.Optimizer.MutationRate)
	}
	return nil
}
