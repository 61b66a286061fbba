package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           string   `yaml:"port" env:"PORT"`
		AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
	} `yaml:"server"`
	Log struct {
		Env   string `yaml:"env" env:"APP_ENV"`
		Level string `yaml:"level" env:"LOG_LEVEL"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB"`
		TTL      string `yaml:"ttl" env:"REDIS_SESSION_TTL"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url" env:"DATABASE_URL"`
	} `yaml:"postgres"`
	REST struct {
		URL    string `yaml:"url" env:"DATASTORE_URL"`
		APIKey string `yaml:"api_key" env:"DATASTORE_API_KEY"`
		Table  string `yaml:"table" env:"DATASTORE_TABLE"`
	} `yaml:"rest"`
	Quiz struct {
		Version       string `yaml:"version" env:"QUIZ_VERSION"`
		CatalogTTL    string `yaml:"catalog_ttl" env:"QUIZ_CATALOG_TTL"`
		SubmitTimeout string `yaml:"submit_timeout" env:"QUIZ_SUBMIT_TIMEOUT"`
	} `yaml:"quiz"`
}

// Load reads YAML config from path and overlays environment variables.
// A missing file is not an error; the environment alone may configure the service.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return cfg, err
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
