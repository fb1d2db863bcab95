package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the top-level service configuration. Values come from an
// optional YAML file and can be overridden by environment variables, which
// is what the container deployments use.
type Config struct {
	// Listen is the HTTP listen address, e.g. ":8080".
	Listen string `yaml:"listen"`

	// DatabaseURL is the Postgres connection string.
	DatabaseURL string `yaml:"database_url"`

	// RedisURL / RedisPassword / RedisDB locate the seen-notification
	// ledger store.
	RedisURL      string `yaml:"redis_url"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// JWTSecret verifies HMAC-signed bearer tokens; StaticTokens is a
	// comma-separated list of administrator service tokens.
	JWTSecret    string `yaml:"jwt_hmac_secret"`
	StaticTokens string `yaml:"static_tokens"`

	// PollIntervalSeconds is the notification poll cadence per session.
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
}

func defaults() *Config {
	return &Config{
		Listen:              ":8080",
		RedisURL:            "localhost:6379",
		PollIntervalSeconds: 30,
	}
}

// Load reads the YAML file at path (missing file is fine, defaults apply)
// and then applies environment overrides.
func Load(path string) (*Config, error) {
	conf := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, conf); err != nil {
				return nil, err
			}
		case errors.Is(err, fs.ErrNotExist):
			// First run without a config file: env vars carry everything.
		default:
			return nil, err
		}
	}

	applyEnv(conf)

	if conf.PollIntervalSeconds <= 0 {
		conf.PollIntervalSeconds = 30
	}
	return conf, nil
}

func applyEnv(conf *Config) {
	if v := os.Getenv("PORT"); v != "" {
		conf.Listen = ":" + v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		conf.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		conf.RedisURL = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		conf.RedisPassword = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			conf.RedisDB = n
		}
	}
	if v := os.Getenv("JWT_HMAC_SECRET"); v != "" {
		conf.JWTSecret = v
	}
	if v := os.Getenv("STATIC_TOKENS"); v != "" {
		conf.StaticTokens = v
	}
	if v := os.Getenv("POLL_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			conf.PollIntervalSeconds = n
		}
	}
}
