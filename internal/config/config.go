package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		APIURL string `yaml:"api_url"`
		WSURL  string `yaml:"ws_url"`
	} `yaml:"server"`
	Auth struct {
		Token    string `yaml:"token"`
		Username string `yaml:"username"`
	} `yaml:"auth"`
	Arena struct {
		CacheTTL string `yaml:"cache_ttl"`
	} `yaml:"arena"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.Server.APIURL = "http://localhost:8080"
	cfg.Server.WSURL = "ws://localhost:8080/ws"
	cfg.Log.Level = "info"
	return cfg
}

// Load reads YAML config from path, applied over Default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty
// or malformed.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
