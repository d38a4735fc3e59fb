package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backend names accepted in configuration.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendStatic = "static"
)

type Config struct {
	Addr         string        `yaml:"addr"`
	Backend      string        `yaml:"backend"`
	DatabasePath string        `yaml:"database_path"`
	RedisAddr    string        `yaml:"redis_addr"`
	RedisKey     string        `yaml:"redis_key"`
	SnapshotPath string        `yaml:"snapshot_path"`
	StaticDir    string        `yaml:"static_dir"`
	APITimeout   time.Duration `yaml:"timeout"`
	ProxyTimeout time.Duration `yaml:"proxy_timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:         getEnv("VISTORIA_ADDR", ":8080"),
		Backend:      getEnv("VISTORIA_BACKEND", BackendSQLite),
		DatabasePath: getEnv("VISTORIA_DATABASE_PATH", "database.db"),
		RedisAddr:    getEnv("VISTORIA_REDIS_ADDR", "localhost:6379"),
		RedisKey:     getEnv("VISTORIA_REDIS_KEY", ""),
		SnapshotPath: getEnv("VISTORIA_SNAPSHOT_PATH", ""),
		StaticDir:    getEnv("VISTORIA_STATIC_DIR", "public"),
		APITimeout:   30 * time.Second,
		ProxyTimeout: 5 * time.Second,
		MaxBodyBytes: 10 << 20,
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	switch cfg.Backend {
	case BackendSQLite, BackendRedis, BackendStatic:
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
