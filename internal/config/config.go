package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MinVerifyWait covers the verification scenario's 1s ttl plus a second of
// backend eviction slack.
const MinVerifyWait = 2 * time.Second

type Config struct {
	ListenAddr          string        `yaml:"listen_addr"`
	BackendAddr         string        `yaml:"backend_addr"`
	BackendPassword     string        `yaml:"backend_password"`
	BackendDB           int           `yaml:"backend_db"`
	BackendPoolSize     int           `yaml:"backend_pool_size"`
	BackendDialTimeout  time.Duration `yaml:"backend_dial_timeout"`
	BackendReadTimeout  time.Duration `yaml:"backend_read_timeout"`
	BackendWriteTimeout time.Duration `yaml:"backend_write_timeout"`
	MetricsAddr         string        `yaml:"metrics_addr"`
	LogLevel            string        `yaml:"log_level"`
	LogFormat           string        `yaml:"log_format"`
	VerifyBaseURL       string        `yaml:"verify_base_url"`
	VerifyWait          time.Duration `yaml:"verify_wait"`
}

func Defaults() Config {
	return Config{
		ListenAddr:          "127.0.0.1:3000",
		BackendAddr:         "127.0.0.1:19260",
		BackendPoolSize:     10,
		BackendDialTimeout:  5 * time.Second,
		BackendReadTimeout:  3 * time.Second,
		BackendWriteTimeout: 3 * time.Second,
		LogLevel:            "info",
		LogFormat:           "console",
		VerifyBaseURL:       "http://localhost:3000",
		VerifyWait:          2 * time.Second,
	}
}

// Load starts from Defaults, applies the YAML file named by KVGATE_CONFIG
// when set, then lets KVGATE_* environment variables override both.
func Load() (Config, error) {
	cfg := Defaults()

	if path := os.Getenv("KVGATE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	cfg.ListenAddr = getenv("KVGATE_LISTEN_ADDR", cfg.ListenAddr)
	cfg.BackendAddr = getenv("KVGATE_BACKEND_ADDR", cfg.BackendAddr)
	cfg.BackendPassword = getenv("KVGATE_BACKEND_PASSWORD", cfg.BackendPassword)
	cfg.BackendDB = getenvInt("KVGATE_BACKEND_DB", cfg.BackendDB)
	cfg.BackendPoolSize = getenvInt("KVGATE_BACKEND_POOL_SIZE", cfg.BackendPoolSize)
	cfg.BackendDialTimeout = getenvDuration("KVGATE_BACKEND_DIAL_TIMEOUT", cfg.BackendDialTimeout)
	cfg.BackendReadTimeout = getenvDuration("KVGATE_BACKEND_READ_TIMEOUT", cfg.BackendReadTimeout)
	cfg.BackendWriteTimeout = getenvDuration("KVGATE_BACKEND_WRITE_TIMEOUT", cfg.BackendWriteTimeout)
	cfg.MetricsAddr = getenv("KVGATE_METRICS_ADDR", cfg.MetricsAddr)
	cfg.LogLevel = getenv("KVGATE_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getenv("KVGATE_LOG_FORMAT", cfg.LogFormat)
	cfg.VerifyBaseURL = getenv("KVGATE_VERIFY_BASE_URL", cfg.VerifyBaseURL)
	cfg.VerifyWait = getenvDuration("KVGATE_VERIFY_WAIT", cfg.VerifyWait)

	if strings.TrimSpace(cfg.ListenAddr) == "" {
		return cfg, errors.New("KVGATE_LISTEN_ADDR is required")
	}
	if strings.TrimSpace(cfg.BackendAddr) == "" {
		return cfg, errors.New("KVGATE_BACKEND_ADDR is required")
	}
	if cfg.BackendPoolSize <= 0 {
		return cfg, errors.New("KVGATE_BACKEND_POOL_SIZE must be positive")
	}
	if cfg.VerifyWait < MinVerifyWait {
		return cfg, errors.New("KVGATE_VERIFY_WAIT must be at least " + MinVerifyWait.String())
	}
	switch cfg.LogFormat {
	case "console", "json":
	default:
		return cfg, errors.New("KVGATE_LOG_FORMAT must be console or json")
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// getenvDuration accepts Go duration strings ("500ms") or bare seconds ("3").
func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return time.Duration(n) * time.Second
}
