package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"assetprice/internal/logging"
)

type Server struct {
	Port               string `json:"port"`
	RequestTimeoutSec  int    `json:"request_timeout_sec"`
	ShutdownTimeoutSec int    `json:"shutdown_timeout_sec"`
}

type Yahoo struct {
	BaseURL string `json:"base_url"`
	// Crumb and Cookie are only needed when Yahoo starts rejecting
	// anonymous quote requests from the deployment's address.
	Crumb          string `json:"crumb"`
	Cookie         string `json:"cookie"`
	MaxConcurrency int    `json:"max_concurrency"`
}

type CoinGecko struct {
	BaseURL      string `json:"base_url"`
	APIKey       string `json:"api_key"`
	APIKeyHeader string `json:"api_key_header"`
}

type Cache struct {
	Backend    string `json:"backend"` // memory, redis or none
	TTLSeconds int    `json:"ttl_sec"`
	MaxItems   int    `json:"max_items"`
}

type Redis struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	Prefix   string `json:"prefix"`
}

type Log struct {
	Level  string `json:"level"`
	Format string `json:"format"` // text or json
}

type Config struct {
	Server    Server    `json:"server"`
	Yahoo     Yahoo     `json:"yahoo"`
	CoinGecko CoinGecko `json:"coingecko"`
	Cache     Cache     `json:"cache"`
	Redis     Redis     `json:"redis"`
	Log       Log       `json:"log"`
}

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

func Default() Config {
	return Config{
		Server: Server{Port: "3000", RequestTimeoutSec: 10, ShutdownTimeoutSec: 10},
		Yahoo: Yahoo{
			BaseURL:        "https://query1.finance.yahoo.com",
			MaxConcurrency: 10,
		},
		CoinGecko: CoinGecko{
			BaseURL:      "https://api.coingecko.com/api/v3",
			APIKeyHeader: "x-cg-demo-api-key",
		},
		Cache: Cache{Backend: BackendMemory, TTLSeconds: 30, MaxItems: 10000},
		Redis: Redis{Addr: "localhost:6379", Prefix: "assetprice:"},
		Log:   Log{Level: "info", Format: "text"},
	}
}

// env lists the supported overrides. Only variables that are set replace
// file values.
type env struct {
	Port               *string `envconfig:"PORT"`
	ServerPort         *string `envconfig:"SERVER_PORT"`
	RequestTimeoutSec  *int    `envconfig:"REQUEST_TIMEOUT_SEC"`
	ShutdownTimeoutSec *int    `envconfig:"SHUTDOWN_TIMEOUT_SEC"`

	YahooBaseURL        *string `envconfig:"YAHOO_BASE_URL"`
	YahooCrumb          *string `envconfig:"YAHOO_CRUMB"`
	YahooCookie         *string `envconfig:"YAHOO_COOKIE"`
	YahooMaxConcurrency *int    `envconfig:"YAHOO_MAX_CONCURRENCY"`

	CoinGeckoBaseURL      *string `envconfig:"COINGECKO_BASE_URL"`
	CoinGeckoAPIKey       *string `envconfig:"COINGECKO_API_KEY"`
	CoinGeckoAPIKeyHeader *string `envconfig:"COINGECKO_API_KEY_HEADER"`

	CacheBackend  *string `envconfig:"CACHE_BACKEND"`
	CacheTTLSec   *int    `envconfig:"CACHE_TTL_SEC"`
	CacheMaxItems *int    `envconfig:"CACHE_MAX_ITEMS"`

	RedisAddr     *string `envconfig:"REDIS_ADDR"`
	RedisPassword *string `envconfig:"REDIS_PASSWORD"`
	RedisDB       *int    `envconfig:"REDIS_DB"`
	RedisPrefix   *string `envconfig:"REDIS_PREFIX"`

	LogLevel  *string `envconfig:"LOG_LEVEL"`
	LogFormat *string `envconfig:"LOG_FORMAT"`
}

// Load builds the configuration from defaults, a JSON file, an optional
// .env file and the process environment, in that order. If path is empty
// CONFIG_FILE is used, then ./config.json when it exists.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	if _, err := os.Stat(".env"); err == nil {
		// godotenv never overrides variables already present.
		if err := godotenv.Load(".env"); err != nil {
			return cfg, fmt.Errorf("load .env: %w", err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	var e env
	if err := envconfig.Process("", &e); err != nil {
		return fmt.Errorf("env: %w", err)
	}
	set(&cfg.Server.Port, e.Port)
	set(&cfg.Server.Port, e.ServerPort)
	set(&cfg.Server.RequestTimeoutSec, e.RequestTimeoutSec)
	set(&cfg.Server.ShutdownTimeoutSec, e.ShutdownTimeoutSec)
	set(&cfg.Yahoo.BaseURL, e.YahooBaseURL)
	set(&cfg.Yahoo.Crumb, e.YahooCrumb)
	set(&cfg.Yahoo.Cookie, e.YahooCookie)
	set(&cfg.Yahoo.MaxConcurrency, e.YahooMaxConcurrency)
	set(&cfg.CoinGecko.BaseURL, e.CoinGeckoBaseURL)
	set(&cfg.CoinGecko.APIKey, e.CoinGeckoAPIKey)
	set(&cfg.CoinGecko.APIKeyHeader, e.CoinGeckoAPIKeyHeader)
	set(&cfg.Cache.Backend, e.CacheBackend)
	set(&cfg.Cache.TTLSeconds, e.CacheTTLSec)
	set(&cfg.Cache.MaxItems, e.CacheMaxItems)
	set(&cfg.Redis.Addr, e.RedisAddr)
	set(&cfg.Redis.Password, e.RedisPassword)
	set(&cfg.Redis.DB, e.RedisDB)
	set(&cfg.Redis.Prefix, e.RedisPrefix)
	set(&cfg.Log.Level, e.LogLevel)
	set(&cfg.Log.Format, e.LogFormat)
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Port) == "" {
		return errors.New("config: server.port is required")
	}
	if c.Server.RequestTimeoutSec < 0 || c.Server.ShutdownTimeoutSec < 0 {
		return errors.New("config: server timeouts must not be negative")
	}
	for name, raw := range map[string]string{
		"yahoo.base_url":     c.Yahoo.BaseURL,
		"coingecko.base_url": c.CoinGecko.BaseURL,
	} {
		u, err := url.ParseRequestURI(raw)
		if err != nil || u.Host == "" {
			return fmt.Errorf("config: invalid %s %q", name, raw)
		}
	}
	if c.Yahoo.MaxConcurrency < 0 {
		return errors.New("config: yahoo.max_concurrency must not be negative")
	}
	switch c.Cache.Backend {
	case BackendMemory, BackendNone:
	case BackendRedis:
		if c.Redis.Addr == "" {
			return errors.New("config: redis.addr is required for the redis cache backend")
		}
	default:
		return fmt.Errorf("config: unknown cache.backend %q", c.Cache.Backend)
	}
	if c.Cache.TTLSeconds < 0 || c.Cache.MaxItems < 0 {
		return errors.New("config: cache ttl and max items must not be negative")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: unknown log.format %q", c.Log.Format)
	}
	return nil
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSec) * time.Second
}

func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSec) * time.Second
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}
