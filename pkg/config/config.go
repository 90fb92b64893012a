package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App     AppConfig
	Catalog CatalogConfig
	Redis   RedisConfig
	Session SessionConfig
	CORS    CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PIZZA_APP_ENV" default:"dev"`
	Port         string `envconfig:"PIZZA_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"PIZZA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PIZZA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// CatalogConfig points at the upstream menu/order backend.
type CatalogConfig struct {
	MenuURL  string        `envconfig:"PIZZA_CATALOG_MENU_URL" required:"true"`
	OrderURL string        `envconfig:"PIZZA_CATALOG_ORDER_URL" required:"true"`
	APIKey   string        `envconfig:"PIZZA_CATALOG_API_KEY"`
	Timeout  time.Duration `envconfig:"PIZZA_CATALOG_TIMEOUT" default:"10s"`
	CacheTTL time.Duration `envconfig:"PIZZA_CATALOG_CACHE_TTL" default:"5m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PIZZA_REDIS_URL"`
	Address      string        `envconfig:"PIZZA_REDIS_ADDR"`
	Password     string        `envconfig:"PIZZA_REDIS_PASSWORD"`
	DB           int           `envconfig:"PIZZA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PIZZA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PIZZA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PIZZA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PIZZA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PIZZA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint is configured at all. The menu
// cache is skipped entirely when it is not.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type SessionConfig struct {
	IdleTTL       time.Duration `envconfig:"PIZZA_SESSION_IDLE_TTL" default:"30m"`
	ReapInterval  time.Duration `envconfig:"PIZZA_SESSION_REAP_INTERVAL" default:"5m"`
	SearchLimit   int           `envconfig:"PIZZA_MENU_SEARCH_LIMIT" default:"5"`
	MinScore      float64       `envconfig:"PIZZA_MENU_MIN_SCORE" default:"0.3"`
	ResolveScore  float64       `envconfig:"PIZZA_MENU_RESOLVE_SCORE" default:"0.6"`
	SuggestScore  float64       `envconfig:"PIZZA_MENU_SUGGEST_SCORE" default:"0.2"`
	SuggestLimit  int           `envconfig:"PIZZA_MENU_SUGGEST_LIMIT" default:"3"`
	MenuSummaryN  int           `envconfig:"PIZZA_MENU_SUMMARY_PER_CATEGORY" default:"5"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"PIZZA_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}
