package common

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the runtime configuration of the finder service.
type Config struct {
	ListenAddress    string        `envconfig:"LISTEN_ADDRESS" default:":8080"`
	ApiUrl           string        `envconfig:"API_URL" default:"http://localhost:5000/api/properties"`
	SearchTimeout    time.Duration `envconfig:"SEARCH_TIMEOUT" default:"10s"`
	FeaturedFallback bool          `envconfig:"FEATURED_FALLBACK" default:"true"`
	EmptyFallback    bool          `envconfig:"EMPTY_FALLBACK" default:"true"`

	RedisUrl      string        `envconfig:"REDIS_URL"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDb       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTtl      time.Duration `envconfig:"CACHE_TTL" default:"1m"`

	RabbitUrl string `envconfig:"RABBIT_URL"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	RateLimit int    `envconfig:"RATE_LIMIT" default:"100"`

	Timeouts TimeoutConfig
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.ApiUrl == "" {
		return nil, errors.New("api url must be provided")
	}
	if cfg.SearchTimeout <= 0 {
		return nil, errors.New("search timeout must be positive")
	}
	return &cfg, nil
}

func (c *Config) CacheEnabled() bool {
	return c != nil && c.RedisUrl != ""
}

func (c *Config) TrackingEnabled() bool {
	return c != nil && c.RabbitUrl != ""
}
