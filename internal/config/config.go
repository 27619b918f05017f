package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	DatabaseURL   string        `env:"DATABASE_URL"`
	Port          string        `env:"PORT" envDefault:"8080"`
	CORSOrigin    string        `env:"CORS_ORIGIN" envDefault:"*"`
	QuoteBaseURL  string        `env:"QUOTE_BASE_URL" envDefault:"https://query1.finance.yahoo.com"`
	QuoteTimeout  time.Duration `env:"QUOTE_TIMEOUT" envDefault:"5s"`
	QuoteCacheTTL time.Duration `env:"QUOTE_CACHE_TTL" envDefault:"15s"`
	// Trade events are disabled when no brokers are configured.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"trades"`
}

func Load() (Config, error) {
	var cfg Config
	return cfg, env.Parse(&cfg)
}
