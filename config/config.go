package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config contains storefront configuration parameters.
type Config struct {
	Port       string `env:"PORT" envDefault:"8080"`
	ListenAddr string `env:"LISTEN_ADDR"`
	BaseURL    string `env:"BASE_URL"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"debug"`

	EnableTracing  bool `env:"ENABLE_TRACING" envDefault:"false"`
	EnableProfiler bool `env:"ENABLE_PROFILER" envDefault:"false"`

	Backend Backend `envPrefix:"BACKEND_"`
	Session Session `envPrefix:"SESSION_"`
	Chat    Chat    `envPrefix:"CHAT_"`
}

// Backend contains parameters for reaching the REST backend.
type Backend struct {
	Addr    string        `env:"ADDR,required"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// Session contains profile-resolution parameters.
type Session struct {
	ProfileRetries int `env:"PROFILE_RETRIES" envDefault:"2"`
}

// Chat contains parameters for the realtime messaging provider.
type Chat struct {
	Endpoint string `env:"ENDPOINT"`
}

// New loads configuration from environment variables.
func New() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
