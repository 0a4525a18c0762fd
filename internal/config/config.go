// Package config provides runtime configuration values for the service.
package config

import (
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the connection URLs of the external collaborators plus HTTP
// server knobs. Empty URLs select the in-process fallbacks (memory store,
// in-process cache, nop bus).
type Config struct {
	HTTPAddr         string        `envconfig:"HTTP_ADDR" default:":8080"`
	ShutdownTimeout  time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	DatabaseURL      string        `envconfig:"DATABASE_URL"`
	RedisURL         string        `envconfig:"REDIS_URL"`
	RabbitMQURL      string        `envconfig:"RABBITMQ_URL"`
	RabbitMQUser     string        `envconfig:"RABBITMQ_USER" default:"guest"`
	RabbitMQPassword string        `envconfig:"RABBITMQ_PASSWORD" default:"guest"`
	CacheTTL         time.Duration `envconfig:"CACHE_TTL" default:"5m"`
}

// Load collects configuration from environment with defaults.
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// BusURL returns the RabbitMQ URL with the configured credentials folded in.
// A URL that already carries userinfo wins over RABBITMQ_USER/PASSWORD.
func (c Config) BusURL() string {
	if c.RabbitMQURL == "" {
		return ""
	}
	u, err := url.Parse(c.RabbitMQURL)
	if err != nil {
		return c.RabbitMQURL
	}
	if u.User == nil && c.RabbitMQUser != "" {
		u.User = url.UserPassword(c.RabbitMQUser, c.RabbitMQPassword)
	}
	return u.String()
}
