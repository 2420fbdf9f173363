package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port                      int    `env:"PORT" envDefault:"8080"`
	DatabaseURL               string `env:"DATABASE_URL,required"`
	RedisURL                  string `env:"REDIS_URL,required"`
	PinterestAppID            string `env:"PINTEREST_APP_ID,required"`
	PinterestAppSecret        string `env:"PINTEREST_APP_SECRET,required"`
	BackendURL                string `env:"BACKEND_URL,required"`
	FrontendURL               string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	OAuthStateTTLSeconds      int    `env:"OAUTH_STATE_TTL_SECONDS" envDefault:"600"`
	TokenRefreshMarginSeconds int    `env:"TOKEN_REFRESH_MARGIN_SECONDS" envDefault:"300"`
	PublishTimeoutSeconds     int    `env:"PUBLISH_TIMEOUT_SECONDS" envDefault:"30"`
	RateLimitPerMin           int    `env:"RATE_LIMIT_PER_MIN" envDefault:"60"`
	LogLevel                  string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) OAuthStateTTL() time.Duration {
	return time.Duration(c.OAuthStateTTLSeconds) * time.Second
}

func (c *Config) TokenRefreshMargin() time.Duration {
	return time.Duration(c.TokenRefreshMarginSeconds) * time.Second
}

func (c *Config) PublishTimeout() time.Duration {
	return time.Duration(c.PublishTimeoutSeconds) * time.Second
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) RedirectURI() string {
	return strings.TrimRight(c.BackendURL, "/") + "/auth/pinterest/callback"
}

func (c *Config) Validate(isProduction bool) error {
	if !strings.HasPrefix(c.BackendURL, "http://") && !strings.HasPrefix(c.BackendURL, "https://") {
		return fmt.Errorf("BACKEND_URL must be an absolute http(s) URL")
	}

	if isProduction {
		if strings.HasPrefix(c.BackendURL, "http://") {
			return fmt.Errorf("BACKEND_URL must use https in production (Pinterest rejects plain-http redirect URIs)")
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
