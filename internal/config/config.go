package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config interface {
	EnvConfig
	OAuthConfig
	StoreConfig
	PublishConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetRegionURL() string
}

type mainConfig struct {
	EnvVars
	OAuth
	Store
	Publish
}

// New loads the configuration from the process environment.
func New() (Config, error) {
	var c mainConfig
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("[config New] parse env: %w", err)
	}
	return c, nil
}

// NewFromMap loads the configuration from vars instead of the process environment.
func NewFromMap(vars map[string]string) (Config, error) {
	var c mainConfig
	if err := env.ParseWithOptions(&c, env.Options{Environment: vars}); err != nil {
		return nil, fmt.Errorf("[config NewFromMap] parse env: %w", err)
	}
	return c, nil
}
