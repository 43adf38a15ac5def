package config

import "time"

type PublishConfig interface {
	GetPublishURL() string
	GetPublishMaxAttempts() uint
	GetPublishRetryDelay() time.Duration
	GetPublishTimeout() time.Duration
}

type Publish struct {
	URL         string        `env:"SGO_PUBLISH_URL" envDefault:"http://localhost:5000/"`
	MaxAttempts uint          `env:"SGO_PUBLISH_MAX_ATTEMPTS" envDefault:"5"`
	RetryDelay  time.Duration `env:"SGO_PUBLISH_RETRY_DELAY" envDefault:"2s"`
	Timeout     time.Duration `env:"SGO_PUBLISH_TIMEOUT" envDefault:"5s"`
}

var _ PublishConfig = Publish{}

func (p Publish) GetPublishURL() string {
	return p.URL
}

func (p Publish) GetPublishMaxAttempts() uint {
	return p.MaxAttempts
}

func (p Publish) GetPublishRetryDelay() time.Duration {
	return p.RetryDelay
}

func (p Publish) GetPublishTimeout() time.Duration {
	return p.Timeout
}
