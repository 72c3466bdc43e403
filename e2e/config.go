package e2e

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Colours     bool          `envconfig:"E2E_COLOURS" default:"true"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"ERROR"`
	DialTimeout time.Duration `envconfig:"E2E_DIAL_TIMEOUT" default:"2s"`
	ReadTimeout time.Duration `envconfig:"E2E_READ_TIMEOUT" default:"2s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
