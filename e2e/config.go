package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_SERVER_ADDR points at a running server, e.g. localhost:3001.
	// Empty skips the whole suite.
	ServerAddr string `envconfig:"E2E_SERVER_ADDR"`
	// E2E_DEBUG_JSON allows dumping full websocket frames as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
