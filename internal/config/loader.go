package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
// The YAML file path is the path argument, falling back to the CONFIG_PATH env.
// An explicit path that does not exist is an error; with no path at all the
// configuration is loaded from ENV + defaults only.
func Load(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config: file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}
