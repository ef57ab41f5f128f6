package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the settings that do not belong on the command line.
type Config struct {
	KrakenKey    string `yaml:"kraken_key"`
	KrakenSecret string `yaml:"kraken_secret"`
	Fiat         string `yaml:"fiat"`
	CacheDir     string `yaml:"cache_dir"`
}

// LoadConfig reads the configuration file and applies environment overrides.
// A missing file is not an error, credentials can come from the environment
// alone.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("cannot read config %q: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("cannot parse config %q: %w", path, err)
		}
	}

	// secrets from the environment win over the file
	if v := os.Getenv("TLT_KRAKEN_KEY"); v != "" {
		cfg.KrakenKey = v
	}
	if v := os.Getenv("TLT_KRAKEN_SECRET"); v != "" {
		cfg.KrakenSecret = v
	}

	if cfg.Fiat == "" {
		cfg.Fiat = "USD"
	}
	if cfg.CacheDir == "" {
		if dir, err := os.UserCacheDir(); err == nil {
			cfg.CacheDir = dir
		}
	}
	return cfg, nil
}
