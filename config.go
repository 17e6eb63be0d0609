package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// configPath is where defaults are read from when --config is not given.
const configPath = ".gpxsnap.yml"

// Config carries defaults for the command line flags, so repeated runs over
// the same data don't need them spelled out every time.
type Config struct {
	Dist    float64 `yaml:"dist" validate:"omitempty,gt=0"`
	Mode    string  `yaml:"mode" validate:"omitempty,oneof=add move"`
	Ele     bool    `yaml:"ele"`
	Verbose bool    `yaml:"verbose"`
}

// loadConfig reads fpath. A missing file is only an error when the path was
// given explicitly.
func loadConfig(fpath string, explicit bool) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(fpath)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %q: %w", fpath, err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return cfg, fmt.Errorf("validating config %q: %w", fpath, err)
	}
	return cfg, nil
}
