package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// RuntimeOptions are per-invocation knobs read from the environment rather
// than from the profile file.
type RuntimeOptions struct {
	ConfigPath  string `env:"WARLOCK_CONFIG" envDefault:"configs/player.yaml"`
	ArchivePath string `env:"WARLOCK_ARCHIVE"`
	Workers     int    `env:"WARLOCK_WORKERS" envDefault:"0"`
	Seed        uint64 `env:"WARLOCK_SEED" envDefault:"0"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadRuntimeOptions parses RuntimeOptions from the environment.
func LoadRuntimeOptions() (RuntimeOptions, error) {
	var opts RuntimeOptions
	if err := ParseEnv(&opts); err != nil {
		return RuntimeOptions{}, err
	}
	return opts, nil
}

// Apply overlays non-zero runtime options onto cfg.
func (o RuntimeOptions) Apply(cfg *Configuration) {
	if o.Workers > 0 {
		cfg.Simulation.Workers = o.Workers
	}
	if o.Seed != 0 {
		cfg.Simulation.Seed = o.Seed
	}
}
