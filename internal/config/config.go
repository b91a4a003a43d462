// Package config loads server settings from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the server settings.
type Config struct {
	Addr     string `env:"DIALOGUE_ADDR"      envDefault:":8765"`
	CropDir  string `env:"DIALOGUE_CROP_DIR"  envDefault:"/tmp/dialogue-ocr/crops"`
	Lang     string `env:"DIALOGUE_LANG"      envDefault:"kor"`
	Workers  int    `env:"DIALOGUE_WORKERS"   envDefault:"1"`
	LogLevel string `env:"LOG_LEVEL"          envDefault:"info"`

	JobTTL       time.Duration `env:"DIALOGUE_JOB_TTL"       envDefault:"1h"`
	ProgressRate float64       `env:"DIALOGUE_PROGRESS_RATE" envDefault:"10"`
}

// Load reads the configuration from the environment, applying defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg, nil
}
