package config

import "github.com/caarlos0/env/v11"

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty bool   `env:"LOG_PRETTY" envDefault:"false"`
	// SampleEvery keeps one record out of N when above 1.
	SampleEvery int `env:"LOG_SAMPLE_EVERY" envDefault:"0"`
	// File switches output from stdout to a file rotated at MaxMB.
	File  string `env:"LOG_FILE"`
	MaxMB int    `env:"LOG_MAX_MB" envDefault:"10"`
}

func LoadLog() (LogConfig, error) {
	var cfg LogConfig
	err := env.Parse(&cfg)
	return cfg, err
}
