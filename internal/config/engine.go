package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type EngineConfig struct {
	TurnTime        int           `env:"TURN_TIME" envDefault:"60"`
	AfkTurnTime     int           `env:"AFK_TURN_TIME" envDefault:"10"`
	RoundExpiration int           `env:"ROUND_EXPIRATION" envDefault:"10"`
	PollInterval    time.Duration `env:"POLL_INTERVAL" envDefault:"1s"`
	ReformThreshold int           `env:"REFORM_THRESHOLD" envDefault:"5"`
}

func LoadEngine() (EngineConfig, error) {
	var cfg EngineConfig
	err := env.Parse(&cfg)
	return cfg, err
}
