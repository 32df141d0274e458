package config

import "github.com/caarlos0/env/v11"

// BotConfig drives the table simulator.
type BotConfig struct {
	Bots    int    `env:"BOT_COUNT" envDefault:"4"`
	Hands   int    `env:"BOT_HANDS" envDefault:"5"`
	Seed    int64  `env:"BOT_SEED" envDefault:"1"`
	BuyIn   string `env:"BOT_BUY_IN" envDefault:"100"`
	Balance string `env:"BOT_BALANCE" envDefault:"1000"`
}

func LoadBot() (BotConfig, error) {
	var cfg BotConfig
	err := env.Parse(&cfg)
	return cfg, err
}
