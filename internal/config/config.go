package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Addr         string        `env:"QUIZCAST_ADDR" envDefault:":8080"`
	ReapInterval time.Duration `env:"QUIZCAST_REAP_INTERVAL" envDefault:"5m"`
	RoomTTL      time.Duration `env:"QUIZCAST_ROOM_TTL" envDefault:"5m"`
	FallbackDir  string        `env:"QUIZCAST_FALLBACK_DIR" envDefault:"data/rooms"`
	FallbackTTL  time.Duration `env:"QUIZCAST_FALLBACK_TTL" envDefault:"1h"`
	LogLevel     zapcore.Level `env:"QUIZCAST_LOG_LEVEL" envDefault:"info"`
}

// Load reads .env when present, then parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
