package config

import (
	"os"
	"time"

	"go.uber.org/zap/zapcore"
)

type Option func(cfg *Config)

func WithLogLevel(lvl zapcore.Level) Option {
	return func(cfg *Config) {
		if _, ok := os.LookupEnv("LOG_LEVEL"); ok {
			return
		}
		cfg.Log.LogLevel = lvl
	}
}

func WithWriteTimeout(d time.Duration) Option {
	return func(cfg *Config) {
		if _, ok := os.LookupEnv("HTTP_WRITE"); ok {
			return
		}
		cfg.Server.WriteTimeout = d
	}
}
