package main

import (
	stdLog "log"
	"time"

	"github.com/Astemirdum/library-circulation/library/app"
	"github.com/Astemirdum/library-circulation/library/config"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

// @title Library circulation API
// @version 1.0
// @BasePath /api/v1
func main() {
	if err := godotenv.Load(); err != nil {
		stdLog.Println("no .env file, reading config from environment")
	}
	cfg := config.NewConfig(
		config.WithLogLevel(zapcore.DebugLevel),
		config.WithWriteTimeout(time.Minute),
	)

	if err := app.Run(cfg); err != nil {
		stdLog.Fatal("app.Run ", err)
	}
}
