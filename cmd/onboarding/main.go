package main

import (
	"log"

	"github.com/fjpedrosa/caetaria-sub000/internal/app"
	"github.com/fjpedrosa/caetaria-sub000/internal/config"
	"github.com/fjpedrosa/caetaria-sub000/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl := logger.New(cfg.LogLevel)
	defer zl.Sync()

	if err := app.Run(cfg, zl); err != nil {
		log.Fatalf("app: %v", err)
	}
}
