package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/you/fintrack/internal/app"
	"github.com/you/fintrack/internal/config"
)

func main() {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := app.Run(cfg); err != nil {
		log.Fatalf("app: %v", err)
	}
}
