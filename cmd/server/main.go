package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/simplylizz/wannatalk/internal/server"
	"github.com/simplylizz/wannatalk/internal/server/config"
)

func main() {
	// .env is optional, used for local development
	_ = godotenv.Load()

	cfg := config.LoadConfig()

	app := server.NewApp(cfg)
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
