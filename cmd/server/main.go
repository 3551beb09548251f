package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/workhive/filegate/internal/config"
	"github.com/workhive/filegate/internal/server"
)

func main() {

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found")
	}

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}
}
