package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"gocredible/internal"
	"gocredible/internal/config"
	"gocredible/internal/container"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	internal.DefaultLogger = internal.NewDefaultLogger()

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	c, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create container: %v", err)
	}
	if err := c.LoadDataset(context.Background()); err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}

	srv, err := c.UIServer()
	if err != nil {
		log.Fatal("Failed to create UI app:", err)
	}

	log.Printf("Starting accuracy report UI on http://localhost%s", srv.Addr)
	log.Fatal(srv.ListenAndServe())
}
