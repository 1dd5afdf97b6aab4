package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/todmy/topic-miner/internal/api"
	"github.com/todmy/topic-miner/internal/auth"
	"github.com/todmy/topic-miner/internal/config"
	"github.com/todmy/topic-miner/internal/storage"
)

func main() {
	_ = godotenv.Load()

	configPath := os.Getenv("MINER_CONFIG")
	if configPath == "" {
		configPath = "miner.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Server.JWTSecret == "" {
		log.Fatalf("JWT_SECRET must be set")
	}

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	server := api.NewServer(api.ServerConfig{
		TopicTerms:     store.TopicTerms,
		Runs:           store.Runs,
		Auth:           auth.NewJWTService(auth.Config{SecretKey: cfg.Server.JWTSecret}),
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	fmt.Printf("Starting topic-miner server on port %s\n", cfg.Server.Port)
	if err := server.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
