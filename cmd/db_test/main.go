package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go-job-extractor/internal/config"
	"go-job-extractor/internal/database"
	"go-job-extractor/utils"
)

func main() {
	// config.Load also reads .env
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log, err := utils.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set. Please check your .env file.")
	}

	log.Info("Attempting to connect to PostgreSQL...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := database.ConnectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to the database. Error: %v (check your connection string, password, and network access)", err)
	}
	defer repo.Close()

	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("❌ Schema setup failed: %v", err)
	}

	latest, total, err := repo.ListJobs(ctx, 0, 1, "")
	if err != nil {
		log.Fatalf("❌ Query failed: %v", err)
	}

	log.Info("✅ Successfully connected to the database!")
	log.Infof("📦 Jobs mirrored: %d", total)
	if len(latest) > 0 {
		log.Infof("🆕 Latest: %s at %s (%s)", latest[0].Title, latest[0].Company, latest[0].ScrapedAt.Format(time.RFC3339))
	}
}
