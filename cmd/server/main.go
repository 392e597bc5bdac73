package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go-job-extractor/internal/api"
	"go-job-extractor/internal/config"
	"go-job-extractor/internal/database"
	"go-job-extractor/internal/store"
	"go-job-extractor/utils"
)

func main() {
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

	var source api.JobSource
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		repo, err := database.ConnectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("❌ Failed to connect to database: %v", err)
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("❌ Failed to ensure schema: %v", err)
		}
		defer repo.Close()
		source = repo
		log.Info("🗄️ Serving jobs from Postgres")
	} else {
		source = api.NewFileSource(store.New(store.Options{
			Dir:       cfg.Output.Dir,
			JobPrefix: cfg.Output.JobPrefix,
		}, log))
		log.Infof("📂 Serving jobs from %s", cfg.Output.Dir)
	}

	r := api.NewRouter(source, log)

	log.Infof("Server listening on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
