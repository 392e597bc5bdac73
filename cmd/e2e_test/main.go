package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go-job-extractor/internal/config"
	"go-job-extractor/internal/database"
	"go-job-extractor/internal/models"
	"go-job-extractor/internal/telegram"
	"go-job-extractor/utils"

	"github.com/google/uuid"
)

// Pushes a fake record through the Postgres mirror and sends a fake run
// summary to Telegram, without touching the browser or OpenAI.
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

	if cfg.DatabaseURL == "" || !cfg.NotifierEnabled() {
		log.Fatal("Missing DATABASE_URL, TELEGRAM_BOT_TOKEN, or TELEGRAM_CHAT_ID")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 1. Connect DB
	repo, err := database.ConnectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}
	defer repo.Close()
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("Schema setup failed: %v", err)
	}

	// 2. Mirror a fake job
	start := time.Now().UTC()
	mockJob := models.JobRecord{
		Title:           "Senior Backend Engineer (Go/PostgreSQL)",
		Company:         "E2E Test Ltd",
		Description:     "Build robust scraping and extraction pipelines.",
		Technologies:    []string{"Go", "PostgreSQL", "Docker"},
		VisaSponsorship: models.VisaUnknown,
		Salary:          "£60,000",
		Location:        "London",
		Remote:          models.RemoteUnknown,
		ExperienceLevel: models.ExperienceUnknown,
		Link:            fmt.Sprintf("https://example.com/e2e/%d", start.Unix()),
		ScrapedAt:       start,
		Source:          "e2e_test",
	}
	inserted, err := repo.SaveJob(ctx, 0, mockJob)
	if err != nil {
		log.Fatalf("Could not save mock job: %v", err)
	}
	log.Infof("✅ DB Setup Complete. Inserted: %t", inserted)

	// 3. Send a summary via Telegram BOT
	bot, err := telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		log.Fatalf("Failed to initialize telegram bot: %v", err)
	}

	summary := models.SessionSummary{
		RunID:          uuid.NewString(),
		StartTime:      start,
		EndTime:        time.Now().UTC(),
		Status:         models.RunComplete,
		TotalJobs:      2,
		SuccessfulJobs: 1,
		FailedJobs:     1,
		Errors: []models.SlotError{
			{SlotIndex: 2, Error: "slot 2: job details did not load within 10s"},
		},
	}
	if err := bot.SendSummary(summary); err != nil {
		log.Fatalf("Failed to send summary: %v", err)
	}

	log.Info("✅ Sent test summary to Telegram! Check the chat.")
}
