package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-job-extractor/internal/ai"
	"go-job-extractor/internal/browser"
	"go-job-extractor/internal/config"
	"go-job-extractor/internal/database"
	"go-job-extractor/internal/scraper"
	"go-job-extractor/internal/store"
	"go-job-extractor/internal/telegram"
	"go-job-extractor/utils"

	"github.com/cockroachdb/errors"
)

func main() {
	os.Exit(run())
}

func run() int {
	//load config
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to load config: %v\n", err)
		return 1
	}

	log, err := utils.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Errorf("❌ Invalid config: %v", err)
		return 1
	}
	log.Infof("🔧 Config loaded. Max jobs: %d, source: %s", cfg.MaxJobs, cfg.Source)

	//bound the whole run
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RunTimeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := ai.NewOpenAIClient(ai.OpenAIOptions{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Timeout: cfg.OpenAI.CallTimeout,
	})
	extractor := ai.NewExtractor(client, ai.ExtractorOptions{
		ExtractionModel: cfg.OpenAI.ExtractionModel,
		VisionModel:     cfg.OpenAI.VisionModel,
		MaxTokens:       cfg.OpenAI.MaxTokens,
		MaxHTMLChars:    cfg.OpenAI.MaxHTMLChars,
		CallTimeout:     cfg.OpenAI.CallTimeout,
	}, log)

	fileStore := store.New(store.Options{
		Dir:         cfg.Output.Dir,
		JobPrefix:   cfg.Output.JobPrefix,
		SessionsDir: cfg.Output.SessionsDir,
	}, log)

	session := browser.NewSession(cfg.Browser, cfg.Selectors, log)

	orch := scraper.NewOrchestrator(session, extractor, fileStore, scraper.Options{
		SearchURL: cfg.SearchURL,
		Source:    cfg.Source,
		MaxJobs:   cfg.MaxJobs,
		Delay:     cfg.Delay,
	}, log)

	//optional postgres mirror
	if cfg.DatabaseURL != "" {
		repo, err := database.ConnectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Warnf("⚠️ Database unavailable, continuing with files only: %v", err)
		} else {
			defer repo.Close()
			if err := repo.EnsureSchema(ctx); err != nil {
				log.Warnf("⚠️ Could not ensure database schema: %v", err)
			} else {
				orch.WithMirror(repo)
				log.Info("🗄️ Mirroring jobs to Postgres")
			}
		}
	}

	//optional telegram summary
	if cfg.NotifierEnabled() {
		bot, err := telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Warnf("⚠️ Failed to init Telegram Bot: %v", err)
		} else {
			orch.WithNotifier(bot)
			log.Info("🤖 Telegram Bot initialized.")
		}
	}

	summary, err := orch.Run(ctx)
	if err != nil {
		if errors.Is(err, scraper.ErrFatal) {
			log.Errorf("💥 Scraper aborted: %v", err)
		} else {
			log.Errorf("❌ Scraper finished with error: %v", err)
		}
		return 1
	}

	log.Infof("👋 Scraper finished: %d saved, %d skipped, %d failed",
		summary.SuccessfulJobs, summary.SkippedJobs, summary.FailedJobs)
	return 0
}
