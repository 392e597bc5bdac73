package main

import (
	"context"
	"fmt"
	"os"

	"go-job-extractor/internal/browser"
	"go-job-extractor/internal/config"
	"go-job-extractor/utils"
)

// Opens the configured search page, lists the cards and captures the first
// one. Useful for checking selectors after the site layout changes.
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

	log.Info("🧪 Testing browser session...")

	searchURL := cfg.SearchURL
	if len(os.Args) > 1 {
		searchURL = os.Args[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RunTimeout)
	defer cancel()

	session := browser.NewSession(cfg.Browser, cfg.Selectors, log)
	defer session.Close()

	if err := session.Open(ctx, searchURL); err != nil {
		log.Fatalf("Failed to open search page: %v", err)
	}

	cards, err := session.ListCards(ctx)
	if err != nil {
		log.Fatalf("Failed to list cards: %v", err)
	}
	log.Infof("✅ Found %d job cards", len(cards))
	if len(cards) == 0 {
		return
	}

	if err := session.OpenDetail(ctx, cards[0], 1); err != nil {
		log.Fatalf("Failed to open first card: %v", err)
	}
	material, err := session.CaptureMaterial(ctx, cards[0])
	if err != nil {
		log.Fatalf("Failed to capture first card: %v", err)
	}

	fmt.Printf("🔗 Link: %s\n", material.Link)
	fmt.Printf("📄 Description HTML: %d chars\n", len(material.HTML))
	fmt.Printf("💰 Card salary: %s\n", material.FallbackSalary)

	if len(material.Screenshot) > 0 {
		if err := os.WriteFile("browser-test.png", material.Screenshot, 0o644); err != nil {
			log.Warnf("Failed to write screenshot: %v", err)
		} else {
			log.Info("📸 Screenshot saved: browser-test.png")
		}
	}
	log.Info("✨ Test complete!")
}
