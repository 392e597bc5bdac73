package main

import (
	"fmt"
	"os"

	"go-job-extractor/internal/config"
)

func main() {
	path := config.DefaultPath
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	fmt.Printf("🔧 Testing config loading from %s...\n", path)
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Printf("❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ Config loaded successfully!")
	fmt.Printf("   Search URL: %s\n", cfg.SearchURL)
	fmt.Printf("   Source: %s, max jobs: %d, delay: %s\n", cfg.Source, cfg.MaxJobs, cfg.Delay)
	fmt.Printf("   Models: %s / %s (max tokens %d)\n", cfg.OpenAI.ExtractionModel, cfg.OpenAI.VisionModel, cfg.OpenAI.MaxTokens)
	fmt.Printf("   OpenAI key: %s\n", redact(cfg.OpenAI.APIKey))
	fmt.Printf("   Output: %s (%s*.json), sessions in %s\n", cfg.Output.Dir, cfg.Output.JobPrefix, cfg.Output.SessionsDir)
	fmt.Printf("   Timeouts: nav %s, popup %s, detail %s, run %s\n",
		cfg.Browser.NavigationTimeout, cfg.Browser.PopupTimeout, cfg.Browser.DetailTimeout, cfg.RunTimeout)
	fmt.Printf("   Cookies Path: %q\n", cfg.Browser.CookiesPath)
	fmt.Printf("   Database: %s\n", redact(cfg.DatabaseURL))
	fmt.Printf("   Telegram enabled: %t\n", cfg.NotifierEnabled())

	if err := cfg.Validate(); err != nil {
		fmt.Printf("⚠️ Config is not runnable: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✨ Config is valid")
}

func redact(s string) string {
	switch {
	case s == "":
		return "(not set)"
	case len(s) <= 8:
		return "****"
	default:
		return s[:4] + "****"
	}
}
