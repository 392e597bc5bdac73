package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go-job-extractor/internal/ai"
	"go-job-extractor/internal/canon"
	"go-job-extractor/internal/config"
	"go-job-extractor/internal/models"
	"go-job-extractor/utils"
)

const sampleHTML = `<div class="jobDescriptionContent">
<h2>Senior Go Backend Developer</h2><p>Acme Ltd, London (hybrid)</p>
<ul>
<li>3+ years of experience with golang</li>
<li>Experience with Kafka and Redis</li>
<li>Strong knowledge of postgres and microservices</li>
<li>DevOps knowledge (docker, k8s, CI/CD)</li>
</ul>
<p>Visa sponsorship is not available.</p>
</div>`

// Runs the extractor against a saved description panel (or a built-in sample)
// and prints the normalized record.
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

	if cfg.OpenAI.APIKey == "" {
		log.Warn("OPENAI_API_KEY environment variable not set. Please set it to test the AI.")
		return
	}

	html := sampleHTML
	if len(os.Args) > 1 {
		raw, err := os.ReadFile(os.Args[1])
		if err != nil {
			log.Fatalf("Failed to read %s: %v", os.Args[1], err)
		}
		html = string(raw)
	}

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

	log.Infof("Sending description to %s...", cfg.OpenAI.ExtractionModel)
	candidate := extractor.ExtractFromHTML(context.Background(), html, models.NotAvailable)
	if candidate.ExtractionError != "" {
		log.Fatalf("Extraction degraded: %s", candidate.ExtractionError)
	}

	out, err := json.MarshalIndent(canon.NormalizeCandidate(candidate), "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode record: %v", err)
	}
	log.Info("✅ Success! Normalized record:")
	fmt.Println(string(out))
}
