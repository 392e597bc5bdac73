package ai

import (
	"context"
	"encoding/base64"
	"strings"
	"time"
	"unicode/utf8"

	"go-job-extractor/internal/models"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

type ExtractorOptions struct {
	ExtractionModel string
	VisionModel     string
	// MaxTokens bounds the screenshot answer.
	MaxTokens int
	// MaxHTMLChars truncates the HTML sent to the model; zero disables it.
	MaxHTMLChars int
	CallTimeout  time.Duration
}

// Extractor turns raw listing material into candidate records. Its methods
// never return errors: failures degrade to a minimal record or "N/A".
type Extractor struct {
	client Client
	opts   ExtractorOptions
	log    *zap.SugaredLogger
}

func NewExtractor(client Client, opts ExtractorOptions, log *zap.SugaredLogger) *Extractor {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 50
	}
	return &Extractor{client: client, opts: opts, log: log}
}

// ExtractFromHTML asks the text model for a CandidateRecord. fallbackSalary
// is used when neither the HTML nor the model supplies a salary.
func (e *Extractor) ExtractFromHTML(ctx context.Context, html, fallbackSalary string) models.CandidateRecord {
	if strings.TrimSpace(fallbackSalary) == "" {
		fallbackSalary = models.NotAvailable
	}
	html = truncateHTML(html, e.opts.MaxHTMLChars)

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	raw, err := e.client.Complete(ctx, ChatRequest{
		Model: e.opts.ExtractionModel,
		Messages: []Message{
			TextMessage("system", extractionSystemPrompt),
			TextMessage("user", buildExtractionPrompt(html, fallbackSalary)),
		},
		Temperature: Float(0),
	})
	if err != nil {
		e.log.Errorf("❌ Error extracting job info: %v", err)
		return models.MinimalCandidate(fallbackSalary, errors.Wrap(err, "extraction call").Error())
	}

	candidate, err := DecodeCandidate(raw)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			e.log.Warnf("⚠️ Model output is not valid JSON (%d chars): %v", len(parseErr.Raw), parseErr.Err)
		}
		return models.MinimalCandidate(fallbackSalary, err.Error())
	}

	if candidate.SalaryMissing() && fallbackSalary != models.NotAvailable {
		s := fallbackSalary
		candidate.Salary = &s
	}

	e.log.Infof("✅ Extracted job: %s at %s", candidate.Title, candidate.Company)
	return candidate
}

// ExtractSalaryFromScreenshot asks the vision model for the salary shown in
// a PNG screenshot. Returns "N/A" when nothing is found or the call fails.
func (e *Extractor) ExtractSalaryFromScreenshot(ctx context.Context, png []byte) string {
	if len(png) == 0 {
		e.log.Warn("⚠️ No screenshot to analyse")
		return models.NotAvailable
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	raw, err := e.client.Complete(ctx, ChatRequest{
		Model: e.opts.VisionModel,
		Messages: []Message{
			TextMessage("system", salarySystemPrompt),
			{
				Role: "user",
				Content: []ContentPart{
					{Type: "text", Text: salaryUserPrompt},
					{Type: "image_url", ImageURL: &ImageURL{URL: dataURL}},
				},
			},
		},
		Temperature: Float(0),
		MaxTokens:   e.opts.MaxTokens,
	})
	if err != nil {
		e.log.Errorf("❌ Error extracting salary from screenshot: %v", err)
		return models.NotAvailable
	}

	salary := strings.TrimSpace(raw)
	if salary == "" {
		return models.NotAvailable
	}
	e.log.Infof("📸 Extracted salary from screenshot: %s", salary)
	return salary
}

func (e *Extractor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.opts.CallTimeout > 0 {
		return context.WithTimeout(ctx, e.opts.CallTimeout)
	}
	return context.WithCancel(ctx)
}

// truncateHTML cuts html to at most max bytes without splitting a rune.
// max <= 0 disables the limit.
func truncateHTML(html string, max int) string {
	if max <= 0 || len(html) <= max {
		return html
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(html[cut]) {
		cut--
	}
	return html[:cut]
}
