// Collaborator interfaces the orchestrator drives.
// Implementations live in browser, ai, store, database and telegram.

package scraper

import (
	"context"

	"go-job-extractor/internal/browser"
	"go-job-extractor/internal/models"
)

// Session is the single browser page the run works through.
type Session interface {
	Open(ctx context.Context, searchURL string) error
	ListCards(ctx context.Context) ([]browser.Card, error)
	OpenDetail(ctx context.Context, card browser.Card, slot int) error
	CaptureMaterial(ctx context.Context, card browser.Card) (models.RawListingMaterial, error)
	Close() error
}

// Extractor never fails: degraded results come back as values.
type Extractor interface {
	ExtractFromHTML(ctx context.Context, html, fallbackSalary string) models.CandidateRecord
	ExtractSalaryFromScreenshot(ctx context.Context, png []byte) string
}

type Store interface {
	Load() (map[string]models.JobRecord, error)
	NextIndex() int
	Exists(link string) bool
	Save(rec models.JobRecord, index int) (string, error)
	SaveSessionSummary(summary models.SessionSummary) (string, error)
}

// Mirror receives a copy of every saved record. Failures are logged only.
type Mirror interface {
	SaveJob(ctx context.Context, index int, rec models.JobRecord) (bool, error)
}

// Notifier is told about the finished run. Failures are logged only.
type Notifier interface {
	SendSummary(summary models.SessionSummary) error
}
