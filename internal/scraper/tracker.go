package scraper

import (
	"time"

	"go-job-extractor/internal/models"
)

// SessionTracker accumulates slot outcomes into a SessionSummary.
type SessionTracker struct {
	summary models.SessionSummary
	now     func() time.Time
}

func NewSessionTracker(runID string, now func() time.Time) *SessionTracker {
	if now == nil {
		now = time.Now
	}
	return &SessionTracker{
		summary: models.SessionSummary{
			RunID:     runID,
			StartTime: now().UTC(),
			Errors:    []models.SlotError{},
		},
		now: now,
	}
}

// BeginSlot counts a slot as attempted.
func (t *SessionTracker) BeginSlot() {
	t.summary.TotalJobs++
}

func (t *SessionTracker) RecordSuccess() {
	t.summary.SuccessfulJobs++
}

func (t *SessionTracker) RecordSkipped() {
	t.summary.SkippedJobs++
}

// RecordFailure counts a failed slot. slot is 1-based.
func (t *SessionTracker) RecordFailure(slot int, err error) {
	t.summary.FailedJobs++
	t.summary.Errors = append(t.summary.Errors, models.SlotError{SlotIndex: slot, Error: err.Error()})
}

// RecordFatal notes a run-level error. It does not touch slot counts.
func (t *SessionTracker) RecordFatal(err error) {
	t.summary.Errors = append(t.summary.Errors, models.SlotError{Error: err.Error(), Fatal: true})
}

// Finish stamps the end time and status and returns the final summary.
func (t *SessionTracker) Finish(status models.RunStatus) models.SessionSummary {
	t.summary.EndTime = t.now().UTC()
	t.summary.Status = status
	return t.Summary()
}

// Summary returns a copy of the current summary.
func (t *SessionTracker) Summary() models.SessionSummary {
	s := t.summary
	s.Errors = append([]models.SlotError(nil), t.summary.Errors...)
	if s.Errors == nil {
		s.Errors = []models.SlotError{}
	}
	return s
}
