package models

import (
	"time"
)

type RunStatus string

const (
	RunComplete RunStatus = "complete"
	RunAborted  RunStatus = "aborted"
)

// SlotError is one entry of the summary error list. SlotIndex is 1-based and
// zero for fatal, run-level errors.
type SlotError struct {
	SlotIndex int    `json:"slotIndex,omitempty"`
	Error     string `json:"error"`
	Fatal     bool   `json:"fatal,omitempty"`
}

// SessionSummary is the run-level artifact written once per run.
type SessionSummary struct {
	RunID          string      `json:"runId"`
	StartTime      time.Time   `json:"startTime"`
	EndTime        time.Time   `json:"endTime"`
	Status         RunStatus   `json:"status"`
	TotalJobs      int         `json:"totalJobs"`
	SuccessfulJobs int         `json:"successfulJobs"`
	FailedJobs     int         `json:"failedJobs"`
	SkippedJobs    int         `json:"skippedJobs"`
	Errors         []SlotError `json:"errors"`
}
