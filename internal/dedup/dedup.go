package dedup

import (
	"go-job-extractor/internal/models"
)

// Snapshot is the set of records already on disk when a run starts.
// It is built once and never mutated; concurrent writers are not expected.
type Snapshot struct {
	byLink map[string]models.JobRecord
}

// NewSnapshot indexes records by link. Records without a link are ignored;
// on a repeated link the first record wins.
func NewSnapshot(records []models.JobRecord) *Snapshot {
	byLink := make(map[string]models.JobRecord, len(records))
	for _, rec := range records {
		if rec.Link == "" {
			continue
		}
		if _, exists := byLink[rec.Link]; exists {
			continue
		}
		byLink[rec.Link] = rec
	}
	return &Snapshot{byLink: byLink}
}

// IsSeen checks if a link has already been persisted
func (s *Snapshot) IsSeen(link string) bool {
	if s == nil {
		return false
	}
	_, exists := s.byLink[link]
	return exists
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.byLink)
}

// Records returns a copy of the link → record mapping.
func (s *Snapshot) Records() map[string]models.JobRecord {
	out := make(map[string]models.JobRecord, s.Len())
	if s == nil {
		return out
	}
	for link, rec := range s.byLink {
		out[link] = rec
	}
	return out
}
