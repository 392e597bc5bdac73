package api

import (
	"context"
	"strings"

	"go-job-extractor/internal/models"
)

// JobSource pages through stored job records.
type JobSource interface {
	ListJobs(ctx context.Context, offset, limit int, search string) ([]models.JobRecord, int, error)
}

// RecordReader is the read side of the file store.
type RecordReader interface {
	ReadAll() ([]models.JobRecord, error)
}

// FileSource serves records straight from the job files, newest first.
type FileSource struct {
	reader RecordReader
}

func NewFileSource(reader RecordReader) *FileSource {
	return &FileSource{reader: reader}
}

func (f *FileSource) ListJobs(_ context.Context, offset, limit int, search string) ([]models.JobRecord, int, error) {
	all, err := f.reader.ReadAll()
	if err != nil {
		return nil, 0, err
	}

	matched := make([]models.JobRecord, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if matches(all[i], search) {
			matched = append(matched, all[i])
		}
	}

	total := len(matched)
	if offset < 0 || offset >= total {
		return []models.JobRecord{}, total, nil
	}
	end := offset + min(limit, total-offset)
	return matched[offset:end], total, nil
}

// matches is a case-insensitive substring test on title, company and
// technologies.
func matches(rec models.JobRecord, search string) bool {
	q := strings.ToLower(strings.TrimSpace(search))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(rec.Title), q) || strings.Contains(strings.ToLower(rec.Company), q) {
		return true
	}
	for _, tech := range rec.Technologies {
		if strings.Contains(strings.ToLower(tech), q) {
			return true
		}
	}
	return false
}
