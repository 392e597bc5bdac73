package canon

import (
	"strings"

	"go-job-extractor/internal/models"
)

// NormalizeSalary maps absent values (nil, empty, "N/A", "not specified" in
// any case) to the "Not specified" sentinel and trims everything else.
func NormalizeSalary(value *string) string {
	if value == nil {
		return models.NotSpecified
	}
	s := strings.TrimSpace(*value)
	if s == "" || s == models.NotAvailable || strings.EqualFold(s, models.NotSpecified) {
		return models.NotSpecified
	}
	return s
}

// NormalizeCandidate turns an extraction result into the persisted shape.
// Metadata (link, timestamps, source, html) is filled by the caller.
func NormalizeCandidate(c models.CandidateRecord) models.JobRecord {
	return models.JobRecord{
		Title:           c.Title,
		Company:         c.Company,
		Description:     c.Description,
		Technologies:    NormalizeTechnologies(c.Technologies),
		VisaSponsorship: c.VisaSponsorship,
		Salary:          NormalizeSalary(c.Salary),
		Location:        c.Location,
		Remote:          c.Remote,
		ExperienceLevel: c.ExperienceLevel,
		ExtractionError: c.ExtractionError,
	}
}
