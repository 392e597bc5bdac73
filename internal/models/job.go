package models

import (
	"time"
)

// Sentinels used where a value is absent.
const (
	Unknown       = "Unknown"
	NotAvailable  = "N/A"
	NotSpecified  = "Not specified"
	UnknownOption = "unknown"
)

type VisaSponsorship string

const (
	VisaYes     VisaSponsorship = "yes"
	VisaNo      VisaSponsorship = "no"
	VisaUnknown VisaSponsorship = UnknownOption
)

type RemotePolicy string

const (
	RemoteYes     RemotePolicy = "yes"
	RemoteNo      RemotePolicy = "no"
	RemoteHybrid  RemotePolicy = "hybrid"
	RemoteUnknown RemotePolicy = UnknownOption
)

type ExperienceLevel string

const (
	ExperienceJunior  ExperienceLevel = "junior"
	ExperienceMid     ExperienceLevel = "mid"
	ExperienceSenior  ExperienceLevel = "senior"
	ExperienceUnknown ExperienceLevel = UnknownOption
)

// RawListingMaterial is what the browser pulls for one listing card.
// It lives for a single slot and is never written to disk.
type RawListingMaterial struct {
	Link           string
	HTML           string
	Screenshot     []byte
	FallbackSalary string
}

// CandidateRecord is the extraction output before normalization.
// Salary is nil when the model returned null.
type CandidateRecord struct {
	Title           string          `json:"title"`
	Company         string          `json:"company"`
	Description     string          `json:"description"`
	Technologies    []string        `json:"technologies"`
	VisaSponsorship VisaSponsorship `json:"visa_sponsorship"`
	Salary          *string         `json:"salary"`
	Location        string          `json:"location"`
	Remote          RemotePolicy    `json:"remote"`
	ExperienceLevel ExperienceLevel `json:"experience_level"`
	ExtractionError string          `json:"extraction_error,omitempty"`
}

// MinimalCandidate is the degraded record produced when extraction fails.
func MinimalCandidate(fallbackSalary string, cause string) CandidateRecord {
	salary := fallbackSalary
	return CandidateRecord{
		Title:           Unknown,
		Company:         Unknown,
		Description:     "Extraction failed",
		Technologies:    []string{},
		VisaSponsorship: VisaUnknown,
		Salary:          &salary,
		Location:        Unknown,
		Remote:          RemoteUnknown,
		ExperienceLevel: ExperienceUnknown,
		ExtractionError: cause,
	}
}

// SalaryMissing reports whether the salary needs the screenshot fallback.
func (c CandidateRecord) SalaryMissing() bool {
	return c.Salary == nil || *c.Salary == "" || *c.Salary == NotAvailable
}

// JobRecord is the persisted entity, one file per job. Link is the natural key.
type JobRecord struct {
	Title            string          `json:"title"`
	Company          string          `json:"company"`
	Description      string          `json:"description"`
	Technologies     []string        `json:"technologies"`
	VisaSponsorship  VisaSponsorship `json:"visa_sponsorship"`
	Salary           string          `json:"salary"`
	Location         string          `json:"location"`
	Remote           RemotePolicy    `json:"remote"`
	ExperienceLevel  ExperienceLevel `json:"experience_level"`
	ExtractionError  string          `json:"extraction_error,omitempty"`
	Link             string          `json:"link"`
	ScrapedAt        time.Time       `json:"scraped_at"`
	Source           string          `json:"source"`
	RequirementsHTML string          `json:"requirements_html"`
}
