package ai

import (
	"encoding/json"
	"strings"

	"go-job-extractor/internal/models"

	"github.com/cockroachdb/errors"
)

// ParseError is returned by DecodeCandidate when the model output is not a
// usable candidate object.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return "parse extraction response: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type candidateWire struct {
	Title           string          `json:"title"`
	Company         string          `json:"company"`
	Description     string          `json:"description"`
	Technologies    []string        `json:"technologies"`
	VisaSponsorship string          `json:"visa_sponsorship"`
	Salary          json.RawMessage `json:"salary"`
	Location        string          `json:"location"`
	Remote          string          `json:"remote"`
	ExperienceLevel string          `json:"experience_level"`
}

// DecodeCandidate parses the text-extraction output. On success the record
// has every enum in its allowed set and no empty title, company or location.
// Any failure is a *ParseError.
func DecodeCandidate(raw string) (models.CandidateRecord, error) {
	cleaned := cleanMarkdownJSON(raw)
	if !strings.HasPrefix(cleaned, "{") {
		return models.CandidateRecord{}, &ParseError{Raw: raw, Err: errors.New("response is not a JSON object")}
	}

	var wire candidateWire
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		return models.CandidateRecord{}, &ParseError{Raw: raw, Err: err}
	}

	salary, err := decodeSalary(wire.Salary)
	if err != nil {
		return models.CandidateRecord{}, &ParseError{Raw: raw, Err: err}
	}

	technologies := wire.Technologies
	if technologies == nil {
		technologies = []string{}
	}

	return models.CandidateRecord{
		Title:           orUnknown(wire.Title),
		Company:         orUnknown(wire.Company),
		Description:     strings.TrimSpace(wire.Description),
		Technologies:    technologies,
		VisaSponsorship: models.VisaSponsorship(oneOf(wire.VisaSponsorship, "yes", "no")),
		Salary:          salary,
		Location:        orUnknown(wire.Location),
		Remote:          models.RemotePolicy(oneOf(wire.Remote, "yes", "no", "hybrid")),
		ExperienceLevel: models.ExperienceLevel(oneOf(wire.ExperienceLevel, "junior", "mid", "senior")),
	}, nil
}

// decodeSalary accepts a string, null, or a bare number.
func decodeSalary(raw json.RawMessage) (*string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		v := n.String()
		return &v, nil
	}
	return nil, errors.Newf("salary has unsupported JSON type: %s", trimmed)
}

func orUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.Unknown
	}
	return s
}

func oneOf(value string, allowed ...string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return models.UnknownOption
}

// cleanMarkdownJSON removes backticks and "json" prefix if the model wraps its answer
func cleanMarkdownJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}
