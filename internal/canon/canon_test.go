package canon

import (
	"testing"

	"go-job-extractor/internal/models"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestNormalizeTechnologies(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "aliases",
			input:    []string{"nodejs", "reactjs", "golang", "postgresql", "mongodb"},
			expected: []string{"Node.js", "React", "Go", "PostgreSQL", "MongoDB"},
		},
		{
			name:     "case and whitespace",
			input:    []string{"  NodeJS ", "Docker", "docker", "TERRAFORM"},
			expected: []string{"Node.js", "Docker", "terraform"},
		},
		{
			name:     "first seen order after aliasing",
			input:    []string{"Go", "python", "golang", "Python3", "rust"},
			expected: []string{"Go", "Python", "rust"},
		},
		{
			name:     "empty tokens dropped",
			input:    []string{"", "   ", "java"},
			expected: []string{"Java"},
		},
		{
			name:     "nil input",
			input:    nil,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeTechnologies(tt.input))
		})
	}
}

func TestNormalizeTechnologies_Idempotent(t *testing.T) {
	inputs := [][]string{
		{"nodejs", "Node.js", "NODE.JS", "react", "ReactJS"},
		{"Kubernetes", "k8s", "AWS", "aws", "Amazon Web Services"},
		{"C#", "csharp", ".NET", "dotnet", "Élixir", "élixir"},
		{"golang", "Go", "go", "GraphQL", "  graphql "},
		{"Vue.js", "vuejs", "Next.js", "nextjs", "TypeScript", "ts"},
	}
	for _, in := range inputs {
		once := NormalizeTechnologies(in)
		twice := NormalizeTechnologies(once)
		assert.Equal(t, once, twice, "input %v", in)
	}
}

func TestTechAliases_CanonicalMapsToItself(t *testing.T) {
	for _, canonical := range techAliases {
		assert.Equal(t, canonical, techAliases[foldToken(canonical)], "canonical %q", canonical)
	}
}

func TestNormalizeSalary(t *testing.T) {
	tests := []struct {
		name     string
		input    *string
		expected string
	}{
		{name: "nil", input: nil, expected: "Not specified"},
		{name: "empty", input: strPtr(""), expected: "Not specified"},
		{name: "whitespace", input: strPtr("   "), expected: "Not specified"},
		{name: "N/A", input: strPtr("N/A"), expected: "Not specified"},
		{name: "not specified mixed case", input: strPtr("Not Specified"), expected: "Not specified"},
		{name: "pounds", input: strPtr("£60,000"), expected: "£60,000"},
		{name: "trimmed range", input: strPtr("  £45,000–£55,000 "), expected: "£45,000–£55,000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeSalary(tt.input))
		})
	}
}

func TestNormalizeCandidate(t *testing.T) {
	c := models.CandidateRecord{
		Title:           "Graduate Software Engineer",
		Company:         "Acme",
		Technologies:    []string{"golang", "Go", "docker"},
		VisaSponsorship: models.VisaYes,
		Salary:          strPtr("N/A"),
		Remote:          models.RemoteHybrid,
		ExperienceLevel: models.ExperienceJunior,
	}

	rec := NormalizeCandidate(c)

	assert.Equal(t, "Graduate Software Engineer", rec.Title)
	assert.Equal(t, []string{"Go", "Docker"}, rec.Technologies)
	assert.Equal(t, "Not specified", rec.Salary)
	assert.Equal(t, models.RemoteHybrid, rec.Remote)
	assert.Empty(t, rec.Link)
}
