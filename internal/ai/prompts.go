package ai

import (
	"fmt"
)

const extractionSystemPrompt = `You are an expert at extracting structured data from job posting HTML.
You must return ONLY valid JSON, no markdown, no explanations.`

// buildExtractionPrompt creates the user message asking for a CandidateRecord
func buildExtractionPrompt(html, fallbackSalary string) string {
	return fmt.Sprintf(`Extract the following information from this job posting HTML and return as JSON:

{
  "title": "Job title",
  "company": "Company name",
  "description": "Brief job description (2-3 sentences)",
  "technologies": ["AWS", "Docker", "Python"],
  "visa_sponsorship": "yes" | "no" | "unknown",
  "salary": "Salary range or null",
  "location": "Job location",
  "remote": "yes" | "no" | "hybrid" | "unknown",
  "experience_level": "junior" | "mid" | "senior" | "unknown"
}

Rules:
- Extract ALL technologies, frameworks, languages, cloud platforms and databases mentioned
- For visa_sponsorship look for phrases like "visa sponsor", "tier 2", "right to work"
- If the salary is in the HTML use it, otherwise use this value: %s
- Return ONLY the JSON object, no other text

HTML:
%s
`, fallbackSalary, html)
}

const salarySystemPrompt = "You are a helpful assistant that extracts salary details from job listing screenshots. " +
	"Look for salary ranges, annual salaries, hourly rates, or any compensation information."

const salaryUserPrompt = "What is the salary for this job? Only respond with the value (e.g., '£60,000 - £80,000') or 'N/A' if not found."
