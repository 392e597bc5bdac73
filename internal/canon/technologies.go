// Canonical names for technologies and salaries so records from different
// listings compare equal.

package canon

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// techAliases maps a folded token to its canonical spelling.
var techAliases = map[string]string{
	"nodejs":     "Node.js",
	"node":       "Node.js",
	"reactjs":    "React",
	"react.js":   "React",
	"vuejs":      "Vue.js",
	"vue":        "Vue.js",
	"angularjs":  "Angular",
	"nextjs":     "Next.js",
	"javascript": "JavaScript",
	"js":         "JavaScript",
	"typescript": "TypeScript",
	"ts":         "TypeScript",
	"python":     "Python",
	"python3":    "Python",
	"java":       "Java",
	"golang":     "Go",
	"c#":         "C#",
	"csharp":     "C#",
	"dotnet":     ".NET",
	"postgresql": "PostgreSQL",
	"postgres":   "PostgreSQL",
	"mysql":      "MySQL",
	"mongodb":    "MongoDB",
	"mongo":      "MongoDB",
	"redis":      "Redis",
	"aws":        "AWS",
	"gcp":        "GCP",
	"azure":      "Azure",
	"k8s":        "Kubernetes",
	"kubernetes": "Kubernetes",
	"docker":     "Docker",
	"graphql":    "GraphQL",
}

func init() {
	// canonical spellings must survive a second pass unchanged
	canonicals := make([]string, 0, len(techAliases))
	for _, canonical := range techAliases {
		canonicals = append(canonicals, canonical)
	}
	for _, canonical := range canonicals {
		techAliases[foldToken(canonical)] = canonical
	}
}

func foldToken(token string) string {
	lower := cases.Lower(language.Und).String(norm.NFC.String(token))
	return strings.TrimSpace(lower)
}

// NormalizeTechnologies folds, aliases and de-duplicates tokens, keeping the
// first-seen order. Empty tokens are dropped. The result is stable under
// repeated application.
func NormalizeTechnologies(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	seen := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		folded := foldToken(token)
		if folded == "" {
			continue
		}
		if canonical, ok := techAliases[folded]; ok {
			folded = canonical
		}
		if seen[folded] {
			continue
		}
		seen[folded] = true
		out = append(out, folded)
	}
	return out
}
