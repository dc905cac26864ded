// internal/normalize/skills.go
package normalize

import (
	"strings"
	"unicode"
)

// skillVocabulary is the fixed set of recognized technology tokens.
// Matching is case-insensitive and whole-token only: "golang" does not
// match "go" because the vocabulary does not list it.
var skillVocabulary = []string{
	"python", "java", "javascript", "js", "typescript", "c++", "c#",
	"php", "ruby", "swift", "kotlin", "go", "rust", "scala",
	"react", "angular", "vue", "node", "django", "flask", "spring",
	"docker", "kubernetes", "aws", "azure", "gcp", "sql", "nosql",
	"mongodb", "postgresql", "mysql", "redis", "elasticsearch",
}

// Skills scans free text for known technology tokens. The result is a set
// (no duplicates) ordered by first occurrence in the text.
func Skills(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	known := make(map[string]bool, len(skillVocabulary))
	for _, skill := range skillVocabulary {
		known[skill] = true
	}

	var found []string
	seen := make(map[string]bool)
	for _, token := range tokenize(strings.ToLower(text)) {
		if known[token] && !seen[token] {
			seen[token] = true
			found = append(found, token)
		}
	}
	return found
}

// tokenize splits text into candidate tokens. '+' and '#' stay part of
// their token so "c++" and "c#" survive as whole tokens.
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		if r == '+' || r == '#' {
			return false
		}
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
