package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer strips combining marks after canonical decomposition, so
// "branża" compares equal to the vocabulary fragment "branz".
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldDiacritics lowercases s and removes diacritical marks for
// vocabulary comparison. Characters without a canonical decomposition
// (Polish stroked l) are mapped explicitly.
func FoldDiacritics(s string) string {
	s = strings.ToLower(s)
	if folded, _, err := transform.String(foldTransformer, s); err == nil {
		s = folded
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case 'ł':
			return 'l'
		case 'Ł':
			return 'L'
		default:
			return r
		}
	}, s)
}

// NormalizeSpaces collapses runs of whitespace into single spaces
func NormalizeSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
