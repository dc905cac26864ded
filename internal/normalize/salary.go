// internal/normalize/salary.go
package normalize

import (
	"regexp"
	"strings"

	"github.com/listlift/listlift/internal/utils"
)

// DefaultCurrency is the regional default applied when no currency token
// is present in the salary text.
const DefaultCurrency = "PLN"

// SalaryRange is the coerced form of a salary statement. Min and Max are
// nil when the statement bounds only one side of the range.
type SalaryRange struct {
	Min      *float64
	Max      *float64
	Currency string
}

// currencyVocabulary is the fixed set of recognized currency tokens.
var currencyVocabulary = []struct {
	token    string
	currency string
}{
	{"pln", "PLN"},
	{"zl", "PLN"},
	{"eur", "EUR"},
	{"€", "EUR"},
	{"usd", "USD"},
	{"$", "USD"},
	{"gbp", "GBP"},
}

var (
	salaryTokenPattern = regexp.MustCompile(`(\d+(?:[ \x{00a0}]\d{3})*(?:[.,]\d+)?)(\s*tys\w*\.?)?`)
	fromMarkerPattern  = regexp.MustCompile(`\bod\b`)
	toMarkerPattern    = regexp.MustCompile(`\bdo\b`)
)

// Salary coerces a salary statement into a typed range.
//
// Two numeric tokens bound both sides; a single token preceded by an
// "at least" marker ("od") sets the minimum only, and one preceded by an
// "up to" marker ("do") sets the maximum only. A bare single token with
// no marker bounds neither side, keeping only the raw text. Thousands
// separators and "tys."-style thousand words are handled per token. The
// coercion is total: unparseable text yields an empty range with the
// default currency and a raw-fallback outcome, never an error.
func Salary(text string) (SalaryRange, Outcome) {
	result := SalaryRange{Currency: DefaultCurrency}

	folded := utils.FoldDiacritics(text)
	if strings.TrimSpace(folded) == "" {
		return result, OutcomeAbsent
	}

	for _, entry := range currencyVocabulary {
		if strings.Contains(folded, entry.token) {
			result.Currency = entry.currency
			break
		}
	}

	var values []float64
	for _, match := range salaryTokenPattern.FindAllStringSubmatch(folded, 3) {
		value, err := parseNumericToken(match[1])
		if err != nil {
			continue
		}
		if match[2] != "" {
			value *= 1000
		}
		values = append(values, value)
	}

	switch {
	case len(values) >= 2:
		result.Min = &values[0]
		result.Max = &values[1]
	case len(values) == 1 && fromMarkerPattern.MatchString(folded):
		result.Min = &values[0]
	case len(values) == 1 && toMarkerPattern.MatchString(folded):
		result.Max = &values[0]
	default:
		return result, OutcomeRawFallback
	}

	return result, OutcomePresent
}

// kwota/kwotę/kwoty all fold into the kwot- stem
var descriptionSalaryPattern = regexp.MustCompile(`kwot\w+\s+od\s+(\d+)\s*(?:tysiecy|tys\.?)\s*do\s*(\d+)\s*(?:tysiecy|tys\.?)`)

// SalaryFromDescription scans free-form description text for an embedded
// salary statement of the "kwota od X do Y tysięcy" form. Used when the
// listing carries no dedicated salary field.
func SalaryFromDescription(text string) (SalaryRange, Outcome) {
	folded := utils.FoldDiacritics(text)
	match := descriptionSalaryPattern.FindStringSubmatch(folded)
	if match == nil {
		return SalaryRange{Currency: DefaultCurrency}, OutcomeAbsent
	}

	min, errMin := parseNumericToken(match[1])
	max, errMax := parseNumericToken(match[2])
	if errMin != nil || errMax != nil {
		return SalaryRange{Currency: DefaultCurrency}, OutcomeAbsent
	}
	min *= 1000
	max *= 1000
	return SalaryRange{Min: &min, Max: &max, Currency: DefaultCurrency}, OutcomePresent
}
