// internal/normalize/normalize.go
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/listlift/listlift/internal/utils"
)

var logger = utils.NewComponentLogger("normalize")

// Outcome classifies the result of one coercion. Every coercion is total:
// it yields a typed value, keeps the raw text, or reports absence. Nothing
// in this package escalates an error past the field being coerced.
type Outcome int

const (
	OutcomeAbsent Outcome = iota
	OutcomePresent
	OutcomeRawFallback
)

// String returns string representation of the outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeAbsent:
		return "absent"
	case OutcomePresent:
		return "present"
	case OutcomeRawFallback:
		return "raw_fallback"
	default:
		return "unknown"
	}
}

// Date layouts used by the listing sources.
const (
	LayoutDayMonthYear = "02.01.2006"
	LayoutISODate      = "2006-01-02"
)

// Date parses text with one fixed layout. On failure the caller keeps the
// original string; the field downgrades from date to string, it is never
// dropped.
func Date(text, layout string) (*time.Time, Outcome) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, OutcomeAbsent
	}
	parsed, err := time.Parse(layout, text)
	if err != nil {
		logger.Debugf("date %q does not match layout %s, keeping raw text", text, layout)
		return nil, OutcomeRawFallback
	}
	return &parsed, OutcomePresent
}

var numberPattern = regexp.MustCompile(`\d+(?:[ \x{00a0}.]\d{3})*(?:[.,]\d+)?`)

// Number extracts the first numeric token from text, tolerating thousands
// separators (space, non-breaking space, dot) and a decimal comma.
func Number(text string) (*float64, Outcome) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, OutcomeAbsent
	}
	match := numberPattern.FindString(text)
	if match == "" {
		return nil, OutcomeRawFallback
	}
	value, err := parseNumericToken(match)
	if err != nil {
		return nil, OutcomeRawFallback
	}
	return &value, OutcomePresent
}

// parseNumericToken converts one matched token into a float, stripping
// separators and normalizing the decimal comma.
func parseNumericToken(token string) (float64, error) {
	cleaned := strings.NewReplacer(" ", "", " ", "", ".", "").Replace(token)
	// A decimal dot was stripped along with thousands dots; only the comma
	// form survives as a decimal marker in these sources.
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	return strconv.ParseFloat(cleaned, 64)
}

// Bool coerces a regional yes/no token
func Bool(text string) (*bool, Outcome) {
	switch utils.FoldDiacritics(strings.TrimSpace(text)) {
	case "":
		return nil, OutcomeAbsent
	case "tak", "yes", "true":
		v := true
		return &v, OutcomePresent
	case "nie", "no", "false":
		v := false
		return &v, OutcomePresent
	default:
		return nil, OutcomeRawFallback
	}
}

var (
	hoursPattern    = regexp.MustCompile(`(?:okolo|ok\.?)\s*(\d+)\s*(?:h|godzin)\s*(?:w|na)\s*miesiac`)
	schedulePattern = regexp.MustCompile(`(?:zjazdy|system|praca)\s*(\d+/\d+)`)
)

// MonthlyHours scans free text for an approximate monthly hours statement
func MonthlyHours(text string) (*int, Outcome) {
	if strings.TrimSpace(text) == "" {
		return nil, OutcomeAbsent
	}
	match := hoursPattern.FindStringSubmatch(utils.FoldDiacritics(text))
	if match == nil {
		return nil, OutcomeAbsent
	}
	hours, err := strconv.Atoi(match[1])
	if err != nil {
		return nil, OutcomeAbsent
	}
	return &hours, OutcomePresent
}

// WorkSchedule scans free text for a rotation pattern such as "7/7".
// The pattern is kept raw; rotation formats are not enumerable.
func WorkSchedule(text string) (*string, Outcome) {
	if strings.TrimSpace(text) == "" {
		return nil, OutcomeAbsent
	}
	match := schedulePattern.FindStringSubmatch(utils.FoldDiacritics(text))
	if match == nil {
		return nil, OutcomeAbsent
	}
	return &match[1], OutcomePresent
}
