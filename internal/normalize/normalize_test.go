// internal/normalize/normalize_test.go
package normalize

import (
	"testing"
	"time"
)

func TestDate(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		layout      string
		wantOutcome Outcome
		wantDate    string
	}{
		{
			name:        "day month year",
			text:        "15.03.2024",
			layout:      LayoutDayMonthYear,
			wantOutcome: OutcomePresent,
			wantDate:    "2024-03-15",
		},
		{
			name:        "iso date",
			text:        "2014-10-22",
			layout:      LayoutISODate,
			wantOutcome: OutcomePresent,
			wantDate:    "2014-10-22",
		},
		{
			name:        "wrong layout keeps raw",
			text:        "15 marca 2024",
			layout:      LayoutDayMonthYear,
			wantOutcome: OutcomeRawFallback,
		},
		{
			name:        "impossible date keeps raw",
			text:        "32.13.2024",
			layout:      LayoutDayMonthYear,
			wantOutcome: OutcomeRawFallback,
		},
		{
			name:        "empty is absent",
			text:        "   ",
			layout:      LayoutDayMonthYear,
			wantOutcome: OutcomeAbsent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, outcome := Date(tt.text, tt.layout)
			if outcome != tt.wantOutcome {
				t.Fatalf("Date() outcome = %s, want %s", outcome, tt.wantOutcome)
			}
			if tt.wantOutcome != OutcomePresent {
				if date != nil {
					t.Error("Date() returned a value on non-present outcome")
				}
				return
			}
			if got := date.Format("2006-01-02"); got != tt.wantDate {
				t.Errorf("Date() = %s, want %s", got, tt.wantDate)
			}
		})
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantOutcome Outcome
		want        float64
	}{
		{name: "plain integer", text: "912", wantOutcome: OutcomePresent, want: 912},
		{name: "space thousands", text: "10 000", wantOutcome: OutcomePresent, want: 10000},
		{name: "nbsp thousands", text: "10 000 zł", wantOutcome: OutcomePresent, want: 10000},
		{name: "decimal comma", text: "39,99 zł", wantOutcome: OutcomePresent, want: 39.99},
		{name: "dot thousands", text: "1.500.000", wantOutcome: OutcomePresent, want: 1500000},
		{name: "embedded in text", text: "ok. 160 stron", wantOutcome: OutcomePresent, want: 160},
		{name: "no number", text: "brak danych", wantOutcome: OutcomeRawFallback},
		{name: "empty", text: "", wantOutcome: OutcomeAbsent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, outcome := Number(tt.text)
			if outcome != tt.wantOutcome {
				t.Fatalf("Number(%q) outcome = %s, want %s", tt.text, outcome, tt.wantOutcome)
			}
			if outcome == OutcomePresent && *value != tt.want {
				t.Errorf("Number(%q) = %v, want %v", tt.text, *value, tt.want)
			}
		})
	}
}

func TestBool(t *testing.T) {
	tests := []struct {
		text        string
		wantOutcome Outcome
		want        bool
	}{
		{text: "tak", wantOutcome: OutcomePresent, want: true},
		{text: "TAK", wantOutcome: OutcomePresent, want: true},
		{text: "nie", wantOutcome: OutcomePresent, want: false},
		{text: "yes", wantOutcome: OutcomePresent, want: true},
		{text: "może", wantOutcome: OutcomeRawFallback},
		{text: "", wantOutcome: OutcomeAbsent},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			value, outcome := Bool(tt.text)
			if outcome != tt.wantOutcome {
				t.Fatalf("Bool(%q) outcome = %s, want %s", tt.text, outcome, tt.wantOutcome)
			}
			if outcome == OutcomePresent && *value != tt.want {
				t.Errorf("Bool(%q) = %v, want %v", tt.text, *value, tt.want)
			}
		})
	}
}

func TestMonthlyHours(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantOutcome Outcome
		want        int
	}{
		{name: "okolo with hours word", text: "Praca około 160 godzin w miesiącu", wantOutcome: OutcomePresent, want: 160},
		{name: "ok abbreviation", text: "ok. 120h na miesiąc", wantOutcome: OutcomePresent, want: 120},
		{name: "no statement", text: "praca na pełny etat", wantOutcome: OutcomeAbsent},
		{name: "empty", text: "", wantOutcome: OutcomeAbsent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hours, outcome := MonthlyHours(tt.text)
			if outcome != tt.wantOutcome {
				t.Fatalf("MonthlyHours(%q) outcome = %s, want %s", tt.text, outcome, tt.wantOutcome)
			}
			if outcome == OutcomePresent && *hours != tt.want {
				t.Errorf("MonthlyHours(%q) = %d, want %d", tt.text, *hours, tt.want)
			}
		})
	}
}

func TestWorkSchedule(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantOutcome Outcome
		want        string
	}{
		{name: "zjazdy rotation", text: "zjazdy 7/7", wantOutcome: OutcomePresent, want: "7/7"},
		{name: "system rotation", text: "Obowiązuje system 4/2", wantOutcome: OutcomePresent, want: "4/2"},
		{name: "no rotation", text: "praca od poniedziałku do piątku", wantOutcome: OutcomeAbsent},
		{name: "empty", text: "", wantOutcome: OutcomeAbsent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule, outcome := WorkSchedule(tt.text)
			if outcome != tt.wantOutcome {
				t.Fatalf("WorkSchedule(%q) outcome = %s, want %s", tt.text, outcome, tt.wantOutcome)
			}
			if outcome == OutcomePresent && *schedule != tt.want {
				t.Errorf("WorkSchedule(%q) = %q, want %q", tt.text, *schedule, tt.want)
			}
		})
	}
}

func TestDateRoundTrip(t *testing.T) {
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	date, outcome := Date("15.03.2024", LayoutDayMonthYear)
	if outcome != OutcomePresent {
		t.Fatalf("outcome = %s", outcome)
	}
	if !date.Equal(want) {
		t.Errorf("Date() = %v, want %v", date, want)
	}
}
