// pkg/types/types_test.go
package types

import (
	"testing"
	"time"
)

func TestDocumentTypeCollection(t *testing.T) {
	tests := []struct {
		dt   DocumentType
		want string
	}{
		{DocumentBook, "books"},
		{DocumentJobOffer, "job_offers"},
		{DocumentType("other"), "other"},
	}
	for _, tt := range tests {
		if got := tt.dt.Collection(); got != tt.want {
			t.Errorf("Collection(%s) = %q, want %q", tt.dt, got, tt.want)
		}
	}
}

func TestDocumentTypeIsValid(t *testing.T) {
	if !DocumentBook.IsValid() || !DocumentJobOffer.IsValid() {
		t.Error("known document types must be valid")
	}
	if DocumentType("magazine").IsValid() {
		t.Error("unknown document type must be invalid")
	}
}

func TestRecordIdentity(t *testing.T) {
	book := &Book{ProductID: "978"}
	if book.Key() != "978" || book.Type() != DocumentBook {
		t.Errorf("book identity = (%q, %s)", book.Key(), book.Type())
	}

	offer := &JobOffer{URL: "https://jobs.example.com/offer/1"}
	if offer.Key() != "https://jobs.example.com/offer/1" || offer.Type() != DocumentJobOffer {
		t.Errorf("offer identity = (%q, %s)", offer.Key(), offer.Type())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		record  Record
		wantErr bool
	}{
		{"valid book", &Book{ProductID: "1", ScrapedAt: time.Now()}, false},
		{"valid offer", &JobOffer{URL: "https://x/1"}, false},
		{"book without key", &Book{}, true},
		{"offer without key", &JobOffer{}, true},
		{"nil record", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.record)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
