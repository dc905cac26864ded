// pkg/types/types.go
package types

import (
	"fmt"
	"time"
)

// DocumentType identifies the kind of listing page a record was extracted from.
type DocumentType string

const (
	DocumentBook     DocumentType = "book"
	DocumentJobOffer DocumentType = "job_offer"
)

// ValidDocumentTypes returns all valid document type values
func ValidDocumentTypes() []DocumentType {
	return []DocumentType{DocumentBook, DocumentJobOffer}
}

// IsValid checks if the document type is a valid value
func (dt DocumentType) IsValid() bool {
	for _, valid := range ValidDocumentTypes() {
		if dt == valid {
			return true
		}
	}
	return false
}

// Collection returns the store collection name for the document type
func (dt DocumentType) Collection() string {
	switch dt {
	case DocumentBook:
		return "books"
	case DocumentJobOffer:
		return "job_offers"
	default:
		return string(dt)
	}
}

// RawPage is an immutable fetched page. It is produced by the fetcher,
// consumed once by the decoder, and optionally archived keyed by SourceURL.
type RawPage struct {
	SourceURL string    `json:"source_url" bson:"source_url"`
	Body      string    `json:"body" bson:"body"`
	FetchedAt time.Time `json:"fetched_at" bson:"fetched_at"`
}

// Author is a single author entry with its catalog link.
// Source order is preserved in Book.Authors.
type Author struct {
	Name string `json:"name" bson:"name"`
	Link string `json:"link,omitempty" bson:"link,omitempty"`
}

// Category is a single category entry from the product taxonomy.
type Category struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
	URL  string `json:"url,omitempty" bson:"url,omitempty"`
}

// CoverURLs holds the cover image URLs by size variant.
type CoverURLs struct {
	Small  string `json:"small,omitempty" bson:"small,omitempty"`
	Medium string `json:"medium,omitempty" bson:"medium,omitempty"`
	Large  string `json:"large,omitempty" bson:"large,omitempty"`
}

// Book is the canonical record for a book store product page.
// Optional fields are pointers so that absence is distinguishable from an
// empty value. Date and numeric fields keep the original text in their *Raw
// companion when coercion failed.
type Book struct {
	ProductID      string     `json:"product_id" bson:"product_id"`
	Title          *string    `json:"title,omitempty" bson:"title,omitempty"`
	URL            *string    `json:"url,omitempty" bson:"url,omitempty"`
	Authors        []Author   `json:"authors,omitempty" bson:"authors,omitempty"`
	Price          *float64   `json:"price,omitempty" bson:"price,omitempty"`
	PriceRaw       *string    `json:"price_raw,omitempty" bson:"price_raw,omitempty"`
	OriginalPrice  *float64   `json:"original_price,omitempty" bson:"original_price,omitempty"`
	Rating         *float64   `json:"rating,omitempty" bson:"rating,omitempty"`
	RatingsCount   *int       `json:"ratings_count,omitempty" bson:"ratings_count,omitempty"`
	Description    *string    `json:"description,omitempty" bson:"description,omitempty"`
	Categories     []Category `json:"categories,omitempty" bson:"categories,omitempty"`
	Publisher      *string    `json:"publisher,omitempty" bson:"publisher,omitempty"`
	PublishDate    *time.Time `json:"publish_date,omitempty" bson:"publish_date,omitempty"`
	PublishDateRaw *string    `json:"publish_date_raw,omitempty" bson:"publish_date_raw,omitempty"`
	CoverURLs      *CoverURLs `json:"cover_urls,omitempty" bson:"cover_urls,omitempty"`
	Availability   *string    `json:"availability,omitempty" bson:"availability,omitempty"`
	ProductType    *string    `json:"product_type,omitempty" bson:"product_type,omitempty"`
	BindingType    *string    `json:"binding_type,omitempty" bson:"binding_type,omitempty"`
	InStores       *bool      `json:"available_in_stores,omitempty" bson:"available_in_stores,omitempty"`
	ScrapedAt      time.Time  `json:"scraped_at" bson:"scraped_at"`
}

// Key returns the identity key of the record
func (b *Book) Key() string { return b.ProductID }

// Type returns the document type of the record
func (b *Book) Type() DocumentType { return DocumentBook }

// JobOffer is the canonical record for a job board listing page.
type JobOffer struct {
	URL             string     `json:"url" bson:"url"`
	OfferID         *string    `json:"offer_id,omitempty" bson:"offer_id,omitempty"`
	Title           *string    `json:"title,omitempty" bson:"title,omitempty"`
	Company         *string    `json:"company,omitempty" bson:"company,omitempty"`
	Location        *string    `json:"location,omitempty" bson:"location,omitempty"`
	City            *string    `json:"city,omitempty" bson:"city,omitempty"`
	Street          *string    `json:"street,omitempty" bson:"street,omitempty"`
	SalaryMin       *float64   `json:"salary_min,omitempty" bson:"salary_min,omitempty"`
	SalaryMax       *float64   `json:"salary_max,omitempty" bson:"salary_max,omitempty"`
	Currency        *string    `json:"currency,omitempty" bson:"currency,omitempty"`
	SalaryRaw       *string    `json:"salary_raw,omitempty" bson:"salary_raw,omitempty"`
	Skills          []string   `json:"skills,omitempty" bson:"skills,omitempty"`
	ExperienceLevel *string    `json:"experience_level,omitempty" bson:"experience_level,omitempty"`
	EmploymentType  *string    `json:"employment_type,omitempty" bson:"employment_type,omitempty"`
	WorkMode        *string    `json:"work_mode,omitempty" bson:"work_mode,omitempty"`
	Industry        *string    `json:"industry,omitempty" bson:"industry,omitempty"`
	PositionLevel   *string    `json:"position_level,omitempty" bson:"position_level,omitempty"`
	WorkTime        *string    `json:"work_time,omitempty" bson:"work_time,omitempty"`
	MonthlyHours    *int       `json:"monthly_hours,omitempty" bson:"monthly_hours,omitempty"`
	WorkSchedule    *string    `json:"work_schedule,omitempty" bson:"work_schedule,omitempty"`
	ForeignJob      *bool      `json:"foreign_job,omitempty" bson:"foreign_job,omitempty"`
	PostDate        *time.Time `json:"post_date,omitempty" bson:"post_date,omitempty"`
	PostDateRaw     *string    `json:"post_date_raw,omitempty" bson:"post_date_raw,omitempty"`
	UpdateDate      *time.Time `json:"update_date,omitempty" bson:"update_date,omitempty"`
	UpdateDateRaw   *string    `json:"update_date_raw,omitempty" bson:"update_date_raw,omitempty"`
	Description     *string    `json:"description,omitempty" bson:"description,omitempty"`
	ScrapedAt       time.Time  `json:"scraped_at" bson:"scraped_at"`
}

// Key returns the identity key of the record
func (j *JobOffer) Key() string { return j.URL }

// Type returns the document type of the record
func (j *JobOffer) Type() DocumentType { return DocumentJobOffer }

// Record is a canonical record addressable by its natural identity key.
// A record whose Key is empty must never reach a store.
type Record interface {
	Key() string
	Type() DocumentType
}

// StringPtr returns a pointer to the given string
func StringPtr(s string) *string { return &s }

// FloatPtr returns a pointer to the given float64
func FloatPtr(f float64) *float64 { return &f }

// IntPtr returns a pointer to the given int
func IntPtr(i int) *int { return &i }

// BoolPtr returns a pointer to the given bool
func BoolPtr(b bool) *bool { return &b }

// TimePtr returns a pointer to the given time
func TimePtr(t time.Time) *time.Time { return &t }

// Validate checks the record invariants that hold for every persisted record
func Validate(r Record) error {
	if r == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if r.Key() == "" {
		return fmt.Errorf("record of type %s has no identity key", r.Type())
	}
	if !r.Type().IsValid() {
		return fmt.Errorf("invalid document type: %s", r.Type())
	}
	return nil
}
