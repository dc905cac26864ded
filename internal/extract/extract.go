// internal/extract/extract.go
package extract

import (
	"github.com/listlift/listlift/internal/utils"
	"github.com/listlift/listlift/pkg/types"
)

var logger = utils.NewComponentLogger("extract")

// Logical field names shared between the extractor tables and the
// normalizer. Field names are fixed per document type.
const (
	FieldProductID   = "product_id"
	FieldTitle       = "title"
	FieldURL         = "url"
	FieldAuthors     = "authors"
	FieldPrice       = "price"
	FieldOriginal    = "original_price"
	FieldRating      = "rating"
	FieldRatingCount = "ratings_count"
	FieldDescription = "description"
	FieldCategories  = "categories"
	FieldPublisher   = "publisher"
	FieldPublishDate = "publish_date_text"
	FieldCovers      = "cover_urls"
	FieldAvail       = "availability"
	FieldProductType = "product_type"
	FieldBinding     = "binding_type"
	FieldInStores    = "available_in_stores"

	FieldCompany    = "company"
	FieldLocation   = "location"
	FieldCity       = "city"
	FieldStreet     = "street"
	FieldSalary     = "salary_text"
	FieldPostDate   = "post_date_text"
	FieldUpdateDate = "update_date_text"
	FieldOfferID    = "offer_id"
	FieldExperience = "experience_level"
	FieldEmployment = "employment_type"
	FieldWorkMode   = "work_mode"
	FieldIndustry   = "industry"
	FieldPosition   = "position_level"
	FieldWorkTime   = "work_time"
	FieldForeignJob = "foreign_job"
)

// RawValue is one entry of a RawFieldMap: a raw extracted string or a
// structured sub-value, or an explicit absence marker. Absence is a
// first-class outcome, never an error.
type RawValue struct {
	Text    string
	Data    interface{}
	Present bool
}

// Absent is the explicit marker for a field no strategy could fill.
var Absent = RawValue{}

// Text wraps a non-empty raw string into a present value
func Text(s string) RawValue {
	if s == "" {
		return Absent
	}
	return RawValue{Text: s, Present: true}
}

// Structured wraps a structured sub-value (author list, categories, covers)
func Structured(v interface{}) RawValue {
	if v == nil {
		return Absent
	}
	return RawValue{Data: v, Present: true}
}

// RawFieldMap maps logical field names to extracted raw values. Every
// logical field of the document type has an entry, present or absent.
type RawFieldMap map[string]RawValue

// Get returns the value for a field, defaulting to Absent
func (m RawFieldMap) Get(name string) RawValue {
	if v, ok := m[name]; ok {
		return v
	}
	return Absent
}

// Set stores a value, keeping an earlier present value over a later one.
// Probes run in documented order, so first success wins.
func (m RawFieldMap) Set(name string, v RawValue) {
	if existing, ok := m[name]; ok && existing.Present {
		return
	}
	m[name] = v
}

// Text returns the raw string for a field when present
func (m RawFieldMap) Text(name string) (string, bool) {
	v := m.Get(name)
	if !v.Present || v.Text == "" {
		return "", false
	}
	return v.Text, true
}

// Strategy is a single extraction attempt for one field: a pure lookup over
// the page returning a value or reporting absence. Strategies never fail the
// page; a panicking strategy is contained and counted as a miss.
type Strategy func(p *Page) (string, bool)

// FieldSpec binds a logical field to its ordered strategy chain.
// First non-empty result wins.
type FieldSpec struct {
	Name       string
	Strategies []Strategy
}

// run evaluates the chain in order, short-circuiting on first success.
func (fs FieldSpec) run(p *Page) RawValue {
	for _, strategy := range fs.Strategies {
		if text, ok := runStrategy(strategy, p); ok && text != "" {
			return Text(text)
		}
	}
	return Absent
}

// runStrategy isolates a single strategy so a failure inside one probe
// cannot prevent later strategies or later fields from being attempted.
func runStrategy(s Strategy, p *Page) (text string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warnf("field strategy panicked: %v", r)
			text, ok = "", false
		}
	}()
	return s(p)
}

// Extractor runs the probe table for one document type. Document types are
// specialized by table contents, not by subtyping: swapping the table swaps
// the document type without touching shared pipeline code.
type Extractor struct {
	docType types.DocumentType
	fields  []FieldSpec
	extra   []func(p *Page, out RawFieldMap)
}

// ForDocumentType returns the extractor configured for the given document type
func ForDocumentType(dt types.DocumentType) *Extractor {
	switch dt {
	case types.DocumentBook:
		return newBookExtractor()
	case types.DocumentJobOffer:
		return newJobExtractor()
	default:
		return &Extractor{docType: dt}
	}
}

// DocumentType returns the document type this extractor is configured for
func (e *Extractor) DocumentType() types.DocumentType {
	return e.docType
}

// Extract runs every field probe against the page and assembles the raw
// field map. Failed probes degrade their own field to absent; they are
// recorded, not propagated.
func (e *Extractor) Extract(p *Page) RawFieldMap {
	out := make(RawFieldMap, len(e.fields))

	for _, spec := range e.fields {
		out.Set(spec.Name, spec.run(p))
	}

	// Structured probes fill several related fields at once (label panels,
	// reference lists); they run after the plain chains so chain results
	// keep priority.
	for _, probe := range e.extra {
		probe(p, out)
	}

	return out
}
