// internal/normalize/record.go
package normalize

import (
	"time"

	"github.com/listlift/listlift/internal/extract"
	"github.com/listlift/listlift/internal/utils"
	"github.com/listlift/listlift/pkg/types"
)

// ErrIdentityMissing reports a record that yielded no identity key. It is
// the only extraction-side failure that surfaces to the caller: such a
// record is rejected, never stored.
var ErrIdentityMissing = utils.NewError(utils.ErrCodeIdentityMissing, "no identity key could be extracted")

// Report summarizes one normalization pass for observability. Field-level
// misses and fallbacks degrade the record; they never fail it.
type Report struct {
	RawFallbacks int
	AbsentFields int
}

func (r *Report) count(outcome Outcome) {
	switch outcome {
	case OutcomeRawFallback:
		r.RawFallbacks++
	case OutcomeAbsent:
		r.AbsentFields++
	}
}

// Record coerces a raw field map into the canonical record for the given
// document type.
func Record(dt types.DocumentType, fields extract.RawFieldMap, scrapedAt time.Time) (types.Record, *Report, error) {
	switch dt {
	case types.DocumentBook:
		return BookRecord(fields, scrapedAt)
	case types.DocumentJobOffer:
		return JobOfferRecord(fields, scrapedAt)
	default:
		return nil, nil, utils.NewError(utils.ErrCodeValidation, "unknown document type: "+string(dt))
	}
}

// BookRecord assembles a canonical book record. The product id is the
// identity key; without it the record is rejected. Every other field
// degrades to absence or raw text on its own.
func BookRecord(fields extract.RawFieldMap, scrapedAt time.Time) (types.Record, *Report, error) {
	report := &Report{}

	productID, ok := fields.Text(extract.FieldProductID)
	if !ok {
		return nil, report, ErrIdentityMissing
	}

	book := &types.Book{
		ProductID: productID,
		ScrapedAt: scrapedAt,
	}

	book.Title = optionalText(fields, extract.FieldTitle, report)
	book.URL = optionalText(fields, extract.FieldURL, report)
	book.Description = optionalText(fields, extract.FieldDescription, report)
	book.Publisher = optionalText(fields, extract.FieldPublisher, report)
	book.Availability = optionalText(fields, extract.FieldAvail, report)
	book.ProductType = optionalText(fields, extract.FieldProductType, report)
	book.BindingType = optionalText(fields, extract.FieldBinding, report)

	book.Price, book.PriceRaw = optionalNumber(fields, extract.FieldPrice, report)
	book.OriginalPrice, _ = optionalNumber(fields, extract.FieldOriginal, report)

	if v := fields.Get(extract.FieldRating); v.Present {
		if score, ok := v.Data.(float64); ok {
			book.Rating = &score
		}
	}
	if v := fields.Get(extract.FieldRatingCount); v.Present {
		if count, ok := v.Data.(int); ok {
			book.RatingsCount = &count
		}
	}
	if v := fields.Get(extract.FieldAuthors); v.Present {
		if authors, ok := v.Data.([]types.Author); ok {
			book.Authors = authors
		}
	}
	if v := fields.Get(extract.FieldCategories); v.Present {
		if categories, ok := v.Data.([]types.Category); ok {
			book.Categories = categories
		}
	}
	if v := fields.Get(extract.FieldCovers); v.Present {
		if covers, ok := v.Data.(*types.CoverURLs); ok {
			book.CoverURLs = covers
		}
	}
	if v := fields.Get(extract.FieldInStores); v.Present {
		if available, ok := v.Data.(bool); ok {
			book.InStores = &available
		}
	}

	if text, ok := fields.Text(extract.FieldPublishDate); ok {
		date, outcome := Date(text, LayoutISODate)
		report.count(outcome)
		if outcome == OutcomePresent {
			book.PublishDate = date
		} else {
			book.PublishDateRaw = &text
		}
	}

	return book, report, nil
}

// JobOfferRecord assembles a canonical job offer record. The listing URL
// is the identity key.
func JobOfferRecord(fields extract.RawFieldMap, scrapedAt time.Time) (types.Record, *Report, error) {
	report := &Report{}

	url, ok := fields.Text(extract.FieldURL)
	if !ok {
		return nil, report, ErrIdentityMissing
	}

	offer := &types.JobOffer{
		URL:       url,
		ScrapedAt: scrapedAt,
	}

	offer.OfferID = optionalText(fields, extract.FieldOfferID, report)
	offer.Title = optionalText(fields, extract.FieldTitle, report)
	offer.Company = optionalText(fields, extract.FieldCompany, report)
	offer.Location = optionalText(fields, extract.FieldLocation, report)
	offer.City = optionalText(fields, extract.FieldCity, report)
	offer.Street = optionalText(fields, extract.FieldStreet, report)
	offer.ExperienceLevel = optionalText(fields, extract.FieldExperience, report)
	offer.EmploymentType = optionalText(fields, extract.FieldEmployment, report)
	offer.WorkMode = optionalText(fields, extract.FieldWorkMode, report)
	offer.Industry = optionalText(fields, extract.FieldIndustry, report)
	offer.PositionLevel = optionalText(fields, extract.FieldPosition, report)
	offer.WorkTime = optionalText(fields, extract.FieldWorkTime, report)
	offer.Description = optionalText(fields, extract.FieldDescription, report)

	description := ""
	if offer.Description != nil {
		description = *offer.Description
	}

	if text, ok := fields.Text(extract.FieldSalary); ok {
		salary, outcome := Salary(text)
		report.count(outcome)
		offer.SalaryMin = salary.Min
		offer.SalaryMax = salary.Max
		offer.Currency = &salary.Currency
		offer.SalaryRaw = &text
	} else if salary, outcome := SalaryFromDescription(description); outcome == OutcomePresent {
		offer.SalaryMin = salary.Min
		offer.SalaryMax = salary.Max
		offer.Currency = &salary.Currency
	}

	if skills := Skills(description); len(skills) > 0 {
		offer.Skills = skills
	}
	if hours, outcome := MonthlyHours(description); outcome == OutcomePresent {
		offer.MonthlyHours = hours
	}
	if schedule, outcome := WorkSchedule(description); outcome == OutcomePresent {
		offer.WorkSchedule = schedule
	}

	if text, ok := fields.Text(extract.FieldForeignJob); ok {
		flag, outcome := Bool(text)
		report.count(outcome)
		if outcome == OutcomePresent {
			offer.ForeignJob = flag
		}
	}

	if text, ok := fields.Text(extract.FieldPostDate); ok {
		date, outcome := Date(text, LayoutDayMonthYear)
		report.count(outcome)
		if outcome == OutcomePresent {
			offer.PostDate = date
		} else {
			offer.PostDateRaw = &text
		}
	}
	if text, ok := fields.Text(extract.FieldUpdateDate); ok {
		date, outcome := Date(text, LayoutDayMonthYear)
		report.count(outcome)
		if outcome == OutcomePresent {
			offer.UpdateDate = date
		} else {
			offer.UpdateDateRaw = &text
		}
	}

	return offer, report, nil
}

// optionalText returns a pointer to the field text or nil when absent
func optionalText(fields extract.RawFieldMap, name string, report *Report) *string {
	text, ok := fields.Text(name)
	if !ok {
		report.count(OutcomeAbsent)
		return nil
	}
	report.count(OutcomePresent)
	return &text
}

// optionalNumber coerces a numeric field, keeping the raw text when the
// value came as text and failed coercion.
func optionalNumber(fields extract.RawFieldMap, name string, report *Report) (*float64, *string) {
	v := fields.Get(name)
	if !v.Present {
		report.count(OutcomeAbsent)
		return nil, nil
	}
	if value, ok := v.Data.(float64); ok {
		report.count(OutcomePresent)
		return &value, nil
	}
	if v.Text != "" {
		value, outcome := Number(v.Text)
		report.count(outcome)
		if outcome == OutcomePresent {
			return value, &v.Text
		}
		return nil, &v.Text
	}
	report.count(OutcomeAbsent)
	return nil, nil
}
