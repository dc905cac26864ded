// internal/export/export.go - tabular export of stored records
package export

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/listlift/listlift/internal/utils"
	"github.com/listlift/listlift/pkg/types"
)

var exportLogger = utils.NewComponentLogger("export")

// Format identifies an export file format
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
)

// FormatForPath picks the format from the file extension
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatExcel, nil
	default:
		return "", utils.NewError(utils.ErrCodeInvalidConfig,
			fmt.Sprintf("cannot infer export format from %s", path))
	}
}

// Write exports records to the path in the given format
func Write(path string, format Format, dt types.DocumentType, records []types.Record) error {
	switch format {
	case FormatCSV:
		return WriteCSV(path, dt, records)
	case FormatExcel:
		return WriteExcel(path, dt, records)
	default:
		return utils.NewError(utils.ErrCodeInvalidConfig,
			fmt.Sprintf("unknown export format: %s", format))
	}
}

var bookColumns = []string{
	"product_id", "title", "url", "authors", "price", "original_price",
	"rating", "ratings_count", "categories", "publisher", "publish_date",
	"availability", "product_type", "binding_type", "in_stores", "scraped_at",
}

var jobColumns = []string{
	"url", "offer_id", "title", "company", "location", "city", "street",
	"salary_min", "salary_max", "currency", "skills", "experience_level",
	"employment_type", "work_mode", "industry", "position_level",
	"work_time", "monthly_hours", "work_schedule", "foreign_job",
	"post_date", "update_date", "scraped_at",
}

// Columns returns the export column set for the document type
func Columns(dt types.DocumentType) []string {
	if dt == types.DocumentBook {
		return bookColumns
	}
	return jobColumns
}

// Row flattens a record into the column order of its document type.
// Absent fields become empty cells.
func Row(record types.Record) []string {
	switch r := record.(type) {
	case *types.Book:
		return bookRow(r)
	case *types.JobOffer:
		return jobRow(r)
	default:
		return nil
	}
}

func bookRow(book *types.Book) []string {
	authors := make([]string, 0, len(book.Authors))
	for _, author := range book.Authors {
		authors = append(authors, author.Name)
	}
	categories := make([]string, 0, len(book.Categories))
	for _, category := range book.Categories {
		categories = append(categories, category.Name)
	}

	return []string{
		book.ProductID,
		text(book.Title),
		text(book.URL),
		strings.Join(authors, "; "),
		number(book.Price),
		number(book.OriginalPrice),
		number(book.Rating),
		integer(book.RatingsCount),
		strings.Join(categories, "; "),
		text(book.Publisher),
		date(book.PublishDate),
		text(book.Availability),
		text(book.ProductType),
		text(book.BindingType),
		boolean(book.InStores),
		book.ScrapedAt.UTC().Format(time.RFC3339),
	}
}

func jobRow(offer *types.JobOffer) []string {
	return []string{
		offer.URL,
		text(offer.OfferID),
		text(offer.Title),
		text(offer.Company),
		text(offer.Location),
		text(offer.City),
		text(offer.Street),
		number(offer.SalaryMin),
		number(offer.SalaryMax),
		text(offer.Currency),
		strings.Join(offer.Skills, "; "),
		text(offer.ExperienceLevel),
		text(offer.EmploymentType),
		text(offer.WorkMode),
		text(offer.Industry),
		text(offer.PositionLevel),
		text(offer.WorkTime),
		integer(offer.MonthlyHours),
		text(offer.WorkSchedule),
		boolean(offer.ForeignJob),
		date(offer.PostDate),
		date(offer.UpdateDate),
		offer.ScrapedAt.UTC().Format(time.RFC3339),
	}
}

func text(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func number(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func integer(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}

func boolean(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}

func date(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
