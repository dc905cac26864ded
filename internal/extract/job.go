// internal/extract/job.go
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/listlift/listlift/internal/utils"
	"github.com/listlift/listlift/pkg/types"
)

// newJobExtractor builds the probe table for job board listing pages. Job
// boards do not embed a state blob; every probe works against the parse
// tree. Strategy order per field is fixed: primary selector, secondary
// selector, generic fallback.
func newJobExtractor() *Extractor {
	return &Extractor{
		docType: types.DocumentJobOffer,
		fields: []FieldSpec{
			{Name: FieldURL, Strategies: []Strategy{
				selectAttr("link[rel='canonical']", "href"),
				pageURL(),
			}},
			{Name: FieldTitle, Strategies: []Strategy{
				selectText("h1.offer-title"),
				selectText("h2.list__title"),
				selectText("h1"),
			}},
			{Name: FieldCompany, Strategies: []Strategy{
				selectText("h2.employer-name"),
				selectText("div.list__company"),
			}},
			{Name: FieldLocation, Strategies: []Strategy{
				selectText("span.workplace__location"),
				selectText("span.topBar__item--address"),
				selectText("div.list__location"),
			}},
			{Name: FieldSalary, Strategies: []Strategy{
				selectText("span.salary"),
				selectText("div.list__salary"),
			}},
			{Name: FieldPostDate, Strategies: []Strategy{
				selectText("span.offer-date"),
			}},
			{Name: FieldDescription, Strategies: []Strategy{
				selectText("div.ogl__description"),
				selectText("div.description"),
			}},
		},
		extra: []func(p *Page, out RawFieldMap){
			probeDetailPairs,
			probeAddressSplit,
			probeStatsPanel,
		},
	}
}

// labelRule maps a known label fragment vocabulary onto a logical field.
// A label matches when it contains every fragment, compared case
// insensitively after diacritics folding. Unmatched labels are ignored.
type labelRule struct {
	fragments []string
	field     string
}

var labelVocabulary = []labelRule{
	{fragments: []string{"doswiadcz"}, field: FieldExperience},
	{fragments: []string{"prac", "zdaln"}, field: FieldWorkMode},
	{fragments: []string{"charakter"}, field: FieldWorkMode},
	{fragments: []string{"umow"}, field: FieldEmployment},
	{fragments: []string{"branz"}, field: FieldIndustry},
	{fragments: []string{"kategori"}, field: FieldIndustry},
	{fragments: []string{"poziom"}, field: FieldPosition},
	{fragments: []string{"wymiar"}, field: FieldWorkTime},
	{fragments: []string{"granic"}, field: FieldForeignJob},
}

// matchLabel returns the field a label maps to, if any
func matchLabel(label string) (string, bool) {
	folded := utils.FoldDiacritics(label)
	for _, rule := range labelVocabulary {
		matched := true
		for _, fragment := range rule.fragments {
			if !strings.Contains(folded, fragment) {
				matched = false
				break
			}
		}
		if matched {
			return rule.field, true
		}
	}
	return "", false
}

// probeDetailPairs scans the page's label/value panels and assigns matched
// values to their fields. Two panel shapes are probed: definition lists
// (dt/dd pairs) and field containers with name/value divs.
func probeDetailPairs(p *Page, out RawFieldMap) {
	doc, err := p.Document()
	if err != nil {
		return
	}

	assign := func(label, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		if field, ok := matchLabel(label); ok {
			out.Set(field, Text(value))
		}
	}

	doc.Find("dl.offer-details").Each(func(i int, dl *goquery.Selection) {
		terms := dl.Find("dt")
		values := dl.Find("dd")
		for j := 0; j < terms.Length() && j < values.Length(); j++ {
			assign(terms.Eq(j).Text(), values.Eq(j).Text())
		}
	})

	doc.Find("div.oglDetails div.oglField").Each(func(i int, field *goquery.Selection) {
		label := field.Find("div.oglField__name").First().Text()
		var parts []string
		field.Find("div.oglField__value").Each(func(j int, value *goquery.Selection) {
			if text := strings.TrimSpace(value.Text()); text != "" {
				parts = append(parts, text)
			}
		})
		if len(parts) > 0 {
			assign(label, strings.Join(parts, ", "))
		}
	})
}

// probeAddressSplit splits a full address block into city and street.
// The first line is the city, the second the street; a single-line address
// yields the city only.
func probeAddressSplit(p *Page, out RawFieldMap) {
	doc, err := p.Document()
	if err != nil {
		return
	}
	address := doc.Find("span.topBar__item--address").First()
	if address.Length() == 0 {
		return
	}

	var lines []string
	for _, line := range strings.Split(address.Text(), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) == 0 {
		return
	}

	out.Set(FieldCity, Text(lines[0]))
	if len(lines) > 1 {
		out.Set(FieldStreet, Text(lines[1]))
	}
	out.Set(FieldLocation, Text(strings.Join(lines, ", ")))
}

// probeStatsPanel reads the posting statistics panel. Entries are matched
// by their label prefix and carry their value in a nested span.
func probeStatsPanel(p *Page, out RawFieldMap) {
	doc, err := p.Document()
	if err != nil {
		return
	}
	doc.Find("div.oglStats p").Each(func(i int, entry *goquery.Selection) {
		label := utils.FoldDiacritics(entry.Text())
		value := strings.TrimSpace(entry.Find("span").First().Text())
		if value == "" {
			return
		}
		switch {
		case strings.Contains(label, "data dodania"):
			out.Set(FieldPostDate, Text(value))
		case strings.Contains(label, "aktualizacja"):
			out.Set(FieldUpdateDate, Text(value))
		case strings.Contains(label, "id oferty"):
			out.Set(FieldOfferID, Text(value))
		}
	})
}
