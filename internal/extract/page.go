// internal/extract/page.go
package extract

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/listlift/listlift/internal/decode"
	"github.com/listlift/listlift/internal/utils"
	"github.com/listlift/listlift/pkg/types"
)

// Page is the decoded view of one raw page: the embedded state blob when the
// page carries one, and a lazily built parse tree for selector probes.
// Decoding happens at most once per page in either representation.
type Page struct {
	URL       string
	FetchedAt time.Time

	blob     *decode.Blob
	hasBlob  bool
	body     string
	doc      *goquery.Document
	docError error
	parsed   bool

	// product caches the blob's product entry across probes
	product     map[string]interface{}
	productOnce bool
}

// NewPage decodes a raw page into its extraction view
func NewPage(raw types.RawPage) *Page {
	p := &Page{
		URL:       raw.SourceURL,
		FetchedAt: raw.FetchedAt,
		body:      raw.Body,
	}
	p.blob, p.hasBlob = decode.ExtractState(raw.Body)
	return p
}

// Blob returns the embedded state blob when the page carries one
func (p *Page) Blob() (*decode.Blob, bool) {
	return p.blob, p.hasBlob
}

// Document returns the parse tree, building it on first use
func (p *Page) Document() (*goquery.Document, error) {
	if !p.parsed {
		p.doc, p.docError = decode.ParseTree(p.body)
		p.parsed = true
	}
	return p.doc, p.docError
}

// Product returns the blob's product entry, located by its documented key
// prefix. Cached after the first lookup.
func (p *Page) Product() (map[string]interface{}, bool) {
	if p.productOnce {
		return p.product, p.product != nil
	}
	p.productOnce = true
	if !p.hasBlob {
		return nil, false
	}
	key, ok := p.blob.FindPrefixed("Product:")
	if !ok {
		return nil, false
	}
	p.product, _ = p.blob.Entry(key)
	return p.product, p.product != nil
}

// Selector strategy constructors. They are shared by the document tables.

// selectText extracts text of the first node matching the selector, with
// whitespace runs collapsed to single spaces
func selectText(selector string) Strategy {
	return func(p *Page) (string, bool) {
		doc, err := p.Document()
		if err != nil {
			return "", false
		}
		sel := doc.Find(selector)
		if sel.Length() == 0 {
			return "", false
		}
		text := utils.NormalizeSpaces(sel.First().Text())
		return text, text != ""
	}
}

// selectAttr extracts an attribute of the first node matching the selector
func selectAttr(selector, attr string) Strategy {
	return func(p *Page) (string, bool) {
		doc, err := p.Document()
		if err != nil {
			return "", false
		}
		value, exists := doc.Find(selector).First().Attr(attr)
		value = strings.TrimSpace(value)
		return value, exists && value != ""
	}
}

// firstAnchorHref extracts the href of the first anchor under the selector.
// Used as the last-resort fallback for link-bearing fields.
func firstAnchorHref(selector string) Strategy {
	return func(p *Page) (string, bool) {
		doc, err := p.Document()
		if err != nil {
			return "", false
		}
		href, exists := doc.Find(selector).Find("a[href]").First().Attr("href")
		href = strings.TrimSpace(href)
		return href, exists && href != ""
	}
}

// blobString extracts a string path from the blob's product entry
func blobString(path ...string) Strategy {
	return func(p *Page) (string, bool) {
		product, ok := p.Product()
		if !ok {
			return "", false
		}
		return decode.GetString(product, path...)
	}
}

// pageURL yields the page's own URL; identity fallback for job listings
func pageURL() Strategy {
	return func(p *Page) (string, bool) {
		return p.URL, p.URL != ""
	}
}
