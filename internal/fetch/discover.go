// internal/fetch/discover.go - listing-page link discovery
package fetch

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/listlift/listlift/internal/utils"
	"github.com/listlift/listlift/pkg/types"
)

// tileSelector pairs a listing tile with the anchors tried inside it, in
// priority order
type tileSelector struct {
	tile    string
	anchors []string
}

var listingSelectors = map[types.DocumentType]tileSelector{
	types.DocumentBook: {
		tile:    "div.ta-product-tile",
		anchors: []string{"a.ta-product-title", "a.seoTitle", "a[href]"},
	},
	types.DocumentJobOffer: {
		tile:    "div.list__item",
		anchors: []string{"a.list__title", "h2 a[href]", "a[href]"},
	},
}

// DiscoverLinks extracts detail-page URLs from a listing page body.
// Relative links are resolved against baseURL; duplicates are dropped
// while preserving tile order.
func DiscoverLinks(body, baseURL string, dt types.DocumentType) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrCodeDecodeFailed, "failed to parse listing page")
	}

	selector, ok := listingSelectors[dt]
	if !ok {
		return nil, utils.NewError(utils.ErrCodeValidation, "no listing selectors for document type")
	}

	seen := make(map[string]bool)
	var links []string

	doc.Find(selector.tile).Each(func(_ int, tile *goquery.Selection) {
		for _, anchor := range selector.anchors {
			href, exists := tile.Find(anchor).First().Attr("href")
			if !exists || strings.TrimSpace(href) == "" {
				continue
			}
			resolved := utils.AbsoluteURL(baseURL, strings.TrimSpace(href))
			if resolved == "" || seen[resolved] {
				return
			}
			seen[resolved] = true
			links = append(links, resolved)
			return
		}
	})

	return links, nil
}
