// internal/extract/book.go
package extract

import (
	"strconv"

	"github.com/listlift/listlift/internal/decode"
	"github.com/listlift/listlift/internal/utils"
	"github.com/listlift/listlift/pkg/types"
)

// newBookExtractor builds the probe table for book store product pages.
// Product pages embed their render state as a blob; all probes index into
// it, resolving reference nodes where the state links entries by key.
func newBookExtractor() *Extractor {
	return &Extractor{
		docType: types.DocumentBook,
		fields: []FieldSpec{
			{Name: FieldProductID, Strategies: []Strategy{
				blobString("id"),
			}},
			{Name: FieldTitle, Strategies: []Strategy{
				blobString("baseInformation", "name"),
				selectText("h1.ta-product-title"),
				selectText("h1"),
			}},
			{Name: FieldURL, Strategies: []Strategy{
				blobString("baseInformation", "selfUrl"),
				selectAttr("link[rel='canonical']", "href"),
			}},
			{Name: FieldDescription, Strategies: []Strategy{
				blobString("baseInformation", "description"),
				selectText("div.ta-product-description"),
			}},
			{Name: FieldProductType, Strategies: []Strategy{
				blobString("baseInformation", "type"),
			}},
			{Name: FieldBinding, Strategies: []Strategy{
				blobString("baseInformation", "subtype"),
			}},
		},
		extra: []func(p *Page, out RawFieldMap){
			probeAuthors,
			probeCategories,
			probeCovers,
			probeRating,
			probeOffer,
			probeAttributes,
			probeStoreAvailability,
		},
	}
}

// probeAuthors resolves the author reference list into ordered name/link
// pairs. A reference whose key is missing from the blob omits that entry;
// it never fails the record.
func probeAuthors(p *Page, out RawFieldMap) {
	blob, ok := p.Blob()
	if !ok {
		return
	}
	product, ok := p.Product()
	if !ok {
		return
	}
	refs, ok := decode.GetSlice(product, "baseInformation", "smartAuthor")
	if !ok {
		return
	}

	var authors []types.Author
	for _, ref := range refs {
		entry, ok := blob.Resolve(ref)
		if !ok {
			continue
		}
		name, ok := decode.GetString(entry, "name")
		if !ok {
			continue
		}
		link, _ := decode.GetString(entry, "link")
		authors = append(authors, types.Author{Name: name, Link: link})
	}
	if len(authors) > 0 {
		out.Set(FieldAuthors, Structured(authors))
	}
}

// probeCategories walks the inline category list, preserving source order
func probeCategories(p *Page, out RawFieldMap) {
	product, ok := p.Product()
	if !ok {
		return
	}
	entries, ok := decode.GetSlice(product, "baseInformation", "categoryInfo", "categories")
	if !ok {
		return
	}

	var categories []types.Category
	for _, entry := range entries {
		node, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		name, ok := decode.GetString(node, "name")
		if !ok {
			continue
		}
		url, _ := decode.GetString(node, "url")
		categories = append(categories, types.Category{
			ID:   scalarString(node["id"]),
			Name: name,
			URL:  url,
		})
	}
	if len(categories) > 0 {
		out.Set(FieldCategories, Structured(categories))
	}
}

// probeCovers reads the cover image variants
func probeCovers(p *Page, out RawFieldMap) {
	product, ok := p.Product()
	if !ok {
		return
	}
	cover, ok := decode.GetMap(product, "baseInformation", "cover")
	if !ok {
		return
	}

	covers := types.CoverURLs{}
	covers.Small, _ = decode.GetString(cover, "small")
	covers.Medium, _ = decode.GetString(cover, "medium")
	covers.Large, _ = decode.GetString(cover, "large")
	if covers.Small != "" || covers.Medium != "" || covers.Large != "" {
		out.Set(FieldCovers, Structured(&covers))
	}
}

// probeRating reads the inline rating score and count
func probeRating(p *Page, out RawFieldMap) {
	product, ok := p.Product()
	if !ok {
		return
	}
	rating, ok := decode.GetMap(product, "baseInformation", "rating")
	if !ok {
		return
	}
	if score, ok := decode.GetFloat(rating, "score"); ok {
		out.Set(FieldRating, Structured(score))
	}
	if count, ok := decode.GetFloat(rating, "count"); ok {
		out.Set(FieldRatingCount, Structured(int(count)))
	}
}

// probeOffer resolves the best offer reference for pricing and availability
func probeOffer(p *Page, out RawFieldMap) {
	blob, ok := p.Blob()
	if !ok {
		return
	}
	product, ok := p.Product()
	if !ok {
		return
	}
	offer, ok := blob.Resolve(product["bestOffer"])
	if !ok {
		return
	}

	if name, ok := decode.GetString(offer, "availability", "name"); ok {
		out.Set(FieldAvail, Text(name))
	}
	if price, ok := decode.GetFloat(offer, "price", "amount"); ok {
		out.Set(FieldPrice, Structured(price))
	} else if text, ok := decode.GetString(offer, "price", "formatted"); ok {
		out.Set(FieldPrice, Text(text))
	}
	if original, ok := decode.GetFloat(offer, "originalPrice", "amount"); ok {
		out.Set(FieldOriginal, Structured(original))
	}
}

// probeAttributes reads the short attribute list, matching labels against
// the fixed vocabulary. Attribute labels vary per product type; unmatched
// labels are ignored.
func probeAttributes(p *Page, out RawFieldMap) {
	product, ok := p.Product()
	if !ok {
		return
	}
	attrs, ok := decode.GetSlice(product, "detailsInformation", "attributes", "short")
	if !ok {
		return
	}

	for _, attr := range attrs {
		node, ok := attr.(map[string]interface{})
		if !ok {
			continue
		}
		label, ok := decode.GetString(node, "label")
		if !ok {
			continue
		}
		values, ok := decode.GetSlice(node, "values")
		if !ok || len(values) == 0 {
			continue
		}
		first, ok := values[0].(map[string]interface{})
		if !ok {
			continue
		}
		value, ok := decode.GetString(first, "value")
		if !ok {
			continue
		}

		switch folded := utils.FoldDiacritics(label); {
		case folded == "wydawnictwo":
			out.Set(FieldPublisher, Text(value))
		case folded == "data premiery":
			out.Set(FieldPublishDate, Text(value))
		}
	}
}

// probeStoreAvailability reads the physical store availability flag
func probeStoreAvailability(p *Page, out RawFieldMap) {
	product, ok := p.Product()
	if !ok {
		return
	}
	store, ok := decode.GetMap(product, "detailsInformation", "storeAvailability")
	if !ok {
		return
	}
	if available, ok := store["isAvailableInAnyStore"].(bool); ok {
		out.Set(FieldInStores, Structured(available))
	}
}

// scalarString renders a JSON scalar id as a string. Numeric ids decode as
// floats; integral values keep their integer form.
func scalarString(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		if value == float64(int64(value)) {
			return strconv.FormatInt(int64(value), 10)
		}
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return ""
	}
}
