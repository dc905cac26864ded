// internal/pipeline/crawl.go - listing crawl driver
package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/listlift/listlift/internal/fetch"
	"github.com/listlift/listlift/internal/monitoring"
	"github.com/listlift/listlift/internal/utils"
	"github.com/listlift/listlift/pkg/types"
)

var crawlLogger = utils.NewComponentLogger("crawler")

// Crawler fetches listing pages, discovers detail-page links and feeds the
// fetched detail pages into the pipeline
type Crawler struct {
	fetcher  *fetch.Fetcher
	pipeline *Pipeline
	metrics  *monitoring.Metrics
	docType  types.DocumentType
	maxPages int
}

// NewCrawler creates a crawl driver. maxPages caps fetched detail pages
// per run; zero means no cap.
func NewCrawler(fetcher *fetch.Fetcher, p *Pipeline, metrics *monitoring.Metrics, maxPages int) *Crawler {
	return &Crawler{
		fetcher:  fetcher,
		pipeline: p,
		metrics:  metrics,
		docType:  p.docType,
		maxPages: maxPages,
	}
}

// Run crawls the listing URLs and processes every discovered detail page.
// A listing that fails to fetch is logged and skipped.
func (c *Crawler) Run(ctx context.Context, listingURLs []string) (*BatchResult, error) {
	seen := make(map[string]bool)
	failures := utils.NewErrorCollector(0)
	var detailURLs []string

	for _, listingURL := range listingURLs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		listing, err := c.fetchCounted(ctx, listingURL)
		if err != nil {
			crawlLogger.Warn(fmt.Sprintf("Failed to fetch listing %s: %v", listingURL, err))
			failures.Add(utils.WrapError(err, utils.CodeOf(err), "listing "+listingURL))
			continue
		}

		links, err := fetch.DiscoverLinks(listing.Body, listingURL, c.docType)
		if err != nil {
			crawlLogger.Warn(fmt.Sprintf("Failed to parse listing %s: %v", listingURL, err))
			continue
		}
		crawlLogger.Info(fmt.Sprintf("Discovered %d links on %s", len(links), listingURL))

		for _, link := range links {
			key := link
			if normalized, err := utils.NormalizeURL(link); err == nil {
				key = normalized
			}
			if !seen[key] {
				seen[key] = true
				detailURLs = append(detailURLs, link)
			}
		}
	}

	if c.maxPages > 0 && len(detailURLs) > c.maxPages {
		detailURLs = detailURLs[:c.maxPages]
	}

	var pages []types.RawPage
	for _, detailURL := range detailURLs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := c.fetchCounted(ctx, detailURL)
		if err != nil {
			crawlLogger.Warn(fmt.Sprintf("Failed to fetch %s: %v", detailURL, err))
			failures.Add(utils.WrapError(err, utils.CodeOf(err), "detail "+detailURL))
			continue
		}
		pages = append(pages, page)
	}

	if failures.HasErrors() {
		crawlLogger.Warn(fmt.Sprintf("Crawl finished with %d fetch failures", failures.Count()))
	}
	return c.pipeline.ProcessBatch(ctx, pages)
}

func (c *Crawler) fetchCounted(ctx context.Context, targetURL string) (types.RawPage, error) {
	start := time.Now()
	page, err := c.fetcher.Fetch(ctx, targetURL)
	if c.metrics != nil {
		host := hostOf(targetURL)
		c.metrics.FetchDuration.WithLabelValues(host).Observe(time.Since(start).Seconds())
		if err != nil {
			c.metrics.FetchErrors.WithLabelValues(host, string(utils.CodeOf(err))).Inc()
		} else {
			c.metrics.PagesFetched.WithLabelValues(host, "200").Inc()
		}
	}
	return page, err
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Host
}
