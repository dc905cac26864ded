// internal/pipeline/crawl_test.go
package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/listlift/listlift/internal/fetch"
	"github.com/listlift/listlift/internal/monitoring"
	"github.com/listlift/listlift/internal/store"
	"github.com/listlift/listlift/pkg/types"
)

func crawlFetcher() *fetch.Fetcher {
	return fetch.New(fetch.Config{
		RetryAttempts: 1,
		RetryDelay:    10 * time.Millisecond,
		RateLimit:     1000,
		RateBurst:     100,
	})
}

func productBody(id string) string {
	return fmt.Sprintf(`<html><head>
<script>window.__APOLLO_STATE__ = {
  "Product:%s": {"id": "%s", "baseInformation": {"name": "Książka %s"}}
};</script>
</head><body></body></html>`, id, id, id)
}

func TestCrawlerRun(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/kategoria/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
		  <div class="ta-product-tile"><a class="ta-product-title" href="/p/1">Jeden</a></div>
		  <div class="ta-product-tile"><a class="ta-product-title" href="/p/2">Dwa</a></div>
		</body></html>`)
	})
	mux.HandleFunc("/kategoria/2", func(w http.ResponseWriter, r *http.Request) {
		// Overlaps with the first listing; the duplicate must be fetched once.
		fmt.Fprint(w, `<html><body>
		  <div class="ta-product-tile"><a class="ta-product-title" href="/p/2">Dwa</a></div>
		  <div class="ta-product-tile"><a class="ta-product-title" href="/p/3">Trzy</a></div>
		</body></html>`)
	})

	detailHits := map[string]int{}
	for _, id := range []string{"1", "2", "3"} {
		id := id
		mux.HandleFunc("/p/"+id, func(w http.ResponseWriter, r *http.Request) {
			detailHits[id]++
			fmt.Fprint(w, productBody(id))
		})
	}

	recordStore := store.NewMemoryStore()
	p := New(types.DocumentBook, recordStore, nil, nil, Config{WorkerCount: 2})
	crawler := NewCrawler(crawlFetcher(), p, nil, 0)

	batch, err := crawler.Run(context.Background(), []string{
		server.URL + "/kategoria/1",
		server.URL + "/kategoria/2",
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if batch.Stored != 3 {
		t.Errorf("Stored = %d, want 3", batch.Stored)
	}
	for id, hits := range detailHits {
		if hits != 1 {
			t.Errorf("detail page %s fetched %d times, want 1", id, hits)
		}
	}

	records, _ := recordStore.List(context.Background(), types.DocumentBook)
	if len(records) != 3 {
		t.Errorf("store holds %d records, want 3", len(records))
	}
}

func TestCrawlerDedupesNormalizedLinks(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	// The same product is linked twice, once with a trailing slash.
	mux.HandleFunc("/kategoria/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
		  <div class="ta-product-tile"><a class="ta-product-title" href="/p/1">Jeden</a></div>
		  <div class="ta-product-tile"><a class="ta-product-title" href="/p/2">Dwa</a></div>
		  <div class="ta-product-tile"><a class="ta-product-title" href="/p/2/">Dwa</a></div>
		</body></html>`)
	})
	mux.HandleFunc("/p/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, productBody("1"))
	})
	var slashHits int
	mux.HandleFunc("/p/2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, productBody("2"))
	})
	mux.HandleFunc("/p/2/", func(w http.ResponseWriter, r *http.Request) {
		slashHits++
		fmt.Fprint(w, productBody("2"))
	})

	recordStore := store.NewMemoryStore()
	p := New(types.DocumentBook, recordStore, nil, nil, Config{WorkerCount: 1})
	crawler := NewCrawler(crawlFetcher(), p, nil, 0)

	batch, err := crawler.Run(context.Background(), []string{server.URL + "/kategoria/1"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if batch.Processed != 2 {
		t.Errorf("Processed = %d, want 2 after dedupe", batch.Processed)
	}
	if slashHits != 0 {
		t.Errorf("trailing-slash variant fetched %d times, want 0", slashHits)
	}
}

func TestCrawlerObservesFetchMetrics(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/kategoria/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
		  <div class="ta-product-tile"><a class="ta-product-title" href="/p/1">Jeden</a></div>
		</body></html>`)
	})
	mux.HandleFunc("/p/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, productBody("1"))
	})

	metrics := monitoring.NewMetrics(monitoring.MetricsConfig{Namespace: "crawltest"})
	recordStore := store.NewMemoryStore()
	p := New(types.DocumentBook, recordStore, nil, nil, Config{WorkerCount: 1})
	crawler := NewCrawler(crawlFetcher(), p, metrics, 0)

	if _, err := crawler.Run(context.Background(), []string{server.URL + "/kategoria/1"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	host := hostOf(server.URL)
	if got := testutil.ToFloat64(metrics.PagesFetched.WithLabelValues(host, "200")); got != 2 {
		t.Errorf("pages_fetched_total = %v, want 2", got)
	}
	if got := testutil.CollectAndCount(metrics.FetchDuration); got != 1 {
		t.Errorf("fetch_duration_seconds series = %d, want 1", got)
	}
}

func TestCrawlerMaxPagesCap(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/kategoria/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
		  <div class="ta-product-tile"><a class="ta-product-title" href="/p/1">Jeden</a></div>
		  <div class="ta-product-tile"><a class="ta-product-title" href="/p/2">Dwa</a></div>
		  <div class="ta-product-tile"><a class="ta-product-title" href="/p/3">Trzy</a></div>
		</body></html>`)
	})
	for _, id := range []string{"1", "2", "3"} {
		id := id
		mux.HandleFunc("/p/"+id, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, productBody(id))
		})
	}

	recordStore := store.NewMemoryStore()
	p := New(types.DocumentBook, recordStore, nil, nil, Config{WorkerCount: 1})
	crawler := NewCrawler(crawlFetcher(), p, nil, 2)

	batch, err := crawler.Run(context.Background(), []string{server.URL + "/kategoria/1"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if batch.Processed != 2 {
		t.Errorf("Processed = %d, want the cap of 2", batch.Processed)
	}
}

func TestCrawlerSkipsFailingListing(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/kategoria/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/kategoria/ok", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
		  <div class="ta-product-tile"><a class="ta-product-title" href="/p/1">Jeden</a></div>
		</body></html>`)
	})
	mux.HandleFunc("/p/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, productBody("1"))
	})

	recordStore := store.NewMemoryStore()
	p := New(types.DocumentBook, recordStore, nil, nil, Config{WorkerCount: 1})
	crawler := NewCrawler(crawlFetcher(), p, nil, 0)

	batch, err := crawler.Run(context.Background(), []string{
		server.URL + "/kategoria/broken",
		server.URL + "/kategoria/ok",
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if batch.Stored != 1 {
		t.Errorf("Stored = %d, want 1 from the working listing", batch.Stored)
	}
}
