// internal/pipeline/pipeline_test.go
package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/listlift/listlift/internal/normalize"
	"github.com/listlift/listlift/internal/store"
	"github.com/listlift/listlift/pkg/types"
)

const bookPageBody = `<html><head>
<script>window.__APOLLO_STATE__ = {
  "Product:978": {
    "id": "978",
    "baseInformation": {"name": "Księgi Jakubowe"}
  }
};</script>
</head><body><h1>Księgi Jakubowe</h1></body></html>`

// No state blob and no selector content that could yield a product id.
const emptyPageBody = `<html><body><p>strona bez produktu</p></body></html>`

func bookPage(url, body string) types.RawPage {
	return types.RawPage{
		SourceURL: url,
		Body:      body,
		FetchedAt: time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC),
	}
}

func TestProcessPageStoresRecord(t *testing.T) {
	recordStore := store.NewMemoryStore()
	p := New(types.DocumentBook, recordStore, nil, nil, Config{})

	result := p.ProcessPage(context.Background(), bookPage("https://books.example.com/p/978", bookPageBody))
	if result.Err != nil {
		t.Fatalf("ProcessPage() error = %v", result.Err)
	}
	if result.Record == nil || result.Record.Key() != "978" {
		t.Fatalf("Record = %v", result.Record)
	}

	stored, err := recordStore.Get(context.Background(), types.DocumentBook, "978")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	book := stored.(*types.Book)
	if book.Title == nil || *book.Title != "Księgi Jakubowe" {
		t.Errorf("Title = %v", book.Title)
	}
}

func TestProcessPageRejectsWithoutIdentity(t *testing.T) {
	recordStore := store.NewMemoryStore()
	p := New(types.DocumentBook, recordStore, nil, nil, Config{})

	result := p.ProcessPage(context.Background(), bookPage("https://books.example.com/p/none", emptyPageBody))
	if !errors.Is(result.Err, normalize.ErrIdentityMissing) {
		t.Fatalf("err = %v, want ErrIdentityMissing", result.Err)
	}

	records, _ := recordStore.List(context.Background(), types.DocumentBook)
	if len(records) != 0 {
		t.Errorf("store holds %d records, want none", len(records))
	}
}

func TestProcessPageArchives(t *testing.T) {
	recordStore := store.NewMemoryStore()
	archive := store.NewMemoryArchive()
	p := New(types.DocumentBook, recordStore, archive, nil, Config{ArchivePages: true})

	page := bookPage("https://books.example.com/p/978", bookPageBody)
	if result := p.ProcessPage(context.Background(), page); result.Err != nil {
		t.Fatalf("ProcessPage() error = %v", result.Err)
	}

	archived, err := archive.Load(context.Background(), page.SourceURL)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if archived.Body != page.Body {
		t.Error("archived body differs from the fetched body")
	}
}

func TestProcessBatchCounts(t *testing.T) {
	recordStore := store.NewMemoryStore()
	p := New(types.DocumentBook, recordStore, nil, nil, Config{WorkerCount: 2})

	pages := []types.RawPage{
		bookPage("https://books.example.com/p/978", bookPageBody),
		bookPage("https://books.example.com/p/none", emptyPageBody),
	}

	batch, err := p.ProcessBatch(context.Background(), pages)
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}
	if batch.Processed != 2 {
		t.Errorf("Processed = %d, want 2", batch.Processed)
	}
	if batch.Stored != 1 {
		t.Errorf("Stored = %d, want 1", batch.Stored)
	}
	if batch.Rejected != 1 {
		t.Errorf("Rejected = %d, want 1", batch.Rejected)
	}
	if batch.Failed != 0 {
		t.Errorf("Failed = %d, want 0", batch.Failed)
	}
	if len(batch.Results) != 2 {
		t.Errorf("len(Results) = %d, want 2", len(batch.Results))
	}
}

func TestProcessBatchIdempotentRerun(t *testing.T) {
	recordStore := store.NewMemoryStore()
	p := New(types.DocumentBook, recordStore, nil, nil, Config{WorkerCount: 2})

	pages := []types.RawPage{bookPage("https://books.example.com/p/978", bookPageBody)}

	for run := 0; run < 3; run++ {
		if _, err := p.ProcessBatch(context.Background(), pages); err != nil {
			t.Fatalf("run %d: ProcessBatch() error = %v", run, err)
		}
	}

	records, _ := recordStore.List(context.Background(), types.DocumentBook)
	if len(records) != 1 {
		t.Errorf("store holds %d records after reruns, want 1", len(records))
	}
}

func TestProcessBatchHonorsCancellation(t *testing.T) {
	recordStore := store.NewMemoryStore()
	p := New(types.DocumentBook, recordStore, nil, nil, Config{WorkerCount: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.ProcessBatch(ctx, []types.RawPage{
		bookPage("https://books.example.com/p/978", bookPageBody),
	}); err == nil {
		t.Error("expected context error for cancelled batch")
	}
}
