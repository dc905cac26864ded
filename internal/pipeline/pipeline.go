// internal/pipeline/pipeline.go - page to record orchestration
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/listlift/listlift/internal/extract"
	"github.com/listlift/listlift/internal/monitoring"
	"github.com/listlift/listlift/internal/normalize"
	"github.com/listlift/listlift/internal/store"
	"github.com/listlift/listlift/internal/utils"
	"github.com/listlift/listlift/pkg/types"
)

var pipelineLogger = utils.NewComponentLogger("pipeline")

// Config defines pipeline behavior
type Config struct {
	WorkerCount  int  `yaml:"worker_count" json:"worker_count"`
	ArchivePages bool `yaml:"archive_pages" json:"archive_pages"`
}

// Pipeline turns raw pages into stored records: decode the page, run the
// extraction strategies, normalize the raw field values, then upsert under
// the identity key. Each page is independent; a failed page never blocks
// the rest of a batch.
type Pipeline struct {
	docType   types.DocumentType
	extractor *extract.Extractor
	store     store.RecordStore
	archive   store.PageArchive
	metrics   *monitoring.Metrics
	config    Config
}

// New creates a pipeline for one document type. archive and metrics may be
// nil.
func New(dt types.DocumentType, recordStore store.RecordStore, archive store.PageArchive, metrics *monitoring.Metrics, config Config) *Pipeline {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 4
	}
	return &Pipeline{
		docType:   dt,
		extractor: extract.ForDocumentType(dt),
		store:     recordStore,
		archive:   archive,
		metrics:   metrics,
		config:    config,
	}
}

// PageResult describes the outcome of processing one page
type PageResult struct {
	SourceURL string
	Record    types.Record
	Report    *normalize.Report
	Duration  time.Duration
	Err       error
}

// BatchResult summarizes a processed batch
type BatchResult struct {
	Processed int
	Stored    int
	Rejected  int
	Failed    int
	Results   []PageResult
}

// ProcessPage runs one page through extraction, normalization and storage
func (p *Pipeline) ProcessPage(ctx context.Context, rawPage types.RawPage) PageResult {
	start := time.Now()
	result := PageResult{SourceURL: rawPage.SourceURL}

	if p.config.ArchivePages && p.archive != nil {
		if err := p.archive.Save(ctx, rawPage); err != nil {
			pipelineLogger.Warn(fmt.Sprintf("Failed to archive %s: %v", rawPage.SourceURL, err))
		}
	}

	page := extract.NewPage(rawPage)
	if _, hasBlob := page.Blob(); !hasBlob {
		p.countDecodeMiss()
	}

	fields := p.extractor.Extract(page)
	p.countFieldMisses(fields)

	record, report, err := normalize.Record(p.docType, fields, rawPage.FetchedAt)
	result.Report = report
	p.countRawFallbacks(report)
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		p.countProcessed("rejected")
		if p.metrics != nil {
			p.metrics.RecordsRejected.WithLabelValues(string(p.docType), rejectionReason(err)).Inc()
		}
		pipelineLogger.Warn(fmt.Sprintf("Rejected page %s: %v", rawPage.SourceURL, err))
		return result
	}

	if err := p.store.Upsert(ctx, record); err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		p.countProcessed("store_error")
		if p.metrics != nil {
			p.metrics.StoreErrors.WithLabelValues(string(p.docType)).Inc()
		}
		return result
	}

	result.Record = record
	result.Duration = time.Since(start)
	p.countProcessed("stored")
	if p.metrics != nil {
		p.metrics.RecordsUpserted.WithLabelValues(string(p.docType)).Inc()
		p.metrics.ExtractDuration.WithLabelValues(string(p.docType)).Observe(result.Duration.Seconds())
	}
	return result
}

// ProcessBatch processes pages concurrently with a bounded worker pool
func (p *Pipeline) ProcessBatch(ctx context.Context, pages []types.RawPage) (*BatchResult, error) {
	jobs := make(chan types.RawPage, len(pages))
	resultChan := make(chan PageResult, len(pages))

	var wg sync.WaitGroup
	for i := 0; i < p.config.WorkerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for page := range jobs {
				resultChan <- p.ProcessPage(ctx, page)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, page := range pages {
			select {
			case jobs <- page:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	batch := &BatchResult{}
	for result := range resultChan {
		batch.Processed++
		switch {
		case result.Err == nil:
			batch.Stored++
		case errors.Is(result.Err, normalize.ErrIdentityMissing):
			batch.Rejected++
		default:
			batch.Failed++
		}
		batch.Results = append(batch.Results, result)
	}

	if err := ctx.Err(); err != nil {
		return batch, err
	}

	pipelineLogger.Info(fmt.Sprintf("Processed %d pages: %d stored, %d rejected, %d failed",
		batch.Processed, batch.Stored, batch.Rejected, batch.Failed))
	return batch, nil
}

func (p *Pipeline) countProcessed(status string) {
	if p.metrics != nil {
		p.metrics.PagesProcessed.WithLabelValues(string(p.docType), status).Inc()
	}
}

func (p *Pipeline) countDecodeMiss() {
	if p.metrics != nil {
		p.metrics.StateDecodeMiss.WithLabelValues(string(p.docType)).Inc()
	}
}

func (p *Pipeline) countFieldMisses(fields extract.RawFieldMap) {
	if p.metrics == nil {
		return
	}
	for name, value := range fields {
		if !value.Present {
			p.metrics.FieldMisses.WithLabelValues(string(p.docType), name).Inc()
		}
	}
}

func (p *Pipeline) countRawFallbacks(report *normalize.Report) {
	if p.metrics == nil || report == nil || report.RawFallbacks == 0 {
		return
	}
	p.metrics.RawFallbacks.WithLabelValues(string(p.docType)).Add(float64(report.RawFallbacks))
}

func rejectionReason(err error) string {
	if errors.Is(err, normalize.ErrIdentityMissing) {
		return "identity_missing"
	}
	return "error"
}
