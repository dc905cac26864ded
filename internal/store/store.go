// internal/store/store.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/listlift/listlift/internal/utils"
	"github.com/listlift/listlift/pkg/types"
)

// ErrNotFound reports a missing record for a key
var ErrNotFound = fmt.Errorf("record not found")

// RecordStore persists canonical records with at most one logical copy per
// identity key. Upsert replaces the stored field set wholesale (last write
// wins at whole-record granularity) and is atomic per key: concurrent
// upserts for the same key never interleave into a mixed record. Upserts
// for different keys are independent.
type RecordStore interface {
	Upsert(ctx context.Context, record types.Record) error
	Get(ctx context.Context, dt types.DocumentType, key string) (types.Record, error)
	List(ctx context.Context, dt types.DocumentType) ([]types.Record, error)
	Close(ctx context.Context) error
}

// PageArchive stores raw page bodies keyed by source URL with upsert
// semantics. It is kept strictly separate from the canonical record store
// so extraction can be re-run against archived pages without re-fetching.
type PageArchive interface {
	Save(ctx context.Context, page types.RawPage) error
	Load(ctx context.Context, sourceURL string) (types.RawPage, error)
	URLs(ctx context.Context) ([]string, error)
	Close(ctx context.Context) error
}

// Backend identifies a persistence backend
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendMongoDB  Backend = "mongodb"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendMySQL    Backend = "mysql"
)

// Options configures the record store and page archive backends
type Options struct {
	Backend Backend `yaml:"backend" json:"backend"`

	// MongoDB
	URI      string `yaml:"uri,omitempty" json:"uri,omitempty"`
	Database string `yaml:"database,omitempty" json:"database,omitempty"`

	// SQL backends
	DatabasePath string `yaml:"database_path,omitempty" json:"database_path,omitempty"`
	DSN          string `yaml:"dsn,omitempty" json:"dsn,omitempty"`
}

// New creates a record store for the configured backend
func New(ctx context.Context, options Options) (RecordStore, error) {
	switch options.Backend {
	case BackendMemory, "":
		return NewMemoryStore(), nil
	case BackendMongoDB:
		return NewMongoStore(ctx, options)
	case BackendSQLite, BackendPostgres, BackendMySQL:
		return NewSQLStore(options)
	default:
		return nil, utils.NewError(utils.ErrCodeInvalidConfig,
			fmt.Sprintf("unknown store backend: %s", options.Backend))
	}
}

// NewArchive creates a page archive for the configured backend
func NewArchive(ctx context.Context, options Options) (PageArchive, error) {
	switch options.Backend {
	case BackendMemory, "":
		return NewMemoryArchive(), nil
	case BackendMongoDB:
		return NewMongoArchive(ctx, options)
	case BackendSQLite, BackendPostgres, BackendMySQL:
		return NewSQLArchive(options)
	default:
		return nil, utils.NewError(utils.ErrCodeInvalidConfig,
			fmt.Sprintf("unknown archive backend: %s", options.Backend))
	}
}

// encodeRecord serializes a record for document-oriented SQL storage
func encodeRecord(record types.Record) ([]byte, error) {
	return json.Marshal(record)
}

// decodeRecord deserializes a stored document into its concrete record type
func decodeRecord(dt types.DocumentType, data []byte) (types.Record, error) {
	switch dt {
	case types.DocumentBook:
		var book types.Book
		if err := json.Unmarshal(data, &book); err != nil {
			return nil, err
		}
		return &book, nil
	case types.DocumentJobOffer:
		var offer types.JobOffer
		if err := json.Unmarshal(data, &offer); err != nil {
			return nil, err
		}
		return &offer, nil
	default:
		return nil, fmt.Errorf("unknown document type: %s", dt)
	}
}

// identityField returns the persisted field name of the identity key
func identityField(dt types.DocumentType) string {
	switch dt {
	case types.DocumentBook:
		return "product_id"
	default:
		return "url"
	}
}

// MemoryStore is an in-process record store used for tests and dry runs.
// A single mutex serializes upserts; per-key atomicity follows from map
// assignment being done under the lock.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[types.DocumentType]map[string]types.Record
}

// NewMemoryStore creates an empty in-memory record store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[types.DocumentType]map[string]types.Record),
	}
}

// Upsert inserts or replaces the record under its identity key
func (s *MemoryStore) Upsert(ctx context.Context, record types.Record) error {
	if err := types.Validate(record); err != nil {
		return utils.WrapError(err, utils.ErrCodeStoreFailed, "rejecting record").
			WithSeverity(utils.SeverityWarning)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	collection := s.records[record.Type()]
	if collection == nil {
		collection = make(map[string]types.Record)
		s.records[record.Type()] = collection
	}
	collection[record.Key()] = record
	return nil
}

// Get returns the last upserted record for the key
func (s *MemoryStore) Get(ctx context.Context, dt types.DocumentType, key string) (types.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[dt][key]
	if !ok {
		return nil, ErrNotFound
	}
	return record, nil
}

// List returns all records of the document type
func (s *MemoryStore) List(ctx context.Context, dt types.DocumentType) ([]types.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]types.Record, 0, len(s.records[dt]))
	for _, record := range s.records[dt] {
		records = append(records, record)
	}
	return records, nil
}

// Close releases nothing for the in-memory store
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// MemoryArchive is an in-process page archive
type MemoryArchive struct {
	mu    sync.RWMutex
	pages map[string]types.RawPage
}

// NewMemoryArchive creates an empty in-memory page archive
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{pages: make(map[string]types.RawPage)}
}

// Save inserts or replaces the page under its source URL
func (a *MemoryArchive) Save(ctx context.Context, page types.RawPage) error {
	if page.SourceURL == "" {
		return utils.NewError(utils.ErrCodeStoreFailed, "page has no source URL")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pages[page.SourceURL] = page
	return nil
}

// Load returns the archived page for the source URL
func (a *MemoryArchive) Load(ctx context.Context, sourceURL string) (types.RawPage, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	page, ok := a.pages[sourceURL]
	if !ok {
		return types.RawPage{}, ErrNotFound
	}
	return page, nil
}

// URLs returns the source URLs of all archived pages
func (a *MemoryArchive) URLs(ctx context.Context) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	urls := make([]string, 0, len(a.pages))
	for url := range a.pages {
		urls = append(urls, url)
	}
	return urls, nil
}

// Close releases nothing for the in-memory archive
func (a *MemoryArchive) Close(ctx context.Context) error { return nil }
