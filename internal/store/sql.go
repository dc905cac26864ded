// internal/store/sql.go - SQL-backed record store and page archive
//
// Records are stored as JSON documents in one table per collection, keyed
// by the identity field. The same schema works across SQLite, PostgreSQL
// and MySQL; only the upsert statement and placeholder style differ per
// dialect.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/listlift/listlift/internal/utils"
	"github.com/listlift/listlift/pkg/types"
)

var sqlLogger = utils.NewComponentLogger("sql-store")

// dialect captures the per-driver SQL differences
type dialect struct {
	driver      string
	placeholder func(n int) string
	upsert      func(table string) string
}

var sqlDialects = map[Backend]dialect{
	BackendSQLite: {
		driver:      "sqlite3",
		placeholder: func(n int) string { return "?" },
		upsert: func(table string) string {
			return fmt.Sprintf(
				`INSERT INTO %s (record_key, doc, updated_at) VALUES (?, ?, ?)
				 ON CONFLICT(record_key) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
				table)
		},
	},
	BackendPostgres: {
		driver:      "postgres",
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		upsert: func(table string) string {
			return fmt.Sprintf(
				`INSERT INTO %s (record_key, doc, updated_at) VALUES ($1, $2, $3)
				 ON CONFLICT (record_key) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`,
				table)
		},
	},
	BackendMySQL: {
		driver:      "mysql",
		placeholder: func(n int) string { return "?" },
		upsert: func(table string) string {
			return fmt.Sprintf(
				`INSERT INTO %s (record_key, doc, updated_at) VALUES (?, ?, ?)
				 ON DUPLICATE KEY UPDATE doc = VALUES(doc), updated_at = VALUES(updated_at)`,
				table)
		},
	},
}

// keyColumnType returns the identity column type for the dialect. MySQL
// needs a bounded VARCHAR for primary keys.
func keyColumnType(backend Backend) string {
	if backend == BackendMySQL {
		return "VARCHAR(512)"
	}
	return "TEXT"
}

// SQLStore is a record store over database/sql
type SQLStore struct {
	db      *sql.DB
	backend Backend
	d       dialect
}

// NewSQLStore opens the database and creates the record tables
func NewSQLStore(opts Options) (*SQLStore, error) {
	db, d, err := openSQL(opts)
	if err != nil {
		return nil, err
	}

	store := &SQLStore{db: db, backend: opts.Backend, d: d}
	for _, dt := range []types.DocumentType{types.DocumentBook, types.DocumentJobOffer} {
		schema := fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s (
				record_key %s PRIMARY KEY,
				doc TEXT NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`, dt.Collection(), keyColumnType(opts.Backend))
		if _, err := db.Exec(schema); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create table %s: %w", dt.Collection(), err)
		}
	}

	sqlLogger.Info(fmt.Sprintf("Opened %s record store", opts.Backend))
	return store, nil
}

// openSQL resolves the dialect and opens the connection
func openSQL(opts Options) (*sql.DB, dialect, error) {
	d, ok := sqlDialects[opts.Backend]
	if !ok {
		return nil, dialect{}, utils.NewError(utils.ErrCodeInvalidConfig,
			fmt.Sprintf("unsupported SQL backend: %s", opts.Backend))
	}

	dsn := opts.DSN
	if opts.Backend == BackendSQLite {
		if opts.DatabasePath == "" {
			return nil, dialect{}, utils.NewError(utils.ErrCodeInvalidConfig,
				"database_path is required for sqlite")
		}
		dsn = opts.DatabasePath
	} else if dsn == "" {
		return nil, dialect{}, utils.NewError(utils.ErrCodeInvalidConfig,
			fmt.Sprintf("dsn is required for %s", opts.Backend))
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, dialect{}, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, dialect{}, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(time.Hour)
	return db, d, nil
}

// Upsert inserts or replaces the record under its identity key. The
// single-statement upsert makes the replacement atomic per key.
func (s *SQLStore) Upsert(ctx context.Context, record types.Record) error {
	if err := types.Validate(record); err != nil {
		return utils.WrapError(err, utils.ErrCodeStoreFailed, "rejecting record")
	}

	doc, err := encodeRecord(record)
	if err != nil {
		return utils.WrapError(err, utils.ErrCodeStoreFailed, "failed to encode record")
	}

	table := record.Type().Collection()
	_, err = s.db.ExecContext(ctx, s.d.upsert(table), record.Key(), string(doc), time.Now().UTC())
	if err != nil {
		return utils.WrapError(err, utils.ErrCodeStoreFailed,
			fmt.Sprintf("failed to upsert %s %s", record.Type(), record.Key()))
	}
	return nil
}

// Get returns the record stored under the key
func (s *SQLStore) Get(ctx context.Context, dt types.DocumentType, key string) (types.Record, error) {
	query := fmt.Sprintf("SELECT doc FROM %s WHERE record_key = %s",
		dt.Collection(), s.d.placeholder(1))

	var doc string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrCodeStoreFailed, "failed to read record")
	}
	return decodeRecord(dt, []byte(doc))
}

// List returns all records of the document type
func (s *SQLStore) List(ctx context.Context, dt types.DocumentType) ([]types.Record, error) {
	query := fmt.Sprintf("SELECT doc FROM %s", dt.Collection())
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrCodeStoreFailed, "failed to list records")
	}
	defer rows.Close()

	var records []types.Record
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		record, err := decodeRecord(dt, []byte(doc))
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Close closes the database connection
func (s *SQLStore) Close(ctx context.Context) error {
	return s.db.Close()
}

// SQLArchive stores raw page bodies in a raw_pages table keyed by source
// URL
type SQLArchive struct {
	db *sql.DB
	d  dialect
}

// NewSQLArchive opens the database and creates the archive table
func NewSQLArchive(opts Options) (*SQLArchive, error) {
	db, d, err := openSQL(opts)
	if err != nil {
		return nil, err
	}

	schema := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (
			record_key %s PRIMARY KEY,
			doc TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`, archiveCollection, keyColumnType(opts.Backend))
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create archive table: %w", err)
	}

	return &SQLArchive{db: db, d: d}, nil
}

// Save inserts or replaces the page under its source URL
func (a *SQLArchive) Save(ctx context.Context, page types.RawPage) error {
	if page.SourceURL == "" {
		return utils.NewError(utils.ErrCodeStoreFailed, "page has no source URL")
	}
	_, err := a.db.ExecContext(ctx, a.d.upsert(archiveCollection),
		page.SourceURL, page.Body, page.FetchedAt.UTC())
	if err != nil {
		return utils.WrapError(err, utils.ErrCodeStoreFailed, "failed to archive page")
	}
	return nil
}

// Load returns the archived page for the source URL
func (a *SQLArchive) Load(ctx context.Context, sourceURL string) (types.RawPage, error) {
	query := fmt.Sprintf("SELECT doc, updated_at FROM %s WHERE record_key = %s",
		archiveCollection, a.d.placeholder(1))

	var body string
	var fetchedAt time.Time
	err := a.db.QueryRowContext(ctx, query, sourceURL).Scan(&body, &fetchedAt)
	if err == sql.ErrNoRows {
		return types.RawPage{}, ErrNotFound
	}
	if err != nil {
		return types.RawPage{}, utils.WrapError(err, utils.ErrCodeStoreFailed, "failed to read page")
	}
	return types.RawPage{SourceURL: sourceURL, Body: body, FetchedAt: fetchedAt}, nil
}

// URLs returns the source URLs of all archived pages
func (a *SQLArchive) URLs(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf("SELECT record_key FROM %s", archiveCollection)
	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrCodeStoreFailed, "failed to list archive")
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}

// Close closes the database connection
func (a *SQLArchive) Close(ctx context.Context) error {
	return a.db.Close()
}
