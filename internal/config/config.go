// internal/config/config.go
package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/listlift/listlift/internal/fetch"
	"github.com/listlift/listlift/internal/monitoring"
	"github.com/listlift/listlift/internal/pipeline"
	"github.com/listlift/listlift/internal/store"
	"github.com/listlift/listlift/pkg/types"
)

// Config is the top-level scrape job configuration
type Config struct {
	Name         string             `yaml:"name"`
	DocumentType types.DocumentType `yaml:"document_type"`
	ListingURLs  []string           `yaml:"listing_urls"`
	MaxPages     int                `yaml:"max_pages,omitempty"`
	LogLevel     string             `yaml:"log_level,omitempty"`

	Fetch      fetch.Config     `yaml:"fetch,omitempty"`
	Pipeline   pipeline.Config  `yaml:"pipeline,omitempty"`
	Store      store.Options    `yaml:"store,omitempty"`
	Monitoring MonitoringConfig `yaml:"monitoring,omitempty"`
	Export     ExportConfig     `yaml:"export,omitempty"`
}

// MonitoringConfig enables the metrics and stats HTTP server
type MonitoringConfig struct {
	Enabled       bool   `yaml:"enabled"`
	ListenAddress string `yaml:"listen_address,omitempty"`
	Namespace     string `yaml:"namespace,omitempty"`
}

// ExportConfig writes the stored records to a file after a run
type ExportConfig struct {
	Path   string `yaml:"path,omitempty"`
	Format string `yaml:"format,omitempty"` // csv or excel, inferred from path when empty
}

// MetricsConfig converts the monitoring section for the metrics registry
func (mc MonitoringConfig) MetricsConfig() monitoring.MetricsConfig {
	return monitoring.MetricsConfig{Namespace: mc.Namespace}
}

// ServerConfig converts the monitoring section for the HTTP server
func (mc MonitoringConfig) ServerConfig() monitoring.ServerConfig {
	return monitoring.ServerConfig{ListenAddress: mc.ListenAddress}
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(filename string) (*Config, error) {
	if filename == "" {
		return nil, fmt.Errorf("configuration filename cannot be empty")
	}
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", filename)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %v", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes loads configuration from YAML bytes, expanding ${VAR}
// environment references before parsing
func LoadFromBytes(data []byte) (*Config, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("configuration data cannot be empty")
	}

	expanded := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML configuration: %v", err)
	}

	applyDefaults(&config)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %v", err)
	}
	return &config, nil
}

// LoadFromReader loads configuration from an io.Reader
func LoadFromReader(reader io.Reader) (*Config, error) {
	if reader == nil {
		return nil, fmt.Errorf("reader cannot be nil")
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read from reader: %v", err)
	}
	return LoadFromBytes(data)
}

func applyDefaults(config *Config) {
	if config.Name == "" {
		config.Name = string(config.DocumentType)
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.Fetch.Timeout == 0 {
		config.Fetch.Timeout = 30 * time.Second
	}
	if config.Fetch.RateLimit == 0 {
		config.Fetch.RateLimit = 1.0
	}
	if config.Pipeline.WorkerCount == 0 {
		config.Pipeline.WorkerCount = 4
	}
	if config.Store.Backend == "" {
		config.Store.Backend = store.BackendMemory
	}
	if config.Monitoring.Enabled && config.Monitoring.ListenAddress == "" {
		config.Monitoring.ListenAddress = ":9090"
	}
}

// Validate checks the configuration for structural problems
func (c *Config) Validate() error {
	if !c.DocumentType.IsValid() {
		return fmt.Errorf("document_type must be one of: %s, %s",
			types.DocumentBook, types.DocumentJobOffer)
	}
	if len(c.ListingURLs) == 0 {
		return fmt.Errorf("at least one listing URL is required")
	}
	for _, listingURL := range c.ListingURLs {
		if listingURL == "" {
			return fmt.Errorf("listing URL cannot be empty")
		}
	}
	if c.MaxPages < 0 {
		return fmt.Errorf("max_pages cannot be negative")
	}
	if c.Fetch.RateLimit < 0 {
		return fmt.Errorf("fetch rate_limit cannot be negative")
	}
	if c.Pipeline.WorkerCount < 0 {
		return fmt.Errorf("pipeline worker_count cannot be negative")
	}

	switch c.Store.Backend {
	case store.BackendMemory, store.BackendMongoDB, store.BackendSQLite,
		store.BackendPostgres, store.BackendMySQL:
	default:
		return fmt.Errorf("unknown store backend: %s", c.Store.Backend)
	}
	if c.Store.Backend == store.BackendMongoDB && c.Store.URI == "" {
		return fmt.Errorf("store uri is required for the mongodb backend")
	}
	if c.Store.Backend == store.BackendSQLite && c.Store.DatabasePath == "" {
		return fmt.Errorf("store database_path is required for the sqlite backend")
	}
	if (c.Store.Backend == store.BackendPostgres || c.Store.Backend == store.BackendMySQL) && c.Store.DSN == "" {
		return fmt.Errorf("store dsn is required for the %s backend", c.Store.Backend)
	}

	if c.Export.Format != "" && c.Export.Format != "csv" && c.Export.Format != "excel" {
		return fmt.Errorf("export format must be csv or excel")
	}
	if c.Export.Format != "" && c.Export.Path == "" {
		return fmt.Errorf("export path is required when a format is set")
	}
	return nil
}

// Template returns a commented starter configuration
func Template() string {
	return `# listlift scrape job configuration
name: books
document_type: book            # book or job_offer
listing_urls:
  - https://example.com/books?page=1
max_pages: 100

fetch:
  timeout: 30s
  retry_attempts: 3
  rate_limit: 1.0              # requests per second
  rate_burst: 2

pipeline:
  worker_count: 4
  archive_pages: true

store:
  backend: sqlite              # memory, mongodb, sqlite, postgres, mysql
  database_path: listlift.db
  # uri: mongodb://localhost:27017
  # database: listlift
  # dsn: ${DATABASE_DSN}

monitoring:
  enabled: false
  listen_address: ":9090"

export:
  path: books.csv              # .csv or .xlsx
`
}
