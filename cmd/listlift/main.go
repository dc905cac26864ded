// cmd/listlift/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/listlift/listlift/internal/aggregate"
	"github.com/listlift/listlift/internal/config"
	"github.com/listlift/listlift/internal/export"
	"github.com/listlift/listlift/internal/fetch"
	"github.com/listlift/listlift/internal/monitoring"
	"github.com/listlift/listlift/internal/pipeline"
	"github.com/listlift/listlift/internal/store"
	"github.com/listlift/listlift/internal/utils"
)

// Version information (set by build flags)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch command := os.Args[1]; command {
	case "run":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Error: config file required\n")
			fmt.Fprintf(os.Stderr, "Usage: listlift run <config.yaml>\n")
			os.Exit(1)
		}
		if err := runJob(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "validate":
		if len(os.Args) < 3 {
			fmt.Fprintf(os.Stderr, "Error: config file required\n")
			fmt.Fprintf(os.Stderr, "Usage: listlift validate <config.yaml>\n")
			os.Exit(1)
		}
		if err := validateConfig(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Configuration file '%s' is valid\n", os.Args[2])

	case "template":
		fmt.Print(config.Template())

	case "version", "--version":
		printVersion()

	case "help", "--help", "-h":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command '%s'\n", command)
		printUsage()
		os.Exit(1)
	}
}

// runJob loads the configuration and crawls the configured listings
func runJob(configFile string) error {
	cfg, err := config.LoadFromFile(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if level, ok := utils.ParseLogLevel(cfg.LogLevel); ok {
		utils.SetDefaultLevel(level)
	}
	logger := utils.NewComponentLogger("listlift")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	recordStore, err := store.New(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open record store: %w", err)
	}
	defer recordStore.Close(context.Background())

	var archive store.PageArchive
	if cfg.Pipeline.ArchivePages {
		archive, err = store.NewArchive(ctx, cfg.Store)
		if err != nil {
			return fmt.Errorf("failed to open page archive: %w", err)
		}
		defer archive.Close(context.Background())
	}

	var metrics *monitoring.Metrics
	if cfg.Monitoring.Enabled {
		metrics = monitoring.NewMetrics(cfg.Monitoring.MetricsConfig())

		aggregator := aggregate.New(recordStore)
		server := monitoring.NewServer(cfg.Monitoring.ServerConfig(),
			func(ctx context.Context) (interface{}, error) {
				return aggregator.Stats(ctx)
			},
			map[string]monitoring.HealthFunc{
				"store": func(ctx context.Context) error {
					_, err := recordStore.List(ctx, cfg.DocumentType)
					return err
				},
			})
		go func() {
			if err := server.Start(); err != nil {
				logger.Error(fmt.Sprintf("Monitoring server failed: %v", err))
			}
		}()
		defer server.Shutdown(context.Background())
	}

	fetcher := fetch.New(cfg.Fetch)
	p := pipeline.New(cfg.DocumentType, recordStore, archive, metrics, cfg.Pipeline)
	crawler := pipeline.NewCrawler(fetcher, p, metrics, cfg.MaxPages)

	logger.Info(fmt.Sprintf("Starting job %s: %d listing URLs", cfg.Name, len(cfg.ListingURLs)))
	batch, err := crawler.Run(ctx, cfg.ListingURLs)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	fmt.Printf("Processed %d pages: %d stored, %d rejected, %d failed\n",
		batch.Processed, batch.Stored, batch.Rejected, batch.Failed)

	if cfg.Export.Path != "" {
		if err := exportRecords(ctx, cfg, recordStore); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		fmt.Printf("Exported records to %s\n", cfg.Export.Path)
	}
	return nil
}

func exportRecords(ctx context.Context, cfg *config.Config, recordStore store.RecordStore) error {
	records, err := recordStore.List(ctx, cfg.DocumentType)
	if err != nil {
		return err
	}

	format := export.Format(cfg.Export.Format)
	if format == "" {
		format, err = export.FormatForPath(cfg.Export.Path)
		if err != nil {
			return err
		}
	}
	return export.Write(cfg.Export.Path, format, cfg.DocumentType, records)
}

func validateConfig(configFile string) error {
	_, err := config.LoadFromFile(configFile)
	return err
}

func printUsage() {
	fmt.Println("listlift - listing page extraction pipeline")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  listlift run <config.yaml>        Crawl the configured listings")
	fmt.Println("  listlift validate <config.yaml>   Validate a configuration file")
	fmt.Println("  listlift template                 Print a starter configuration")
	fmt.Println("  listlift version                  Show version information")
	fmt.Println("  listlift help                     Show this help message")
}

func printVersion() {
	fmt.Printf("listlift %s\n", version)
	fmt.Printf("Build time: %s\n", buildTime)
	fmt.Printf("Git commit: %s\n", gitCommit)
}
