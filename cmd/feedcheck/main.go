// Package main provides a CLI that checks every configured feed.
// Usage: feedcheck [--sources FILE] [--country CODE] [--timeout D] [--parallel N] [--output json]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"news-aggregator/internal/domain/entity"
	"news-aggregator/internal/domain/locale"
	"news-aggregator/internal/infra/registry"
	"news-aggregator/internal/infra/scraper"
	"news-aggregator/internal/observability/logging"
)

func main() {
	var (
		sourcesFile  string
		country      string
		timeout      time.Duration
		parallelism  int
		outputFormat string
	)

	flag.StringVar(&sourcesFile, "sources", os.Getenv("SOURCES_FILE"), "Source registry YAML (default: embedded registry)")
	flag.StringVar(&country, "country", "", "Only check sources of this country code or alias")
	flag.DurationVar(&timeout, "timeout", scraper.DefaultFetchTimeout, "Timeout per feed request")
	flag.IntVar(&parallelism, "parallel", 4, "Number of feeds checked concurrently")
	flag.StringVar(&outputFormat, "output", "text", "Output format: text or json")
	flag.Parse()

	if outputFormat != "text" && outputFormat != "json" {
		fmt.Fprintf(os.Stderr, "Error: Invalid output format %q (want text or json)\n", outputFormat)
		os.Exit(2)
	}

	// ログは stderr、レポートは stdout
	slog.SetDefault(logging.NewTextLoggerTo(os.Stderr))

	reg, err := registry.Load(sourcesFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to load source registry: %v\n", err)
		os.Exit(1)
	}
	srcs, err := reg.List(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to list sources: %v\n", err)
		os.Exit(1)
	}

	if country != "" {
		code, ok := locale.NormalizeCountry(country)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: Unknown country %q\n", country)
			os.Exit(2)
		}
		srcs = filterCountry(srcs, code)
	}

	checker := &Checker{
		Fetcher: scraper.NewHTTPFetcher(nil, scraper.FetcherConfig{
			Timeout:     timeout,
			MaxBodySize: scraper.DefaultMaxBodySize,
		}),
		Parser:      scraper.NewParser(),
		Parallelism: parallelism,
	}

	results := checker.CheckAll(context.Background(), srcs)

	if outputFormat == "json" {
		err = writeJSON(os.Stdout, results)
	} else {
		err = writeText(os.Stdout, results)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to write report: %v\n", err)
		os.Exit(1)
	}

	if failedCount(results) > 0 {
		os.Exit(1)
	}
}

func filterCountry(srcs []entity.SourceDescriptor, code string) []entity.SourceDescriptor {
	out := srcs[:0:0]
	for _, s := range srcs {
		if s.Country == code {
			out = append(out, s)
		}
	}
	return out
}

// writeJSON prints the results as an indented JSON array.
func writeJSON(w io.Writer, results []FeedResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(results)
}

// writeText prints one block per feed followed by a summary.
func writeText(w io.Writer, results []FeedResult) error {
	ew := &errWriter{w: w}
	for _, r := range results {
		ew.printf("[%s] %s (%s)\n", r.Status, r.Source, r.SourceID)
		ew.printf("  URL: %s\n", r.URL)
		ew.printf("  Items: %d | Duration: %dms", r.Items, r.DurationMS)
		if r.LatestDate != "" {
			ew.printf(" | Latest: %s", r.LatestDate)
		}
		ew.printf("\n")
		if r.Error != "" {
			ew.printf("  Error: %s\n", r.Error)
		}
		for _, warn := range r.Warnings {
			ew.printf("  Warning: %s\n", warn)
		}
		ew.printf("\n")
	}

	failed := failedCount(results)
	ew.printf("SUMMARY: %d feeds, %d ok, %d failed\n", len(results), len(results)-failed, failed)
	return ew.err
}

// errWriter keeps the first write error and skips later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
