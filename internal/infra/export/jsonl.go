// Package export writes collected items to files for downstream consumers.
package export

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"news-aggregator/internal/domain/entity"
)

// DefaultPath is where the collector writes its JSON Lines export.
const DefaultPath = "data/rss_news.jl"

// Record is one exported line.
type Record struct {
	Title     string `json:"title"`
	ImagePath string `json:"image_path"`
	Source    string `json:"source"`
	Link      string `json:"link"`
	Date      string `json:"date"`
	Country   string `json:"country"`
	Language  string `json:"language"`
}

// NewRecord converts an item; an undated item exports an empty date.
func NewRecord(it entity.NormalizedItem) Record {
	r := Record{
		Title:     it.Title,
		ImagePath: it.ImagePath,
		Source:    it.Source,
		Link:      it.Link,
		Country:   it.Country,
		Language:  it.Language,
	}
	if it.HasDate() {
		r.Date = it.PublishedAt.UTC().Format(time.RFC3339)
	}
	return r
}

// JSONLWriter overwrites Path with one JSON object per item on every export.
// The file is replaced atomically so readers never see a partial export.
type JSONLWriter struct {
	Path string
}

// NewJSONLWriter returns a writer targeting path, or DefaultPath when empty.
func NewJSONLWriter(path string) *JSONLWriter {
	if path == "" {
		path = DefaultPath
	}
	return &JSONLWriter{Path: path}
}

// Export writes items in order.
func (w *JSONLWriter) Export(ctx context.Context, items []entity.NormalizedItem) error {
	dir := filepath.Dir(w.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(w.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	bw := bufio.NewWriter(tmp)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for i, it := range items {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				_ = tmp.Close()
				return err
			}
		}
		if err := enc.Encode(NewRecord(it)); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("encode item %d: %w", i, err)
		}
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("flush export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close export: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.Path); err != nil {
		return fmt.Errorf("replace export: %w", err)
	}
	return nil
}
