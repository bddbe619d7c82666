package scraper

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/atom"
	"github.com/mmcdole/gofeed/rss"

	"news-aggregator/internal/domain/entity"
	"news-aggregator/internal/usecase/aggregate"
)

// Parser implements aggregate.FeedParser for RSS and Atom documents.
// It is stateless and safe for concurrent use.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse converts raw feed bytes into normalized items stamped with the
// source's country and language. It never returns an error: an unreadable
// document yields zero items and a single "parse failed" warning.
func (p *Parser) Parse(raw []byte, src entity.SourceDescriptor) ([]entity.NormalizedItem, []string) {
	entries, err := ParseFeed(raw)
	if err != nil {
		slog.Debug("feed parse failed",
			slog.String("source_id", src.ID),
			slog.Any("error", err))
		return nil, []string{fmt.Sprintf("%s: %v", src.Name, aggregate.ErrParseFailed)}
	}

	items := make([]entity.NormalizedItem, 0, len(entries))
	var warnings []string
	for _, e := range entries {
		link := strings.TrimSpace(e.Item.Link)
		if link == "" {
			continue
		}
		if !entity.IsAbsoluteHTTPURL(link) {
			warnings = append(warnings, fmt.Sprintf("%s: malformed entry skipped", src.Name))
			continue
		}

		title := strings.TrimSpace(e.Item.Title)
		if title == "" {
			title = entity.UntitledPlaceholder
		}
		publisher := src.Name
		if e.SourceTitle != "" {
			publisher = e.SourceTitle
		}

		items = append(items, entity.NormalizedItem{
			Title:       title,
			Link:        link,
			ImagePath:   ExtractImage(e.Item),
			Source:      publisher,
			PublishedAt: entryTime(e.Item),
			Country:     src.Country,
			Language:    src.Language,
		})
	}
	return items, warnings
}

// Entry is one translated feed item plus the publisher named in its
// <source> element, if any.
type Entry struct {
	Item        *gofeed.Item
	SourceTitle string
}

// ParseFeed detects the dialect of raw and returns its entries in document order.
// Errors wrap aggregate.ErrParseFailed.
func ParseFeed(raw []byte) ([]Entry, error) {
	switch gofeed.DetectFeedType(bytes.NewReader(raw)) {
	case gofeed.FeedTypeRSS:
		return parseRSS(raw)
	case gofeed.FeedTypeAtom:
		return parseAtom(raw)
	default:
		return nil, fmt.Errorf("%w: unrecognized document type", aggregate.ErrParseFailed)
	}
}

func parseRSS(raw []byte) ([]Entry, error) {
	rp := &rss.Parser{}
	doc, err := rp.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: rss: %v", aggregate.ErrParseFailed, err)
	}
	tr := &gofeed.DefaultRSSTranslator{}
	feed, err := tr.Translate(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: rss: %v", aggregate.ErrParseFailed, err)
	}

	// The translator keeps item order, so indices line up with doc.Items.
	entries := make([]Entry, 0, len(feed.Items))
	for i, it := range feed.Items {
		e := Entry{Item: it}
		if i < len(doc.Items) && doc.Items[i].Source != nil {
			e.SourceTitle = strings.TrimSpace(doc.Items[i].Source.Title)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func parseAtom(raw []byte) ([]Entry, error) {
	ap := &atom.Parser{}
	doc, err := ap.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: atom: %v", aggregate.ErrParseFailed, err)
	}
	tr := &gofeed.DefaultAtomTranslator{}
	feed, err := tr.Translate(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: atom: %v", aggregate.ErrParseFailed, err)
	}

	entries := make([]Entry, 0, len(feed.Items))
	for i, it := range feed.Items {
		e := Entry{Item: it}
		if i < len(doc.Entries) && doc.Entries[i].Source != nil {
			e.SourceTitle = strings.TrimSpace(doc.Entries[i].Source.Title)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// entryTime returns the published timestamp, else updated, else nil. Values are UTC.
func entryTime(it *gofeed.Item) *time.Time {
	var t *time.Time
	switch {
	case it.PublishedParsed != nil:
		t = it.PublishedParsed
	case it.UpdatedParsed != nil:
		t = it.UpdatedParsed
	default:
		return nil
	}
	utc := t.UTC()
	return &utc
}
