package collect_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-aggregator/internal/domain/entity"
	"news-aggregator/internal/usecase/aggregate"
	"news-aggregator/internal/usecase/collect"
)

// ───────────────────────────────────────────────────────────
// スタブ
// ───────────────────────────────────────────────────────────

type stubSources struct {
	sources []entity.SourceDescriptor
	err     error
}

func (s *stubSources) List(context.Context) ([]entity.SourceDescriptor, error) {
	return s.sources, s.err
}

type stubFetcher struct {
	bodies map[string]string
	errs   map[string]error
}

func (f *stubFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	body, ok := f.bodies[url]
	if !ok {
		return nil, fmt.Errorf("%w: %s: status 404", aggregate.ErrFetchFailed, url)
	}
	return []byte(body), nil
}

// lineParser reads "title|link" lines; "BAD" fails the whole document.
type lineParser struct{}

func (lineParser) Parse(raw []byte, src entity.SourceDescriptor) ([]entity.NormalizedItem, []string) {
	if string(raw) == "BAD" {
		return nil, []string{src.Name + ": parse failed"}
	}
	var items []entity.NormalizedItem
	for _, line := range strings.Split(strings.TrimSpace(string(raw)), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 2)
		items = append(items, entity.NormalizedItem{
			Title: parts[0], Link: parts[1], Source: src.Name,
			Country: src.Country, Language: src.Language,
		})
	}
	return items, nil
}

type memSnapshots struct {
	mu       sync.Mutex
	saved    map[string]*entity.Snapshot
	saveErr  error
	cutoff   time.Time
	pruneErr error
}

func newMemSnapshots() *memSnapshots {
	return &memSnapshots{saved: make(map[string]*entity.Snapshot)}
}

func (m *memSnapshots) Save(_ context.Context, s *entity.Snapshot) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[s.FeedURL] = s
	return nil
}

func (m *memSnapshots) Get(_ context.Context, u string) (*entity.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.saved[u]; ok {
		return s, nil
	}
	return nil, entity.ErrNotFound
}

func (m *memSnapshots) List(context.Context) ([]*entity.Snapshot, error) { return nil, nil }

func (m *memSnapshots) DeleteOlderThan(_ context.Context, t time.Time) (int64, error) {
	m.cutoff = t
	return 2, m.pruneErr
}

type captureExporter struct {
	items []entity.NormalizedItem
	err   error
}

func (c *captureExporter) Export(_ context.Context, items []entity.NormalizedItem) error {
	c.items = items
	return c.err
}

var (
	elpais = entity.SourceDescriptor{ID: "elpais", Name: "El País", Country: "es-ES", Language: "es",
		Feeds: []string{"https://elpais.test/portada", "https://elpais.test/internacional"}}
	clarin = entity.SourceDescriptor{ID: "clarin", Name: "Clarín", Country: "es-AR", Language: "es",
		Feeds: []string{"https://clarin.test/rss"}}
	npr = entity.SourceDescriptor{ID: "npr", Name: "NPR", Country: "en-US", Language: "en",
		Feeds: []string{"https://npr.test/rss"}}
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newService(fetcher *stubFetcher, snaps *memSnapshots, exp *captureExporter) *collect.Service {
	svc := &collect.Service{
		SourceRepo:  &stubSources{sources: []entity.SourceDescriptor{elpais, clarin, npr}},
		Fetcher:     fetcher,
		Parser:      lineParser{},
		Parallelism: 2,
		Now:         func() time.Time { return fixedNow },
	}
	if snaps != nil {
		svc.Snapshots = snaps
	}
	if exp != nil {
		svc.Exporter = exp
	}
	return svc
}

func TestCollectAll_Success(t *testing.T) {
	fetcher := &stubFetcher{bodies: map[string]string{
		"https://elpais.test/portada":       "Portada 1|https://elpais.test/1\nPortada 2|https://elpais.test/2",
		"https://elpais.test/internacional": "Mundo|https://elpais.test/3\nPortada 1 bis|https://ELPAIS.test/1/",
		"https://clarin.test/rss":           "Clarín 1|https://clarin.test/1",
		"https://npr.test/rss":              "NPR 1|https://npr.test/1",
	}}
	snaps := newMemSnapshots()
	exp := &captureExporter{}

	stats, err := newService(fetcher, snaps, exp).CollectAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, stats.Sources)
	assert.Equal(t, 4, stats.Feeds)
	assert.Equal(t, int64(0), stats.FeedsFailed)
	assert.Equal(t, int64(4), stats.Snapshots)
	assert.Equal(t, int64(6), stats.FeedItems)
	assert.Equal(t, 1, stats.Duplicated)
	assert.Equal(t, 5, stats.Exported)
	assert.Empty(t, stats.Warnings)

	// レジストリ順で出力される
	var links []string
	for _, it := range exp.items {
		links = append(links, it.Link)
	}
	assert.Equal(t, []string{
		"https://elpais.test/1", "https://elpais.test/2", "https://elpais.test/3",
		"https://clarin.test/1", "https://npr.test/1",
	}, links)

	snap := snaps.saved["https://clarin.test/rss"]
	require.NotNil(t, snap)
	assert.Equal(t, "clarin", snap.SourceID)
	assert.Equal(t, fixedNow, snap.FetchedAt)
	assert.Equal(t, "Clarín 1|https://clarin.test/1", string(snap.Body))
}

func TestCollectAll_FeedFailuresIsolated(t *testing.T) {
	fetcher := &stubFetcher{
		bodies: map[string]string{
			"https://elpais.test/portada": "Portada|https://elpais.test/1",
			"https://npr.test/rss":        "BAD",
		},
		errs: map[string]error{
			"https://clarin.test/rss": fmt.Errorf("%w: https://clarin.test/rss", aggregate.ErrFetchTimeout),
		},
	}
	snaps := newMemSnapshots()
	exp := &captureExporter{}

	stats, err := newService(fetcher, snaps, exp).CollectAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.FeedsFailed, "clarin timeout + elpais/internacional 404")
	assert.Equal(t, int64(2), stats.Snapshots, "the unparseable body is still stored")
	assert.Equal(t, 1, stats.Exported)
	assert.Len(t, stats.Warnings, 3)
	assert.Contains(t, stats.Warnings, "NPR: parse failed")
	assert.Contains(t, stats.Warnings, "Clarín: fetch timeout: https://clarin.test/rss")
}

func TestCollectAll_OptionalOutputs(t *testing.T) {
	fetcher := &stubFetcher{bodies: map[string]string{"https://npr.test/rss": "NPR 1|https://npr.test/1"}}

	stats, err := newService(fetcher, nil, nil).CollectAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Snapshots)
	assert.Equal(t, 0, stats.Exported)
	assert.Equal(t, int64(1), stats.FeedItems)
}

func TestCollectAll_SnapshotSaveFailureDoesNotAbort(t *testing.T) {
	fetcher := &stubFetcher{bodies: map[string]string{"https://npr.test/rss": "NPR 1|https://npr.test/1"}}
	snaps := newMemSnapshots()
	snaps.saveErr = errors.New("database is locked")
	exp := &captureExporter{}

	stats, err := newService(fetcher, snaps, exp).CollectAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Snapshots)
	assert.Equal(t, 1, stats.Exported)
}

func TestCollectAll_Retention(t *testing.T) {
	snaps := newMemSnapshots()
	svc := newService(&stubFetcher{}, snaps, nil)
	svc.Retention = 72 * time.Hour

	stats, err := svc.CollectAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Pruned)
	assert.Equal(t, fixedNow.Add(-72*time.Hour), snaps.cutoff)
}

func TestCollectAll_ListError(t *testing.T) {
	svc := newService(&stubFetcher{}, nil, nil)
	svc.SourceRepo = &stubSources{err: errors.New("registry unavailable")}

	stats, err := svc.CollectAll(context.Background())

	require.Error(t, err)
	assert.Nil(t, stats)
}

func TestCollectAll_ExportError(t *testing.T) {
	exp := &captureExporter{err: errors.New("disk full")}

	stats, err := newService(&stubFetcher{}, nil, exp).CollectAll(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	require.NotNil(t, stats)
}

func TestCollectAll_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newService(&stubFetcher{}, nil, &captureExporter{}).CollectAll(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}
