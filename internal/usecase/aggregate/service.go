package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"news-aggregator/internal/common/pagination"
	"news-aggregator/internal/domain/entity"
	"news-aggregator/internal/domain/locale"
	"news-aggregator/internal/observability/logging"
	"news-aggregator/internal/observability/metrics"
	"news-aggregator/internal/observability/tracing"
)

const (
	// DefaultCallTimeout bounds one aggregation call end to end.
	DefaultCallTimeout = 15 * time.Second

	// imageBackfillParallelism caps concurrent article page lookups.
	imageBackfillParallelism = 4

	googleProxyHost = "googleusercontent.com"
)

// Config controls aggregation behavior.
type Config struct {
	// CallTimeout is the single deadline shared by every feed of a call.
	CallTimeout time.Duration
	// GoogleNewsEnabled adds the Google News search feed to every call.
	GoogleNewsEnabled bool
	// ImageBackfillEnabled looks up article images for page items without one.
	// It takes effect only when an ImageResolver is configured.
	ImageBackfillEnabled bool
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		CallTimeout:       DefaultCallTimeout,
		GoogleNewsEnabled: true,
	}
}

// Service is the aggregation engine.
// It holds no per-call state, so one Service serves concurrent calls.
type Service struct {
	Selector SourceSelector
	Fetcher  FeedFetcher
	Parser   FeedParser
	Images   ImageResolver // optional

	// Now returns the reference time for relative periods. Defaults to time.Now.
	Now func() time.Time

	cfg Config
}

// NewService creates an aggregation Service.
// images may be nil to disable image backfill.
func NewService(selector SourceSelector, fetcher FeedFetcher, parser FeedParser, images ImageResolver, cfg Config) *Service {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	return &Service{
		Selector: selector,
		Fetcher:  fetcher,
		Parser:   parser,
		Images:   images,
		Now:      time.Now,
		cfg:      cfg,
	}
}

// feedTask is one (source, feed URL) pair of the fan-out.
type feedTask struct {
	idx int
	src entity.SourceDescriptor
	url string
}

// feedOutcome is the value-or-warning produced by one feedTask.
type feedOutcome struct {
	idx      int
	items    []entity.NormalizedItem
	warnings []string
}

// Run executes one aggregation call.
// The only error it returns wraps entity.ErrQueryInvalid; every source-level
// failure is reported in the result warnings instead.
func (s *Service) Run(ctx context.Context, q entity.Query) (*entity.AggregationResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracing.GetTracer().Start(ctx, "aggregate.Run")
	defer span.End()

	logger := logging.FromContext(ctx)
	start := time.Now()

	res := &entity.AggregationResult{
		Items:   []entity.NormalizedItem{},
		Country: locale.AllCountries,
	}

	country := ""
	if raw := strings.TrimSpace(q.Country); raw != "" {
		country = raw
		if code, ok := locale.NormalizeCountry(raw); ok {
			country = code
		}
		res.Country = country
	}
	lang := locale.NormalizeLanguage(q.Language)

	sources, err := s.Selector.Select(ctx, q.Country, lang)
	if err != nil {
		if errors.Is(err, entity.ErrSourceUnresolved) {
			res.AddWarning(fmt.Sprintf("No sources configured for country %s", country))
		} else {
			logger.Error("source selection failed", slog.Any("error", err))
			res.AddWarning("source registry unavailable")
		}
		res.Language = lang
		metrics.RecordAggregation(time.Since(start), 0, len(res.Warnings))
		return res, nil
	}

	// A country without an explicit language narrows items to that country's language.
	if lang == "" && country != "" && len(sources) > 0 {
		lang = locale.NormalizeLanguage(sources[0].Language)
	}
	res.Language = lang

	if s.cfg.GoogleNewsEnabled {
		sources = append(sources[:len(sources):len(sources)], GoogleNewsSource(q.Keyword, country, lang))
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()

	items := s.fanOut(callCtx, sources, res)

	items = dedup(items)
	items = filterKeyword(items, q.Keyword)
	items = filterLanguage(items, lang)
	if r, ok := q.DateRange(s.now()); ok {
		items = filterDate(items, r)
	}
	sortByDate(items)

	res.TotalMatched = len(items)
	res.Items = paginate(items, q.Page, q.PageSize)

	if s.cfg.ImageBackfillEnabled && s.Images != nil {
		s.backfillImages(callCtx, res.Items)
	}

	if res.TotalMatched > pagination.CalculateOffset(q.Page, q.PageSize, res.TotalMatched)+len(res.Items) {
		res.AddWarning(fmt.Sprintf("Results truncated from %d to page slice", res.TotalMatched))
	}
	if q.Debug {
		res.AddWarning("feeds: " + strings.Join(res.Feeds, ", "))
	}

	duration := time.Since(start)
	metrics.RecordAggregation(duration, res.TotalMatched, len(res.Warnings))
	logger.Info("aggregation completed",
		slog.String("country", res.Country),
		slog.String("language", res.Language),
		slog.Int("feeds", len(res.Feeds)),
		slog.Int("matched", res.TotalMatched),
		slog.Int("returned", len(res.Items)),
		slog.Int("warnings", len(res.Warnings)),
		slog.Duration("duration", duration),
	)

	return res, nil
}

// fanOut fetches and parses every feed of sources concurrently and merges
// the batches in completion order. Feeds still running when ctx expires are
// abandoned and recorded as timeout warnings.
func (s *Service) fanOut(ctx context.Context, sources []entity.SourceDescriptor, res *entity.AggregationResult) []entity.NormalizedItem {
	var tasks []feedTask
	for _, src := range sources {
		for _, u := range src.Feeds {
			tasks = append(tasks, feedTask{idx: len(tasks), src: src, url: u})
			res.Feeds = append(res.Feeds, src.ID+": "+u)
		}
	}
	if len(tasks) == 0 {
		return nil
	}

	// Buffered so abandoned tasks never block on send.
	out := make(chan feedOutcome, len(tasks))

	var g errgroup.Group
	for _, t := range tasks {
		g.Go(func() error {
			out <- s.runTask(ctx, t)
			return nil
		})
	}

	done := make([]bool, len(tasks))
	var items []entity.NormalizedItem
	for received := 0; received < len(tasks); {
		select {
		case o := <-out:
			received++
			done[o.idx] = true
			items = append(items, o.items...)
			for _, w := range o.warnings {
				res.AddWarning(w)
			}
		case <-ctx.Done():
			for i, t := range tasks {
				if done[i] {
					continue
				}
				res.AddWarning(timeoutWarning(t.src.Name, t.url))
				metrics.RecordFeedFetch(t.src.ID, metrics.FetchResultTimeout, s.cfg.CallTimeout, 0)
			}
			logging.FromContext(ctx).Warn("aggregation deadline reached, abandoning pending feeds",
				slog.Int("pending", len(tasks)-received),
				slog.Duration("timeout", s.cfg.CallTimeout))
			return items
		}
	}

	_ = g.Wait()
	return items
}

// runTask fetches then parses one feed. It never returns an error: failures
// become warnings so one feed cannot affect another.
func (s *Service) runTask(ctx context.Context, t feedTask) (o feedOutcome) {
	o.idx = t.idx
	start := time.Now()
	logger := logging.ForFeed(logging.FromContext(ctx), t.src.ID, t.url)

	ctx, span := tracing.StartFeedSpan(ctx, t.src.ID, t.url)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: panic: %v", ErrParseFailed, r)
			logger.Error("feed task panicked", slog.Any("error", err))
			o.items = nil
			o.warnings = []string{sourceWarning(t.src.Name, ErrParseFailed)}
			tracing.EndFeedSpan(span, 0, err)
			metrics.RecordFeedFetch(t.src.ID, metrics.FetchResultParseFailed, time.Since(start), 0)
		}
	}()

	raw, err := s.Fetcher.Fetch(ctx, t.url)
	if err != nil {
		result := metrics.FetchResultFetchFailed
		if errors.Is(err, ErrFetchTimeout) || errors.Is(err, context.DeadlineExceeded) {
			result = metrics.FetchResultTimeout
			if !errors.Is(err, ErrFetchTimeout) {
				err = fmt.Errorf("%w: %s", ErrFetchTimeout, t.url)
			}
		}
		logger.Warn("feed fetch failed", slog.Any("error", err))
		tracing.EndFeedSpan(span, 0, err)
		metrics.RecordFeedFetch(t.src.ID, result, time.Since(start), 0)
		o.warnings = []string{sourceWarning(t.src.Name, err)}
		return o
	}

	items, warnings := s.Parser.Parse(raw, t.src)

	result := metrics.FetchResultSuccess
	var spanErr error
	if len(items) == 0 && len(warnings) > 0 {
		result = metrics.FetchResultParseFailed
		spanErr = ErrParseFailed
		logger.Warn("feed parse failed", slog.Any("warnings", warnings))
	}
	tracing.EndFeedSpan(span, len(items), spanErr)
	metrics.RecordFeedFetch(t.src.ID, result, time.Since(start), len(items))

	o.items = items
	o.warnings = warnings
	return o
}

// backfillImages replaces missing or proxy images of page items with the
// article's own image. Lookups share the call deadline; failures are ignored.
// Proxy images with no replacement are cleared.
func (s *Service) backfillImages(ctx context.Context, items []entity.NormalizedItem) {
	if ctx.Err() != nil {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(imageBackfillParallelism)

	for i := range items {
		if items[i].ImagePath != "" && !strings.Contains(items[i].ImagePath, googleProxyHost) {
			continue
		}
		g.Go(func() error {
			img, err := s.Images.ResolveImage(gctx, items[i].Link)
			if strings.Contains(items[i].ImagePath, googleProxyHost) {
				items[i].ImagePath = ""
			}
			switch {
			case err != nil:
				metrics.RecordImageBackfill(metrics.ImageFailure)
				logging.FromContext(ctx).Debug("image backfill failed",
					slog.String("url", items[i].Link),
					slog.Any("error", err))
			case img == "" || strings.Contains(img, googleProxyHost):
				metrics.RecordImageBackfill(metrics.ImageNotFound)
			default:
				metrics.RecordImageBackfill(metrics.ImageFound)
				items[i].ImagePath = img
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
