package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"news-aggregator/internal/resilience/circuitbreaker"
)

// metaImageSelectors are consulted in order; the first non-empty content wins.
var metaImageSelectors = []string{
	`meta[property="og:image"]`,
	`meta[property="og:image:url"]`,
	`meta[name="twitter:image"]`,
	`meta[name="twitter:image:src"]`,
	`meta[property="twitter:image"]`,
}

// ArticleImageResolver implements aggregate.ImageResolver by reading the
// article page and extracting its og:image or twitter:image.
// When no meta tag is present, the lead image found by Readability is used.
//
// Redirects are followed, so Google News article links resolve to the
// publisher page before extraction.
//
// Thread safety: ArticleImageResolver is safe for concurrent use.
type ArticleImageResolver struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	config         ImageLookupConfig
}

// NewArticleImageResolver creates a new ArticleImageResolver with the given configuration.
//
// Example:
//
//	cfg := DefaultConfig()
//	resolver := NewArticleImageResolver(cfg)
//	img, err := resolver.ResolveImage(ctx, "https://elpais.com/economia/articulo.html")
func NewArticleImageResolver(config ImageLookupConfig) *ArticleImageResolver {
	r := &ArticleImageResolver{
		circuitBreaker: circuitbreaker.New(circuitbreaker.ArticlePageConfig()),
		config:         config,
	}

	r.client = &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= r.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", ErrTooManyRedirects, len(via))
			}
			// Each hop is validated for SSRF
			if err := validateURL(req.Context(), req.URL.String(), r.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}

	return r
}

// ResolveImage returns an absolute image URL for the article at articleURL.
// It returns "" with a nil error when the page carries no image.
func (r *ArticleImageResolver) ResolveImage(ctx context.Context, articleURL string) (string, error) {
	if err := validateURL(ctx, articleURL, r.config.DenyPrivateIPs); err != nil {
		return "", err
	}

	imageURL, err := circuitbreaker.Do(r.circuitBreaker, func() (string, error) {
		return r.doResolve(ctx, articleURL)
	})
	if err != nil {
		if circuitbreaker.IsOpenStateError(err) {
			slog.Debug("article page circuit breaker open, lookup skipped",
				slog.String("service", r.circuitBreaker.Name()),
				slog.String("url", articleURL))
		}
		return "", err
	}

	return imageURL, nil
}

func (r *ArticleImageResolver) doResolve(ctx context.Context, articleURL string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, articleURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", r.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := r.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("request exceeded %v: %w", r.config.Timeout, context.DeadlineExceeded)
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Err != nil {
			return "", urlErr.Err
		}
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	htmlBytes, err := io.ReadAll(io.LimitReader(resp.Body, r.config.MaxBodySize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(htmlBytes)) > r.config.MaxBodySize {
		return "", fmt.Errorf("%w: response size %d bytes exceeds limit %d bytes",
			ErrBodyTooLarge, len(htmlBytes), r.config.MaxBodySize)
	}

	// The final URL differs from articleURL after redirects.
	pageURL := resp.Request.URL

	if img := metaImage(htmlBytes, pageURL); img != "" {
		return img, nil
	}

	article, err := readability.FromReader(bytes.NewReader(htmlBytes), pageURL)
	if err != nil {
		slog.Debug("readability extraction failed",
			slog.String("url", pageURL.String()),
			slog.Any("error", err))
		return "", nil
	}
	return absolutize(article.Image, pageURL), nil
}

// metaImage returns the first og:image or twitter:image on the page, made absolute.
func metaImage(html []byte, base *url.URL) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return ""
	}
	for _, sel := range metaImageSelectors {
		content, ok := doc.Find(sel).First().Attr("content")
		if !ok {
			continue
		}
		if img := absolutize(content, base); img != "" {
			return img
		}
	}
	return ""
}

// absolutize resolves ref against base and keeps only http(s) results.
func absolutize(ref string, base *url.URL) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}
