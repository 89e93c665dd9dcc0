// Package source collects content URLs from sitemaps, robots.txt sitemap
// directives and HTML pages.
package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/FranksOps/indexnow/internal/metrics"
	"github.com/FranksOps/indexnow/pkg/ratelimit"
	"github.com/klauspost/compress/gzip"
)

// Fetch kinds, used as the metrics label.
const (
	KindSitemap = "sitemap"
	KindRobots  = "robots"
	KindPage    = "page"
)

// maxBodyBytes bounds a fetched document. Sitemaps are limited to 50MB
// uncompressed by the protocol.
const maxBodyBytes = 50 << 20

// Doer sends a request. *transport.Client satisfies it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Page is a fetched document.
type Page struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// ContentType returns the media type of the page without parameters.
func (p *Page) ContentType() string {
	ct := p.Headers.Get("Content-Type")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

// StatusError reports a fetch answered with a 4xx or 5xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: bad status code: %d", e.URL, e.StatusCode)
}

// Fetcher performs paced GET requests for URL sources.
type Fetcher struct {
	client  Doer
	limiter *ratelimit.Limiter
	logger  *slog.Logger
}

// NewFetcher creates a Fetcher. limiter may be nil for unpaced fetches.
func NewFetcher(client Doer, limiter *ratelimit.Limiter, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{client: client, limiter: limiter, logger: logger}
}

// Fetch GETs targetURL. Any response is returned as a Page; err is only
// set when no response arrived. Gzip-compressed sitemaps are inflated.
func (f *Fetcher) Fetch(ctx context.Context, kind, targetURL string) (*Page, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("fetch %s: rate limiter: %w", targetURL, err)
	}

	req, err := http.NewRequest(http.MethodGet, targetURL, nil)
	if err != nil {
		metrics.RecordSourceFetch(kind, 0)
		return nil, fmt.Errorf("fetch %s: %w", targetURL, err)
	}
	req.Header.Set("Accept", acceptFor(kind))

	f.logger.Debug("fetching", "kind", kind, "url", targetURL)

	start := time.Now()
	resp, err := f.client.Do(ctx, req)
	if err != nil {
		metrics.RecordSourceFetch(kind, 0)
		return nil, fmt.Errorf("fetch %s: %w", targetURL, err)
	}
	defer resp.Body.Close()
	metrics.RecordSourceFetch(kind, resp.StatusCode)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: read body: %w", targetURL, err)
	}

	page := &Page{
		URL:        targetURL,
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
		Duration:   time.Since(start),
	}

	if isGzip(body) {
		inflated, err := gunzip(body)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", targetURL, err)
		}
		page.Body = inflated
	}
	return page, nil
}

// fetchOK is Fetch that also fails on 4xx and 5xx statuses, reporting a
// bot protection challenge as *ChallengeError.
func (f *Fetcher) fetchOK(ctx context.Context, kind, targetURL string) (*Page, error) {
	page, err := f.Fetch(ctx, kind, targetURL)
	if err != nil {
		return nil, err
	}
	if provider := detectChallenge(page); provider != "" {
		f.logger.Warn("fetch challenged", "kind", kind, "url", targetURL, "provider", provider, "status", page.StatusCode)
		return nil, &ChallengeError{URL: targetURL, StatusCode: page.StatusCode, Provider: provider}
	}
	if page.StatusCode >= 400 {
		return nil, &StatusError{URL: targetURL, StatusCode: page.StatusCode}
	}
	return page, nil
}

func acceptFor(kind string) string {
	switch kind {
	case KindSitemap:
		return "application/xml,text/xml;q=0.9,*/*;q=0.8"
	case KindRobots:
		return "text/plain,*/*;q=0.8"
	default:
		return "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	}
}

func isGzip(b []byte) bool {
	return len(b) > 2 && b[0] == 0x1f && b[1] == 0x8b
}

func gunzip(b []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("gunzip: %w", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(io.LimitReader(zr, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("gunzip: %w", err)
	}
	return out, nil
}
