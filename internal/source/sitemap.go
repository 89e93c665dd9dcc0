package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	sitemap "github.com/oxffaa/gopher-parse-sitemap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultSitemapConcurrency = 4
	// Sitemap indexes may not nest; one extra level tolerates sites that
	// do it anyway while stopping loops.
	maxSitemapDepth = 2
)

var errEmptySitemap = errors.New("no urls or nested sitemaps")

// SitemapReader extracts page URLs from sitemaps and sitemap indexes.
type SitemapReader struct {
	fetcher     *Fetcher
	logger      *slog.Logger
	concurrency int
}

// NewSitemapReader creates a SitemapReader fetching nested sitemaps with up
// to concurrency requests in flight (default 4).
func NewSitemapReader(fetcher *Fetcher, concurrency int, logger *slog.Logger) *SitemapReader {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency <= 0 {
		concurrency = defaultSitemapConcurrency
	}
	return &SitemapReader{fetcher: fetcher, logger: logger, concurrency: concurrency}
}

// Read returns the <loc> entries of the sitemap at sitemapURL in document
// order. For a sitemap index the nested sitemaps are read concurrently and
// their entries concatenated in index order; a nested sitemap that fails is
// logged and skipped.
func (s *SitemapReader) Read(ctx context.Context, sitemapURL string) ([]string, error) {
	return s.read(ctx, sitemapURL, 0)
}

func (s *SitemapReader) read(ctx context.Context, sitemapURL string, depth int) ([]string, error) {
	page, err := s.fetcher.fetchOK(ctx, KindSitemap, sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("read sitemap: %w", err)
	}

	urls, nested, err := parseSitemap(page.Body)
	if err != nil {
		return nil, fmt.Errorf("read sitemap %s: %w", sitemapURL, err)
	}
	if len(nested) == 0 {
		s.logger.Debug("sitemap read", "url", sitemapURL, "urls", len(urls))
		return urls, nil
	}
	if depth >= maxSitemapDepth {
		return nil, fmt.Errorf("read sitemap %s: sitemap indexes nested deeper than %d levels", sitemapURL, maxSitemapDepth)
	}

	parts := make([][]string, len(nested))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, loc := range nested {
		g.Go(func() error {
			found, err := s.read(gctx, loc, depth+1)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				s.logger.Warn("failed to read nested sitemap", "url", loc, "err", err)
				return nil
			}
			parts[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("read sitemap index %s: %w", sitemapURL, err)
	}

	for _, p := range parts {
		urls = append(urls, p...)
	}
	s.logger.Debug("sitemap index read", "url", sitemapURL, "sitemaps", len(nested), "urls", len(urls))
	return urls, nil
}

// parseSitemap parses body as a urlset, falling back to a sitemap index.
func parseSitemap(body []byte) (urls, nested []string, err error) {
	err = sitemap.Parse(bytes.NewReader(body), func(e sitemap.Entry) error {
		if loc := e.GetLocation(); loc != "" {
			urls = append(urls, loc)
		}
		return nil
	})
	if err == nil && len(urls) > 0 {
		return urls, nil, nil
	}

	indexErr := sitemap.ParseIndex(bytes.NewReader(body), func(e sitemap.IndexEntry) error {
		if loc := e.GetLocation(); loc != "" {
			nested = append(nested, loc)
		}
		return nil
	})
	if indexErr != nil {
		if err == nil {
			err = indexErr
		}
		return nil, nil, fmt.Errorf("parse as sitemap or index: %w", err)
	}
	if len(nested) == 0 {
		if err != nil {
			return nil, nil, fmt.Errorf("parse as sitemap or index: %w", err)
		}
		return nil, nil, errEmptySitemap
	}
	return nil, nested, nil
}
