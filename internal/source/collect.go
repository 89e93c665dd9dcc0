package source

import (
	"context"
	"log/slog"
	"net/url"
)

// Sources lists where content URLs come from.
type Sources struct {
	URLs     []string // taken as is
	Sitemaps []string // sitemap or sitemap index URLs
	Robots   []string // sites whose robots.txt Sitemap directives are read
	Pages    []string // HTML pages whose same-host links are taken
}

// Empty reports whether no source is set.
func (s Sources) Empty() bool {
	return len(s.URLs) == 0 && len(s.Sitemaps) == 0 && len(s.Robots) == 0 && len(s.Pages) == 0
}

// Collector gathers content URLs from Sources.
type Collector struct {
	sitemaps *SitemapReader
	robots   *RobotsReader
	links    *LinkReader
	logger   *slog.Logger
}

// NewCollector creates a Collector fetching through fetcher.
func NewCollector(fetcher *Fetcher, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		sitemaps: NewSitemapReader(fetcher, 0, logger),
		robots:   NewRobotsReader(fetcher, logger),
		links:    NewLinkReader(fetcher, logger),
		logger:   logger,
	}
}

// Collect returns explicit URLs, then sitemap entries, then sitemaps named
// in robots.txt files, then page links, with duplicates removed keeping the
// first occurrence. Any failing source fails the collection.
func (c *Collector) Collect(ctx context.Context, src Sources) ([]string, error) {
	var d dedupe
	d.add(src.URLs...)

	for _, sm := range src.Sitemaps {
		urls, err := c.sitemaps.Read(ctx, sm)
		if err != nil {
			return nil, err
		}
		d.add(urls...)
	}

	for _, site := range src.Robots {
		sitemaps, err := c.robots.Sitemaps(ctx, site)
		if err != nil {
			return nil, err
		}
		if len(sitemaps) == 0 {
			c.logger.Warn("robots.txt lists no sitemaps", "site", site)
		}
		for _, sm := range sitemaps {
			urls, err := c.sitemaps.Read(ctx, sm)
			if err != nil {
				return nil, err
			}
			d.add(urls...)
		}
	}

	for _, p := range src.Pages {
		links, err := c.links.Links(ctx, p)
		if err != nil {
			return nil, err
		}
		d.add(links...)
	}

	c.logger.Debug("urls collected", "count", len(d.out))
	return d.out, nil
}

type dedupe struct {
	seen map[string]struct{}
	out  []string
}

func (d *dedupe) add(urls ...string) {
	if d.seen == nil {
		d.seen = make(map[string]struct{})
	}
	for _, u := range urls {
		k := dedupeKey(u)
		if _, ok := d.seen[k]; ok {
			continue
		}
		d.seen[k] = struct{}{}
		d.out = append(d.out, u)
	}
}

// dedupeKey ignores fragments, which never reach the server.
func dedupeKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}
