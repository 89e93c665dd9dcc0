package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/temoto/robotstxt"
)

// RobotsReader reads robots.txt files.
type RobotsReader struct {
	fetcher *Fetcher
	logger  *slog.Logger
}

// NewRobotsReader creates a RobotsReader.
func NewRobotsReader(fetcher *Fetcher, logger *slog.Logger) *RobotsReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &RobotsReader{fetcher: fetcher, logger: logger}
}

// Sitemaps returns the Sitemap directives of the robots.txt of site. site
// may be a bare host name, in which case https is assumed. A missing
// robots.txt yields no sitemaps and no error.
func (r *RobotsReader) Sitemaps(ctx context.Context, site string) ([]string, error) {
	robotsURL, err := robotsURLFor(site)
	if err != nil {
		return nil, err
	}

	page, err := r.fetcher.fetchOK(ctx, KindRobots, robotsURL)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode < 500 {
			r.logger.Debug("no robots.txt", "url", robotsURL, "status", se.StatusCode)
			return nil, nil
		}
		return nil, fmt.Errorf("read robots.txt: %w", err)
	}

	data, err := robotstxt.FromBytes(page.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", robotsURL, err)
	}
	r.logger.Debug("robots.txt read", "url", robotsURL, "sitemaps", len(data.Sitemaps))
	return data.Sitemaps, nil
}

func robotsURLFor(site string) (string, error) {
	site = strings.TrimSpace(site)
	if !strings.Contains(site, "://") {
		site = "https://" + site
	}
	u, err := url.Parse(site)
	if err != nil {
		return "", fmt.Errorf("robots.txt site %q: %w", site, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("robots.txt site %q: want an http(s) url or host name", site)
	}
	return (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/robots.txt"}).String(), nil
}
