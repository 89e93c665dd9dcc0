package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// LinkReader extracts same-host links from HTML pages.
type LinkReader struct {
	fetcher *Fetcher
	logger  *slog.Logger
}

// NewLinkReader creates a LinkReader.
func NewLinkReader(fetcher *Fetcher, logger *slog.Logger) *LinkReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &LinkReader{fetcher: fetcher, logger: logger}
}

// Links returns the http(s) <a href> targets of the page at pageURL that
// are on the page's own host, resolved against the page, without
// fragments and in document order. Duplicates are dropped.
func (l *LinkReader) Links(ctx context.Context, pageURL string) ([]string, error) {
	page, err := l.fetcher.fetchOK(ctx, KindPage, pageURL)
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	if ct := page.ContentType(); ct != "" && ct != "text/html" && ct != "application/xhtml+xml" {
		return nil, fmt.Errorf("read page %s: content type %s is not html", pageURL, ct)
	}

	links, err := extractLinks(pageURL, page.Body)
	if err != nil {
		return nil, fmt.Errorf("read page %s: %w", pageURL, err)
	}
	l.logger.Debug("page links read", "url", pageURL, "links", len(links))
	return links, nil
}

func extractLinks(pageURL string, body []byte) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	// <base href> changes how relative links resolve.
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if b, err := url.Parse(strings.TrimSpace(href)); err == nil {
			base = base.ResolveReference(b)
		}
	}

	var links []string
	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		u, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		resolved := base.ResolveReference(u)
		resolved.Fragment = ""
		resolved.RawFragment = ""
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		if !strings.EqualFold(resolved.Hostname(), base.Hostname()) {
			return
		}
		link := resolved.String()
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})
	return links, nil
}
