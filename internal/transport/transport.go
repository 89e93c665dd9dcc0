// Package transport builds the outbound HTTP client shared by submissions
// and URL sources.
package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/FranksOps/indexnow/internal/fingerprint"
	"github.com/FranksOps/indexnow/internal/metrics"
	"github.com/FranksOps/indexnow/pkg/httpclient"
	"github.com/FranksOps/indexnow/pkg/proxy"
)

// DefaultUserAgent identifies this tool to endpoints and fetched sites.
const DefaultUserAgent = "indexnow-go/1.0 (+https://www.indexnow.org)"

type contextKey string

const proxyKey contextKey = "proxy_url"

// Config configures the outbound client.
type Config struct {
	Timeout      time.Duration
	MaxRedirects int
	UserAgent    string
	Fingerprint  fingerprint.Profile
	// ProxyPool is optional; requests rotate over it when it has entries.
	ProxyPool *proxy.Pool
}

// Client sends requests through the configured transport, rotating proxies
// per request and tracking their health.
type Client struct {
	http    *httpclient.Client
	proxies *proxy.Pool
	logger  *slog.Logger
}

// New builds a Client. Zero config values get defaults.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Fingerprint == "" {
		cfg.Fingerprint = fingerprint.ProfileGo
	}

	// The proxy is chosen per request and carried in the request context so
	// one transport (and its connection pool) serves every proxy.
	proxyFunc := func(req *http.Request) (*url.URL, error) {
		if u, ok := req.Context().Value(proxyKey).(*url.URL); ok && u != nil {
			return u, nil
		}
		return http.ProxyFromEnvironment(req)
	}

	rt, err := fingerprint.Transport(cfg.Fingerprint, proxyFunc)
	if err != nil {
		return nil, fmt.Errorf("transport: %w", err)
	}

	hc, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: cfg.MaxRedirects,
		UserAgent:    cfg.UserAgent,
		Transport:    rt,
	})
	if err != nil {
		return nil, fmt.Errorf("transport: %w", err)
	}

	return &Client{http: hc, proxies: cfg.ProxyPool, logger: logger}, nil
}

// Do sends req through the next healthy proxy, if any.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	var active *url.URL
	if c.proxies != nil && c.proxies.Len() > 0 {
		active = c.proxies.Next()
		if active == nil {
			return nil, fmt.Errorf("transport: all %d proxies are cooling down", c.proxies.Len())
		}
		ctx = context.WithValue(ctx, proxyKey, active)
	}

	resp, err := c.http.Do(ctx, req)
	if active != nil {
		if err != nil {
			c.logger.Warn("request through proxy failed", "proxy", active.Redacted(), "err", err)
			_ = c.proxies.MarkFailure(active)
			metrics.ProxyFailures.WithLabelValues(active.Redacted()).Inc()
		} else {
			_ = c.proxies.MarkSuccess(active)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("transport: %w", err)
	}
	return resp, nil
}
