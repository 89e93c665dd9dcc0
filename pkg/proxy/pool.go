// Package proxy keeps a rotating set of egress proxies and benches the ones
// that keep failing.
package proxy

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

var (
	// ErrUnknownProxy is returned when reporting on a proxy the pool does
	// not hold.
	ErrUnknownProxy = errors.New("proxy not in pool")
	// ErrUnsupportedScheme is matched by Add and LoadFile errors for
	// proxies other than http, https, socks5 and socks5h.
	ErrUnsupportedScheme = errors.New("unsupported proxy scheme")
)

const (
	defaultMaxFailures = 3
	defaultCooldown    = 5 * time.Minute
)

// Config sets the benching policy. Zero values get defaults.
type Config struct {
	// MaxFailures is the number of consecutive failures that benches a proxy.
	MaxFailures int
	// Cooldown is how long a benched proxy is skipped.
	Cooldown time.Duration
}

type entry struct {
	u            *url.URL
	failures     int
	benchedUntil time.Time
}

func (e *entry) benched(now time.Time) bool {
	return now.Before(e.benchedUntil)
}

// Pool hands out proxies round robin. It is safe for concurrent use.
type Pool struct {
	mu          sync.Mutex
	entries     []*entry
	byURL       map[string]*entry
	cursor      int
	maxFailures int
	cooldown    time.Duration
	now         func() time.Time
}

// NewPool returns an empty pool.
func NewPool(cfg Config) *Pool {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = defaultMaxFailures
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = defaultCooldown
	}
	return &Pool{
		byURL:       make(map[string]*entry),
		maxFailures: cfg.MaxFailures,
		cooldown:    cfg.Cooldown,
		now:         time.Now,
	}
}

// ParseURL parses one proxy address. A bare host:port means http.
func ParseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "http", "https", "socks5", "socks5h":
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedScheme, u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("missing host in %q", u.Redacted())
	}
	return u, nil
}

// Add appends proxies to the rotation. Addresses already in the pool are
// ignored. Nothing is added when any address is invalid.
func (p *Pool) Add(rawURLs ...string) error {
	parsed := make([]*url.URL, 0, len(rawURLs))
	for _, raw := range rawURLs {
		u, err := ParseURL(raw)
		if err != nil {
			return fmt.Errorf("proxy: %w", err)
		}
		parsed = append(parsed, u)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, u := range parsed {
		p.insert(u)
	}
	return nil
}

// LoadFile adds the proxies listed in path, one per line. Blank lines and
// '#' comments are skipped. Errors name the offending line.
func (p *Pool) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("proxy: %w", err)
	}
	defer f.Close()

	var parsed []*url.URL
	sc := bufio.NewScanner(f)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		u, err := ParseURL(line)
		if err != nil {
			return fmt.Errorf("proxy: %s:%d: %w", path, n, err)
		}
		parsed = append(parsed, u)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("proxy: %s: %w", path, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, u := range parsed {
		p.insert(u)
	}
	return nil
}

// insert must be called with the lock held.
func (p *Pool) insert(u *url.URL) {
	k := u.String()
	if _, ok := p.byURL[k]; ok {
		return
	}
	e := &entry{u: u}
	p.byURL[k] = e
	p.entries = append(p.entries, e)
}

// Len returns the number of proxies, benched ones included.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Available returns the number of proxies not currently benched.
func (p *Pool) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	n := 0
	for _, e := range p.entries {
		if !e.benched(now) {
			n++
		}
	}
	return n
}

// Next returns the next proxy that is not benched, or nil when there is
// none. The returned URL must not be modified.
func (p *Pool) Next() *url.URL {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	for range p.entries {
		e := p.entries[p.cursor]
		p.cursor = (p.cursor + 1) % len(p.entries)
		if !e.benched(now) {
			return e.u
		}
	}
	return nil
}

// MarkSuccess clears the failure streak of u.
func (p *Pool) MarkSuccess(u *url.URL) error {
	return p.update(u, func(e *entry) {
		e.failures = 0
	})
}

// MarkFailure extends the failure streak of u and benches it for the
// cooldown once the streak reaches MaxFailures.
func (p *Pool) MarkFailure(u *url.URL) error {
	return p.update(u, func(e *entry) {
		e.failures++
		if e.failures >= p.maxFailures {
			e.failures = 0
			e.benchedUntil = p.now().Add(p.cooldown)
		}
	})
}

func (p *Pool) update(u *url.URL, fn func(*entry)) error {
	if u == nil {
		return fmt.Errorf("proxy: %w: nil url", ErrUnknownProxy)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.byURL[u.String()]
	if !ok {
		return fmt.Errorf("proxy: %w: %s", ErrUnknownProxy, u.Redacted())
	}
	fn(e)
	return nil
}
