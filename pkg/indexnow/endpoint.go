package indexnow

import "net/url"

// DefaultEndpointURL is the shared IndexNow endpoint that forwards
// submissions to every participating search engine.
const DefaultEndpointURL = "https://api.indexnow.org/indexnow"

var defaultEndpoint = mustParseEndpoint(DefaultEndpointURL)

// EndpointURL is the URL of an IndexNow API endpoint. It never carries a
// query string; the request builder owns the query.
type EndpointURL struct {
	u *url.URL
}

// ParseEndpointURL validates raw as an http(s) URL without a query string.
func ParseEndpointURL(raw string) (EndpointURL, error) {
	u, reason := parseHTTPURL(raw)
	if reason == "" && (u.RawQuery != "" || u.ForceQuery) {
		reason = "query string not allowed"
	}
	if reason != "" {
		return EndpointURL{}, &ParseError{Field: FieldEndpoint, Input: raw, Reason: reason, Err: ErrInvalidURL}
	}
	return EndpointURL{u: u}, nil
}

// DefaultEndpoint returns the endpoint at DefaultEndpointURL.
func DefaultEndpoint() EndpointURL {
	return defaultEndpoint
}

func mustParseEndpoint(raw string) EndpointURL {
	e, err := ParseEndpointURL(raw)
	if err != nil {
		panic(err)
	}
	return e
}

// URL returns a copy of the underlying URL.
func (e EndpointURL) URL() *url.URL {
	return cloneURL(e.u)
}

func (e EndpointURL) String() string {
	if e.u == nil {
		return ""
	}
	return e.u.String()
}

// IsZero reports whether e was never successfully parsed.
func (e EndpointURL) IsZero() bool { return e.u == nil }

func (e EndpointURL) Equal(o EndpointURL) bool { return e.String() == o.String() }

func cloneURL(u *url.URL) *url.URL {
	if u == nil {
		return nil
	}
	c := *u
	if u.User != nil {
		user := *u.User
		c.User = &user
	}
	return &c
}
