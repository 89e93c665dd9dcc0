package indexnow

import "net/url"

// ContentURL is a page whose content changed.
type ContentURL struct {
	u *url.URL
}

// ParseContentURL validates raw as an absolute http(s) URL.
func ParseContentURL(raw string) (ContentURL, error) {
	u, reason := parseHTTPURL(raw)
	if reason != "" {
		return ContentURL{}, &ParseError{Field: FieldURL, Input: raw, Reason: reason, Err: ErrInvalidURL}
	}
	return ContentURL{u: u}, nil
}

// ParseContentURLs parses every raw string, stopping at the first failure.
func ParseContentURLs(raws []string) ([]ContentURL, error) {
	urls := make([]ContentURL, 0, len(raws))
	for _, raw := range raws {
		u, err := ParseContentURL(raw)
		if err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, nil
}

// Host returns the host name without port.
func (c ContentURL) Host() string {
	if c.u == nil {
		return ""
	}
	return c.u.Hostname()
}

// URL returns a copy of the underlying URL.
func (c ContentURL) URL() *url.URL { return cloneURL(c.u) }

func (c ContentURL) String() string {
	if c.u == nil {
		return ""
	}
	return c.u.String()
}

func (c ContentURL) IsZero() bool { return c.u == nil }

func (c ContentURL) Equal(o ContentURL) bool { return c.String() == o.String() }
