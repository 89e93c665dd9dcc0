package indexnow

import "net/url"

// KeyfileURL is the explicit location of a key verification file.
type KeyfileURL struct {
	u *url.URL
}

// ParseKeyfileURL validates raw as an absolute http(s) URL.
func ParseKeyfileURL(raw string) (KeyfileURL, error) {
	u, reason := parseHTTPURL(raw)
	if reason != "" {
		return KeyfileURL{}, &ParseError{Field: FieldKeyLocation, Input: raw, Reason: reason, Err: ErrInvalidURL}
	}
	return KeyfileURL{u: u}, nil
}

func (k KeyfileURL) URL() *url.URL { return cloneURL(k.u) }

func (k KeyfileURL) String() string {
	if k.u == nil {
		return ""
	}
	return k.u.String()
}

func (k KeyfileURL) IsZero() bool { return k.u == nil }

func (k KeyfileURL) Equal(o KeyfileURL) bool { return k.String() == o.String() }

// KeyLocation says where the key verification file lives. It is either the
// root directory of the submitted host (the zero value) or an explicit
// KeyfileURL. The root directory case is left off the wire entirely.
type KeyLocation struct {
	explicit KeyfileURL
}

// RootDirectory places the key file at /<key>.txt on the submitted host.
func RootDirectory() KeyLocation { return KeyLocation{} }

// AtURL places the key file at u. A zero u yields RootDirectory.
func AtURL(u KeyfileURL) KeyLocation { return KeyLocation{explicit: u} }

// ParseKeyLocation returns RootDirectory for an empty string and AtURL of
// the parsed URL otherwise.
func ParseKeyLocation(raw string) (KeyLocation, error) {
	if raw == "" {
		return RootDirectory(), nil
	}
	u, err := ParseKeyfileURL(raw)
	if err != nil {
		return KeyLocation{}, err
	}
	return AtURL(u), nil
}

// IsRootDirectory reports whether the location is the implicit default.
func (l KeyLocation) IsRootDirectory() bool { return l.explicit.IsZero() }

// Explicit returns the key file URL and true for an explicit location.
func (l KeyLocation) Explicit() (KeyfileURL, bool) {
	return l.explicit, !l.explicit.IsZero()
}

// FileURL resolves the URL a search engine fetches to verify key for
// submissions on site.
func (l KeyLocation) FileURL(key Key, site ContentURL) string {
	if u, ok := l.Explicit(); ok {
		return u.String()
	}
	base := site.URL()
	if base == nil {
		return ""
	}
	root := url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/" + key.String() + ".txt"}
	return root.String()
}

func (l KeyLocation) String() string {
	if u, ok := l.Explicit(); ok {
		return u.String()
	}
	return "root directory"
}

func (l KeyLocation) Equal(o KeyLocation) bool { return l.explicit.Equal(o.explicit) }

// scopeViolation returns why c may not be submitted under l, or "".
func (l KeyLocation) scopeViolation(c ContentURL) string {
	if l.IsRootDirectory() {
		return ""
	}
	return keyScopeViolation(l.explicit.u, c.u)
}
