package indexnow

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// parseHTTPURL parses raw as an absolute http or https URL with a host.
// The returned reason is empty on success.
func parseHTTPURL(raw string) (*url.URL, string) {
	if strings.TrimSpace(raw) == "" {
		return nil, "empty"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err.Error()
	}
	// url.Parse lowercases the scheme.
	if u.Scheme != "http" && u.Scheme != "https" {
		if u.Scheme == "" {
			return nil, "missing scheme, expected http or https"
		}
		return nil, "scheme " + u.Scheme + " is not http or https"
	}
	if u.Opaque != "" || u.Host == "" || u.Hostname() == "" {
		return nil, "missing host"
	}
	return u, ""
}

// sameHost compares the host names of a and b, ignoring case, ports and
// Unicode/punycode spelling differences.
func sameHost(a, b *url.URL) bool {
	return asciiHost(a) == asciiHost(b)
}

func asciiHost(u *url.URL) string {
	h := strings.ToLower(u.Hostname())
	if ascii, err := idna.Lookup.ToASCII(h); err == nil {
		return ascii
	}
	return h
}

// keyDirectory returns the path prefix scoped by a key file, including the
// trailing slash.
func keyDirectory(u *url.URL) string {
	p := u.EscapedPath()
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return "/"
	}
	return p[:i+1]
}

// keyScopeViolation returns why content may not be submitted under keyfile,
// or an empty string when it may.
func keyScopeViolation(keyfile, content *url.URL) string {
	if !sameHost(keyfile, content) {
		return "host differs from key file host " + keyfile.Hostname()
	}
	dir := keyDirectory(keyfile)
	p := content.EscapedPath()
	if p == "" {
		p = "/"
	}
	if !strings.HasPrefix(p, dir) {
		return "path is outside key file directory " + dir
	}
	return ""
}
