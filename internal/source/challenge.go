package source

import (
	"bytes"
	"fmt"
	"net/http"
	"slices"
	"strings"
)

// ChallengeError reports a fetch answered by a bot protection challenge
// instead of the requested document.
type ChallengeError struct {
	URL        string
	StatusCode int
	Provider   string
}

func (e *ChallengeError) Error() string {
	return fmt.Sprintf("fetch %s: blocked by %s bot protection (status %d)", e.URL, e.Provider, e.StatusCode)
}

type challengeSignature struct {
	provider string
	statuses []int
	server   string   // substring of the Server header
	headers  []string // any of these headers present
	markers  []string // any of these in the body
}

var challengeSignatures = []challengeSignature{
	{
		provider: "Cloudflare",
		statuses: []int{http.StatusForbidden, http.StatusServiceUnavailable},
		server:   "cloudflare",
		markers:  []string{"cf-browser-verification", "cloudflare-nginx", "cf-turnstile", "Attention Required! | Cloudflare"},
	},
	{
		provider: "Akamai",
		statuses: []int{http.StatusForbidden},
		server:   "akamai",
	},
	{
		provider: "DataDome",
		statuses: []int{http.StatusForbidden},
		server:   "datadome",
		headers:  []string{"X-DataDome", "X-DataDome-Response"},
		markers:  []string{"geo.captcha-delivery.com"},
	},
	{
		provider: "PerimeterX",
		statuses: []int{http.StatusForbidden},
		headers:  []string{"X-Px-Captcha"},
		markers:  []string{"client.perimeterx.net", "px-captcha", "_pxBlock"},
	},
}

// detectChallenge returns the bot protection provider that answered page,
// or "" when none did.
func detectChallenge(page *Page) string {
	server := strings.ToLower(page.Headers.Get("Server"))
	for _, sig := range challengeSignatures {
		if !slices.Contains(sig.statuses, page.StatusCode) {
			continue
		}
		if sig.server != "" && strings.Contains(server, sig.server) {
			return sig.provider
		}
		for _, h := range sig.headers {
			if page.Headers.Get(h) != "" {
				return sig.provider
			}
		}
		for _, m := range sig.markers {
			if bytes.Contains(page.Body, []byte(m)) {
				return sig.provider
			}
		}
	}
	// Akamai's generic block page.
	if page.StatusCode == http.StatusForbidden &&
		bytes.Contains(page.Body, []byte("Reference #")) && bytes.Contains(page.Body, []byte("Access Denied")) {
		return "Akamai"
	}
	return ""
}
