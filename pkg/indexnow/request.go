package indexnow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// MaxURLs is the largest number of URLs accepted in one submission.
const MaxURLs = 10_000

// Query parameter and JSON field names defined by the protocol.
const (
	paramURL         = "url"
	paramKey         = "key"
	paramKeyLocation = "keyLocation"
)

// BatchBody is the JSON document sent by BuildBatchRequest.
type BatchBody struct {
	Host        string   `json:"host"`
	Key         string   `json:"key"`
	KeyLocation string   `json:"keyLocation,omitempty"`
	URLList     []string `json:"urlList"`
}

// BuildSingleRequest builds the GET form notifying a change of one URL.
// The query holds url, key and, for an explicit key location, keyLocation,
// in that order.
func BuildSingleRequest(endpoint EndpointURL, key Key, loc KeyLocation, u ContentURL) (*http.Request, error) {
	if err := checkInputs(endpoint, key); err != nil {
		return nil, err
	}
	if u.IsZero() {
		return nil, &BuildError{Reason: "missing url"}
	}
	if reason := loc.scopeViolation(u); reason != "" {
		return nil, &ScopeError{URL: u.String(), Reason: reason}
	}

	// url.Values.Encode sorts by key; the parameter order is kept here.
	params := []string{
		paramURL + "=" + url.QueryEscape(u.String()),
		paramKey + "=" + url.QueryEscape(key.String()),
	}
	if kf, ok := loc.Explicit(); ok {
		params = append(params, paramKeyLocation+"="+url.QueryEscape(kf.String()))
	}

	target := endpoint.URL()
	target.RawQuery = strings.Join(params, "&")
	target.ForceQuery = false
	target.Fragment = ""

	req, err := http.NewRequest(http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, &BuildError{Reason: "compose request uri", Err: err}
	}
	return req, nil
}

// BuildBatchRequest builds the POST form notifying a change of up to MaxURLs
// URLs on one host. The host is taken from the first URL; every other URL
// must share it and, for an explicit key location, lie inside the key file
// directory.
func BuildBatchRequest(endpoint EndpointURL, key Key, loc KeyLocation, urls []ContentURL) (*http.Request, error) {
	if err := checkInputs(endpoint, key); err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		return nil, &BuildError{Reason: "no urls to submit"}
	}
	if len(urls) > MaxURLs {
		return nil, &BuildError{Reason: fmt.Sprintf("%d urls exceed the limit of %d", len(urls), MaxURLs)}
	}

	body, err := NewBatchBody(key, loc, urls)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(body); err != nil {
		return nil, &BuildError{Reason: "encode json body", Err: err}
	}

	req, err := http.NewRequest(http.MethodPost, endpoint.String(), bytes.NewReader(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))))
	if err != nil {
		return nil, &BuildError{Reason: "compose request uri", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// NewBatchBody validates urls against the batch host and the key location
// and returns the document BuildBatchRequest would encode.
func NewBatchBody(key Key, loc KeyLocation, urls []ContentURL) (*BatchBody, error) {
	if len(urls) == 0 {
		return nil, &BuildError{Reason: "no urls to submit"}
	}
	first := urls[0]
	if first.IsZero() {
		return nil, &BuildError{Reason: "missing url"}
	}

	body := &BatchBody{
		Host:    first.Host(),
		Key:     key.String(),
		URLList: make([]string, 0, len(urls)),
	}
	if kf, ok := loc.Explicit(); ok {
		body.KeyLocation = kf.String()
	}

	for _, u := range urls {
		if u.IsZero() {
			return nil, &BuildError{Reason: "missing url"}
		}
		if !sameHost(first.u, u.u) {
			return nil, &ScopeError{URL: u.String(), Reason: "host differs from batch host " + body.Host}
		}
		if reason := loc.scopeViolation(u); reason != "" {
			return nil, &ScopeError{URL: u.String(), Reason: reason}
		}
		body.URLList = append(body.URLList, u.String())
	}
	return body, nil
}

func checkInputs(endpoint EndpointURL, key Key) error {
	if endpoint.IsZero() {
		return &BuildError{Reason: "missing endpoint"}
	}
	if key.IsZero() {
		return &BuildError{Reason: "missing key"}
	}
	return nil
}
