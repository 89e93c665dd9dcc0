package indexnow

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
)

const testKey = "687a308e4eff49f994d89eb22f764514"

func mustKey(t *testing.T) Key {
	t.Helper()
	k, err := ParseKey(testKey)
	if err != nil {
		t.Fatalf("failed to parse key: %v", err)
	}
	return k
}

func mustContent(t *testing.T, raws ...string) []ContentURL {
	t.Helper()
	urls, err := ParseContentURLs(raws)
	if err != nil {
		t.Fatalf("failed to parse urls: %v", err)
	}
	return urls
}

func mustKeyfile(t *testing.T, raw string) KeyLocation {
	t.Helper()
	kf, err := ParseKeyfileURL(raw)
	if err != nil {
		t.Fatalf("failed to parse key file url: %v", err)
	}
	return AtURL(kf)
}

func decodeBody(t *testing.T, req *http.Request) map[string]any {
	t.Helper()
	data, err := io.ReadAll(req.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("body is not valid json: %v (%s)", err, data)
	}
	return m
}

func TestBuildSingleRequest(t *testing.T) {
	u := mustContent(t, "https://www.example.com/product.html")[0]

	req, err := BuildSingleRequest(DefaultEndpoint(), mustKey(t), RootDirectory(), u)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "https://api.indexnow.org/indexnow?url=https%3A%2F%2Fwww.example.com%2Fproduct.html&key=687a308e4eff49f994d89eb22f764514"
	if req.URL.String() != want {
		t.Errorf("expected %s, got %s", want, req.URL.String())
	}
	if req.Method != http.MethodGet {
		t.Errorf("expected GET, got %s", req.Method)
	}
	if req.Body != nil && req.Body != http.NoBody {
		t.Errorf("expected empty body")
	}
	if req.ContentLength != 0 {
		t.Errorf("expected zero content length, got %d", req.ContentLength)
	}
}

func TestBuildSingleRequest_WithKeyLocation(t *testing.T) {
	u := mustContent(t, "http://www.example.com/product.html")[0]
	loc := mustKeyfile(t, "http://www.example.com/myIndexNowKey63638.txt")

	req, err := BuildSingleRequest(DefaultEndpoint(), mustKey(t), loc, u)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "https://api.indexnow.org/indexnow?url=http%3A%2F%2Fwww.example.com%2Fproduct.html&key=687a308e4eff49f994d89eb22f764514&keyLocation=http%3A%2F%2Fwww.example.com%2FmyIndexNowKey63638.txt"
	if req.URL.String() != want {
		t.Errorf("expected %s, got %s", want, req.URL.String())
	}
	if !strings.HasSuffix(req.URL.RawQuery, "&keyLocation=http%3A%2F%2Fwww.example.com%2FmyIndexNowKey63638.txt") {
		t.Errorf("unexpected query %s", req.URL.RawQuery)
	}
}

func TestBuildSingleRequest_EncodesQueryComponents(t *testing.T) {
	u := mustContent(t, "https://www.example.com/search?q=a&b=c%20d")[0]
	endpoint, _ := ParseEndpointURL("https://www.bing.com/indexnow")

	req, err := BuildSingleRequest(endpoint, mustKey(t), RootDirectory(), u)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := req.URL.Query().Get("url"); got != u.String() {
		t.Errorf("expected url parameter %s to decode back, got %s", u, got)
	}
	if req.URL.Host != "www.bing.com" || req.URL.Path != "/indexnow" {
		t.Errorf("unexpected target %s", req.URL)
	}
}

func TestBuildSingleRequest_KeyLocationScope(t *testing.T) {
	loc := mustKeyfile(t, "https://www.example.com/blog/key.txt")

	tests := []struct {
		url string
		ok  bool
	}{
		{"https://www.example.com/blog/post-1", true},
		{"http://WWW.EXAMPLE.COM/blog/post-1", true},
		{"https://www.example.com/shop/item", false},
		{"https://www.example.com/blogroll", false},
		{"https://other.example.com/blog/post-1", false},
	}

	for _, tt := range tests {
		u := mustContent(t, tt.url)[0]
		_, err := BuildSingleRequest(DefaultEndpoint(), mustKey(t), loc, u)
		if tt.ok && err != nil {
			t.Errorf("%s: unexpected error: %v", tt.url, err)
		}
		if !tt.ok {
			var se *ScopeError
			if !errors.As(err, &se) || !errors.Is(err, ErrInvalidURL) {
				t.Errorf("%s: expected ScopeError matching ErrInvalidURL, got %v", tt.url, err)
			}
		}
	}
}

func TestBuildSingleRequest_ZeroInputs(t *testing.T) {
	u := mustContent(t, "https://www.example.com/")[0]

	if _, err := BuildSingleRequest(EndpointURL{}, mustKey(t), RootDirectory(), u); !errors.Is(err, ErrRequestBuild) {
		t.Errorf("expected ErrRequestBuild for zero endpoint, got %v", err)
	}
	if _, err := BuildSingleRequest(DefaultEndpoint(), Key{}, RootDirectory(), u); !errors.Is(err, ErrRequestBuild) {
		t.Errorf("expected ErrRequestBuild for zero key, got %v", err)
	}
	if _, err := BuildSingleRequest(DefaultEndpoint(), mustKey(t), RootDirectory(), ContentURL{}); !errors.Is(err, ErrRequestBuild) {
		t.Errorf("expected ErrRequestBuild for zero url, got %v", err)
	}
}

func TestBuildBatchRequest(t *testing.T) {
	urls := mustContent(t,
		"https://www.example.com/url1",
		"https://www.example.com/folder/url2",
		"https://www.example.com/url3",
	)

	req, err := BuildBatchRequest(DefaultEndpoint(), mustKey(t), RootDirectory(), urls)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Method != http.MethodPost {
		t.Errorf("expected POST, got %s", req.Method)
	}
	if req.URL.String() != "https://api.indexnow.org/indexnow" {
		t.Errorf("expected bare endpoint, got %s", req.URL)
	}
	if ct := req.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected content type application/json, got %q", ct)
	}
	if req.GetBody == nil {
		t.Errorf("expected request body to be replayable")
	}

	body := decodeBody(t, req)
	if body["host"] != "www.example.com" {
		t.Errorf("expected host www.example.com, got %v", body["host"])
	}
	if body["key"] != testKey {
		t.Errorf("expected key %s, got %v", testKey, body["key"])
	}
	if _, present := body["keyLocation"]; present {
		t.Errorf("expected keyLocation to be omitted, got %v", body["keyLocation"])
	}

	list, ok := body["urlList"].([]any)
	if !ok || len(list) != 3 {
		t.Fatalf("expected 3 urls, got %v", body["urlList"])
	}
	for i, want := range []string{
		"https://www.example.com/url1",
		"https://www.example.com/folder/url2",
		"https://www.example.com/url3",
	} {
		if list[i] != want {
			t.Errorf("urlList[%d]: expected %s, got %v", i, want, list[i])
		}
	}
}

func TestBuildBatchRequest_WithKeyLocation(t *testing.T) {
	urls := mustContent(t,
		"https://www.example.com/url1",
		"https://www.example.com/folder/url2",
		"https://www.example.com/url3",
	)
	loc := mustKeyfile(t, "https://www.example.com/myIndexNowKey63638.txt")

	req, err := BuildBatchRequest(DefaultEndpoint(), mustKey(t), loc, urls)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := decodeBody(t, req)
	if body["keyLocation"] != "https://www.example.com/myIndexNowKey63638.txt" {
		t.Errorf("unexpected keyLocation %v", body["keyLocation"])
	}
}

func TestBuildBatchRequest_BodyIsNotHTMLEscaped(t *testing.T) {
	urls := mustContent(t, "https://www.example.com/p?a=1&b=2")

	req, err := BuildBatchRequest(DefaultEndpoint(), mustKey(t), RootDirectory(), urls)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, _ := io.ReadAll(req.Body)
	if !strings.Contains(string(data), `"https://www.example.com/p?a=1&b=2"`) {
		t.Errorf("expected raw ampersand in body, got %s", data)
	}
}

func TestBuildBatchRequest_HostMismatch(t *testing.T) {
	urls := mustContent(t,
		"https://www.example.com/url1",
		"https://example.com/url2",
	)

	_, err := BuildBatchRequest(DefaultEndpoint(), mustKey(t), RootDirectory(), urls)
	var se *ScopeError
	if !errors.As(err, &se) {
		t.Fatalf("expected ScopeError, got %v", err)
	}
	if se.URL != "https://example.com/url2" {
		t.Errorf("expected offending url to be reported, got %s", se.URL)
	}
	if !errors.Is(err, ErrInvalidURL) {
		t.Errorf("expected ErrInvalidURL")
	}
}

func TestBuildBatchRequest_HostComparison(t *testing.T) {
	urls := mustContent(t,
		"https://www.Example.com/a",
		"http://www.example.com:8080/b",
	)
	_, err := BuildBatchRequest(DefaultEndpoint(), mustKey(t), RootDirectory(), urls)
	if err != nil {
		t.Errorf("expected case and port to be ignored, got %v", err)
	}

	idn := mustContent(t, "https://bücher.example/a", "https://xn--bcher-kva.example/b")
	if _, err := BuildBatchRequest(DefaultEndpoint(), mustKey(t), RootDirectory(), idn); err != nil {
		t.Errorf("expected unicode and punycode hosts to match, got %v", err)
	}
}

func TestBuildBatchRequest_KeyLocationScope(t *testing.T) {
	loc := mustKeyfile(t, "https://www.example.com/folder/key.txt")

	inScope := mustContent(t, "https://www.example.com/folder/a", "https://www.example.com/folder/sub/b")
	if _, err := BuildBatchRequest(DefaultEndpoint(), mustKey(t), loc, inScope); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	outOfScope := mustContent(t, "https://www.example.com/folder/a", "https://www.example.com/url3")
	_, err := BuildBatchRequest(DefaultEndpoint(), mustKey(t), loc, outOfScope)
	if !errors.Is(err, ErrInvalidURL) {
		t.Errorf("expected ErrInvalidURL, got %v", err)
	}

	otherHost := mustKeyfile(t, "https://cdn.example.com/key.txt")
	_, err = BuildBatchRequest(DefaultEndpoint(), mustKey(t), otherHost, inScope)
	if !errors.Is(err, ErrInvalidURL) {
		t.Errorf("expected ErrInvalidURL for key file on another host, got %v", err)
	}
}

func TestBuildBatchRequest_Bounds(t *testing.T) {
	_, err := BuildBatchRequest(DefaultEndpoint(), mustKey(t), RootDirectory(), nil)
	var be *BuildError
	if !errors.As(err, &be) || !errors.Is(err, ErrRequestBuild) {
		t.Errorf("expected BuildError for empty list, got %v", err)
	}

	raws := make([]string, MaxURLs+1)
	for i := range raws {
		raws[i] = fmt.Sprintf("https://www.example.com/page/%d", i)
	}
	urls := mustContent(t, raws...)

	if _, err := BuildBatchRequest(DefaultEndpoint(), mustKey(t), RootDirectory(), urls); !errors.Is(err, ErrRequestBuild) {
		t.Errorf("expected ErrRequestBuild for %d urls, got %v", len(urls), err)
	}

	req, err := BuildBatchRequest(DefaultEndpoint(), mustKey(t), RootDirectory(), urls[:MaxURLs])
	if err != nil {
		t.Fatalf("unexpected error for %d urls: %v", MaxURLs, err)
	}
	body := decodeBody(t, req)
	if list := body["urlList"].([]any); len(list) != MaxURLs {
		t.Errorf("expected %d urls, got %d", MaxURLs, len(list))
	}
}

func TestNewBatchBody_SingleURL(t *testing.T) {
	body, err := NewBatchBody(mustKey(t), RootDirectory(), mustContent(t, "https://www.example.com/only"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.Host != "www.example.com" || len(body.URLList) != 1 || body.KeyLocation != "" {
		t.Errorf("unexpected body %+v", body)
	}
}
