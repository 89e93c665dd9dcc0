package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/FranksOps/indexnow/internal/fingerprint"
	"github.com/FranksOps/indexnow/internal/submit"
	"github.com/FranksOps/indexnow/pkg/indexnow"
	"github.com/spf13/pflag"
)

const testKey = "0123456789abcdef0123456789abcdef"

func submitFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("submit", pflag.ContinueOnError)
	AddGlobalFlags(fs)
	AddKeyFlags(fs)
	AddTransportFlags(fs)
	AddSubmitFlags(fs)
	AddVerifyFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return fs
}

func load(t *testing.T, args ...string) Config {
	t.Helper()
	v, err := New(submitFlags(t, args...))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return Load(v)
}

func TestLoad_Defaults(t *testing.T) {
	cfg := load(t)

	if cfg.Timeout != DefaultTimeout || cfg.MaxRedirects != DefaultMaxRedirects {
		t.Errorf("timeout/redirects = %v/%d", cfg.Timeout, cfg.MaxRedirects)
	}
	if cfg.Mode != "auto" || cfg.TLSProfile != "go" || cfg.Report != "text" {
		t.Errorf("mode/tls/report = %q/%q/%q", cfg.Mode, cfg.TLSProfile, cfg.Report)
	}
	if cfg.Key != "" || cfg.DryRun || len(cfg.Sitemaps) != 0 {
		t.Errorf("unexpected non-zero settings: %+v", cfg)
	}
}

func TestLoad_Flags(t *testing.T) {
	cfg := load(t,
		"-k", testKey,
		"-l", "https://example.com/keys/key.txt",
		"-e", "https://search.example/indexnow",
		"--mode", "batch",
		"--sitemap", "https://example.com/a.xml",
		"--sitemap", "https://example.com/b.xml?x=1,2",
		"--timeout", "5s",
		"--dry-run",
	)

	if cfg.Key != testKey || cfg.KeyLocation != "https://example.com/keys/key.txt" {
		t.Errorf("key settings = %q/%q", cfg.Key, cfg.KeyLocation)
	}
	if cfg.Endpoint != "https://search.example/indexnow" || cfg.Mode != "batch" {
		t.Errorf("endpoint/mode = %q/%q", cfg.Endpoint, cfg.Mode)
	}
	if len(cfg.Sitemaps) != 2 || cfg.Sitemaps[1] != "https://example.com/b.xml?x=1,2" {
		t.Errorf("sitemaps = %q", cfg.Sitemaps)
	}
	if cfg.Timeout != 5*time.Second || !cfg.DryRun {
		t.Errorf("timeout/dry-run = %v/%v", cfg.Timeout, cfg.DryRun)
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("INDEXNOW_KEY", testKey)
	t.Setenv("INDEXNOW_KEY_LOCATION", "https://example.com/k.txt")
	t.Setenv("INDEXNOW_ENDPOINT", "https://search.example/indexnow")
	t.Setenv("INDEXNOW_MAX_REDIRECTS", "2")

	cfg := load(t)
	if cfg.Key != testKey || cfg.KeyLocation != "https://example.com/k.txt" || cfg.Endpoint != "https://search.example/indexnow" {
		t.Errorf("env settings = %+v", cfg)
	}
	if cfg.MaxRedirects != 2 {
		t.Errorf("max redirects = %d, want 2", cfg.MaxRedirects)
	}

	// Flags win over the environment.
	cfg = load(t, "--key", "flagkey123")
	if cfg.Key != "flagkey123" {
		t.Errorf("key = %q, want flag value", cfg.Key)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "indexnow.yaml")
	content := "key: " + testKey + "\nengine: bing\nreport: json\ntimeout: 10s\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg := load(t, "--config", path, "--report", "text")
	if cfg.Key != testKey || cfg.Engine != "bing" || cfg.Timeout != 10*time.Second {
		t.Errorf("file settings = %+v", cfg)
	}
	if cfg.Report != "text" {
		t.Errorf("report = %q, want flag to win", cfg.Report)
	}
}

func TestNew_MissingConfigFile(t *testing.T) {
	fs := submitFlags(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := New(fs); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		name       string
		cfg        Config
		wantEngine string
		wantURL    string
		wantErr    bool
	}{
		{"default", Config{}, "indexnow", indexnow.DefaultEndpointURL, false},
		{"engine", Config{Engine: "Bing"}, "bing", "https://www.bing.com/indexnow", false},
		{"endpoint", Config{Endpoint: "https://search.example/indexnow"}, "search.example", "https://search.example/indexnow", false},
		{"both", Config{Endpoint: "https://search.example/indexnow", Engine: "bing"}, "", "", true},
		{"unknown engine", Config{Engine: "altavista"}, "", "", true},
		{"endpoint with query", Config{Endpoint: "https://search.example/indexnow?x=1"}, "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.ParseTarget()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTarget err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Engine != tt.wantEngine || got.Endpoint.String() != tt.wantURL {
				t.Errorf("ParseTarget = %s %s, want %s %s", got.Engine, got.Endpoint, tt.wantEngine, tt.wantURL)
			}
		})
	}
}

func TestValidateSubmit(t *testing.T) {
	valid := Config{Key: testKey, Mode: "auto", TLSProfile: "go", Report: "text", LogLevel: "info"}
	if err := valid.ValidateSubmit(); err != nil {
		t.Fatalf("valid config: %v", err)
	}

	invalid := Config{
		Key:         "short",
		KeyLocation: "ftp://example.com/key.txt",
		Endpoint:    "https://search.example/indexnow?",
		Mode:        "split",
		TLSProfile:  "netscape",
		Report:      "html",
		LogLevel:    "loud",
		MetricsPort: 70000,
	}
	err := invalid.ValidateSubmit()
	if err == nil {
		t.Fatal("expected errors")
	}
	if !errors.Is(err, indexnow.ErrInvalidKey) || !errors.Is(err, indexnow.ErrInvalidURL) {
		t.Errorf("err = %v, want key and url errors", err)
	}

	var pe *indexnow.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("err = %v, want a *indexnow.ParseError", err)
	}

	msg := err.Error()
	for _, want := range []string{"key location", "endpoint", "mode", "profile", "report", "metrics-port", "level"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message lacks %q:\n%s", want, msg)
		}
	}
	if strings.Contains(msg, "short") {
		t.Errorf("error message leaks key input:\n%s", msg)
	}
}

func TestValidateSubmit_MissingKey(t *testing.T) {
	if err := (Config{}).ValidateSubmit(); !errors.Is(err, ErrMissingKey) {
		t.Errorf("err = %v, want ErrMissingKey", err)
	}
}

func TestValidateVerify(t *testing.T) {
	if err := (Config{Key: testKey}).ValidateVerify(); err == nil || !strings.Contains(err.Error(), "host") {
		t.Errorf("err = %v, want host required", err)
	}
	if err := (Config{Key: testKey, Host: "example.com"}).ValidateVerify(); err != nil {
		t.Errorf("valid verify config: %v", err)
	}
}

func TestParsers(t *testing.T) {
	cfg := Config{Key: testKey, KeyLocation: "https://example.com/k.txt", Mode: "single", TLSProfile: "Chrome"}

	key, err := cfg.ParseKey()
	if err != nil || key.String() != testKey {
		t.Errorf("ParseKey = %v, %v", key, err)
	}
	loc, err := cfg.ParseKeyLocation()
	if err != nil || loc.IsRootDirectory() {
		t.Errorf("ParseKeyLocation = %v, %v", loc, err)
	}
	mode, err := cfg.ParseMode()
	if err != nil || mode != submit.ModeSingle {
		t.Errorf("ParseMode = %v, %v", mode, err)
	}
	profile, err := cfg.ParseTLSProfile()
	if err != nil || profile != fingerprint.ProfileChrome {
		t.Errorf("ParseTLSProfile = %v, %v", profile, err)
	}
}

func TestProxyPool(t *testing.T) {
	pool, err := (Config{}).ProxyPool()
	if err != nil || pool != nil {
		t.Errorf("ProxyPool() = %v, %v; want nil, nil", pool, err)
	}

	path := filepath.Join(t.TempDir(), "proxies.txt")
	if err := os.WriteFile(path, []byte("http://127.0.0.1:8081\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	pool, err = (Config{Proxies: []string{"http://127.0.0.1:8080"}, ProxyFile: path}).ProxyPool()
	if err != nil {
		t.Fatalf("ProxyPool: %v", err)
	}
	if pool.Len() != 2 {
		t.Errorf("pool has %d proxies, want 2", pool.Len())
	}

	if _, err := (Config{Proxies: []string{"ftp://127.0.0.1"}}).ProxyPool(); err == nil {
		t.Error("expected error for invalid proxy")
	}
}
