// Package config resolves command settings from flags, INDEXNOW_*
// environment variables and an optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable; dashes in setting names
// become underscores (key-location → INDEXNOW_KEY_LOCATION).
const EnvPrefix = "INDEXNOW"

// Setting names, shared by flags, environment and config file.
const (
	KeyConfig       = "config"
	KeyLogLevel     = "log-level"
	KeyLogFormat    = "log-format"
	KeyKey          = "key"
	KeyKeyLocation  = "key-location"
	KeyEndpoint     = "endpoint"
	KeyEngine       = "engine"
	KeyMode         = "mode"
	KeySitemap      = "sitemap"
	KeyRobots       = "robots"
	KeyPage         = "page"
	KeyDryRun       = "dry-run"
	KeyReport       = "report"
	KeyMetricsPort  = "metrics-port"
	KeyFetchRPS     = "fetch-rps"
	KeyTimeout      = "timeout"
	KeyMaxRedirects = "max-redirects"
	KeyProxy        = "proxy"
	KeyProxyFile    = "proxy-file"
	KeyTLSProfile   = "tls-profile"
	KeyUserAgent    = "user-agent"
	KeyHost         = "host"
)

// Defaults.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxRedirects = 5
	DefaultMode         = "auto"
	DefaultTLSProfile   = "go"
	DefaultReport       = "text"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultFetchRPS     = 5.0
)

// ErrMissingKey is returned when no key was given by any means.
var ErrMissingKey = errors.New("key is required (use -k/--key or INDEXNOW_KEY)")

// Config holds raw, unvalidated settings.
type Config struct {
	LogLevel  string
	LogFormat string

	Key         string
	KeyLocation string

	Endpoint    string
	Engine      string
	Mode        string
	Sitemaps    []string
	Robots      []string
	Pages       []string
	DryRun      bool
	Report      string
	MetricsPort int
	FetchRPS    float64

	Timeout      time.Duration
	MaxRedirects int
	Proxies      []string
	ProxyFile    string
	TLSProfile   string
	UserAgent    string

	Host string
}

// AddGlobalFlags registers the flags every command accepts.
func AddGlobalFlags(fs *pflag.FlagSet) {
	fs.String(KeyConfig, "", "config file (yaml, toml or json)")
	fs.String(KeyLogLevel, DefaultLogLevel, "log level: debug, info, warn or error")
	fs.String(KeyLogFormat, DefaultLogFormat, "log format: text or json")
}

// AddKeyFlags registers the ownership key flags.
func AddKeyFlags(fs *pflag.FlagSet) {
	fs.StringP(KeyKey, "k", "", "IndexNow key proving ownership of the host [env INDEXNOW_KEY]")
	fs.StringP(KeyKeyLocation, "l", "", "URL of the key file when it is not <host>/<key>.txt [env INDEXNOW_KEY_LOCATION]")
}

// AddTransportFlags registers the outbound HTTP flags.
func AddTransportFlags(fs *pflag.FlagSet) {
	fs.Duration(KeyTimeout, DefaultTimeout, "timeout per HTTP request")
	fs.Int(KeyMaxRedirects, DefaultMaxRedirects, "redirects to follow, -1 disables following")
	fs.StringArray(KeyProxy, nil, "proxy URL to rotate over (repeatable)")
	fs.String(KeyProxyFile, "", "file with one proxy URL per line")
	fs.String(KeyTLSProfile, DefaultTLSProfile, "TLS client fingerprint: go, chrome, firefox, safari or random")
	fs.String(KeyUserAgent, "", "User-Agent header (default identifies this tool)")
}

// AddSubmitFlags registers the submit command flags.
func AddSubmitFlags(fs *pflag.FlagSet) {
	fs.StringP(KeyEndpoint, "e", "", "IndexNow endpoint URL (default https://api.indexnow.org/indexnow) [env INDEXNOW_ENDPOINT]")
	fs.String(KeyEngine, "", "known search engine endpoint to submit to (see 'indexnow engines')")
	fs.String(KeyMode, DefaultMode, "auto (GET for one URL, POST otherwise), single (GET) or batch (POST)")
	fs.StringArray(KeySitemap, nil, "sitemap or sitemap index to take URLs from (repeatable)")
	fs.StringArray(KeyRobots, nil, "site whose robots.txt sitemaps to take URLs from (repeatable)")
	fs.StringArray(KeyPage, nil, "HTML page whose same-host links to submit (repeatable)")
	fs.Bool(KeyDryRun, false, "print the request instead of sending it (key redacted)")
	fs.String(KeyReport, DefaultReport, "summary format: text or json")
	fs.Int(KeyMetricsPort, 0, "serve prometheus metrics on this port while running (0 disables)")
	fs.Float64(KeyFetchRPS, DefaultFetchRPS, "requests per second when fetching sitemaps, robots.txt and pages (0 = unlimited)")
}

// AddVerifyFlags registers the verify command flags.
func AddVerifyFlags(fs *pflag.FlagSet) {
	fs.String(KeyHost, "", "site (URL or host name) the key file is checked for")
}

// New returns a viper instance reading fs, the environment and, when set,
// the file named by the config flag.
func New(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("config: bind flags: %w", err)
	}

	if file := v.GetString(KeyConfig); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", file, err)
		}
	}
	return v, nil
}

// Load reads every setting from v. Settings whose flag is not registered
// fall back to their defaults.
func Load(v *viper.Viper) Config {
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFormat, DefaultLogFormat)
	v.SetDefault(KeyMode, DefaultMode)
	v.SetDefault(KeyReport, DefaultReport)
	v.SetDefault(KeyFetchRPS, DefaultFetchRPS)
	v.SetDefault(KeyTimeout, DefaultTimeout)
	v.SetDefault(KeyMaxRedirects, DefaultMaxRedirects)
	v.SetDefault(KeyTLSProfile, DefaultTLSProfile)

	return Config{
		LogLevel:     v.GetString(KeyLogLevel),
		LogFormat:    v.GetString(KeyLogFormat),
		Key:          strings.TrimSpace(v.GetString(KeyKey)),
		KeyLocation:  strings.TrimSpace(v.GetString(KeyKeyLocation)),
		Endpoint:     strings.TrimSpace(v.GetString(KeyEndpoint)),
		Engine:       strings.TrimSpace(v.GetString(KeyEngine)),
		Mode:         v.GetString(KeyMode),
		Sitemaps:     v.GetStringSlice(KeySitemap),
		Robots:       v.GetStringSlice(KeyRobots),
		Pages:        v.GetStringSlice(KeyPage),
		DryRun:       v.GetBool(KeyDryRun),
		Report:       v.GetString(KeyReport),
		MetricsPort:  v.GetInt(KeyMetricsPort),
		FetchRPS:     v.GetFloat64(KeyFetchRPS),
		Timeout:      v.GetDuration(KeyTimeout),
		MaxRedirects: v.GetInt(KeyMaxRedirects),
		Proxies:      v.GetStringSlice(KeyProxy),
		ProxyFile:    strings.TrimSpace(v.GetString(KeyProxyFile)),
		TLSProfile:   v.GetString(KeyTLSProfile),
		UserAgent:    v.GetString(KeyUserAgent),
		Host:         strings.TrimSpace(v.GetString(KeyHost)),
	}
}
