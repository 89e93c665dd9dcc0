package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/FranksOps/indexnow/internal/fingerprint"
	"github.com/FranksOps/indexnow/internal/logging"
	"github.com/FranksOps/indexnow/internal/submit"
	"github.com/FranksOps/indexnow/pkg/indexnow"
	"github.com/FranksOps/indexnow/pkg/proxy"
)

// Target is the validated destination of a submission.
type Target struct {
	Engine   string
	Endpoint indexnow.EndpointURL
}

// ParseKey validates the key setting. A missing key is ErrMissingKey.
func (c Config) ParseKey() (indexnow.Key, error) {
	if c.Key == "" {
		return indexnow.Key{}, ErrMissingKey
	}
	return indexnow.ParseKey(c.Key)
}

// ParseKeyLocation validates the key-location setting; empty selects the
// root directory.
func (c Config) ParseKeyLocation() (indexnow.KeyLocation, error) {
	return indexnow.ParseKeyLocation(c.KeyLocation)
}

// ParseTarget resolves endpoint and engine. An explicit endpoint wins over
// the default; naming both is an error.
func (c Config) ParseTarget() (Target, error) {
	switch {
	case c.Endpoint != "" && c.Engine != "":
		return Target{}, fmt.Errorf("%s and %s are mutually exclusive", KeyEndpoint, KeyEngine)
	case c.Engine != "":
		e, err := indexnow.LookupEngine(c.Engine)
		if err != nil {
			return Target{}, err
		}
		return Target{Engine: e.Name, Endpoint: e.Endpoint}, nil
	case c.Endpoint != "":
		ep, err := indexnow.ParseEndpointURL(c.Endpoint)
		if err != nil {
			return Target{}, err
		}
		return Target{Engine: ep.URL().Hostname(), Endpoint: ep}, nil
	default:
		return Target{Engine: "indexnow", Endpoint: indexnow.DefaultEndpoint()}, nil
	}
}

// ParseMode validates the mode setting.
func (c Config) ParseMode() (submit.Mode, error) {
	return submit.ParseMode(c.Mode)
}

// ParseTLSProfile validates the tls-profile setting.
func (c Config) ParseTLSProfile() (fingerprint.Profile, error) {
	return fingerprint.ParseProfile(c.TLSProfile)
}

// ProxyPool builds the pool from the proxy and proxy-file settings. It
// returns nil when neither is set.
func (c Config) ProxyPool() (*proxy.Pool, error) {
	if len(c.Proxies) == 0 && c.ProxyFile == "" {
		return nil, nil
	}
	pool := proxy.NewPool(proxy.Config{})
	if err := pool.Add(c.Proxies...); err != nil {
		return nil, err
	}
	if c.ProxyFile != "" {
		if err := pool.LoadFile(c.ProxyFile); err != nil {
			return nil, err
		}
	}
	return pool, nil
}

// ValidateCommon checks the settings every command uses.
func (c Config) ValidateCommon() error {
	var errs []error
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", logging.FormatText, logging.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("%s: unknown format %q (want text or json)", KeyLogFormat, c.LogFormat))
	}
	return errors.Join(errs...)
}

// ValidateTransport checks the outbound HTTP settings.
func (c Config) ValidateTransport() error {
	var errs []error
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("%s: must not be negative, got %s", KeyTimeout, c.Timeout))
	}
	if _, err := c.ParseTLSProfile(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ValidateSubmit checks every setting of the submit command, reporting all
// invalid fields at once.
func (c Config) ValidateSubmit() error {
	errs := []error{c.ValidateCommon(), c.ValidateTransport()}
	if _, err := c.ParseKey(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.ParseKeyLocation(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.ParseTarget(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.ParseMode(); err != nil {
		errs = append(errs, err)
	}
	switch c.Report {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("%s: unknown format %q (want text or json)", KeyReport, c.Report))
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		errs = append(errs, fmt.Errorf("%s: %d is not a port", KeyMetricsPort, c.MetricsPort))
	}
	if c.FetchRPS < 0 {
		errs = append(errs, fmt.Errorf("%s: must not be negative", KeyFetchRPS))
	}
	return errors.Join(errs...)
}

// ValidateVerify checks every setting of the verify command.
func (c Config) ValidateVerify() error {
	errs := []error{c.ValidateCommon(), c.ValidateTransport()}
	if _, err := c.ParseKey(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.ParseKeyLocation(); err != nil {
		errs = append(errs, err)
	}
	if c.Host == "" {
		errs = append(errs, fmt.Errorf("%s is required", KeyHost))
	}
	return errors.Join(errs...)
}
