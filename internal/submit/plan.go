package submit

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/FranksOps/indexnow/pkg/indexnow"
)

// Mode selects the wire form of a submission.
type Mode string

const (
	// ModeAuto sends one URL with GET and anything else with one POST.
	ModeAuto Mode = "auto"
	// ModeSingle sends exactly one URL with GET.
	ModeSingle Mode = "single"
	// ModeBatch sends 1 to indexnow.MaxURLs URLs with one POST.
	ModeBatch Mode = "batch"
)

// ErrModeMismatch is returned when the URL count does not fit the mode.
var ErrModeMismatch = errors.New("url count does not fit submission mode")

// ParseMode maps a case-insensitive name to a Mode. Empty selects ModeAuto.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeSingle, ModeBatch:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want auto, single or batch)", s)
	}
}

// Submission is one notification to one endpoint.
type Submission struct {
	// Engine labels logs and metrics; defaults to the endpoint host.
	Engine      string
	Endpoint    indexnow.EndpointURL
	Key         indexnow.Key
	KeyLocation indexnow.KeyLocation
	URLs        []indexnow.ContentURL
	Mode        Mode
}

// Method returns the HTTP method the submission is sent with.
func (s Submission) Method() (string, error) {
	switch s.Mode {
	case ModeSingle:
		if len(s.URLs) != 1 {
			return "", fmt.Errorf("%w: single mode needs exactly 1 url, got %d", ErrModeMismatch, len(s.URLs))
		}
		return http.MethodGet, nil
	case ModeBatch:
		return http.MethodPost, nil
	case ModeAuto, "":
		if len(s.URLs) == 1 {
			return http.MethodGet, nil
		}
		return http.MethodPost, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s.Mode)
	}
}

// Build constructs the wire request for the submission.
func (s Submission) Build() (*http.Request, error) {
	method, err := s.Method()
	if err != nil {
		return nil, err
	}
	if method == http.MethodGet {
		return indexnow.BuildSingleRequest(s.Endpoint, s.Key, s.KeyLocation, s.URLs[0])
	}
	return indexnow.BuildBatchRequest(s.Endpoint, s.Key, s.KeyLocation, s.URLs)
}

func (s Submission) engine() string {
	if s.Engine != "" {
		return s.Engine
	}
	if u := s.Endpoint.URL(); u != nil {
		return u.Hostname()
	}
	return "unknown"
}
