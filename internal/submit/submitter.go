package submit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/FranksOps/indexnow/internal/metrics"
	"github.com/FranksOps/indexnow/pkg/httpclient"
	"github.com/FranksOps/indexnow/pkg/indexnow"
	"github.com/google/uuid"
)

// maxBodyBytes caps how much of an endpoint response is kept.
const maxBodyBytes = 4 << 10

// Doer sends a built request. *transport.Client satisfies it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Result records the outcome of one submission.
type Result struct {
	ID         string
	Engine     string
	Method     string
	Endpoint   string // without query, the GET form carries the key there
	URLCount   int
	StatusCode int
	Meaning    string
	Accepted   bool
	Body       []byte
	Duration   time.Duration
	CreatedAt  time.Time
	Error      string // non-empty if the submission was not accepted
}

// Submitter sends IndexNow submissions. It is safe for concurrent use.
type Submitter struct {
	client Doer
	logger *slog.Logger
}

// New creates a Submitter sending through client.
func New(client Doer, logger *slog.Logger) *Submitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Submitter{client: client, logger: logger}
}

// Submit builds the request for sub and sends it. Invalid submissions fail
// before any network call with the builder's error.
func (s *Submitter) Submit(ctx context.Context, sub Submission) (*Result, error) {
	req, err := sub.Build()
	if err != nil {
		return nil, fmt.Errorf("build submission: %w", err)
	}

	s.logger.Debug("submitting",
		"engine", sub.engine(),
		"method", req.Method,
		"urls", len(sub.URLs),
		"key", sub.Key,
		"key_location", sub.KeyLocation.String(),
	)

	return s.Send(ctx, req, sub.engine(), len(sub.URLs))
}

// Send executes a built request. The returned Result is never nil; err is
// non-nil on transport failure or a rejecting status (*StatusError).
func (s *Submitter) Send(ctx context.Context, req *http.Request, engine string, urlCount int) (*Result, error) {
	start := time.Now()
	result := &Result{
		ID:        uuid.New().String(),
		Engine:    engine,
		Method:    req.Method,
		Endpoint:  endpointOf(req),
		URLCount:  urlCount,
		CreatedAt: start.UTC(),
	}

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		// The GET form carries the key in the query.
		err = httpclient.StripQuery(err)
		result.Duration = time.Since(start)
		result.Error = fmt.Sprintf("request failed: %v", err)
		s.finish(result)
		return result, fmt.Errorf("submit to %s: %w", result.Endpoint, err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	result.Duration = time.Since(start)
	result.StatusCode = resp.StatusCode
	result.Meaning = Meaning(resp.StatusCode)
	result.Accepted = Accepted(resp.StatusCode)
	result.Body = body

	var sendErr error
	if !result.Accepted {
		sendErr = &StatusError{
			StatusCode: resp.StatusCode,
			Meaning:    result.Meaning,
			Body:       strings.TrimSpace(string(body)),
		}
		result.Error = sendErr.Error()
	} else if readErr != nil {
		s.logger.Warn("failed to read response body", "endpoint", result.Endpoint, "err", readErr)
	}

	s.finish(result)
	if sendErr != nil {
		return result, fmt.Errorf("submit to %s: %w", result.Endpoint, sendErr)
	}
	return result, nil
}

func (s *Submitter) finish(r *Result) {
	metrics.RecordSubmission(r.Engine, r.Method, r.StatusCode, r.Accepted, r.URLCount, r.Duration)

	attrs := []any{
		"id", r.ID,
		"engine", r.Engine,
		"method", r.Method,
		"endpoint", r.Endpoint,
		"urls", r.URLCount,
		"duration", r.Duration,
	}
	switch {
	case r.StatusCode == 0:
		s.logger.Error("submission failed", append(attrs, "err", r.Error)...)
	case r.Accepted:
		s.logger.Info("submission accepted", append(attrs, "status", r.StatusCode, "meaning", r.Meaning)...)
	default:
		s.logger.Warn("submission rejected", append(attrs, "status", r.StatusCode, "meaning", r.Meaning)...)
	}
}

func endpointOf(req *http.Request) string {
	if req.URL == nil {
		return ""
	}
	u := *req.URL
	u.RawQuery = ""
	u.ForceQuery = false
	return u.String()
}

// Describe writes a human readable rendering of req with key masked.
func Describe(w io.Writer, req *http.Request, key indexnow.Key) error {
	redact := func(s string) string {
		if key.IsZero() {
			return s
		}
		return strings.ReplaceAll(s, key.String(), key.Redacted())
	}

	if _, err := fmt.Fprintf(w, "%s %s\n", req.Method, redact(req.URL.String())); err != nil {
		return err
	}
	for name, values := range req.Header {
		for _, v := range values {
			if _, err := fmt.Fprintf(w, "%s: %s\n", name, v); err != nil {
				return err
			}
		}
	}

	if req.GetBody == nil {
		return nil
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Errorf("describe request: %w", err)
	}
	defer body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return fmt.Errorf("describe request: %w", err)
	}
	if buf.Len() == 0 {
		return nil
	}
	_, err = fmt.Fprintf(w, "\n%s\n", redact(buf.String()))
	return err
}

// IsInputError reports whether err was caused by invalid submission input
// rather than by the network or the endpoint.
func IsInputError(err error) bool {
	return errors.Is(err, indexnow.ErrInvalidURL) ||
		errors.Is(err, indexnow.ErrInvalidKey) ||
		errors.Is(err, indexnow.ErrRequestBuild) ||
		errors.Is(err, ErrModeMismatch)
}
