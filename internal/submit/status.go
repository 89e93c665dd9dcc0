package submit

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrRejected is matched by every StatusError.
var ErrRejected = errors.New("submission rejected")

// Response meanings documented by the IndexNow protocol.
var statusMeanings = map[int]string{
	http.StatusOK:                  "URL submitted successfully",
	http.StatusAccepted:            "URL received, key validation pending",
	http.StatusBadRequest:          "invalid format",
	http.StatusForbidden:           "key not valid (key file not found or key not in the file)",
	http.StatusUnprocessableEntity: "URLs don't belong to the host or the key does not match the protocol schema",
	http.StatusTooManyRequests:     "too many requests (potential spam)",
}

// Meaning describes an endpoint response status.
func Meaning(code int) string {
	if m, ok := statusMeanings[code]; ok {
		return m
	}
	if text := http.StatusText(code); text != "" {
		return text
	}
	return "unexpected status"
}

// Accepted reports whether code means the endpoint took the submission.
func Accepted(code int) bool {
	return code == http.StatusOK || code == http.StatusAccepted
}

// StatusError is returned when the endpoint answers with a non-success
// status.
type StatusError struct {
	StatusCode int
	Meaning    string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%v: %d %s: %s", ErrRejected, e.StatusCode, e.Meaning, e.Body)
	}
	return fmt.Sprintf("%v: %d %s", ErrRejected, e.StatusCode, e.Meaning)
}

func (e *StatusError) Unwrap() error { return ErrRejected }
