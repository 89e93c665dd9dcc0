package indexnow

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL is matched by every error caused by a malformed or
	// out-of-scope URL (endpoint, key location or content URL).
	ErrInvalidURL = errors.New("invalid url")
	// ErrInvalidKey is matched by errors caused by a malformed key.
	ErrInvalidKey = errors.New("invalid key")
	// ErrRequestBuild is matched by wire-level assembly failures.
	ErrRequestBuild = errors.New("request build failed")
)

// Field names the input a ParseError refers to.
type Field string

const (
	FieldEndpoint    Field = "endpoint"
	FieldKey         Field = "key"
	FieldKeyLocation Field = "key location"
	FieldURL         Field = "url"
)

// ParseError reports a raw string that failed validation.
type ParseError struct {
	Field  Field
	Input  string
	Reason string
	Err    error // ErrInvalidURL or ErrInvalidKey
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s %q: %v: %s", e.Field, e.Input, e.Err, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ScopeError reports a content URL that may not be submitted together with
// the rest of a request: it is on another host than the batch, or outside
// the directory of an explicit key file.
type ScopeError struct {
	URL    string
	Reason string
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("url %q: %v: %s", e.URL, ErrInvalidURL, e.Reason)
}

func (e *ScopeError) Unwrap() error { return ErrInvalidURL }

// BuildError reports a failure to assemble a wire request from inputs that
// were already validated.
type BuildError struct {
	Reason string
	Err    error
}

func (e *BuildError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", ErrRequestBuild, e.Reason, e.Err)
	}
	return fmt.Sprintf("%v: %s", ErrRequestBuild, e.Reason)
}

// Unwrap exposes both the ErrRequestBuild sentinel and the underlying cause.
func (e *BuildError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrRequestBuild, e.Err}
	}
	return []error{ErrRequestBuild}
}
