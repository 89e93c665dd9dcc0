package indexnow

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9-]{8,128}$`)

// Key is the shared secret proving ownership of the submitted host.
//
// String returns the raw key because it has to go on the wire. Loggers
// should rely on LogValue, which never reveals more than a short prefix.
type Key struct {
	v string
}

// ParseKey validates raw as 8 to 128 characters of [A-Za-z0-9-].
func ParseKey(raw string) (Key, error) {
	if !keyPattern.MatchString(raw) {
		return Key{}, &ParseError{
			Field:  FieldKey,
			Input:  redact(raw),
			Reason: fmt.Sprintf("must be 8-128 characters of a-z, A-Z, 0-9 or '-' (got %d characters)", utf8.RuneCountInString(raw)),
			Err:    ErrInvalidKey,
		}
	}
	return Key{v: raw}, nil
}

// GenerateKey returns a new random 32 character hexadecimal key.
func GenerateKey() (Key, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return Key{}, fmt.Errorf("generate key: %w", err)
	}
	return ParseKey(strings.ReplaceAll(id.String(), "-", ""))
}

func (k Key) String() string { return k.v }

// LogValue implements slog.LogValuer.
func (k Key) LogValue() slog.Value {
	return slog.StringValue(redact(k.v))
}

// Redacted renders the key with everything but a short prefix masked.
func (k Key) Redacted() string { return redact(k.v) }

func (k Key) IsZero() bool { return k.v == "" }

func (k Key) Equal(o Key) bool { return k.v == o.v }

func redact(s string) string {
	r := []rune(s)
	if len(r) <= 4 {
		return strings.Repeat("*", len(r))
	}
	return string(r[:4]) + strings.Repeat("*", min(len(r)-4, 8))
}
