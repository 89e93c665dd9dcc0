package submit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/FranksOps/indexnow/pkg/indexnow"
)

var (
	// ErrKeyFileUnavailable is returned when the key file does not answer
	// 200 OK.
	ErrKeyFileUnavailable = errors.New("key file unavailable")
	// ErrKeyFileMismatch is returned when a key file exists but does not
	// hold the key.
	ErrKeyFileMismatch = errors.New("key file does not contain the key")
)

// VerifyKeyFile fetches the key file a search engine would check for
// submissions on site and returns its URL. The file must answer 200 and its
// trimmed body must equal key.
func VerifyKeyFile(ctx context.Context, client Doer, key indexnow.Key, loc indexnow.KeyLocation, site indexnow.ContentURL) (string, error) {
	if key.IsZero() {
		return "", fmt.Errorf("verify key file: %w", indexnow.ErrInvalidKey)
	}
	if site.IsZero() {
		return "", fmt.Errorf("verify key file: missing site: %w", indexnow.ErrInvalidURL)
	}

	fileURL := loc.FileURL(key, site)
	req, err := http.NewRequest(http.MethodGet, fileURL, nil)
	if err != nil {
		return fileURL, fmt.Errorf("verify key file: %w", err)
	}

	resp, err := client.Do(ctx, req)
	if err != nil {
		return fileURL, fmt.Errorf("verify key file %s: %w", redactedFileURL(fileURL, key), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fileURL, fmt.Errorf("verify key file %s: read body: %w", redactedFileURL(fileURL, key), err)
	}
	if resp.StatusCode != http.StatusOK {
		return fileURL, fmt.Errorf("verify key file %s: %w: status %d %s",
			redactedFileURL(fileURL, key), ErrKeyFileUnavailable, resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	if string(bytes.TrimSpace(body)) != key.String() {
		return fileURL, fmt.Errorf("verify key file %s: %w", redactedFileURL(fileURL, key), ErrKeyFileMismatch)
	}
	return fileURL, nil
}

// redactedFileURL masks key where it appears in a root directory key file
// name.
func redactedFileURL(fileURL string, key indexnow.Key) string {
	return strings.ReplaceAll(fileURL, key.String(), key.Redacted())
}
