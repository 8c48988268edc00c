package raid

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// ErrHasteUpload wraps failures publishing a ban log artifact.
var ErrHasteUpload = errors.New("failed to upload haste document")

// HasteUploader publishes plaintext ban logs to a hastebin-compatible
// service. The resulting link is the sweep's audit artifact; this pipeline
// keeps no durable record to resume from, so the artifact is the only
// human-recoverable trail besides the original report message.
type HasteUploader struct {
	baseURL string
	client  *http.Client
}

// NewHasteUploader creates an uploader for the given hastebin base URL.
func NewHasteUploader(baseURL string, timeout time.Duration) *HasteUploader {
	return &HasteUploader{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Upload posts the content and returns the shareable document URL.
func (h *HasteUploader) Upload(ctx context.Context, content string) (string, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, h.baseURL+"/documents", strings.NewReader(content),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrHasteUpload, err)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrHasteUpload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: unexpected status %d", ErrHasteUpload, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrHasteUpload, err)
	}

	var result struct {
		Key string `json:"key"`
	}
	if err := sonic.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: %w", ErrHasteUpload, err)
	}

	if result.Key == "" {
		return "", fmt.Errorf("%w: response missing document key", ErrHasteUpload)
	}

	return fmt.Sprintf("%s/%s.md", h.baseURL, result.Key), nil
}
