package raid

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/zap"
)

// rawIDsMarker precedes the machine-readable ID list in a partner bot log.
const rawIDsMarker = "Raw IDs:"

// ErrLogFetch wraps network and HTTP failures retrieving a raid log. Distinct
// from an empty candidate list, which is a valid "nothing to do" result.
var ErrLogFetch = errors.New("failed to fetch raid log")

// LogFetcher retrieves a plaintext raid log and extracts the flagged user
// IDs. A single GET per log, no retries; a missed log is re-derivable from
// the original report message.
type LogFetcher struct {
	client *http.Client
	logger *zap.Logger
}

// NewLogFetcher creates a log fetcher with the given request timeout.
func NewLogFetcher(timeout time.Duration, logger *zap.Logger) *LogFetcher {
	return &LogFetcher{
		client: &http.Client{Timeout: timeout},
		logger: logger.Named("log_fetcher"),
	}
}

// Fetch downloads the log at the given URL and returns the flagged user IDs
// in oldest-flagged-first order. The upstream log lists newest-first; the
// order is reversed so this bot works from the opposite end of the list to
// the partner bot's own remediation pass, minimizing duplicate-ban races.
// Returns an empty slice, not an error, when the log contains no marker or
// no IDs.
func (f *LogFetcher) Fetch(ctx context.Context, logURL string) ([]snowflake.ID, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, logURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLogFetch, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLogFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrLogFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLogFetch, err)
	}

	ids := ExtractUserIDs(string(body))

	f.logger.Debug("Fetched raid log",
		zap.String("logURL", logURL),
		zap.Int("candidates", len(ids)))

	return ids, nil
}

// ExtractUserIDs pulls the flagged user IDs out of a raid log body, reversed
// into oldest-flagged-first order. Repeated IDs collapse to a single
// candidate so no user is dispatched twice. Only the section after the last
// marker occurrence is scanned.
func ExtractUserIDs(body string) []snowflake.ID {
	idx := strings.LastIndex(body, rawIDsMarker)
	if idx == -1 {
		return nil
	}

	section := body[idx+len(rawIDsMarker):]

	matches := userIDPattern.FindAllString(section, -1)
	if len(matches) == 0 {
		return nil
	}

	ids := make([]snowflake.ID, 0, len(matches))
	seen := make(map[snowflake.ID]struct{}, len(matches))

	for i := len(matches) - 1; i >= 0; i-- {
		id, err := snowflake.Parse(matches[i])
		if err != nil {
			continue
		}

		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return ids
}
