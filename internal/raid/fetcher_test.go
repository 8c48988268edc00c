package raid_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/hiveguard/hiveguard/internal/raid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleLog = `Userbot raid detected against server Cool Server (466905143279939595).

Flagged 3 accounts:
  spammer3#0001 (333333333333333333)
  spammer2#0001 (222222222222222222)
  spammer1#0001 (111111111111111111)

Raw IDs:
333333333333333333
222222222222222222
111111111111111111
`

func TestExtractUserIDs(t *testing.T) {
	t.Parallel()

	t.Run("reverses to oldest flagged first", func(t *testing.T) {
		t.Parallel()

		ids := raid.ExtractUserIDs(sampleLog)
		assert.Equal(t, []snowflake.ID{
			111111111111111111,
			222222222222222222,
			333333333333333333,
		}, ids)
	})

	t.Run("only the section after the last marker is scanned", func(t *testing.T) {
		t.Parallel()

		body := "Raw IDs:\n999999999999999999\nmore text\nRaw IDs:\n111111111111111111\n"

		ids := raid.ExtractUserIDs(body)
		assert.Equal(t, []snowflake.ID{111111111111111111}, ids)
	})

	t.Run("repeated IDs collapse to one candidate", func(t *testing.T) {
		t.Parallel()

		body := "Raw IDs:\n100000000000000001 100000000000000001\n"

		ids := raid.ExtractUserIDs(body)
		assert.Equal(t, []snowflake.ID{100000000000000001}, ids)
	})

	t.Run("dedupe keeps oldest flagged first order", func(t *testing.T) {
		t.Parallel()

		body := "Raw IDs:\n" +
			"333333333333333333\n" +
			"222222222222222222\n" +
			"333333333333333333\n" +
			"111111111111111111\n"

		ids := raid.ExtractUserIDs(body)
		assert.Equal(t, []snowflake.ID{
			111111111111111111,
			333333333333333333,
			222222222222222222,
		}, ids)
	})

	t.Run("no marker yields no candidates", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, raid.ExtractUserIDs("111111111111111111\n222222222222222222"))
	})

	t.Run("marker with no IDs yields no candidates", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, raid.ExtractUserIDs("Raw IDs:\nnothing here"))
	})
}

func TestFetch(t *testing.T) {
	t.Parallel()

	logger := zap.NewNop()

	t.Run("extracts candidates from a served log", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(sampleLog))
		}))
		defer srv.Close()

		fetcher := raid.NewLogFetcher(5*time.Second, logger)

		ids, err := fetcher.Fetch(t.Context(), srv.URL)
		require.NoError(t, err)
		assert.Len(t, ids, 3)
		assert.Equal(t, snowflake.ID(111111111111111111), ids[0])
	})

	t.Run("empty log is not an error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("nothing flagged"))
		}))
		defer srv.Close()

		fetcher := raid.NewLogFetcher(5*time.Second, logger)

		ids, err := fetcher.Fetch(t.Context(), srv.URL)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("http failure is an error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		fetcher := raid.NewLogFetcher(5*time.Second, logger)

		_, err := fetcher.Fetch(t.Context(), srv.URL)
		require.ErrorIs(t, err, raid.ErrLogFetch)
	})
}
