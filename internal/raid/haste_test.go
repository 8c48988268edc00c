package raid_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hiveguard/hiveguard/internal/raid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasteUpload(t *testing.T) {
	t.Parallel()

	t.Run("returns the document URL", func(t *testing.T) {
		t.Parallel()

		var gotPath, gotBody string

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path

			body, _ := io.ReadAll(r.Body)
			gotBody = string(body)

			_, _ = w.Write([]byte(`{"key":"abcdef"}`))
		}))
		defer srv.Close()

		uploader := raid.NewHasteUploader(srv.URL+"/", 5*time.Second)

		url, err := uploader.Upload(t.Context(), "banned users")
		require.NoError(t, err)

		assert.Equal(t, srv.URL+"/abcdef.md", url)
		assert.Equal(t, "/documents", gotPath)
		assert.Equal(t, "banned users", gotBody)
	})

	t.Run("server failure", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		uploader := raid.NewHasteUploader(srv.URL, 5*time.Second)

		_, err := uploader.Upload(t.Context(), "banned users")
		assert.ErrorIs(t, err, raid.ErrHasteUpload)
	})

	t.Run("response without a key", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		uploader := raid.NewHasteUploader(srv.URL, 5*time.Second)

		_, err := uploader.Upload(t.Context(), "banned users")
		assert.ErrorIs(t, err, raid.ErrHasteUpload)
	})
}
