// internal/github/client_test.go
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	custom_errors "devtrack/internal/errors"
)

// setupTestClient points a Client at a httptest server, disables the request
// rate limiter, and records backoff sleeps instead of performing them.
func setupTestClient(t *testing.T, handler http.Handler) (*Client, *[]time.Duration) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	client := NewClient("", logger)

	ghc := github.NewClient(server.Client())
	base, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	ghc.BaseURL = base
	client.gh = ghc

	client.limiter = rate.NewLimiter(rate.Inf, 1)
	sleeps := &[]time.Duration{}
	client.sleep = func(d time.Duration) { *sleeps = append(*sleeps, d) }

	return client, sleeps
}

// repoPageHandler serves /user/repos with the given page sizes in order.
func repoPageHandler(t *testing.T, requestCount *int32, pageSizes []int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(requestCount, 1)
		assert.Equal(t, "/user/repos", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))

		page := r.URL.Query().Get("page")
		idx := 0
		fmt.Sscanf(page, "%d", &idx)
		idx-- // page numbers start at 1

		size := 0
		if idx >= 0 && idx < len(pageSizes) {
			size = pageSizes[idx]
		}

		items := make([]string, size)
		for i := range items {
			items[i] = fmt.Sprintf(`{"name": "repo-%d-%d", "html_url": "https://example.com/r", "language": "Go"}`, idx, i)
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "[%s]", strings.Join(items, ","))
	})
}

func TestClient_ListRepositories_Pagination(t *testing.T) {
	tests := []struct {
		name         string
		pageSizes    []int
		wantTotal    int
		wantRequests int32
	}{
		{"zero records stop on the first empty page", []int{0}, 0, 1},
		{"exactly one full page needs a second request to see the end", []int{100, 0}, 100, 2},
		{"a short second page ends paging", []int{100, 1}, 101, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var requestCount int32
			client, _ := setupTestClient(t, repoPageHandler(t, &requestCount, tt.pageSizes))

			repos, err := client.ListRepositories(context.Background())

			require.NoError(t, err)
			assert.Len(t, repos, tt.wantTotal)
			assert.Equal(t, tt.wantRequests, atomic.LoadInt32(&requestCount))
		})
	}
}

func TestClient_ListCommits_Filters(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/me/proj/commits", r.URL.Path)
		assert.Equal(t, "me", r.URL.Query().Get("author"))
		assert.Equal(t, "2026-01-01T00:00:00Z", r.URL.Query().Get("since"))
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `[
			{"sha": "abc", "commit": {"message": "feat: new", "author": {"date": "2026-01-02T12:00:00Z"}}, "html_url": "u1"}
		]`)
	})
	client, _ := setupTestClient(t, handler)

	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	commits, err := client.ListCommits(context.Background(), "me", "proj", since, "me")

	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "abc", commits[0].SHA)
	assert.Equal(t, "feat: new", commits[0].Message)
}

func TestClient_Retry(t *testing.T) {
	t.Run("retries twice on 503 and succeeds, backing off 1s then 2s", func(t *testing.T) {
		var requestCount int32
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&requestCount, 1) <= 2 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, `{"sha": "abc", "stats": {"additions": 5, "deletions": 2}, "files": [{"filename": "a.go"}, {"filename": "b.go"}]}`)
		})
		client, sleeps := setupTestClient(t, handler)

		detail, err := client.GetCommitDetail(context.Background(), "me", "proj", "abc")

		require.NoError(t, err)
		assert.Equal(t, int32(3), atomic.LoadInt32(&requestCount))
		assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, *sleeps)
		assert.Equal(t, 5, detail.Additions)
		assert.Equal(t, 2, detail.Deletions)
		assert.Equal(t, 2, detail.FilesChanged)
	})

	t.Run("gives up after three attempts without a fourth", func(t *testing.T) {
		var requestCount int32
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&requestCount, 1)
			w.WriteHeader(http.StatusInternalServerError)
		})
		client, sleeps := setupTestClient(t, handler)

		_, err := client.GetCommitDetail(context.Background(), "me", "proj", "abc")

		require.Error(t, err)
		var fetchErr *custom_errors.FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, 3, fetchErr.Attempts)
		assert.Equal(t, int32(3), atomic.LoadInt32(&requestCount))
		assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, *sleeps)
	})

	t.Run("a 404 fails immediately without consuming retry budget", func(t *testing.T) {
		var requestCount int32
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&requestCount, 1)
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprintln(w, `{"message": "Not Found"}`)
		})
		client, sleeps := setupTestClient(t, handler)

		_, err := client.GetCommitDetail(context.Background(), "me", "proj", "abc")

		require.Error(t, err)
		var fetchErr *custom_errors.FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, int32(1), atomic.LoadInt32(&requestCount))
		assert.Empty(t, *sleeps)
	})

	t.Run("context expiry is terminal and skips the backoff", func(t *testing.T) {
		var requestCount int32
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&requestCount, 1)
			time.Sleep(200 * time.Millisecond)
			w.WriteHeader(http.StatusInternalServerError)
		})
		client, sleeps := setupTestClient(t, handler)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := client.GetCommitDetail(ctx, "me", "proj", "abc")

		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, int32(1), atomic.LoadInt32(&requestCount))
		assert.Empty(t, *sleeps)
	})

	t.Run("a page failure is retried rather than silently dropped", func(t *testing.T) {
		var requestCount int32
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			count := atomic.AddInt32(&requestCount, 1)
			if r.URL.Query().Get("page") == "2" && count == 2 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			size := 1
			if r.URL.Query().Get("page") == "1" {
				size = 100
			}
			items := make([]string, size)
			for i := range items {
				items[i] = fmt.Sprintf(`{"name": "repo-%d", "html_url": "u"}`, i)
			}
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, "[%s]", strings.Join(items, ","))
		})
		client, sleeps := setupTestClient(t, handler)

		repos, err := client.ListRepositories(context.Background())

		require.NoError(t, err)
		assert.Len(t, repos, 101)
		assert.Equal(t, []time.Duration{1 * time.Second}, *sleeps)
	})
}
