package statsapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/sportunion-stats/internal/domain/season"
	"github.com/riskibarqy/sportunion-stats/internal/platform/resilience"
	"github.com/riskibarqy/sportunion-stats/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshotBody = `{"response":{"players":[{"baseObjectId":1,"name":"cached"}]}}`

func writeSnapshot(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "season.json")
	require.NoError(t, os.WriteFile(path, []byte(snapshotBody), 0o644))
	return path
}

func playerName(t *testing.T, doc usecase.SourceDocument) string {
	t.Helper()
	players := usecase.ParseDocument(doc.Body).Players
	require.Len(t, players, 1)
	return players[0].(map[string]any)["name"].(string)
}

func TestLoader_CacheOnlyReadsSnapshot(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	path := writeSnapshot(t, t.TempDir())
	loader := NewLoader(LoaderConfig{})

	doc, err := loader.Load(context.Background(), season.Config{Label: "24/25", CachePath: path, SourceURL: server.URL})
	require.NoError(t, err)
	assert.False(t, doc.Fetched)
	assert.Equal(t, "cached", playerName(t, doc))
	assert.Zero(t, hits.Load(), "cache-only season must not hit the network")

	id := usecase.ParseDocument(doc.Body).Players[0].(map[string]any)["baseObjectId"]
	assert.Equal(t, json.Number("1"), id)
}

func TestLoader_MissingSnapshotIsSourceUnavailable(t *testing.T) {
	t.Parallel()

	loader := NewLoader(LoaderConfig{})
	_, err := loader.Load(context.Background(), season.Config{Label: "24/25", CachePath: filepath.Join(t.TempDir(), "absent.json")})
	require.Error(t, err)
	assert.True(t, crerr.Is(err, usecase.ErrSourceUnavailable))
}

func TestLoader_FetchSuccessReplacesSnapshot(t *testing.T) {
	t.Parallel()

	fresh := `{"response":{"players":[{"baseObjectId":1,"name":"fresh"}]}}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("accept"))
		_, _ = w.Write([]byte(fresh))
	}))
	defer server.Close()

	dir := t.TempDir()
	path := writeSnapshot(t, dir)
	loader := NewLoader(LoaderConfig{})

	doc, err := loader.Load(context.Background(), season.Config{Label: "25/26", CachePath: path, SourceURL: server.URL, AllowFetch: true})
	require.NoError(t, err)
	assert.True(t, doc.Fetched)
	assert.Equal(t, "fresh", playerName(t, doc))

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, fresh, string(onDisk))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestLoader_FetchFailureFallsBackWithoutTouchingSnapshot(t *testing.T) {
	t.Parallel()

	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		},
		"malformed": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"response":`))
		},
		"not object": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[1,2,3]`))
		},
		"timeout": func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		},
	}

	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var hits atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				handler(w, r)
			}))
			defer server.Close()

			path := writeSnapshot(t, t.TempDir())
			loader := NewLoader(LoaderConfig{Timeout: 100 * time.Millisecond})

			doc, err := loader.Load(context.Background(), season.Config{Label: "25/26", CachePath: path, SourceURL: server.URL, AllowFetch: true})
			require.NoError(t, err)
			assert.False(t, doc.Fetched)
			assert.Equal(t, "cached", playerName(t, doc))
			assert.EqualValues(t, 1, hits.Load(), "no retry after a failed fetch")

			onDisk, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, snapshotBody, string(onDisk))
		})
	}
}

func TestLoader_FetchFailureWithoutSnapshotIsSourceUnavailable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "season.json")
	_, err := NewLoader(LoaderConfig{}).Load(context.Background(), season.Config{Label: "25/26", CachePath: path, SourceURL: server.URL, AllowFetch: true})
	require.Error(t, err)
	assert.True(t, crerr.Is(err, usecase.ErrSourceUnavailable))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestLoader_OpenCircuitSkipsNetwork(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	path := writeSnapshot(t, t.TempDir())
	loader := NewLoader(LoaderConfig{CircuitBreaker: resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
	}})
	cfg := season.Config{Label: "25/26", CachePath: path, SourceURL: server.URL, AllowFetch: true}

	for i := 0; i < 3; i++ {
		doc, err := loader.Load(context.Background(), cfg)
		require.NoError(t, err)
		assert.False(t, doc.Fetched)
	}
	assert.EqualValues(t, 1, hits.Load())
	assert.Equal(t, resilience.CircuitStateOpen, loader.breaker.State())
}

func TestRedactURL(t *testing.T) {
	t.Parallel()

	got := redactURL("https://user:pw@stats.example.com/season?api_token=abc&season=2526")
	assert.NotContains(t, got, "abc")
	assert.NotContains(t, got, "pw")
	assert.Contains(t, got, "season=2526")
}
