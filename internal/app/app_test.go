package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/sportunion-stats/internal/config"
	"github.com/riskibarqy/sportunion-stats/internal/domain/season"
	"github.com/riskibarqy/sportunion-stats/internal/platform/logging"
)

func TestNewHTTPServer_ServesCachedSeason(t *testing.T) {
	dir := t.TempDir()
	snapshot := filepath.Join(dir, "season_2526.json")
	doc := `{"response":{"players":[{"baseObjectId":1,"name":"Keeper"}],"matchScoreStatistics":[]}}`
	if err := os.WriteFile(snapshot, []byte(doc), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	cfg := config.Config{
		HTTPAddr:           ":0",
		ReadTimeout:        time.Second,
		WriteTimeout:       time.Second,
		CORSAllowedOrigins: []string{"*"},
		Seasons: []season.Config{
			{Label: "24/25", CachePath: filepath.Join(dir, "missing.json")},
			{Label: "25/26", CachePath: snapshot},
		},
		StatsAPITimeout: time.Second,
		PayloadMaxChars: 1000,
	}

	rt, err := NewRuntime(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	defer func() { _ = rt.Close() }()

	srv, err := NewHTTPServer(cfg, rt, logging.NewNop())
	if err != nil {
		t.Fatalf("new http server: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/player-stats?season=25/26", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"name":"Keeper"`) {
		t.Fatalf("expected roster player in response: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/seasons", nil))
	if !strings.Contains(rec.Body.String(), `"skip_reason":"source_unavailable"`) {
		t.Fatalf("expected skipped 24/25 season: %s", rec.Body.String())
	}
}

func TestNewHTTPServer_RejectsEmptyAddr(t *testing.T) {
	rt, err := NewRuntime(context.Background(), config.Config{}, logging.NewNop())
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	if _, err := NewHTTPServer(config.Config{}, rt, nil); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}
