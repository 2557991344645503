package statsapi

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/sportunion-stats/internal/domain/season"
	"github.com/riskibarqy/sportunion-stats/internal/platform/logging"
	"github.com/riskibarqy/sportunion-stats/internal/platform/resilience"
	"github.com/riskibarqy/sportunion-stats/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultTimeout      = 60 * time.Second
	defaultMaxBodyBytes = 32 << 20
)

var errFetchFailed = crerr.New("stats api fetch failed")

// documentAPI keeps integers exact as json.Number.
var documentAPI = sonic.Config{UseNumber: true}.Froze()

type LoaderConfig struct {
	HTTPClient     *http.Client
	Timeout        time.Duration
	MaxBodyBytes   int64
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Loader reads season documents from local snapshots, refreshing them from the
// stats API when a season allows it. A failed refresh falls back to the snapshot once.
type Loader struct {
	httpClient   *http.Client
	timeout      time.Duration
	maxBodyBytes int64
	logger       *logging.Logger
	breaker      *resilience.CircuitBreaker
}

func NewLoader(cfg LoaderConfig) *Loader {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("statsapi")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	return &Loader{
		httpClient:   httpClient,
		timeout:      timeout,
		maxBodyBytes: maxBody,
		logger:       logger,
		breaker:      resilience.NewCircuitBreaker("statsapi", cfg.CircuitBreaker, logger),
	}
}

func (l *Loader) Load(ctx context.Context, cfg season.Config) (usecase.SourceDocument, error) {
	if cfg.AllowFetch {
		doc, raw, err := l.fetch(ctx, cfg.SourceURL)
		if err == nil {
			if writeErr := writeFileAtomic(cfg.CachePath, raw); writeErr != nil {
				l.logger.WarnContext(ctx, "season snapshot not saved", "season", cfg.Label, "path", cfg.CachePath, "error", writeErr)
			}
			return usecase.SourceDocument{Body: doc, Fetched: true}, nil
		}
		l.logger.WarnContext(ctx, "season fetch failed, using snapshot",
			"season", cfg.Label,
			"url", redactURL(cfg.SourceURL),
			"circuit", l.breaker.State(),
			"error", err,
		)
	}

	doc, err := readSnapshot(cfg.CachePath)
	if err != nil {
		return usecase.SourceDocument{}, crerr.Mark(crerr.Wrapf(err, "season %s", cfg.Label), usecase.ErrSourceUnavailable)
	}
	return usecase.SourceDocument{Body: doc}, nil
}

func (l *Loader) fetch(ctx context.Context, sourceURL string) (map[string]any, []byte, error) {
	sourceURL = strings.TrimSpace(sourceURL)
	if sourceURL == "" {
		return nil, nil, crerr.New("source url is empty")
	}

	var doc map[string]any
	raw, err := l.breaker.Execute(func() ([]byte, error) {
		body, reqErr := l.executeRequest(ctx, sourceURL)
		if reqErr != nil {
			return nil, reqErr
		}
		if decodeErr := decodeDocument(body, &doc); decodeErr != nil {
			return nil, crerr.Mark(decodeErr, errFetchFailed)
		}
		return body, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return doc, raw, nil
}

func (l *Loader) executeRequest(ctx context.Context, sourceURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, crerr.Wrap(err, "build request")
	}
	req.Header.Set("accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, crerr.Mark(crerr.Newf("send request: %s", sanitizeError(err, sourceURL)), errFetchFailed)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBodyBytes+1))
	if err != nil {
		return nil, crerr.Mark(crerr.Wrap(err, "read response body"), errFetchFailed)
	}
	if int64(len(raw)) > l.maxBodyBytes {
		return nil, crerr.Mark(crerr.Newf("response body exceeds %d bytes", l.maxBodyBytes), errFetchFailed)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, crerr.Mark(crerr.Newf("stats api status=%d body=%s", resp.StatusCode, abbreviateBody(raw)), errFetchFailed)
	}
	return raw, nil
}

func decodeDocument(raw []byte, doc *map[string]any) error {
	if err := documentAPI.Unmarshal(raw, doc); err != nil {
		return crerr.Wrap(err, "decode season document")
	}
	if *doc == nil {
		return crerr.New("season document is not an object")
	}
	return nil
}

func readSnapshot(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if crerr.Is(err, fs.ErrNotExist) {
			return nil, crerr.Newf("no snapshot at %s", path)
		}
		return nil, crerr.Wrap(err, "read snapshot")
	}
	var doc map[string]any
	if err := decodeDocument(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// writeFileAtomic replaces path with data through a temp file in the same directory.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return crerr.Wrap(err, "create snapshot dir")
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return crerr.Wrap(err, "create temp snapshot")
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return crerr.Wrap(err, "write temp snapshot")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return crerr.Wrap(err, "sync temp snapshot")
	}
	if err := tmp.Close(); err != nil {
		return crerr.Wrap(err, "close temp snapshot")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return crerr.Wrap(err, "replace snapshot")
	}
	return nil
}

var sensitiveParams = []string{"token", "key", "secret", "signature"}

// redactURL masks credential-looking query parameters.
func redactURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "invalid-url"
	}
	query := u.Query()
	for name := range query {
		lower := strings.ToLower(name)
		for _, marker := range sensitiveParams {
			if strings.Contains(lower, marker) {
				query.Set(name, "REDACTED")
				break
			}
		}
	}
	u.RawQuery = query.Encode()
	u.User = nil
	return u.String()
}

func sanitizeError(err error, sourceURL string) string {
	msg := err.Error()
	if sourceURL != "" {
		msg = strings.ReplaceAll(msg, sourceURL, redactURL(sourceURL))
	}
	return msg
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	text := strings.TrimSpace(string(raw))
	if len(text) <= limit {
		return text
	}
	return fmt.Sprintf("%s...(%d bytes)", text[:limit], len(raw))
}
