// Package export writes the combined season tables to JSON files.
package export

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/sportunion-stats/internal/domain/stats"
	"github.com/riskibarqy/sportunion-stats/internal/platform/logging"
)

const (
	PlayerStatsFile   = "player_stats.json"
	MatchesFile       = "matches.json"
	ScoringEventsFile = "scoring_events.json"
	SeasonsFile       = "seasons.json"
)

var jsonAPI = sonic.Config{EscapeHTML: false, SortMapKeys: true}.Froze()

type FileResult struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Rows  int    `json:"rows"`
	Bytes int    `json:"bytes"`
}

type Writer struct {
	dir     string
	workers int
	logger  *logging.Logger
}

func NewWriter(dir string, workers int, logger *logging.Logger) *Writer {
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Writer{dir: dir, workers: workers, logger: logger.Named("export")}
}

type exportTask struct {
	name string
	rows int
	data any
}

// Write stores every table of combined under the writer directory. Files are
// replaced atomically; a failed table leaves its previous file in place.
func (w *Writer) Write(ctx context.Context, combined stats.Combined) ([]FileResult, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, crerr.Wrapf(err, "create export dir %s", w.dir)
	}

	tasks := []exportTask{
		{name: PlayerStatsFile, rows: len(combined.PlayerStats), data: nonNil(combined.PlayerStats)},
		{name: MatchesFile, rows: len(combined.Matches), data: nonNil(combined.Matches)},
		{name: ScoringEventsFile, rows: len(combined.ScoringEvents), data: nonNil(combined.ScoringEvents)},
		{name: SeasonsFile, rows: len(combined.Seasons), data: nonNil(combined.Seasons)},
	}

	pool, err := ants.NewPool(w.workers)
	if err != nil {
		return nil, crerr.Wrap(err, "create export worker pool")
	}
	defer pool.Release()

	var (
		mu      sync.Mutex
		results = make([]FileResult, 0, len(tasks))
		errs    error
		workers sync.WaitGroup
	)
	for _, task := range tasks {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			result, err := w.writeTable(ctx, task)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = crerr.CombineErrors(errs, err)
				return
			}
			results = append(results, result)
		}); err != nil {
			workers.Done()
			return nil, crerr.Wrap(err, "submit export task")
		}
	}
	workers.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	if errs != nil {
		return results, errs
	}

	w.logger.InfoContext(ctx, "export written", "dir", w.dir, "files", len(results))
	return results, nil
}

func (w *Writer) writeTable(ctx context.Context, task exportTask) (FileResult, error) {
	if err := ctx.Err(); err != nil {
		return FileResult{}, crerr.Wrapf(err, "export %s", task.name)
	}

	body, err := jsonAPI.MarshalIndent(task.data, "", "  ")
	if err != nil {
		return FileResult{}, crerr.Wrapf(err, "encode %s", task.name)
	}

	path := filepath.Join(w.dir, task.name)
	if err := writeFileAtomic(path, body); err != nil {
		return FileResult{}, err
	}

	w.logger.DebugContext(ctx, "export table written", "file", task.name, "rows", task.rows, "bytes", len(body))
	return FileResult{Name: task.name, Path: path, Rows: task.rows, Bytes: len(body)}, nil
}

func writeFileAtomic(path string, body []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return crerr.Wrapf(err, "create temp file for %s", path)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		return crerr.Wrapf(err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return crerr.Wrapf(err, "close %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return crerr.Wrapf(err, "replace %s", path)
	}
	return nil
}

// nonNil keeps empty tables encoded as [] instead of null.
func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
