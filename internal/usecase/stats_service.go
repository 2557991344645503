package usecase

import (
	"context"
	"strconv"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/sportunion-stats/internal/domain/season"
	"github.com/riskibarqy/sportunion-stats/internal/domain/stats"
	"github.com/riskibarqy/sportunion-stats/internal/platform/cache"
	idgen "github.com/riskibarqy/sportunion-stats/internal/platform/id"
	"github.com/riskibarqy/sportunion-stats/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const runMemoPrefix = "run:"

// SeasonRunner runs the pipeline for a fixed list of seasons.
type SeasonRunner interface {
	Run(ctx context.Context, configs []season.Config) stats.Combined
}

type StatsServiceConfig struct {
	Seasons         []season.Config
	PayloadMaxChars int
	// Repository is optional; without it Persist and SeasonCounts report ErrDependencyUnavailable.
	Repository stats.Repository
	Memo       *cache.Store[stats.Combined]
	RunIDs     idgen.Generator
	Logger     *logging.Logger
}

// StatsService serves memoized pipeline runs to the API and the CLI.
type StatsService struct {
	runner          SeasonRunner
	seasons         []season.Config
	payloadMaxChars int
	repo            stats.Repository
	memo            *cache.Store[stats.Combined]
	runIDs          idgen.Generator
	logger          *logging.Logger
}

func NewStatsService(runner SeasonRunner, cfg StatsServiceConfig) *StatsService {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	memo := cfg.Memo
	if memo == nil {
		memo = cache.NewStore[stats.Combined](0)
	}
	runIDs := cfg.RunIDs
	if runIDs == nil {
		runIDs = idgen.NewRandomGenerator()
	}
	maxChars := cfg.PayloadMaxChars
	if maxChars <= 0 {
		maxChars = DefaultPayloadMaxChars
	}
	return &StatsService{
		runner:          runner,
		seasons:         append([]season.Config(nil), cfg.Seasons...),
		payloadMaxChars: maxChars,
		repo:            cfg.Repository,
		memo:            memo,
		runIDs:          runIDs,
		logger:          logger.Named("stats"),
	}
}

func runMemoKey(fetch bool) string {
	return runMemoPrefix + "fetch=" + strconv.FormatBool(fetch)
}

// Current returns the memoized cache-only run, running it on first use.
func (s *StatsService) Current(ctx context.Context) (stats.Combined, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.Current")
	defer span.End()

	return s.memo.GetOrLoad(ctx, runMemoKey(false), func(ctx context.Context) (stats.Combined, error) {
		return s.run(ctx, false)
	})
}

func (s *StatsService) run(ctx context.Context, fetch bool) (stats.Combined, error) {
	runID, err := s.runIDs.NewID()
	if err != nil {
		return stats.Combined{}, crerr.Wrap(err, "generate run id")
	}

	combined := s.runner.Run(ctx, season.WithFetchAll(s.seasons, fetch))
	combined.RunID = runID
	s.logger.InfoContext(ctx, "stats run completed",
		"run_id", runID,
		"fetch", fetch,
		"loaded_seasons", combined.SeasonLabels(),
		"player_stats", len(combined.PlayerStats),
		"matches", len(combined.Matches),
		"scoring_events", len(combined.ScoringEvents),
	)
	return combined, nil
}

// Refresh drops every memoized run and reruns with network fetch allowed for
// refreshable seasons. Fetched documents replace their cache snapshots, so the
// result also serves later cache-only reads.
func (s *StatsService) Refresh(ctx context.Context) (stats.Combined, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.Refresh")
	defer span.End()

	s.memo.DeletePrefix(ctx, runMemoPrefix)
	combined, err := s.memo.GetOrLoad(ctx, runMemoKey(true), func(ctx context.Context) (stats.Combined, error) {
		return s.run(ctx, true)
	})
	if err != nil {
		return stats.Combined{}, err
	}
	s.memo.Set(ctx, runMemoKey(false), combined)

	fetched := 0
	for _, report := range combined.Seasons {
		if report.Fetched {
			fetched++
		}
	}
	span.SetAttributes(attribute.Int("seasons.fetched", fetched))
	s.logger.InfoContext(ctx, "stats refreshed",
		"run_id", combined.RunID,
		"seasons", len(combined.Seasons),
		"fetched", fetched,
		"refreshable", season.AnyRefreshable(s.seasons),
	)
	return combined, nil
}

// Tables returns the current run narrowed by filter.
func (s *StatsService) Tables(ctx context.Context, filter stats.Filter) (stats.Combined, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.Tables")
	defer span.End()

	if err := s.checkSeasons(filter.Seasons); err != nil {
		return stats.Combined{}, err
	}
	combined, err := s.Current(ctx)
	if err != nil {
		return stats.Combined{}, err
	}
	return combined.Apply(filter), nil
}

// Payload builds the text payload of the current run. maxChars <= 0 uses the configured limit.
func (s *StatsService) Payload(ctx context.Context, filter stats.Filter, maxChars int) (Payload, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.Payload")
	defer span.End()

	if maxChars <= 0 {
		maxChars = s.payloadMaxChars
	}
	combined, err := s.Tables(ctx, filter)
	if err != nil {
		return Payload{}, err
	}
	payload, err := BuildPayload(combined, maxChars)
	if err != nil {
		return Payload{}, err
	}
	span.SetAttributes(
		attribute.Int("payload.chars", payload.Chars),
		attribute.Bool("payload.truncated", payload.Truncated),
	)
	return payload, nil
}

// Persist replaces the stored rows of every loaded season. Seasons that were
// skipped keep whatever the sink already holds.
func (s *StatsService) Persist(ctx context.Context, combined stats.Combined) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.Persist")
	defer span.End()

	if s.repo == nil {
		return 0, crerr.Wrap(ErrDependencyUnavailable, "stats repository is not configured")
	}

	persisted := 0
	for _, report := range combined.Seasons {
		if !report.Loaded {
			continue
		}
		scoped := combined.Apply(stats.Filter{Seasons: []string{report.Season}})
		tables := stats.SeasonTables{
			Season:        report.Season,
			PlayerStats:   scoped.PlayerStats,
			Matches:       scoped.Matches,
			ScoringEvents: scoped.ScoringEvents,
		}
		if err := s.repo.ReplaceSeason(ctx, tables); err != nil {
			return persisted, crerr.Wrapf(err, "persist season %s", report.Season)
		}
		persisted++
		s.logger.InfoContext(ctx, "season persisted",
			"season", report.Season,
			"player_stats", len(tables.PlayerStats),
			"matches", len(tables.Matches),
			"scoring_events", len(tables.ScoringEvents),
		)
	}
	return persisted, nil
}

func (s *StatsService) SeasonCounts(ctx context.Context) ([]stats.SeasonCount, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.SeasonCounts")
	defer span.End()

	if s.repo == nil {
		return nil, crerr.Wrap(ErrDependencyUnavailable, "stats repository is not configured")
	}
	counts, err := s.repo.ListSeasonCounts(ctx)
	if err != nil {
		return nil, crerr.Mark(crerr.Wrap(err, "list persisted season counts"), ErrDependencyUnavailable)
	}
	return counts, nil
}

func (s *StatsService) checkSeasons(labels []string) error {
	for _, label := range labels {
		known := false
		for _, cfg := range s.seasons {
			if cfg.Label == label {
				known = true
				break
			}
		}
		if !known {
			return crerr.Wrapf(ErrNotFound, "season %q is not configured", label)
		}
	}
	return nil
}
