package usecase

import (
	"context"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/sportunion-stats/internal/domain/season"
	"github.com/riskibarqy/sportunion-stats/internal/domain/stats"
	"github.com/riskibarqy/sportunion-stats/internal/platform/logging"
	"github.com/riskibarqy/sportunion-stats/internal/platform/table"
	"github.com/sourcegraph/conc/panics"
	"go.opentelemetry.io/otel/attribute"
)

// SourceDocument is a decoded season document and whether it came from the network.
type SourceDocument struct {
	Body    map[string]any
	Fetched bool
}

// SourceLoader returns a season document. Errors marked ErrSourceUnavailable mean
// the season has nothing to contribute.
type SourceLoader interface {
	Load(ctx context.Context, cfg season.Config) (SourceDocument, error)
}

type SeasonService struct {
	loader  SourceLoader
	aliases FieldAliases
	logger  *logging.Logger
}

func NewSeasonService(loader SourceLoader, logger *logging.Logger) *SeasonService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SeasonService{
		loader:  loader,
		aliases: FieldAliasesV1,
		logger:  logger.Named("season"),
	}
}

// Run processes seasons one after another and concatenates their tables.
// A season that cannot be loaded, is misconfigured, or fails mid-pipeline
// contributes no rows; it never stops the other seasons.
func (s *SeasonService) Run(ctx context.Context, configs []season.Config) stats.Combined {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.Run")
	defer span.End()

	combined := stats.Combined{
		PlayerStats:   make([]stats.PlayerStats, 0),
		Matches:       make([]stats.Match, 0),
		ScoringEvents: make([]stats.ScoringEvent, 0),
		Seasons:       make([]stats.SeasonReport, 0, len(configs)),
	}
	seen := make(map[string]struct{}, len(configs))
	for _, cfg := range configs {
		label := strings.TrimSpace(cfg.Label)
		if _, dup := seen[label]; dup {
			combined.Seasons = append(combined.Seasons, s.skip(ctx, label, crerr.Wrapf(ErrInvalidInput, "duplicate season label %q", label)))
			continue
		}
		seen[label] = struct{}{}

		if err := cfg.Validate(); err != nil {
			combined.Seasons = append(combined.Seasons, s.skip(ctx, label, crerr.Mark(err, ErrInvalidInput)))
			continue
		}

		tables, report := s.runSeason(ctx, cfg)
		combined.Seasons = append(combined.Seasons, report)
		if !report.Loaded {
			continue
		}
		combined.PlayerStats = append(combined.PlayerStats, tables.PlayerStats...)
		combined.Matches = append(combined.Matches, tables.Matches...)
		combined.ScoringEvents = append(combined.ScoringEvents, tables.ScoringEvents...)
	}

	span.SetAttributes(
		attribute.Int("seasons.loaded", len(combined.SeasonLabels())),
		attribute.Int("rows.player_stats", len(combined.PlayerStats)),
		attribute.Int("rows.matches", len(combined.Matches)),
	)
	return combined
}

func (s *SeasonService) runSeason(ctx context.Context, cfg season.Config) (stats.SeasonTables, stats.SeasonReport) {
	var (
		tables stats.SeasonTables
		report stats.SeasonReport
		err    error
	)
	var catcher panics.Catcher
	catcher.Try(func() {
		tables, report, err = s.buildSeason(ctx, cfg)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		err = crerr.Wrap(recovered.AsError(), "season pipeline panicked")
	}
	if err != nil {
		return stats.SeasonTables{Season: cfg.Label}, s.skip(ctx, cfg.Label, err)
	}

	s.logger.InfoContext(ctx, "season loaded",
		"season", cfg.Label,
		"fetched", report.Fetched,
		"players", report.Players,
		"matches", report.Matches,
		"scoring_events", report.ScoringEvents,
	)
	return tables, report
}

// BuildSeason runs the table pipeline for one already-loaded document.
func (s *SeasonService) BuildSeason(label string, doc SeasonDocument) stats.SeasonTables {
	in := prepareSeason(doc, s.aliases)
	if len(in.MissingStats) > 0 && len(doc.MatchStatistics) > 0 {
		s.logger.Warn("stat columns missing, counting as zero",
			"season", label,
			"fields", in.MissingStats,
			"observed", table.Observed(doc.MatchStatistics),
			"alias_version", s.aliases.Version,
		)
	}
	return stats.SeasonTables{
		Season:        label,
		PlayerStats:   aggregatePlayerStats(label, in),
		Matches:       aggregateMatches(label, in.Scores),
		ScoringEvents: extractScoringEvents(label, in.Scores, in.Roster),
	}
}

func (s *SeasonService) buildSeason(ctx context.Context, cfg season.Config) (stats.SeasonTables, stats.SeasonReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.buildSeason")
	defer span.End()

	if s.loader == nil {
		return stats.SeasonTables{}, stats.SeasonReport{}, crerr.Mark(crerr.New("no source loader configured"), ErrSourceUnavailable)
	}
	src, err := s.loader.Load(ctx, cfg)
	if err != nil {
		return stats.SeasonTables{}, stats.SeasonReport{}, err
	}

	tables := s.BuildSeason(cfg.Label, ParseDocument(src.Body))
	return tables, stats.SeasonReport{
		Season:        cfg.Label,
		Loaded:        true,
		Fetched:       src.Fetched,
		Players:       len(tables.PlayerStats),
		Matches:       len(tables.Matches),
		ScoringEvents: len(tables.ScoringEvents),
	}, nil
}

func (s *SeasonService) skip(ctx context.Context, label string, err error) stats.SeasonReport {
	reason := "pipeline_failure"
	switch {
	case crerr.Is(err, ErrSourceUnavailable):
		reason = "source_unavailable"
	case crerr.Is(err, ErrInvalidInput):
		reason = "invalid_config"
	}
	s.logger.WarnContext(ctx, "season skipped", "season", label, "reason", reason, "error", err)
	return stats.SeasonReport{Season: label, SkipReason: reason}
}
