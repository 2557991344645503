package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/sportunion-stats/internal/domain/stats"
	"github.com/riskibarqy/sportunion-stats/internal/platform/logging"
	"github.com/riskibarqy/sportunion-stats/internal/usecase"
)

// StatsService is the usecase port the handlers read from.
type StatsService interface {
	Tables(ctx context.Context, filter stats.Filter) (stats.Combined, error)
	Payload(ctx context.Context, filter stats.Filter, maxChars int) (usecase.Payload, error)
	Refresh(ctx context.Context) (stats.Combined, error)
	SeasonCounts(ctx context.Context) ([]stats.SeasonCount, error)
}

type Handler struct {
	statsService StatsService
	logger       *logging.Logger
	validator    *validator.Validate
}

func NewHandler(statsService StatsService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		statsService: statsService,
		logger:       logger.Named("httpapi"),
		validator:    validator.New(),
	}
}

type tableQuery struct {
	Seasons  []string `validate:"max=16,dive,required,max=32"`
	Exclude  bool
	MaxChars int `validate:"omitempty,min=100,max=10000000"`
}

func (q tableQuery) filter() stats.Filter {
	return stats.Filter{Seasons: q.Seasons, ExcludeFlagged: q.Exclude}
}

// parseTableQuery accepts repeated or comma separated season params.
func (h *Handler) parseTableQuery(r *http.Request) (tableQuery, error) {
	values := r.URL.Query()

	var q tableQuery
	for _, raw := range values["season"] {
		for _, part := range strings.Split(raw, ",") {
			if label := strings.TrimSpace(part); label != "" {
				q.Seasons = append(q.Seasons, label)
			}
		}
	}

	if raw := strings.TrimSpace(values.Get("exclude")); raw != "" {
		exclude, err := strconv.ParseBool(raw)
		if err != nil {
			return tableQuery{}, crerr.Wrapf(usecase.ErrInvalidInput, "exclude must be a boolean, got %q", raw)
		}
		q.Exclude = exclude
	}

	if raw := strings.TrimSpace(values.Get("max_chars")); raw != "" {
		maxChars, err := strconv.Atoi(raw)
		if err != nil {
			return tableQuery{}, crerr.Wrapf(usecase.ErrInvalidInput, "max_chars must be an integer, got %q", raw)
		}
		q.MaxChars = maxChars
	}

	if err := h.validator.Struct(q); err != nil {
		return tableQuery{}, crerr.Wrapf(usecase.ErrInvalidInput, "invalid query: %v", err)
	}
	return q, nil
}

type listResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func newListResponse[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Items: items, Count: len(items)}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListSeasons(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSeasons")
	defer span.End()

	combined, err := h.statsService.Tables(ctx, stats.Filter{})
	if err != nil {
		h.logger.ErrorContext(ctx, "list seasons failed", "error", err)
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, newListResponse(combined.Seasons))
}

func (h *Handler) ListPlayerStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayerStats")
	defer span.End()

	combined, ok := h.tables(ctx, w, r)
	if !ok {
		return
	}
	writeSuccess(w, http.StatusOK, newListResponse(combined.PlayerStats))
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	combined, ok := h.tables(ctx, w, r)
	if !ok {
		return
	}
	writeSuccess(w, http.StatusOK, newListResponse(combined.Matches))
}

func (h *Handler) ListScoringEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListScoringEvents")
	defer span.End()

	combined, ok := h.tables(ctx, w, r)
	if !ok {
		return
	}
	writeSuccess(w, http.StatusOK, newListResponse(combined.ScoringEvents))
}

func (h *Handler) tables(ctx context.Context, w http.ResponseWriter, r *http.Request) (stats.Combined, bool) {
	q, err := h.parseTableQuery(r)
	if err != nil {
		writeError(w, err)
		return stats.Combined{}, false
	}

	combined, err := h.statsService.Tables(ctx, q.filter())
	if err != nil {
		h.logger.WarnContext(ctx, "read season tables failed", "seasons", q.Seasons, "error", err)
		writeError(w, err)
		return stats.Combined{}, false
	}
	return combined, true
}

func (h *Handler) GetPayload(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPayload")
	defer span.End()

	q, err := h.parseTableQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	payload, err := h.statsService.Payload(ctx, q.filter(), q.MaxChars)
	if err != nil {
		h.logger.WarnContext(ctx, "build payload failed", "seasons", q.Seasons, "error", err)
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, payload)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Refresh")
	defer span.End()

	combined, err := h.statsService.Refresh(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "refresh failed", "error", err)
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, newListResponse(combined.Seasons))
}

func (h *Handler) ListPersistedSeasons(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPersistedSeasons")
	defer span.End()

	counts, err := h.statsService.SeasonCounts(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list persisted seasons failed", "error", err)
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, newListResponse(counts))
}
