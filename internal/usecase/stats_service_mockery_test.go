package usecase

import (
	"context"
	"errors"
	"testing"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/sportunion-stats/internal/domain/stats"
	statsmock "github.com/riskibarqy/sportunion-stats/internal/mocks/domain/stats"
	"github.com/stretchr/testify/mock"
)

func TestStatsService_Persist_StopsAtFirstFailureUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := statsmock.NewRepository(t)
	service := NewStatsService(&recordingRunner{}, StatsServiceConfig{Seasons: testSeasons, Repository: repo})

	repo.
		On("ReplaceSeason", mock.Anything, mock.MatchedBy(func(v stats.SeasonTables) bool { return v.Season == "24/25" })).
		Return(errors.New("connection reset")).
		Once()

	persisted, err := service.Persist(ctx, twoSeasonCombined())
	if err == nil {
		t.Fatalf("expected persist error")
	}
	if persisted != 0 {
		t.Fatalf("unexpected persisted count: %d", persisted)
	}
}

func TestStatsService_SeasonCounts_MarksRepositoryFailureUsingMockery(t *testing.T) {
	t.Parallel()

	repo := statsmock.NewRepository(t)
	service := NewStatsService(&recordingRunner{}, StatsServiceConfig{Seasons: testSeasons, Repository: repo})

	repo.
		On("ListSeasonCounts", mock.Anything).
		Return(nil, errors.New("relation season_matches does not exist")).
		Once()

	_, err := service.SeasonCounts(context.Background())
	if !crerr.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable, got %v", err)
	}
}

func TestStatsService_SeasonCounts_ReturnsRowsUsingMockery(t *testing.T) {
	t.Parallel()

	repo := statsmock.NewRepository(t)
	service := NewStatsService(&recordingRunner{}, StatsServiceConfig{Seasons: testSeasons, Repository: repo})

	want := []stats.SeasonCount{{Season: "25/26", PlayerStats: 20, Matches: 12, Events: 31}}
	repo.On("ListSeasonCounts", mock.Anything).Return(want, nil).Once()

	got, err := service.SeasonCounts(context.Background())
	if err != nil {
		t.Fatalf("season counts: %v", err)
	}
	if len(got) != 1 || got[0].Events != 31 {
		t.Fatalf("unexpected counts: %+v", got)
	}
}
