package usecase

import (
	"testing"

	"github.com/riskibarqy/sportunion-stats/internal/domain/stats"
)

func int64p(v int64) *int64 { return &v }

func TestBuildSeason_PlayerStatsCountsGoalsPerRosterPlayer(t *testing.T) {
	t.Parallel()

	svc := NewSeasonService(nil, nil)
	tables := svc.BuildSeason("25/26", ParseDocument(map[string]any{
		"response": map[string]any{
			"players": []any{
				map[string]any{"baseObjectId": float64(1), "name": "A"},
			},
			"matchStatistics": []any{
				map[string]any{"playerId": float64(1), "score": float64(1)},
				map[string]any{"playerId": float64(1), "score": float64(1)},
			},
		},
	}))

	if len(tables.PlayerStats) != 1 {
		t.Fatalf("expected 1 player row, got %d", len(tables.PlayerStats))
	}
	row := tables.PlayerStats[0]
	if row.Goals != 2 || row.Assists != 0 || row.OwnGoals != 0 {
		t.Fatalf("unexpected counts: %+v", row)
	}
	if row.Season != "25/26" || row.PlayerID == nil || *row.PlayerID != 1 || row.Name != "A" {
		t.Fatalf("unexpected identity: %+v", row)
	}
}

func TestBuildSeason_RosterCompletenessWithoutEvents(t *testing.T) {
	t.Parallel()

	doc := SeasonDocument{
		Players: []any{
			map[string]any{"baseObjectId": float64(1), "name": "A"},
			map[string]any{"baseObjectId": float64(2), "name": "B", "excludeFromStatistics": true},
			map[string]any{"baseObjectId": float64(3)},
			map[string]any{"name": "no id"},
		},
		MatchStatistics: []any{
			map[string]any{"player_id": float64(2), "isGoal": true, "isAssist": "1"},
			map[string]any{"player_id": float64(99), "isGoal": float64(1)},
		},
	}

	tables := NewSeasonService(nil, nil).BuildSeason("24/25", doc)
	if len(tables.PlayerStats) != 4 {
		t.Fatalf("expected one row per roster entry, got %d", len(tables.PlayerStats))
	}
	top := tables.PlayerStats[0]
	if top.PlayerID == nil || *top.PlayerID != 2 || top.Goals != 1 || top.Assists != 1 || !top.ExcludeFromStatistics {
		t.Fatalf("unexpected top row: %+v", top)
	}
	for _, row := range tables.PlayerStats[1:] {
		if row.Goals != 0 || row.Assists != 0 || row.OwnGoals != 0 || row.MatchesPlayed != 0 {
			t.Fatalf("expected zero-filled row, got %+v", row)
		}
	}
	if tables.PlayerStats[3].Name != "no id" || tables.PlayerStats[3].PlayerID != nil {
		t.Fatalf("expected roster order kept for ties, got %+v", tables.PlayerStats[3])
	}
}

func TestBuildSeason_MissingFlagAliasesCountAsZero(t *testing.T) {
	t.Parallel()

	doc := SeasonDocument{
		Players:         []any{map[string]any{"baseObjectId": float64(7), "name": "G"}},
		MatchStatistics: []any{map[string]any{"playerID": float64(7), "Assist": "x", "OwnGoal": float64(1)}},
	}
	row := NewSeasonService(nil, nil).BuildSeason("25/26", doc).PlayerStats[0]
	if row.Goals != 0 || row.Assists != 0 || row.OwnGoals != 1 {
		t.Fatalf("unexpected counts: %+v", row)
	}
}

func TestBuildSeason_OrdersByGoalsThenAssists(t *testing.T) {
	t.Parallel()

	doc := SeasonDocument{
		Players: []any{
			map[string]any{"baseObjectId": float64(1), "name": "one"},
			map[string]any{"baseObjectId": float64(2), "name": "two"},
			map[string]any{"baseObjectId": float64(3), "name": "three"},
		},
		MatchStatistics: []any{
			map[string]any{"playerId": float64(1), "score": float64(1)},
			map[string]any{"playerId": float64(2), "score": float64(1), "assist": float64(1)},
			map[string]any{"playerId": float64(3), "score": float64(1)},
			map[string]any{"playerId": float64(3), "score": float64(1)},
		},
	}
	rows := NewSeasonService(nil, nil).BuildSeason("25/26", doc).PlayerStats
	got := []string{rows[0].Name, rows[1].Name, rows[2].Name}
	want := []string{"three", "two", "one"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order: %v", got)
		}
	}
}

func TestBuildSeason_MatchesPlayedCountsDistinctMatches(t *testing.T) {
	t.Parallel()

	doc := SeasonDocument{
		Players: []any{map[string]any{"baseObjectId": float64(5), "name": "P"}},
		PlayerHistory: []any{
			map[string]any{"playerId": float64(5), "soccerMatchId": float64(100)},
			map[string]any{"playerId": float64(5), "soccerMatchId": float64(100), "itemEventId": "e9"},
			map[string]any{"playerId": float64(5), "soccerMatchId": float64(0), "itemEventId": "e1"},
			map[string]any{"playerId": float64(5), "itemEventId": "e1"},
			map[string]any{"playerId": float64(5)},
		},
	}
	row := NewSeasonService(nil, nil).BuildSeason("25/26", doc).PlayerStats[0]
	if row.MatchesPlayed != 2 {
		t.Fatalf("expected 2 distinct matches, got %d", row.MatchesPlayed)
	}
}

func TestBuildSeason_CompositeKeyCollapsesSnapshots(t *testing.T) {
	t.Parallel()

	snapshot := func(home float64) map[string]any {
		return map[string]any{
			"soccerMatchId": float64(0),
			"itemEventId":   "e1",
			"teamHomeId":    float64(10),
			"teamAwayId":    float64(20),
			"itemEventDate": "2024-01-01",
			"scoreTeamHome": home,
		}
	}
	tables := NewSeasonService(nil, nil).BuildSeason("25/26", SeasonDocument{
		ScoreStatistics: []any{snapshot(1), snapshot(2)},
	})

	if len(tables.Matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(tables.Matches))
	}
	m := tables.Matches[0]
	if m.MatchKey != "iee1_h10_a20_d2024-01-01" {
		t.Fatalf("unexpected match key %q", m.MatchKey)
	}
	if m.HomeScore == nil || *m.HomeScore != 2 {
		t.Fatalf("expected home score 2, got %v", m.HomeScore)
	}
	if m.AwayScore != nil {
		t.Fatalf("expected null away score, got %v", *m.AwayScore)
	}
}

func TestAggregateMatches_FinalScoreIsMaxNotLast(t *testing.T) {
	t.Parallel()

	records := make([]scoreRecord, 0, 5)
	for _, v := range []float64{1, 2, 3, 2} {
		v := v
		records = append(records, scoreRecord{MatchKey: "s1", ScoreHome: &v})
	}
	records = append(records, scoreRecord{MatchKey: "s1"})

	got := aggregateMatches("25/26", records)
	if len(got) != 1 || got[0].HomeScore == nil || *got[0].HomeScore != 3 {
		t.Fatalf("expected home score 3, got %+v", got)
	}
}

func TestAggregateMatches_RepresentativeIsEarliestDated(t *testing.T) {
	t.Parallel()

	records := []scoreRecord{
		{MatchKey: "s9", TeamHome: "undated"},
		{MatchKey: "s9", ItemEventDate: "2024-02-02", TeamHome: "late"},
		{MatchKey: "s9", ItemEventDate: "2024-02-01", TeamHome: "early"},
		{MatchKey: "s9", ItemEventDate: "2024-02-01", TeamHome: "early-tie"},
		{MatchKey: "s1", ItemEventDate: "2024-01-01", TeamHome: "first"},
	}
	got := aggregateMatches("25/26", records)
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].MatchKey != "s1" || got[1].TeamHome != "early" {
		t.Fatalf("unexpected matches: %+v", got)
	}
}

func TestBuildSeason_ScoringEventsRequireScorerOrOwnGoal(t *testing.T) {
	t.Parallel()

	doc := SeasonDocument{
		Players: []any{
			map[string]any{"baseObjectId": float64(1), "name": "Scorer"},
			map[string]any{"baseObjectId": float64(2), "name": "Helper"},
			map[string]any{"baseObjectId": float64(3), "name": "Unlucky"},
		},
		ScoreStatistics: []any{
			map[string]any{"soccerMatchId": float64(500), "scoreById": float64(1), "assistById": float64(2), "scoreTime": "12'"},
			map[string]any{"soccerMatchId": float64(500), "ownGoalById": float64(3)},
			map[string]any{"soccerMatchId": float64(500), "scoreTeamHome": float64(2)},
			map[string]any{"soccerMatchId": float64(500), "scoreById": float64(404), "assistById": float64(1)},
		},
	}
	events := NewSeasonService(nil, nil).BuildSeason("25/26", doc).ScoringEvents
	if len(events) != 2 {
		t.Fatalf("expected 2 scoring events, got %d: %+v", len(events), events)
	}

	goal := events[0]
	if goal.MatchKey != "s500" || goal.ScorerName != "Scorer" || goal.AssistName != "Helper" || goal.ScoreTime != "12'" {
		t.Fatalf("unexpected goal event: %+v", goal)
	}
	own := events[1]
	if own.ScorerID != nil || own.OwnGoalByID == nil || *own.OwnGoalByID != 3 || own.OwnGoalByName != "Unlucky" {
		t.Fatalf("unexpected own goal event: %+v", own)
	}
	for _, ev := range events {
		if ev.ScorerID == nil && ev.OwnGoalByID == nil {
			t.Fatalf("event without scorer or own goal identity: %+v", ev)
		}
	}
}

func TestParseDocument_TopLevelFallbackAndMalformedLists(t *testing.T) {
	t.Parallel()

	doc := ParseDocument(map[string]any{
		"players":         []any{map[string]any{"baseObjectId": float64(1)}},
		"matchStatistics": "not a list",
	})
	if len(doc.Players) != 1 {
		t.Fatalf("expected players from top level, got %d", len(doc.Players))
	}
	if doc.MatchStatistics != nil || doc.PlayerHistory != nil || doc.ScoreStatistics != nil {
		t.Fatalf("expected empty lists, got %+v", doc)
	}

	empty := NewSeasonService(nil, nil).BuildSeason("x", doc)
	if len(empty.Matches) != 0 || len(empty.ScoringEvents) != 0 {
		t.Fatalf("expected no derived rows, got %+v", empty)
	}
	if len(empty.PlayerStats) != 1 {
		t.Fatalf("expected roster row, got %d", len(empty.PlayerStats))
	}
}

func TestDeriveMatchKey(t *testing.T) {
	t.Parallel()

	base := MatchIdentity{ItemEventID: "e1", TeamHomeID: "10", TeamAwayID: "20", ItemEventDate: "2024-01-01"}

	a := DeriveMatchKey(MatchIdentity{SoccerMatchID: int64p(77), ItemEventID: "x", TeamHomeID: "1"})
	b := DeriveMatchKey(MatchIdentity{SoccerMatchID: int64p(77), ItemEventDate: "2030-01-01"})
	if a != "s77" || a != b {
		t.Fatalf("soccer id keys must ignore other fields: %q vs %q", a, b)
	}

	zero := base
	zero.SoccerMatchID = int64p(0)
	if DeriveMatchKey(zero) != DeriveMatchKey(base) {
		t.Fatalf("zero and absent soccer id must share the composite key")
	}

	variants := []MatchIdentity{base, base, base, base}
	variants[0].ItemEventID = "e2"
	variants[1].TeamHomeID = "11"
	variants[2].TeamAwayID = "21"
	variants[3].ItemEventDate = "2024-01-02"
	for i, v := range variants {
		if DeriveMatchKey(v) == DeriveMatchKey(base) {
			t.Fatalf("variant %d must change the key", i)
		}
	}
}

func TestCombined_ApplyFiltersSeasonAndExcludeFlag(t *testing.T) {
	t.Parallel()

	combined := stats.Combined{
		PlayerStats: []stats.PlayerStats{
			{Season: "24/25", Name: "a"},
			{Season: "25/26", Name: "b", ExcludeFromStatistics: true},
			{Season: "25/26", Name: "c"},
		},
		Matches: []stats.Match{{Season: "24/25"}, {Season: "25/26"}},
	}
	got := combined.Apply(stats.Filter{Seasons: []string{"25/26"}, ExcludeFlagged: true})
	if len(got.PlayerStats) != 1 || got.PlayerStats[0].Name != "c" {
		t.Fatalf("unexpected player rows: %+v", got.PlayerStats)
	}
	if len(got.Matches) != 1 {
		t.Fatalf("unexpected match rows: %+v", got.Matches)
	}
}
