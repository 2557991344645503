package usecase

import (
	"sort"

	"github.com/riskibarqy/sportunion-stats/internal/domain/stats"
)

type playerTotals struct {
	goals, assists, ownGoals float64
	matches                  map[string]struct{}
}

// aggregatePlayerStats left-joins per-player totals onto the roster, so every
// roster entry yields exactly one row. Rows are ordered by goals then assists,
// both descending, with ties kept in roster order.
func aggregatePlayerStats(season string, in seasonInput) []stats.PlayerStats {
	totals := make(map[int64]*playerTotals)
	get := func(id int64) *playerTotals {
		t, ok := totals[id]
		if !ok {
			t = &playerTotals{matches: make(map[string]struct{})}
			totals[id] = t
		}
		return t
	}

	for _, rec := range in.Stats {
		if rec.PlayerID == nil {
			continue
		}
		t := get(*rec.PlayerID)
		t.goals += rec.Goal
		t.assists += rec.Assist
		t.ownGoals += rec.OwnGoal
	}
	for _, p := range in.History {
		if p.PlayerID == nil || p.MatchID == "" {
			continue
		}
		get(*p.PlayerID).matches[p.MatchID] = struct{}{}
	}

	out := make([]stats.PlayerStats, 0, len(in.Roster))
	for _, player := range in.Roster {
		row := stats.PlayerStats{
			Season:                season,
			PlayerID:              player.PlayerID,
			Name:                  player.Name,
			ExcludeFromStatistics: player.ExcludeFromStatistics,
		}
		if player.PlayerID != nil {
			if t, ok := totals[*player.PlayerID]; ok {
				row.Goals = roundCount(t.goals)
				row.Assists = roundCount(t.assists)
				row.OwnGoals = roundCount(t.ownGoals)
				row.MatchesPlayed = len(t.matches)
			}
		}
		out = append(out, row)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Goals != out[j].Goals {
			return out[i].Goals > out[j].Goals
		}
		return out[i].Assists > out[j].Assists
	})
	return out
}
