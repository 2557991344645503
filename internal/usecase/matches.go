package usecase

import (
	"sort"

	"github.com/riskibarqy/sportunion-stats/internal/domain/stats"
)

type matchGroup struct {
	first int
	rep   scoreRecord
	home  *float64
	away  *float64
}

// aggregateMatches collapses score snapshots into one row per match key.
// Descriptive fields come from the earliest dated snapshot; the final score
// per side is the maximum numeric value seen.
func aggregateMatches(season string, records []scoreRecord) []stats.Match {
	groups := make(map[string]*matchGroup)
	order := make([]string, 0)

	for i, rec := range records {
		g, ok := groups[rec.MatchKey]
		if !ok {
			g = &matchGroup{first: i, rep: rec}
			groups[rec.MatchKey] = g
			order = append(order, rec.MatchKey)
		} else if dateBefore(rec.ItemEventDate, g.rep.ItemEventDate) {
			g.rep = rec
		}
		g.home = maxScore(g.home, rec.ScoreHome)
		g.away = maxScore(g.away, rec.ScoreAway)
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := groups[order[i]], groups[order[j]]
		if a.rep.ItemEventDate != b.rep.ItemEventDate {
			return dateBefore(a.rep.ItemEventDate, b.rep.ItemEventDate)
		}
		return a.first < b.first
	})

	out := make([]stats.Match, 0, len(order))
	for _, key := range order {
		g := groups[key]
		out = append(out, stats.Match{
			Season:        season,
			MatchKey:      key,
			SoccerMatchID: g.rep.SoccerMatchID,
			ItemEventID:   g.rep.ItemEventID,
			ItemEventDate: g.rep.ItemEventDate,
			TeamHome:      g.rep.TeamHome,
			TeamAway:      g.rep.TeamAway,
			TeamHomeID:    g.rep.TeamHomeID,
			TeamAwayID:    g.rep.TeamAwayID,
			HomeScore:     finalScore(g.home),
			AwayScore:     finalScore(g.away),
		})
	}
	return out
}

// dateBefore orders event dates lexically with empty dates last.
func dateBefore(a, b string) bool {
	switch {
	case a == b:
		return false
	case a == "":
		return false
	case b == "":
		return true
	default:
		return a < b
	}
}

func maxScore(current, candidate *float64) *float64 {
	if candidate == nil {
		return current
	}
	if current == nil || *candidate > *current {
		v := *candidate
		return &v
	}
	return current
}

func finalScore(v *float64) *int64 {
	if v == nil {
		return nil
	}
	out := int64(*v)
	return &out
}
