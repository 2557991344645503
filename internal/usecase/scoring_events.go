package usecase

import (
	"github.com/riskibarqy/sportunion-stats/internal/domain/stats"
)

type rosterIndex map[int64]stats.Player

func indexRoster(roster []stats.Player) rosterIndex {
	idx := make(rosterIndex, len(roster))
	for _, p := range roster {
		if p.PlayerID == nil {
			continue
		}
		if _, exists := idx[*p.PlayerID]; !exists {
			idx[*p.PlayerID] = p
		}
	}
	return idx
}

// lookup returns the roster id and name for id, or nil when the player is not on the roster.
func (r rosterIndex) lookup(id *int64) (*int64, string) {
	if id == nil {
		return nil, ""
	}
	p, ok := r[*id]
	if !ok {
		return nil, ""
	}
	v := *p.PlayerID
	return &v, p.Name
}

// extractScoringEvents keeps score records whose scorer or own-goal player
// resolves against the roster.
func extractScoringEvents(season string, records []scoreRecord, roster []stats.Player) []stats.ScoringEvent {
	idx := indexRoster(roster)
	out := make([]stats.ScoringEvent, 0)
	for _, rec := range records {
		scorerID, scorerName := idx.lookup(rec.ScorerID)
		ownGoalID, ownGoalName := idx.lookup(rec.OwnGoalByID)
		if scorerID == nil && ownGoalID == nil {
			continue
		}
		assistID, assistName := idx.lookup(rec.AssistID)
		out = append(out, stats.ScoringEvent{
			Season:        season,
			MatchKey:      rec.MatchKey,
			ItemEventDate: rec.ItemEventDate,
			ScoreTime:     rec.ScoreTime,
			TeamHome:      rec.TeamHome,
			TeamAway:      rec.TeamAway,
			ScoreTeamID:   rec.ScoreTeamID,
			ScoreTeamHome: finalScore(rec.ScoreHome),
			ScoreTeamAway: finalScore(rec.ScoreAway),
			ScorerID:      scorerID,
			ScorerName:    scorerName,
			AssistID:      assistID,
			AssistName:    assistName,
			OwnGoalByID:   ownGoalID,
			OwnGoalByName: ownGoalName,
		})
	}
	return out
}
