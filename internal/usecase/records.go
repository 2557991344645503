package usecase

import (
	"math"

	"github.com/riskibarqy/sportunion-stats/internal/domain/stats"
	"github.com/riskibarqy/sportunion-stats/internal/platform/table"
)

// scoreRecord is one matchScoreStatistics row with its match key already derived.
type scoreRecord struct {
	MatchKey      string
	SoccerMatchID *int64
	ItemEventID   string
	ItemEventDate string
	ScoreTime     string
	TeamHome      string
	TeamAway      string
	TeamHomeID    string
	TeamAwayID    string
	ScoreTeamID   string
	ScoreHome     *float64
	ScoreAway     *float64
	ScorerID      *int64
	AssistID      *int64
	OwnGoalByID   *int64
}

// statRecord is one matchStatistics row with resolved flag values.
type statRecord struct {
	PlayerID *int64
	Goal     float64
	Assist   float64
	OwnGoal  float64
}

// participation is one itemPlayerHistory row.
type participation struct {
	PlayerID *int64
	MatchID  string
}

// seasonInput is a season's lists flattened, coerced and keyed in a single pass.
type seasonInput struct {
	Roster       []stats.Player
	Stats        []statRecord
	History      []participation
	Scores       []scoreRecord
	MissingStats []string
}

func prepareSeason(doc SeasonDocument, aliases FieldAliases) seasonInput {
	statsTable := table.Flatten(doc.MatchStatistics, matchStatisticsSchema(aliases))
	statRows, missing := loadStatRecords(statsTable, aliases)
	return seasonInput{
		Roster:       loadRoster(table.Flatten(doc.Players, rosterSchema())),
		Stats:        statRows,
		History:      loadParticipations(table.Flatten(doc.PlayerHistory, playerHistorySchema(aliases)), aliases),
		Scores:       loadScoreRecords(table.Flatten(doc.ScoreStatistics, scoreStatisticsSchema())),
		MissingStats: missing,
	}
}

func loadRoster(t *table.Table) []stats.Player {
	out := make([]stats.Player, 0, t.Len())
	for row := 0; row < t.Len(); row++ {
		out = append(out, stats.Player{
			PlayerID:              intPtr(t, "baseObjectId", row),
			Name:                  t.String("name", row),
			ExcludeFromStatistics: t.Bool("excludeFromStatistics", row),
			CreatedTS:             intPtr(t, "createdTimestamp", row),
			UpdatedTS:             intPtr(t, "updatedTimestamp", row),
		})
	}
	return out
}

// loadStatRecords resolves the player id and flag columns through aliases.
// It also returns the logical fields for which no alias was present.
func loadStatRecords(t *table.Table, aliases FieldAliases) ([]statRecord, []string) {
	var missing []string
	resolve := func(field string, names []string) string {
		name, ok := t.Resolve(names...)
		if !ok {
			missing = append(missing, field)
		}
		return name
	}
	idCol := resolve("player_id", aliases.PlayerID)
	goalCol := resolve("goals", aliases.Goal)
	assistCol := resolve("assists", aliases.Assist)
	ownGoalCol := resolve("own_goals", aliases.OwnGoal)

	if idCol == "" {
		return nil, missing
	}
	out := make([]statRecord, 0, t.Len())
	for row := 0; row < t.Len(); row++ {
		out = append(out, statRecord{
			PlayerID: intPtr(t, idCol, row),
			Goal:     flagValue(t, goalCol, row),
			Assist:   flagValue(t, assistCol, row),
			OwnGoal:  flagValue(t, ownGoalCol, row),
		})
	}
	return out, missing
}

func loadParticipations(t *table.Table, aliases FieldAliases) []participation {
	idCol, ok := t.Resolve(aliases.PlayerID...)
	if !ok {
		return nil
	}
	out := make([]participation, 0, t.Len())
	for row := 0; row < t.Len(); row++ {
		eventID, _ := t.ID("itemEventId", row)
		out = append(out, participation{
			PlayerID: intPtr(t, idCol, row),
			MatchID:  participationKey(intPtr(t, "soccerMatchId", row), eventID),
		})
	}
	return out
}

func loadScoreRecords(t *table.Table) []scoreRecord {
	out := make([]scoreRecord, 0, t.Len())
	for row := 0; row < t.Len(); row++ {
		rec := scoreRecord{
			SoccerMatchID: intPtr(t, "soccerMatchId", row),
			ItemEventID:   idString(t, "itemEventId", row),
			ItemEventDate: t.String("itemEventDate", row),
			ScoreTime:     t.String("scoreTime", row),
			TeamHome:      t.String("teamHome", row),
			TeamAway:      t.String("teamAway", row),
			TeamHomeID:    idString(t, "teamHomeId", row),
			TeamAwayID:    idString(t, "teamAwayId", row),
			ScoreTeamID:   idString(t, "scoreTeamId", row),
			ScoreHome:     floatPtr(t, "scoreTeamHome", row),
			ScoreAway:     floatPtr(t, "scoreTeamAway", row),
			ScorerID:      intPtr(t, "scoreById", row),
			AssistID:      intPtr(t, "assistById", row),
			OwnGoalByID:   intPtr(t, "ownGoalById", row),
		}
		rec.MatchKey = DeriveMatchKey(MatchIdentity{
			SoccerMatchID: rec.SoccerMatchID,
			ItemEventID:   rec.ItemEventID,
			TeamHomeID:    rec.TeamHomeID,
			TeamAwayID:    rec.TeamAwayID,
			ItemEventDate: rec.ItemEventDate,
		})
		out = append(out, rec)
	}
	return out
}

// flagValue reads a flag as a number; missing columns and unparsable values count as 0.
func flagValue(t *table.Table, column string, row int) float64 {
	if column == "" {
		return 0
	}
	v, ok := t.Float(column, row)
	if !ok {
		return 0
	}
	return v
}

func intPtr(t *table.Table, column string, row int) *int64 {
	v, ok := t.Int(column, row)
	if !ok {
		return nil
	}
	return &v
}

func floatPtr(t *table.Table, column string, row int) *float64 {
	v, ok := t.Float(column, row)
	if !ok {
		return nil
	}
	return &v
}

func idString(t *table.Table, column string, row int) string {
	v, _ := t.ID(column, row)
	return v
}

func roundCount(v float64) int {
	return int(math.Round(v))
}
