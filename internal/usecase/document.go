package usecase

import (
	"github.com/riskibarqy/sportunion-stats/internal/platform/table"
)

// Source document list names.
const (
	listPlayers         = "players"
	listMatchStatistics = "matchStatistics"
	listPlayerHistory   = "itemPlayerHistory"
	listScoreStatistics = "matchScoreStatistics"
)

// responseField is the envelope the stats API wraps season lists in.
const responseField = "response"

// SeasonDocument is one season's raw lists. Missing or malformed lists are empty.
type SeasonDocument struct {
	Players         []any
	MatchStatistics []any
	PlayerHistory   []any
	ScoreStatistics []any
}

// ParseDocument extracts the season lists from a decoded top-level document.
// Lists are read from the "response" object when present, else from the top level.
func ParseDocument(top map[string]any) SeasonDocument {
	body := top
	if inner, ok := top[responseField].(map[string]any); ok {
		body = inner
	}
	return SeasonDocument{
		Players:         listOf(body, listPlayers),
		MatchStatistics: listOf(body, listMatchStatistics),
		PlayerHistory:   listOf(body, listPlayerHistory),
		ScoreStatistics: listOf(body, listScoreStatistics),
	}
}

func listOf(body map[string]any, name string) []any {
	items, _ := body[name].([]any)
	return items
}

func rosterSchema() table.Schema {
	return table.NewSchema(
		table.Field{Name: "baseObjectId", Kind: table.KindInt},
		table.Field{Name: "name", Kind: table.KindString},
		table.Field{Name: "excludeFromStatistics", Kind: table.KindBool},
		table.Field{Name: "createdTimestamp", Kind: table.KindInt},
		table.Field{Name: "updatedTimestamp", Kind: table.KindInt},
	)
}

func matchStatisticsSchema(aliases FieldAliases) table.Schema {
	fields := make([]table.Field, 0, len(aliases.PlayerID)+len(aliases.Goal)+len(aliases.Assist)+len(aliases.OwnGoal))
	for _, name := range aliases.PlayerID {
		fields = append(fields, table.Field{Name: name, Kind: table.KindInt})
	}
	for _, group := range [][]string{aliases.Goal, aliases.Assist, aliases.OwnGoal} {
		for _, name := range group {
			fields = append(fields, table.Field{Name: name, Kind: table.KindFloat})
		}
	}
	return table.NewSchema(fields...)
}

func playerHistorySchema(aliases FieldAliases) table.Schema {
	fields := make([]table.Field, 0, len(aliases.PlayerID)+2)
	for _, name := range aliases.PlayerID {
		fields = append(fields, table.Field{Name: name, Kind: table.KindInt})
	}
	fields = append(fields,
		table.Field{Name: "soccerMatchId", Kind: table.KindInt},
		table.Field{Name: "itemEventId", Kind: table.KindID},
	)
	return table.NewSchema(fields...)
}

func scoreStatisticsSchema() table.Schema {
	return table.NewSchema(
		table.Field{Name: "soccerMatchId", Kind: table.KindInt},
		table.Field{Name: "itemEventId", Kind: table.KindID},
		table.Field{Name: "itemEventDate", Kind: table.KindString},
		table.Field{Name: "scoreTime", Kind: table.KindString},
		table.Field{Name: "teamHome", Kind: table.KindString},
		table.Field{Name: "teamAway", Kind: table.KindString},
		table.Field{Name: "teamHomeId", Kind: table.KindID},
		table.Field{Name: "teamAwayId", Kind: table.KindID},
		table.Field{Name: "scoreTeamHome", Kind: table.KindFloat},
		table.Field{Name: "scoreTeamAway", Kind: table.KindFloat},
		table.Field{Name: "scoreById", Kind: table.KindInt},
		table.Field{Name: "assistById", Kind: table.KindInt},
		table.Field{Name: "ownGoalById", Kind: table.KindInt},
		table.Field{Name: "scoreTeamId", Kind: table.KindID},
	)
}
