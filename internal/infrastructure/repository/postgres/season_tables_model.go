package postgres

import (
	"database/sql"

	"github.com/riskibarqy/sportunion-stats/internal/domain/stats"
)

const (
	tablePlayerSeasonStats   = "player_season_stats"
	tableSeasonMatches       = "season_matches"
	tableSeasonScoringEvents = "season_scoring_events"
)

type playerSeasonStatsInsertModel struct {
	Season                string        `db:"season"`
	Position              int           `db:"position"`
	PlayerID              sql.NullInt64 `db:"player_id"`
	Name                  string        `db:"name"`
	ExcludeFromStatistics bool          `db:"exclude_from_statistics"`
	Goals                 int           `db:"goals"`
	Assists               int           `db:"assists"`
	OwnGoals              int           `db:"own_goals"`
	MatchesPlayed         int           `db:"matches_played"`
}

type seasonMatchInsertModel struct {
	Season        string        `db:"season"`
	MatchKey      string        `db:"match_key"`
	SoccerMatchID sql.NullInt64 `db:"soccer_match_id"`
	ItemEventID   string        `db:"item_event_id"`
	ItemEventDate string        `db:"item_event_date"`
	TeamHome      string        `db:"team_home"`
	TeamAway      string        `db:"team_away"`
	TeamHomeID    string        `db:"team_home_id"`
	TeamAwayID    string        `db:"team_away_id"`
	HomeScore     sql.NullInt64 `db:"home_score"`
	AwayScore     sql.NullInt64 `db:"away_score"`
}

type seasonScoringEventInsertModel struct {
	Season        string        `db:"season"`
	Position      int           `db:"position"`
	MatchKey      string        `db:"match_key"`
	ItemEventDate string        `db:"item_event_date"`
	ScoreTime     string        `db:"score_time"`
	TeamHome      string        `db:"team_home"`
	TeamAway      string        `db:"team_away"`
	ScoreTeamID   string        `db:"score_team_id"`
	ScoreTeamHome sql.NullInt64 `db:"score_team_home"`
	ScoreTeamAway sql.NullInt64 `db:"score_team_away"`
	ScorerID      sql.NullInt64 `db:"scorer_id"`
	ScorerName    string        `db:"scorer_name"`
	AssistID      sql.NullInt64 `db:"assist_id"`
	AssistName    string        `db:"assist_name"`
	OwnGoalByID   sql.NullInt64 `db:"own_goal_by_id"`
	OwnGoalByName string        `db:"own_goal_by_name"`
}

type seasonCountModel struct {
	Season string `db:"season"`
	Rows   int    `db:"row_count"`
}

func toPlayerSeasonStatsModels(rows []stats.PlayerStats) []playerSeasonStatsInsertModel {
	out := make([]playerSeasonStatsInsertModel, 0, len(rows))
	for i, row := range rows {
		out = append(out, playerSeasonStatsInsertModel{
			Season:                row.Season,
			Position:              i + 1,
			PlayerID:              nullInt64(row.PlayerID),
			Name:                  row.Name,
			ExcludeFromStatistics: row.ExcludeFromStatistics,
			Goals:                 row.Goals,
			Assists:               row.Assists,
			OwnGoals:              row.OwnGoals,
			MatchesPlayed:         row.MatchesPlayed,
		})
	}
	return out
}

func toSeasonMatchModels(rows []stats.Match) []seasonMatchInsertModel {
	out := make([]seasonMatchInsertModel, 0, len(rows))
	for _, row := range rows {
		out = append(out, seasonMatchInsertModel{
			Season:        row.Season,
			MatchKey:      row.MatchKey,
			SoccerMatchID: nullInt64(row.SoccerMatchID),
			ItemEventID:   row.ItemEventID,
			ItemEventDate: row.ItemEventDate,
			TeamHome:      row.TeamHome,
			TeamAway:      row.TeamAway,
			TeamHomeID:    row.TeamHomeID,
			TeamAwayID:    row.TeamAwayID,
			HomeScore:     nullInt64(row.HomeScore),
			AwayScore:     nullInt64(row.AwayScore),
		})
	}
	return out
}

func toSeasonScoringEventModels(rows []stats.ScoringEvent) []seasonScoringEventInsertModel {
	out := make([]seasonScoringEventInsertModel, 0, len(rows))
	for i, row := range rows {
		out = append(out, seasonScoringEventInsertModel{
			Season:        row.Season,
			Position:      i + 1,
			MatchKey:      row.MatchKey,
			ItemEventDate: row.ItemEventDate,
			ScoreTime:     row.ScoreTime,
			TeamHome:      row.TeamHome,
			TeamAway:      row.TeamAway,
			ScoreTeamID:   row.ScoreTeamID,
			ScoreTeamHome: nullInt64(row.ScoreTeamHome),
			ScoreTeamAway: nullInt64(row.ScoreTeamAway),
			ScorerID:      nullInt64(row.ScorerID),
			ScorerName:    row.ScorerName,
			AssistID:      nullInt64(row.AssistID),
			AssistName:    row.AssistName,
			OwnGoalByID:   nullInt64(row.OwnGoalByID),
			OwnGoalByName: row.OwnGoalByName,
		})
	}
	return out
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
