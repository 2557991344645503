package stats

// Player is one roster entry of a season's source document.
type Player struct {
	PlayerID              *int64 `json:"player_id"`
	Name                  string `json:"name"`
	ExcludeFromStatistics bool   `json:"exclude_from_statistics"`
	CreatedTS             *int64 `json:"created_ts,omitempty"`
	UpdatedTS             *int64 `json:"updated_ts,omitempty"`
}

// PlayerStats is one row per (season, roster player).
type PlayerStats struct {
	Season                string `json:"season"`
	PlayerID              *int64 `json:"player_id"`
	Name                  string `json:"name"`
	ExcludeFromStatistics bool   `json:"exclude_from_statistics"`
	Goals                 int    `json:"goals"`
	Assists               int    `json:"assists"`
	OwnGoals              int    `json:"own_goals"`
	MatchesPlayed         int    `json:"matches_played"`
}

// Match is one physical match collapsed from its raw score snapshots.
type Match struct {
	Season        string `json:"season"`
	MatchKey      string `json:"match_key"`
	SoccerMatchID *int64 `json:"soccer_match_id"`
	ItemEventID   string `json:"item_event_id"`
	ItemEventDate string `json:"item_event_date"`
	TeamHome      string `json:"team_home"`
	TeamAway      string `json:"team_away"`
	TeamHomeID    string `json:"team_home_id"`
	TeamAwayID    string `json:"team_away_id"`
	HomeScore     *int64 `json:"home_score"`
	AwayScore     *int64 `json:"away_score"`
}

// ScoringEvent is one retained goal. Scorer or own-goal identity is always set.
type ScoringEvent struct {
	Season        string `json:"season"`
	MatchKey      string `json:"match_key"`
	ItemEventDate string `json:"item_event_date"`
	ScoreTime     string `json:"score_time"`
	TeamHome      string `json:"team_home"`
	TeamAway      string `json:"team_away"`
	ScoreTeamID   string `json:"score_team_id"`
	ScoreTeamHome *int64 `json:"score_team_home"`
	ScoreTeamAway *int64 `json:"score_team_away"`
	ScorerID      *int64 `json:"scorer_id"`
	ScorerName    string `json:"scorer_name"`
	AssistID      *int64 `json:"assist_id"`
	AssistName    string `json:"assist_name"`
	OwnGoalByID   *int64 `json:"own_goal_by_id"`
	OwnGoalByName string `json:"own_goal_by_name"`
}

// SeasonTables holds the finished, season-tagged outputs of one pipeline run.
type SeasonTables struct {
	Season        string
	PlayerStats   []PlayerStats
	Matches       []Match
	ScoringEvents []ScoringEvent
}

// SeasonReport summarizes how one season contributed to a combined run.
type SeasonReport struct {
	Season        string `json:"season"`
	Loaded        bool   `json:"loaded"`
	Fetched       bool   `json:"fetched"`
	SkipReason    string `json:"skip_reason,omitempty"`
	Players       int    `json:"players"`
	Matches       int    `json:"matches"`
	ScoringEvents int    `json:"scoring_events"`
}

// Combined is the union of every successfully loaded season.
type Combined struct {
	PlayerStats   []PlayerStats  `json:"player_stats"`
	Matches       []Match        `json:"matches"`
	ScoringEvents []ScoringEvent `json:"scoring_events"`
	Seasons       []SeasonReport `json:"seasons"`
	// RunID identifies the pipeline run in logs; empty for ad-hoc builds.
	RunID string `json:"run_id,omitempty"`
}

// Filter narrows combined tables for presentation. Empty Seasons keeps every season.
type Filter struct {
	Seasons        []string
	ExcludeFlagged bool
}

func (f Filter) keeps(season string) bool {
	if len(f.Seasons) == 0 {
		return true
	}
	for _, s := range f.Seasons {
		if s == season {
			return true
		}
	}
	return false
}

// Apply returns filtered copies. Player rows flagged exclude_from_statistics are dropped when ExcludeFlagged is set.
func (c Combined) Apply(f Filter) Combined {
	out := Combined{
		PlayerStats:   make([]PlayerStats, 0, len(c.PlayerStats)),
		Matches:       make([]Match, 0, len(c.Matches)),
		ScoringEvents: make([]ScoringEvent, 0, len(c.ScoringEvents)),
		Seasons:       make([]SeasonReport, 0, len(c.Seasons)),
		RunID:         c.RunID,
	}
	for _, row := range c.PlayerStats {
		if !f.keeps(row.Season) || (f.ExcludeFlagged && row.ExcludeFromStatistics) {
			continue
		}
		out.PlayerStats = append(out.PlayerStats, row)
	}
	for _, row := range c.Matches {
		if f.keeps(row.Season) {
			out.Matches = append(out.Matches, row)
		}
	}
	for _, row := range c.ScoringEvents {
		if f.keeps(row.Season) {
			out.ScoringEvents = append(out.ScoringEvents, row)
		}
	}
	for _, report := range c.Seasons {
		if f.keeps(report.Season) {
			out.Seasons = append(out.Seasons, report)
		}
	}
	return out
}

// SeasonLabels lists seasons that contributed rows, in run order.
func (c Combined) SeasonLabels() []string {
	out := make([]string, 0, len(c.Seasons))
	for _, report := range c.Seasons {
		if report.Loaded {
			out = append(out, report.Season)
		}
	}
	return out
}
