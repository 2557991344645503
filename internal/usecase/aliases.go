package usecase

// FieldAliases is an ordered list of accepted source column names per logical field.
// The first alias present in a season's table wins.
type FieldAliases struct {
	Version  int
	PlayerID []string
	Goal     []string
	Assist   []string
	OwnGoal  []string
}

var FieldAliasesV1 = FieldAliases{
	Version:  1,
	PlayerID: []string{"playerId", "player_id", "playerID"},
	Goal:     []string{"score", "isGoal", "Score"},
	Assist:   []string{"assist", "isAssist", "Assist"},
	OwnGoal:  []string{"ownGoal", "own_goal", "OwnGoal"},
}
