package usecase

import (
	"strconv"
)

// MatchIdentity holds the fields a match key is derived from.
type MatchIdentity struct {
	SoccerMatchID *int64
	ItemEventID   string
	TeamHomeID    string
	TeamAwayID    string
	ItemEventDate string
}

// DeriveMatchKey returns "s<id>" for a nonzero soccer match id, otherwise the
// composite "ie<event>_h<home>_a<away>_d<date>". Missing composite parts render empty.
func DeriveMatchKey(id MatchIdentity) string {
	if key, ok := soccerMatchKey(id.SoccerMatchID); ok {
		return key
	}
	return "ie" + id.ItemEventID + "_h" + id.TeamHomeID + "_a" + id.TeamAwayID + "_d" + id.ItemEventDate
}

// participationKey identifies the match of a player history entry. Entries
// with neither identifier return "" and are not counted.
func participationKey(soccerMatchID *int64, itemEventID string) string {
	if key, ok := soccerMatchKey(soccerMatchID); ok {
		return key
	}
	if itemEventID == "" {
		return ""
	}
	return "ie" + itemEventID
}

func soccerMatchKey(id *int64) (string, bool) {
	if id == nil || *id == 0 {
		return "", false
	}
	return "s" + strconv.FormatInt(*id, 10), true
}
