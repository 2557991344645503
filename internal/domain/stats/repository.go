package stats

import "context"

// SeasonCount is the number of stored player rows for one season.
type SeasonCount struct {
	Season      string
	PlayerStats int
	Matches     int
	Events      int
}

// Repository persists finished season tables.
type Repository interface {
	// ReplaceSeason swaps every stored row of tables.Season for the given tables.
	ReplaceSeason(ctx context.Context, tables SeasonTables) error
	ListSeasonCounts(ctx context.Context) ([]SeasonCount, error)
}
