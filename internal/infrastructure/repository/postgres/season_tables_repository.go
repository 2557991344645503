package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/sportunion-stats/internal/domain/stats"
	qb "github.com/riskibarqy/sportunion-stats/internal/platform/querybuilder"
)

// insertBatchRows keeps a multi-row insert well under the 65535 bind parameter limit.
const insertBatchRows = 500

type SeasonTablesRepository struct {
	db *sqlx.DB
}

func NewSeasonTablesRepository(db *sqlx.DB) *SeasonTablesRepository {
	return &SeasonTablesRepository{db: db}
}

// ReplaceSeason deletes and re-inserts all rows of one season in a single transaction.
func (r *SeasonTablesRepository) ReplaceSeason(ctx context.Context, tables stats.SeasonTables) error {
	if tables.Season == "" {
		return fmt.Errorf("season label is required")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace season %s: %w", tables.Season, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, table := range []string{tableSeasonScoringEvents, tableSeasonMatches, tablePlayerSeasonStats} {
		query, args, err := qb.DeleteFrom(table).Where(qb.Eq("season", tables.Season)).ToSQL()
		if err != nil {
			return fmt.Errorf("build clear %s query: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := insertBatches(ctx, tx, tablePlayerSeasonStats, toPlayerSeasonStatsModels(tables.PlayerStats)); err != nil {
		return err
	}
	if err := insertBatches(ctx, tx, tableSeasonMatches, toSeasonMatchModels(tables.Matches)); err != nil {
		return err
	}
	if err := insertBatches(ctx, tx, tableSeasonScoringEvents, toSeasonScoringEventModels(tables.ScoringEvents)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace season %s: %w", tables.Season, err)
	}
	return nil
}

func (r *SeasonTablesRepository) ListSeasonCounts(ctx context.Context) ([]stats.SeasonCount, error) {
	bySeason := make(map[string]*stats.SeasonCount)
	order := make([]string, 0)
	for _, table := range []string{tablePlayerSeasonStats, tableSeasonMatches, tableSeasonScoringEvents} {
		query, args, err := qb.Select("season", "COUNT(*) AS row_count").
			From(table).
			GroupBy("season").
			OrderBy("season").
			ToSQL()
		if err != nil {
			return nil, fmt.Errorf("build count %s query: %w", table, err)
		}

		var rows []seasonCountModel
		err = r.db.SelectContext(ctx, &rows, query, args...)
		if isRetryableStatementError(err) {
			rows = nil
			err = r.db.SelectContext(ctx, &rows, query, args...)
		}
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		for _, row := range rows {
			count, ok := bySeason[row.Season]
			if !ok {
				count = &stats.SeasonCount{Season: row.Season}
				bySeason[row.Season] = count
				order = append(order, row.Season)
			}
			switch table {
			case tablePlayerSeasonStats:
				count.PlayerStats = row.Rows
			case tableSeasonMatches:
				count.Matches = row.Rows
			default:
				count.Events = row.Rows
			}
		}
	}

	out := make([]stats.SeasonCount, 0, len(order))
	for _, season := range order {
		out = append(out, *bySeason[season])
	}
	return out, nil
}

func insertBatches[T any](ctx context.Context, tx *sqlx.Tx, table string, models []T) error {
	for _, batch := range chunk(models, insertBatchRows) {
		query, args, err := qb.InsertModels(table, batch, "")
		if err != nil {
			return fmt.Errorf("build insert %s query: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	return nil
}

func chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = len(items)
	}
	out := make([][]T, 0, (len(items)+size-1)/max(size, 1))
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}
