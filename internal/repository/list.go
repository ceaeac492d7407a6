package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"travelblog/internal/query"
)

func count(ctx context.Context, db *pgxpool.Pool, sql string, args []any) (int64, error) {
	var total int64
	if err := db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// listProjected выполняет постраничный запрос с проекцией ?select= по схеме ресурса.
// from — таблица с тем же псевдонимом, что используется в колонках схемы.
func listProjected(ctx context.Context, db *pgxpool.Pool, s *query.Schema, from string, q query.ListQuery) ([]map[string]any, int64, error) {
	where, args := s.Where(q.Filters, 1)

	total, err := count(ctx, db, "SELECT COUNT(*) FROM "+from+where, args)
	if err != nil {
		return nil, 0, err
	}

	sql := "SELECT " + s.Projection(q.Select) + " FROM " + from + where + s.OrderBy(q.Sort) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	rows, err := db.Query(ctx, sql, append(args, q.Limit, q.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	items, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []map[string]any{}
	}
	return items, total, nil
}
