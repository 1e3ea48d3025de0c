package repository

import (
	"context"
	"strings"
	"time"

	"floristDashboard/internal/db"
	"floristDashboard/models"
)

// ListByFilter returns every order matching f ordered by created_at, id.
// The result is the snapshot the dashboard aggregates over, so it is read in a
// single statement.
func (r *OrderRepository) ListByFilter(ctx context.Context, f models.OrderFilter) ([]models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	where, args := r.filterClause(f)
	query := selectOrderSQL
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY o.created_at ASC, o.id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanOrderRows(rows)
}

// filterClause turns an OrderFilter into SQL predicates over the `o` alias.
func (r *OrderRepository) filterClause(f models.OrderFilter) ([]string, []any) {
	var where []string
	var args []any

	if len(f.Statuses) > 0 {
		placeholders := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			placeholders[i] = "?"
			args = append(args, string(s))
		}
		where = append(where, "o.status IN ("+strings.Join(placeholders, ",")+")")
	}
	if f.CreatedFrom != nil {
		where = append(where, "o.created_at >= ?")
		args = append(args, db.FormatTime(*f.CreatedFrom, r.loc))
	}
	if f.CreatedTo != nil {
		where = append(where, "o.created_at < ?")
		args = append(args, db.FormatTime(*f.CreatedTo, r.loc))
	}
	if f.BouquetID != nil {
		where = append(where, "o.bouquet_id = ?")
		args = append(args, *f.BouquetID)
	}
	if f.DeliveryWindowID != nil {
		where = append(where, "o.delivery_window_id = ?")
		args = append(args, *f.DeliveryWindowID)
	}
	return where, args
}
