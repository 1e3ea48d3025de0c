package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"floristDashboard/internal/db"
	"floristDashboard/models"
)

// OrderRepository is the core repository for Order entities.
// Timestamps are stored as shop-local wall clock in loc.
type OrderRepository struct {
	db  *sql.DB
	loc *time.Location
	now func() time.Time
}

// NewOrderRepository creates a new OrderRepository. A nil loc means time.Local.
func NewOrderRepository(d *sql.DB, loc *time.Location) *OrderRepository {
	if loc == nil {
		loc = time.Local
	}
	return &OrderRepository{db: d, loc: loc, now: time.Now}
}

const selectOrderSQL = `SELECT o.id, o.bouquet_id, b.name, o.price, o.client_name, o.phone, o.delivery_address,
       o.delivery_window_id, o.email, o.paid, o.comment, o.status, o.created_at, o.composed_at, o.delivered_at,
       o.florist_id, o.courier_id
FROM orders o
JOIN bouquets b ON b.id = o.bouquet_id`

// Create inserts a new order. Status defaults to 'created' and created_at to now.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) (*models.Order, error) {
	if o == nil {
		return nil, errors.New("order is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	id, err := r.insert(ctx, r.db, o)
	if err != nil {
		return nil, err
	}
	o2, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o2 == nil {
		return nil, fmt.Errorf("created order not found: id=%d", id)
	}
	return o2, nil
}

// CreateMany inserts orders in one transaction. Used by the seeding tool.
func (r *OrderRepository) CreateMany(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for i := range orders {
		if _, err := r.insert(ctx, tx, &orders[i]); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *OrderRepository) insert(ctx context.Context, ex execer, o *models.Order) (int64, error) {
	if o.Status == "" {
		o.Status = models.OrderStatusCreated
	}
	if !o.Status.Valid() {
		return 0, fmt.Errorf("unknown order status %q", o.Status)
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = r.now()
	}
	if err := o.CheckTimestamps(); err != nil {
		return 0, err
	}
	res, err := ex.ExecContext(ctx, `INSERT INTO orders (bouquet_id, price, client_name, phone, delivery_address, delivery_window_id, email, paid, comment, status, created_at, composed_at, delivered_at, florist_id, courier_id)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		o.BouquetID, o.Price.String(), o.ClientName, o.Phone, o.DeliveryAddress, o.DeliveryWindowID, o.Email, o.Paid, o.Comment, string(o.Status),
		db.FormatTime(o.CreatedAt, r.loc), db.NullTime(o.ComposedAt, r.loc), db.NullTime(o.DeliveredAt, r.loc), o.FloristID, o.CourierID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetByID fetches an order by its ID. A missing order is (nil, nil).
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	o, err := r.scanOrder(r.db.QueryRowContext(ctx, selectOrderSQL+` WHERE o.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return o, nil
}

// Delete removes an order by ID. Only maintenance tooling deletes orders.
func (r *OrderRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	return err
}

// DeleteSeeded removes orders whose delivery address starts with prefix and
// returns how many were removed.
func (r *OrderRepository) DeleteSeeded(ctx context.Context, prefix string) (int64, error) {
	if prefix == "" {
		return 0, errors.New("empty seed prefix")
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE substr(delivery_address, 1, ?) = ?`, len(prefix), prefix)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Advance moves an order to status `to` at time `at`, stamping composed_at or
// delivered_at when the order reaches those stages. A positive `by` records
// the acting staff member as florist (composing, composed) or courier
// (delivering, delivered). It returns models.ErrInvalidTransition for
// backwards moves and sql.ErrNoRows for an unknown order.
func (r *OrderRepository) Advance(ctx context.Context, id int64, to models.OrderStatus, at time.Time, by int64) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	var from string
	if err := tx.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = ?`, id).Scan(&from); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if !models.CanTransition(models.OrderStatus(from), to) {
		_ = tx.Rollback()
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, from, to)
	}
	var actor sql.NullInt64
	if by > 0 {
		actor = sql.NullInt64{Int64: by, Valid: true}
	}
	stamp := db.FormatTime(at, r.loc)
	switch to {
	case models.OrderStatusComposing:
		_, err = tx.ExecContext(ctx, `UPDATE orders SET status = ?, florist_id = COALESCE(?, florist_id) WHERE id = ?`, string(to), actor, id)
	case models.OrderStatusComposed:
		_, err = tx.ExecContext(ctx, `UPDATE orders SET status = ?, composed_at = COALESCE(composed_at, ?), florist_id = COALESCE(?, florist_id) WHERE id = ?`, string(to), stamp, actor, id)
	case models.OrderStatusDelivering:
		_, err = tx.ExecContext(ctx, `UPDATE orders SET status = ?, courier_id = COALESCE(?, courier_id) WHERE id = ?`, string(to), actor, id)
	case models.OrderStatusDelivered:
		_, err = tx.ExecContext(ctx, `UPDATE orders SET status = ?, delivered_at = COALESCE(delivered_at, ?), courier_id = COALESCE(?, courier_id) WHERE id = ?`, string(to), stamp, actor, id)
	default:
		_, err = tx.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, string(to), id)
	}
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// activeRankSQL orders the work queue: orders closest to the customer first.
const activeRankSQL = `CASE o.status WHEN 'delivering' THEN 0 WHEN 'composed' THEN 1 WHEN 'composing' THEN 2 ELSE 3 END`

// ActiveRank mirrors activeRankSQL for building page cursors.
func ActiveRank(s models.OrderStatus) int {
	switch s {
	case models.OrderStatusDelivering:
		return 0
	case models.OrderStatusComposed:
		return 1
	case models.OrderStatusComposing:
		return 2
	}
	return 3
}

// ActiveCursor is the position of the last order of a ListActive page.
type ActiveCursor struct {
	Rank int
	ID   int64
}

// ListActive returns the florist work queue: orders that are neither delivered
// nor cancelled, most advanced status first, then by id. Pass the cursor of
// the previous page's last order to continue after it.
func (r *OrderRepository) ListActive(ctx context.Context, limit int, after *ActiveCursor) ([]models.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := selectOrderSQL + `
WHERE o.status NOT IN (?, ?)`
	args := []any{string(models.OrderStatusDelivered), string(models.OrderStatusCancelled)}
	if after != nil {
		query += ` AND (` + activeRankSQL + ` > ? OR (` + activeRankSQL + ` = ? AND o.id > ?))`
		args = append(args, after.Rank, after.Rank, after.ID)
	}
	query += `
ORDER BY ` + activeRankSQL + `, o.id
LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanOrderRows(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *OrderRepository) scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	var status, createdAt string
	var windowID sql.NullInt64
	var composedAt, deliveredAt sql.NullString
	var floristID, courierID sql.NullInt64
	if err := row.Scan(&o.ID, &o.BouquetID, &o.BouquetName, &o.Price, &o.ClientName, &o.Phone, &o.DeliveryAddress,
		&windowID, &o.Email, &o.Paid, &o.Comment, &status, &createdAt, &composedAt, &deliveredAt, &floristID, &courierID); err != nil {
		return nil, err
	}
	o.Status = models.OrderStatus(status)
	o.DeliveryWindowID = nullID(windowID)
	o.FloristID = nullID(floristID)
	o.CourierID = nullID(courierID)
	var err error
	if o.CreatedAt, err = db.ParseTime(createdAt, r.loc); err != nil {
		return nil, fmt.Errorf("order %d created_at: %w", o.ID, err)
	}
	if o.ComposedAt, err = db.ParseNullTime(composedAt, r.loc); err != nil {
		return nil, fmt.Errorf("order %d composed_at: %w", o.ID, err)
	}
	if o.DeliveredAt, err = db.ParseNullTime(deliveredAt, r.loc); err != nil {
		return nil, fmt.Errorf("order %d delivered_at: %w", o.ID, err)
	}
	return &o, nil
}

func nullID(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// scanOrderRows is a helper to scan rows into Order objects.
func (r *OrderRepository) scanOrderRows(rows *sql.Rows) ([]models.Order, error) {
	var out []models.Order
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
