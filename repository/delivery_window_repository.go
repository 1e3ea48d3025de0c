package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"floristDashboard/models"
)

type DeliveryWindowRepository struct {
	db *sql.DB
}

func NewDeliveryWindowRepository(db *sql.DB) *DeliveryWindowRepository {
	return &DeliveryWindowRepository{db: db}
}

// Create inserts a delivery window. Hours are optional.
func (r *DeliveryWindowRepository) Create(ctx context.Context, w *models.DeliveryWindow) (*models.DeliveryWindow, error) {
	if w == nil {
		return nil, errors.New("delivery window is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `INSERT INTO delivery_windows (name, from_hour, to_hour) VALUES (?,?,?)`, w.Name, w.FromHour, w.ToHour)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	out := *w
	out.ID = id
	return &out, nil
}

func (r *DeliveryWindowRepository) GetByID(ctx context.Context, id int64) (*models.DeliveryWindow, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	w, err := scanWindow(r.db.QueryRowContext(ctx, `SELECT id, name, from_hour, to_hour FROM delivery_windows WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return w, nil
}

func (r *DeliveryWindowRepository) List(ctx context.Context) ([]models.DeliveryWindow, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, from_hour, to_hour FROM delivery_windows ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.DeliveryWindow
	for rows.Next() {
		w, err := scanWindow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

func scanWindow(row rowScanner) (*models.DeliveryWindow, error) {
	var w models.DeliveryWindow
	var from, to sql.NullInt64
	if err := row.Scan(&w.ID, &w.Name, &from, &to); err != nil {
		return nil, err
	}
	if from.Valid {
		v := int(from.Int64)
		w.FromHour = &v
	}
	if to.Valid {
		v := int(to.Int64)
		w.ToHour = &v
	}
	return &w, nil
}
