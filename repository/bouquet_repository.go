package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"floristDashboard/models"
)

// BouquetRepository reads and writes the bouquet catalog.
type BouquetRepository struct {
	db *sql.DB
}

func NewBouquetRepository(db *sql.DB) *BouquetRepository {
	return &BouquetRepository{db: db}
}

const selectBouquetSQL = `SELECT id, name, description, photo, price, height_cm, width_cm, is_recommended FROM bouquets`

// Create inserts a bouquet and returns it with its generated ID.
func (r *BouquetRepository) Create(ctx context.Context, b *models.Bouquet) (*models.Bouquet, error) {
	if b == nil {
		return nil, errors.New("bouquet is nil")
	}
	if b.Price.IsNegative() {
		return nil, fmt.Errorf("bouquet price must not be negative: %s", b.Price)
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `INSERT INTO bouquets (name, description, photo, price, height_cm, width_cm, is_recommended) VALUES (?,?,?,?,?,?,?)`,
		b.Name, b.Description, b.Photo, b.Price.String(), b.HeightCM, b.WidthCM, b.IsRecommended)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	out := *b
	out.ID = id
	return &out, nil
}

// GetByID fetches a bouquet with its events and items. A missing bouquet is (nil, nil).
func (r *BouquetRepository) GetByID(ctx context.Context, id int64) (*models.Bouquet, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	b, err := scanBouquet(r.db.QueryRowContext(ctx, selectBouquetSQL+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if b.Events, err = r.events(ctx, id); err != nil {
		return nil, err
	}
	if b.Items, err = r.items(ctx, id); err != nil {
		return nil, err
	}
	return b, nil
}

// List returns all bouquets ordered by name.
func (r *BouquetRepository) List(ctx context.Context) ([]models.Bouquet, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, selectBouquetSQL+` ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBouquetRows(rows)
}

// Featured returns the bouquets for the storefront front page: the
// recommended ones, or, only when there are none, the first `limit` bouquets
// of the catalog. The fallback is a second query issued only after the first
// one came back empty.
func (r *BouquetRepository) Featured(ctx context.Context, limit int) ([]models.Bouquet, error) {
	if limit <= 0 {
		limit = 6
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	recommended, err := r.queryBouquets(ctx, selectBouquetSQL+` WHERE is_recommended = 1 ORDER BY name, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	if len(recommended) > 0 {
		return recommended, nil
	}
	return r.queryBouquets(ctx, selectBouquetSQL+` ORDER BY name, id LIMIT ?`, limit)
}

// CreateEvent inserts an occasion.
func (r *BouquetRepository) CreateEvent(ctx context.Context, name string) (*models.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `INSERT INTO events (name) VALUES (?)`, name)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.Event{ID: id, Name: name}, nil
}

// AttachEvent links a bouquet to an occasion. Linking twice is a no-op.
func (r *BouquetRepository) AttachEvent(ctx context.Context, bouquetID, eventID int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO bouquet_events (bouquet_id, event_id) VALUES (?, ?)`, bouquetID, eventID)
	return err
}

// AddItem puts `count` units of the named component into a bouquet, creating
// the component when it does not exist yet.
func (r *BouquetRepository) AddItem(ctx context.Context, bouquetID int64, name string, count int) error {
	if count < 1 {
		return fmt.Errorf("item count must be at least 1, got %d", count)
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	var itemID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM bouquet_items WHERE name = ?`, name).Scan(&itemID)
	if errors.Is(err, sql.ErrNoRows) {
		res, insErr := tx.ExecContext(ctx, `INSERT INTO bouquet_items (name) VALUES (?)`, name)
		if insErr != nil {
			_ = tx.Rollback()
			return insErr
		}
		itemID, err = res.LastInsertId()
	}
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO bouquet_item_counts (bouquet_id, item_id, count) VALUES (?, ?, ?)
ON CONFLICT(bouquet_id, item_id) DO UPDATE SET count = excluded.count`, bouquetID, itemID, count); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *BouquetRepository) events(ctx context.Context, bouquetID int64) ([]models.Event, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT e.id, e.name FROM events e JOIN bouquet_events be ON be.event_id = e.id WHERE be.bouquet_id = ? ORDER BY e.name`, bouquetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *BouquetRepository) items(ctx context.Context, bouquetID int64) ([]models.BouquetItem, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT i.id, i.name, c.count FROM bouquet_items i JOIN bouquet_item_counts c ON c.item_id = i.id WHERE c.bouquet_id = ? ORDER BY i.name`, bouquetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.BouquetItem
	for rows.Next() {
		var it models.BouquetItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Count); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *BouquetRepository) queryBouquets(ctx context.Context, query string, args ...any) ([]models.Bouquet, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBouquetRows(rows)
}

func scanBouquet(row rowScanner) (*models.Bouquet, error) {
	var b models.Bouquet
	if err := row.Scan(&b.ID, &b.Name, &b.Description, &b.Photo, &b.Price, &b.HeightCM, &b.WidthCM, &b.IsRecommended); err != nil {
		return nil, err
	}
	return &b, nil
}

func scanBouquetRows(rows *sql.Rows) ([]models.Bouquet, error) {
	var out []models.Bouquet
	for rows.Next() {
		b, err := scanBouquet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
