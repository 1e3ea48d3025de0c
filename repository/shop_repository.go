package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"floristDashboard/models"
)

// ShopRepository stores flower shops and which bouquets each keeps in stock.
type ShopRepository struct {
	db *sql.DB
}

func NewShopRepository(db *sql.DB) *ShopRepository {
	return &ShopRepository{db: db}
}

func (r *ShopRepository) Create(ctx context.Context, s *models.FlowerShop) (*models.FlowerShop, error) {
	if s == nil {
		return nil, errors.New("shop is nil")
	}
	if strings.TrimSpace(s.Address) == "" {
		return nil, errors.New("shop address is required")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `INSERT INTO flower_shops (address, phone) VALUES (?, ?)`, s.Address, s.Phone)
	if err != nil {
		return nil, err
	}
	out := *s
	if out.ID, err = res.LastInsertId(); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns shops ordered by address.
func (r *ShopRepository) List(ctx context.Context) ([]models.FlowerShop, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT id, address, phone FROM flower_shops ORDER BY address, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.FlowerShop
	for rows.Next() {
		var s models.FlowerShop
		if err := rows.Scan(&s.ID, &s.Address, &s.Phone); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SetAvailability records whether a shop has a bouquet in stock.
func (r *ShopRepository) SetAvailability(ctx context.Context, shopID, bouquetID int64, available bool) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `INSERT INTO shop_bouquets (shop_id, bouquet_id, available) VALUES (?,?,?)
ON CONFLICT (shop_id, bouquet_id) DO UPDATE SET available = excluded.available`, shopID, bouquetID, available)
	return err
}

// Availability builds the stock table for every shop and bouquet. A bouquet
// a shop has no row for counts as unavailable there.
func (r *ShopRepository) Availability(ctx context.Context) (*models.Availability, error) {
	shops, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	col := make(map[int64]int, len(shops))
	for i, s := range shops {
		col[s.ID] = i
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT b.id, b.name, sb.shop_id
FROM bouquets b
LEFT JOIN shop_bouquets sb ON sb.bouquet_id = b.id AND sb.available = 1
ORDER BY b.name, b.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := &models.Availability{Shops: shops, Bouquets: []models.BouquetAvailability{}}
	if out.Shops == nil {
		out.Shops = []models.FlowerShop{}
	}
	for rows.Next() {
		var (
			id     int64
			name   string
			shopID sql.NullInt64
		)
		if err := rows.Scan(&id, &name, &shopID); err != nil {
			return nil, err
		}
		n := len(out.Bouquets)
		if n == 0 || out.Bouquets[n-1].BouquetID != id {
			out.Bouquets = append(out.Bouquets, models.BouquetAvailability{BouquetID: id, Name: name, Available: make([]bool, len(shops))})
			n++
		}
		if shopID.Valid {
			if i, ok := col[shopID.Int64]; ok {
				out.Bouquets[n-1].Available[i] = true
			}
		}
	}
	return out, rows.Err()
}
