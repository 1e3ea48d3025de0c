package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"floristDashboard/internal/db"
	"floristDashboard/models"
)

// ConsultationRepository stores callback requests from the storefront.
type ConsultationRepository struct {
	db  *sql.DB
	loc *time.Location
	now func() time.Time
}

func NewConsultationRepository(d *sql.DB, loc *time.Location) *ConsultationRepository {
	if loc == nil {
		loc = time.Local
	}
	return &ConsultationRepository{db: d, loc: loc, now: time.Now}
}

// Create inserts a consultation request. Status defaults to 'created' and
// created_at to now.
func (r *ConsultationRepository) Create(ctx context.Context, c *models.Consultation) (*models.Consultation, error) {
	if c == nil {
		return nil, errors.New("consultation is nil")
	}
	out := *c
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.insert(ctx, r.db, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateMany inserts consultations in one transaction. Used by the seeder.
func (r *ConsultationRepository) CreateMany(ctx context.Context, cs []models.Consultation) error {
	if len(cs) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for i := range cs {
		if err := r.insert(ctx, tx, &cs[i]); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *ConsultationRepository) insert(ctx context.Context, ex execer, c *models.Consultation) error {
	if strings.TrimSpace(c.Phone) == "" {
		return errors.New("consultation phone is required")
	}
	if c.Status == "" {
		c.Status = models.ConsultationStatusCreated
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.now()
	}
	res, err := ex.ExecContext(ctx, `INSERT INTO consultations (client_name, phone, created_at, consulted_at, status) VALUES (?,?,?,?,?)`,
		c.ClientName, c.Phone, db.FormatTime(c.CreatedAt, r.loc), db.NullTime(c.ConsultedAt, r.loc), string(c.Status))
	if err != nil {
		return err
	}
	c.ID, err = res.LastInsertId()
	return err
}

// DeleteSeeded removes consultations whose client name starts with prefix.
func (r *ConsultationRepository) DeleteSeeded(ctx context.Context, prefix string) (int64, error) {
	if prefix == "" {
		return 0, errors.New("empty seed prefix")
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `DELETE FROM consultations WHERE substr(client_name, 1, ?) = ?`, len(prefix), prefix)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountCreated counts consultations created in [from, to). Nil bounds are open.
// Consultations of every status are counted.
func (r *ConsultationRepository) CountCreated(ctx context.Context, from, to *time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	query := `SELECT COUNT(*) FROM consultations`
	var where []string
	var args []any
	if from != nil {
		where = append(where, "created_at >= ?")
		args = append(args, db.FormatTime(*from, r.loc))
	}
	if to != nil {
		where = append(where, "created_at < ?")
		args = append(args, db.FormatTime(*to, r.loc))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
