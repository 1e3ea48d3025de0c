package repository

import (
	"context"
	"time"

	"floristDashboard/models"
)

// UserRepositoryI defines operations on staff User entities.
type UserRepositoryI interface {
	Create(ctx context.Context, username string, role models.Role) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
}

// OrderRepositoryI defines operations on Order entities.
type OrderRepositoryI interface {
	Create(ctx context.Context, o *models.Order) (*models.Order, error)
	CreateMany(ctx context.Context, orders []models.Order) error
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	Advance(ctx context.Context, id int64, to models.OrderStatus, at time.Time, by int64) (*models.Order, error)
	ListActive(ctx context.Context, limit int, after *ActiveCursor) ([]models.Order, error)
	ListByFilter(ctx context.Context, f models.OrderFilter) ([]models.Order, error)
	DeleteSeeded(ctx context.Context, prefix string) (int64, error)
}

// BouquetRepositoryI defines operations on the bouquet catalog.
type BouquetRepositoryI interface {
	Create(ctx context.Context, b *models.Bouquet) (*models.Bouquet, error)
	GetByID(ctx context.Context, id int64) (*models.Bouquet, error)
	List(ctx context.Context) ([]models.Bouquet, error)
	Featured(ctx context.Context, limit int) ([]models.Bouquet, error)
}

// DeliveryWindowRepositoryI defines operations on delivery windows.
type DeliveryWindowRepositoryI interface {
	Create(ctx context.Context, w *models.DeliveryWindow) (*models.DeliveryWindow, error)
	GetByID(ctx context.Context, id int64) (*models.DeliveryWindow, error)
	List(ctx context.Context) ([]models.DeliveryWindow, error)
}

// ConsultationRepositoryI defines operations on consultation requests.
type ConsultationRepositoryI interface {
	Create(ctx context.Context, c *models.Consultation) (*models.Consultation, error)
	CreateMany(ctx context.Context, cs []models.Consultation) error
	DeleteSeeded(ctx context.Context, prefix string) (int64, error)
	CountCreated(ctx context.Context, from, to *time.Time) (int, error)
}

// ShopRepositoryI defines operations on flower shops and their stock.
type ShopRepositoryI interface {
	Create(ctx context.Context, s *models.FlowerShop) (*models.FlowerShop, error)
	List(ctx context.Context) ([]models.FlowerShop, error)
	SetAvailability(ctx context.Context, shopID, bouquetID int64, available bool) error
	Availability(ctx context.Context) (*models.Availability, error)
}

var (
	_ UserRepositoryI           = (*UserRepository)(nil)
	_ OrderRepositoryI          = (*OrderRepository)(nil)
	_ BouquetRepositoryI        = (*BouquetRepository)(nil)
	_ DeliveryWindowRepositoryI = (*DeliveryWindowRepository)(nil)
	_ ConsultationRepositoryI   = (*ConsultationRepository)(nil)
	_ ShopRepositoryI           = (*ShopRepository)(nil)
)
