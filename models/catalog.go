package models

import "github.com/shopspring/decimal"

// Event is an occasion a bouquet suits (birthday, wedding, ...).
type Event struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// BouquetItem is one component of a bouquet together with its count.
type BouquetItem struct {
	ID    int64  `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Count int    `db:"count" json:"count"`
}

// Bouquet is a catalog item.
type Bouquet struct {
	ID            int64           `db:"id" json:"id"`
	Name          string          `db:"name" json:"name"`
	Description   string          `db:"description" json:"description"`
	Photo         string          `db:"photo" json:"photo"`
	Price         decimal.Decimal `db:"price" json:"price"`
	HeightCM      int             `db:"height_cm" json:"height_cm"`
	WidthCM       int             `db:"width_cm" json:"width_cm"`
	IsRecommended bool            `db:"is_recommended" json:"is_recommended"`
	Events        []Event         `db:"-" json:"events,omitempty"`
	Items         []BouquetItem   `db:"-" json:"items,omitempty"`
}

// DeliveryWindow is a named delivery time slot. Hours are nullable in the
// store; a window without hours is just a label.
type DeliveryWindow struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	FromHour *int   `db:"from_hour" json:"from_hour,omitempty"`
	ToHour   *int   `db:"to_hour" json:"to_hour,omitempty"`
}
