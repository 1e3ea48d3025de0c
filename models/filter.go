package models

import "time"

// OrderFilter selects orders for reporting. Every field is optional; a nil or
// empty field does not constrain the result.
type OrderFilter struct {
	Statuses         []OrderStatus
	CreatedFrom      *time.Time // inclusive
	CreatedTo        *time.Time // exclusive
	BouquetID        *int64
	DeliveryWindowID *int64
}

// WithBouquet returns a copy of f narrowed to a single bouquet.
func (f OrderFilter) WithBouquet(id int64) OrderFilter {
	f.BouquetID = &id
	return f
}

// Matches reports whether o satisfies f. It mirrors the SQL predicates the
// order store applies, so a snapshot read with a broad filter can be narrowed
// in memory.
func (f OrderFilter) Matches(o Order) bool {
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if o.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.CreatedFrom != nil && o.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && !o.CreatedAt.Before(*f.CreatedTo) {
		return false
	}
	if f.BouquetID != nil && o.BouquetID != *f.BouquetID {
		return false
	}
	if f.DeliveryWindowID != nil && (o.DeliveryWindowID == nil || *o.DeliveryWindowID != *f.DeliveryWindowID) {
		return false
	}
	return true
}
