package auth

import (
	"context"
	"errors"
	"fmt"

	"floristDashboard/models"
)

// ErrNotStaff is returned when the caller has no staff role in the users table.
var ErrNotStaff = errors.New("caller is not staff")

// UserLookup finds users by username; a missing user is (nil, nil).
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// LookupStaff resolves a principal to its staff user. The users table is
// authoritative: a token claiming a staff kind is not enough.
func LookupStaff(ctx context.Context, users UserLookup, p *Principal) (*models.User, error) {
	if p == nil {
		return nil, ErrNotStaff
	}
	if users == nil {
		return nil, errors.New("users repository not configured")
	}
	u, err := users.GetByUsername(ctx, p.Name)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil || !u.Role.IsStaff() {
		return nil, ErrNotStaff
	}
	return u, nil
}

// CanMoveTo reports whether a staff role may move an order into status to.
// Florists compose, couriers deliver, managers do anything including cancel.
func CanMoveTo(role models.Role, to models.OrderStatus) bool {
	switch role {
	case models.RoleManager:
		return true
	case models.RoleFlorist:
		return to == models.OrderStatusComposing || to == models.OrderStatusComposed
	case models.RoleCourier:
		return to == models.OrderStatusDelivering || to == models.OrderStatusDelivered
	}
	return false
}
