package models

// Role is the staff role of a user. Customers never log in, so an empty
// role means "not staff".
type Role string

const (
	RoleFlorist Role = "florist"
	RoleCourier Role = "courier"
	RoleManager Role = "manager"
)

// IsStaff reports whether the role grants access to the staff dashboard.
func (r Role) IsStaff() bool {
	switch r {
	case RoleFlorist, RoleCourier, RoleManager:
		return true
	}
	return false
}

// User represents a staff account.
// It maps to the `users` table in SQLite.
type User struct {
	ID       int64  `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
	Role     Role   `db:"role" json:"role"`
}
