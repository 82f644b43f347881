package Models

import "gorm.io/gorm"

// Role values. Operators can run sales and shifts, Admins can additionally
// manage users, prices, offers and wipe history.
const (
	RoleOperator = "Operator"
	RoleAdmin    = "Admin"
)

// Permission levels used by middleware.Verify.
const (
	PermissionOperator = 1
	PermissionAdmin    = 2
)

type User struct {
	gorm.Model
	Username string `json:"username" gorm:"not null;uniqueIndex"`
	Password string `json:"-" gorm:"not null"` // bcrypt hash, never stored in clear
	Role     string `json:"role" gorm:"not null;default:'Operator'"`
}

// PermissionLevel maps the role to a numeric permission for route gating.
func (u User) PermissionLevel() int {
	if u.Role == RoleAdmin {
		return PermissionAdmin
	}
	return PermissionOperator
}
