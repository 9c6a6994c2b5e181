package domain

// UserRole determines which views and operations a user may reach.
type UserRole string

const (
	RoleBasic    UserRole = "basic"
	RoleApprover UserRole = "approver"
	RoleAdmin    UserRole = "admin"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case RoleBasic, RoleApprover, RoleAdmin:
		return true
	}
	return false
}

// User represents a user of the application in the domain.
// The unit determines the data scope the user works in.
type User struct {
	UserID       string   `json:"userID" db:"user_id"`
	Name         string   `json:"name" db:"name"`
	Email        string   `json:"email" db:"email"`
	Role         UserRole `json:"role" db:"role"`
	UnitID       string   `json:"unitID" db:"unit_id"`
	PasswordHash string   `json:"-" db:"password_hash"`
	AuditFields
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// CanReview reports whether the user may decide on submitted items.
func (u User) CanReview() bool { return u.Role == RoleApprover || u.Role == RoleAdmin }
