package domain

import "time"

// Role is a role tag attached to a user.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
)

// ValidRole reports whether r is one of the known role tags.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleUser, RoleModerator:
		return true
	}
	return false
}

// User represents a user in the system
type User struct {
	ID           string    `json:"id" db:"id" bson:"_id"`
	Email        string    `json:"email" db:"email" bson:"email"`
	Username     string    `json:"username" db:"username" bson:"username"`
	PasswordHash string    `json:"-" db:"password_hash" bson:"password_hash"`
	FirstName    *string   `json:"first_name,omitempty" db:"first_name" bson:"first_name,omitempty"`
	LastName     *string   `json:"last_name,omitempty" db:"last_name" bson:"last_name,omitempty"`
	IsActive     bool      `json:"is_active" db:"is_active" bson:"is_active"`
	Roles        []Role    `json:"roles" db:"roles" bson:"roles"`
	CreatedAt    time.Time `json:"created_at" db:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at" bson:"updated_at"`
}

// HasRole reports whether the user carries the given role.
func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// UpdateUser carries a partial user update. Nil fields are left unchanged.
type UpdateUser struct {
	Email     *string
	Username  *string
	FirstName *string
	LastName  *string
	IsActive  *bool
	Roles     []Role
}
