package user

import "time"

// Role values form a closed set; anything else is rejected at the boundary.
const (
	RoleAdmin  = "admin"
	RoleAuthor = "author"
	RoleReader = "reader"
)

// ValidRoles lists every role the system knows about.
var ValidRoles = []string{RoleAdmin, RoleAuthor, RoleReader}

// HasRole reports whether roles contains role.
func HasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// RolesValid reports whether every entry of roles is a known role.
// An empty set is invalid: a user always holds at least one role.
func RolesValid(roles []string) bool {
	if len(roles) == 0 {
		return false
	}
	for _, r := range roles {
		if !HasRole(ValidRoles, r) {
			return false
		}
	}
	return true
}

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"` // never return
	Roles     []string  `json:"roles"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
