package auth

// Role represents a user's role in the system
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Valid reports whether the role is a known role value
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Principal is the resolved identity for a request. It is reconstructed per
// request from a verified credential and never persisted.
type Principal struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

// IsAdmin reports whether the principal holds the ADMIN role
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}
