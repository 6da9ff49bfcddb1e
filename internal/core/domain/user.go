package domain

// Role distinguishes back-office administrators from bank clients. It replaces
// the original system's duck-typed "type" column with an explicit enum.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

// User is an authenticated principal of the API.
type User struct {
	UserID       string `json:"userID"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
	AuditFields
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Caller identifies the authenticated principal of a service call, extracted
// from the bearer token by the auth middleware.
type Caller struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}
