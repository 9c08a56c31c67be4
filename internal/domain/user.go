package domain

import "time"

// Role enumerates caller roles. Admins may change priorities and respond to
// tickets; end-users may open and follow their own tickets.
type Role string

const (
	RoleEndUser Role = "END_USER"
	RoleAdmin   Role = "ADMIN"
)

// User is an account known to this service. Ticket ownership references users
// by opaque id only; there is no referential integrity across services.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
