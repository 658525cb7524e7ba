package domain

import "time"

// Role enumerates application roles.
type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleHelpdesk   Role = "helpdesk"
	RoleTechnician Role = "technician"
)

// User models an operator account. Technicians are the only assignable actors.
type User struct {
	ID                   string
	Name                 string
	Email                string
	PasswordHash         string
	Role                 Role
	IsBackboneSpecialist bool
	IsActive             bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Assignable reports whether the user may receive ticket assignments.
func (u *User) Assignable() bool {
	return u.Role == RoleTechnician && u.IsActive
}
