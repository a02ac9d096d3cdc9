package models

import "time"

// OperatorRole grades what a tournament operator may do with the scheduler.
type OperatorRole string

const (
	// RoleDirector is the tournament director: full control, including
	// operator administration.
	RoleDirector OperatorRole = "DIRECTOR"
	// RoleScheduler may run the scheduler and manage profiles.
	RoleScheduler OperatorRole = "SCHEDULER"
	// RoleViewer may read schedules and audits only.
	RoleViewer OperatorRole = "VIEWER"
)

// CanSchedule reports whether the role may trigger scheduling runs or change
// scheduling profiles.
func (r OperatorRole) CanSchedule() bool {
	return r == RoleDirector || r == RoleScheduler
}

// Operator is a tournament staff account stored in the operators table.
type Operator struct {
	ID           string       `db:"id" json:"id"`
	Email        string       `db:"email" json:"email"`
	PasswordHash string       `db:"password_hash" json:"-"`
	FullName     string       `db:"full_name" json:"full_name"`
	Role         OperatorRole `db:"role" json:"role"`
	Active       bool         `db:"active" json:"active"`
	LastLogin    *time.Time   `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}
