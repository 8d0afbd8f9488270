package employee

import "time"

type Employee struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	Role         Role
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

type Role string

const (
	RoleAdmin           Role = "admin"
	RoleOfficeEmployee  Role = "office_employee"
	RoleFieldWorker     Role = "field_worker"
	RoleFieldSupervisor Role = "field_supervisor"
)

// IsField reports whether the role works six-day weeks (Saturday is a workday).
func (r Role) IsField() bool {
	return r == RoleFieldWorker || r == RoleFieldSupervisor
}

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleOfficeEmployee, RoleFieldWorker, RoleFieldSupervisor:
		return true
	}
	return false
}

func ValidRoles() []string {
	return []string{
		string(RoleAdmin),
		string(RoleOfficeEmployee),
		string(RoleFieldWorker),
		string(RoleFieldSupervisor),
	}
}
