package employee

import "context"

type EmployeeRepository interface {
	// Create returns ErrUsernameExists or ErrEmailExists on a uniqueness conflict.
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	GetByID(ctx context.Context, id string) (Employee, error)
	// GetByUsername resolves a login username; soft-deleted employees are not returned.
	GetByUsername(ctx context.Context, username string) (Employee, error)
	GetByEmail(ctx context.Context, email string) (Employee, error)
	ListActive(ctx context.Context) ([]Employee, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	SoftDelete(ctx context.Context, id string) error
}
