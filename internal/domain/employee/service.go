package employee

import (
	"context"
	"io"
)

type EmployeeService interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	Get(ctx context.Context, id string) (EmployeeResponse, error)
	List(ctx context.Context) ([]EmployeeResponse, error)
	Delete(ctx context.Context, id string, requesterID string) error

	// ImportRoster creates employees from a spreadsheet; filename picks the reader (.xls or .xlsx).
	ImportRoster(ctx context.Context, r io.Reader, filename string) (ImportRosterResponse, error)
}
