package employee

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/cache"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/spreadsheet"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/validator"
	"golang.org/x/crypto/bcrypt"
)

var rosterColumns = []string{"username", "email", "full_name", "role", "password"}

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	profiles     *cache.Cache[string, employee.Employee]
	usernames    *cache.Cache[string, string]
	bcryptCost   int
}

// NewEmployeeService wires the employee service. profiles and usernames are the
// caches shared with the attendance and auth services; either may be nil.
func NewEmployeeService(
	employeeRepo employee.EmployeeRepository,
	profiles *cache.Cache[string, employee.Employee],
	usernames *cache.Cache[string, string],
	bcryptCost int,
) employee.EmployeeService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &EmployeeServiceImpl{
		employeeRepo: employeeRepo,
		profiles:     profiles,
		usernames:    usernames,
		bcryptCost:   bcryptCost,
	}
}

// Create implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	created, err := s.create(ctx, req)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	slog.Info("Employee created", "employee_id", created.ID, "username", created.Username, "role", created.Role)
	return employee.ToResponse(created), nil
}

func (s *EmployeeServiceImpl) create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.Employee, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.employeeRepo.Create(ctx, employee.Employee{
		Username:     req.Username,
		Email:        req.Email,
		FullName:     req.FullName,
		Role:         employee.Role(req.Role),
		PasswordHash: string(hash),
		IsActive:     true,
	})
	if err != nil {
		return employee.Employee{}, err
	}
	return created, nil
}

// Get implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Get(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	if !validator.IsValidUUID(id) {
		return employee.EmployeeResponse{}, employee.ErrEmployeeNotFound
	}
	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.ToResponse(emp), nil
}

// List implements employee.EmployeeService.
func (s *EmployeeServiceImpl) List(ctx context.Context) ([]employee.EmployeeResponse, error) {
	employees, err := s.employeeRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		responses = append(responses, employee.ToResponse(e))
	}
	return responses, nil
}

// Delete implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Delete(ctx context.Context, id string, requesterID string) error {
	if id == requesterID {
		return employee.ErrCannotDeleteSelf
	}
	if !validator.IsValidUUID(id) {
		return employee.ErrEmployeeNotFound
	}

	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.employeeRepo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}

	if s.profiles != nil {
		s.profiles.Invalidate(id)
	}
	if s.usernames != nil {
		s.usernames.Invalidate(emp.Username)
	}

	slog.Info("Employee deleted", "employee_id", id, "deleted_by", requesterID)
	return nil
}

// ImportRoster implements employee.EmployeeService.
//
// Rows that fail validation or clash with an existing employee are skipped with a
// reason; any other repository error aborts the import.
func (s *EmployeeServiceImpl) ImportRoster(ctx context.Context, r io.Reader, filename string) (employee.ImportRosterResponse, error) {
	rows, err := spreadsheet.ReadRows(r, filename)
	switch {
	case errors.Is(err, spreadsheet.ErrUnsupportedFormat):
		return employee.ImportRosterResponse{}, employee.ErrUnsupportedRoster
	case errors.Is(err, spreadsheet.ErrEmptySheet):
		return employee.ImportRosterResponse{}, employee.ErrEmptyRoster
	case err != nil:
		return employee.ImportRosterResponse{}, fmt.Errorf("failed to read roster: %w", err)
	}

	header := spreadsheet.HeaderIndex(rows[0])
	var missing validator.ValidationErrors
	for _, col := range rosterColumns {
		if _, ok := header[col]; !ok {
			missing = append(missing, validator.ValidationError{
				Field:   col,
				Message: "roster is missing the " + col + " column",
			})
		}
	}
	if len(missing) > 0 {
		return employee.ImportRosterResponse{}, missing
	}
	if len(rows) < 2 {
		return employee.ImportRosterResponse{}, employee.ErrEmptyRoster
	}

	resp := employee.ImportRosterResponse{
		Created: []employee.EmployeeResponse{},
		Skipped: []employee.ImportSkippedRow{},
	}
	seenUsernames := make(map[string]int)
	seenEmails := make(map[string]int)

	for i, row := range rows[1:] {
		// spreadsheet row numbers are 1-based and row 1 is the header
		rowNumber := i + 2
		skip := func(reason string) {
			resp.Skipped = append(resp.Skipped, employee.ImportSkippedRow{Row: rowNumber, Reason: reason})
		}

		req := employee.CreateEmployeeRequest{
			Username: spreadsheet.Cell(row, header["username"]),
			Email:    spreadsheet.Cell(row, header["email"]),
			FullName: spreadsheet.Cell(row, header["full_name"]),
			Role:     spreadsheet.Cell(row, header["role"]),
			Password: spreadsheet.Cell(row, header["password"]),
		}
		if req == (employee.CreateEmployeeRequest{}) {
			continue
		}
		if err := req.Validate(); err != nil {
			skip(err.Error())
			continue
		}
		if first, dup := seenUsernames[req.Username]; dup {
			skip(fmt.Sprintf("username duplicates row %d", first))
			continue
		}
		if first, dup := seenEmails[req.Email]; dup {
			skip(fmt.Sprintf("email duplicates row %d", first))
			continue
		}
		seenUsernames[req.Username] = rowNumber
		seenEmails[req.Email] = rowNumber

		created, err := s.create(ctx, req)
		switch {
		case errors.Is(err, employee.ErrUsernameExists), errors.Is(err, employee.ErrEmailExists):
			skip(err.Error())
			continue
		case err != nil:
			return employee.ImportRosterResponse{}, fmt.Errorf("failed to import row %d: %w", rowNumber, err)
		}
		resp.Created = append(resp.Created, employee.ToResponse(created))
	}

	if len(resp.Created) == 0 && len(resp.Skipped) == 0 {
		return employee.ImportRosterResponse{}, employee.ErrEmptyRoster
	}

	slog.Info("Roster imported", "file", filename, "created", len(resp.Created), "skipped", len(resp.Skipped))
	return resp, nil
}
