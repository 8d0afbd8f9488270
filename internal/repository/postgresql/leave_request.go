package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const leaveRequestColumns = `
	lr.id, lr.employee_id, lr.request_type, lr.start_date, lr.end_date, lr.reason,
	lr.status, lr.reviewed_by, lr.reviewed_at, lr.rejection_reason, lr.cancelled_at,
	lr.created_at, lr.updated_at, e.full_name`

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	err := row.Scan(
		&lr.ID, &lr.EmployeeID, &lr.RequestType, &lr.StartDate, &lr.EndDate, &lr.Reason,
		&lr.Status, &lr.ReviewedBy, &lr.ReviewedAt, &lr.RejectionReason, &lr.CancelledAt,
		&lr.CreatedAt, &lr.UpdatedAt, &lr.EmployeeName,
	)
	return lr, err
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests (employee_id, request_type, start_date, end_date, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		request.EmployeeID, request.RequestType, request.StartDate, request.EndDate, request.Reason, request.Status,
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	return request, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests lr
		JOIN employees e ON e.id = lr.employee_id
		WHERE lr.id = $1
	`
	lr, err := scanLeaveRequest(q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	return lr, nil
}

// List implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	var (
		conditions []string
		args       []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if filter.EmployeeID != nil {
		add("lr.employee_id = $%d", *filter.EmployeeID)
	}
	if filter.Status != nil {
		add("lr.status = $%d", *filter.Status)
	}
	if filter.RequestType != nil {
		add("lr.request_type = $%d", *filter.RequestType)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM leave_requests lr ` + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave requests: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	listArgs := append(args, filter.Limit, offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM leave_requests lr
		JOIN employees e ON e.id = lr.employee_id
		%s
		ORDER BY lr.created_at DESC, lr.id DESC
		LIMIT $%d OFFSET $%d
	`, leaveRequestColumns, where, len(args)+1, len(args)+2)

	rows, err := q.Query(ctx, query, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	requests := []leave.LeaveRequest{}
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, lr)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// UpdateStatus implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) UpdateStatus(ctx context.Context, request leave.LeaveRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET status = $1, reviewed_by = $2, reviewed_at = $3, rejection_reason = $4, cancelled_at = $5, updated_at = NOW()
		WHERE id = $6
	`
	tag, err := q.Exec(ctx, query,
		request.Status, request.ReviewedBy, request.ReviewedAt, request.RejectionReason, request.CancelledAt, request.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update leave request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrLeaveRequestNotFound
	}
	return nil
}

// ExistsOverlapping implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ExistsOverlapping(ctx context.Context, employeeID string, from, to time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM leave_requests
			WHERE employee_id = $1
				AND status IN ($2, $3)
				AND start_date <= $5 AND end_date >= $4
		)
	`
	var exists bool
	err := q.QueryRow(ctx, query, employeeID,
		leave.LeaveRequestStatusWaitingApproval, leave.LeaveRequestStatusApproved, from, to,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check overlapping requests: %w", err)
	}
	return exists, nil
}

// ListApprovedInRange implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListApprovedInRange(ctx context.Context, requestType leave.RequestType, from, to time.Time) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests lr
		JOIN employees e ON e.id = lr.employee_id
		WHERE lr.status = $1 AND lr.request_type = $2
			AND lr.start_date <= $4 AND lr.end_date >= $3
		ORDER BY lr.start_date, lr.id
	`
	rows, err := q.Query(ctx, query, leave.LeaveRequestStatusApproved, requestType, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved requests: %w", err)
	}
	defer rows.Close()

	requests := []leave.LeaveRequest{}
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, lr)
	}
	return requests, rows.Err()
}

// HasApprovedCovering implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) HasApprovedCovering(ctx context.Context, employeeID string, requestType leave.RequestType, date time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM leave_requests
			WHERE employee_id = $1 AND request_type = $2 AND status = $3
				AND start_date <= $4 AND end_date >= $4
		)
	`
	var exists bool
	err := q.QueryRow(ctx, query, employeeID, requestType, leave.LeaveRequestStatusApproved, date).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check approved requests: %w", err)
	}
	return exists, nil
}
