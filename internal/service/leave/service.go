package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/leave"
)

// materializeLookbackDays lets a late approval still reach recent past dates.
const materializeLookbackDays = 31

type LeaveServiceImpl struct {
	requests  leave.LeaveRequestRepository
	leaveDays attendance.LeaveDayRepository
	employees employee.EmployeeRepository
	loc       *time.Location
	now       func() time.Time
}

func NewLeaveService(
	leaveRequestRepo leave.LeaveRequestRepository,
	leaveDayRepo attendance.LeaveDayRepository,
	employeeRepo employee.EmployeeRepository,
	loc *time.Location,
	now func() time.Time,
) leave.LeaveService {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &LeaveServiceImpl{
		requests:  leaveRequestRepo,
		leaveDays: leaveDayRepo,
		employees: employeeRepo,
		loc:       loc,
		now:       now,
	}
}

// CreateRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) CreateRequest(ctx context.Context, req leave.CreateLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	emp, err := l.employees.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}
	if !emp.IsActive {
		return leave.LeaveRequestResponse{}, attendance.ErrEmployeeInactive
	}

	start, end := req.Dates()
	overlapping, err := l.requests.ExistsOverlapping(ctx, emp.ID, start, end)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to check overlapping requests: %w", err)
	}
	if overlapping {
		return leave.LeaveRequestResponse{}, leave.ErrOverlappingRequest
	}

	created, err := l.requests.Create(ctx, leave.LeaveRequest{
		EmployeeID:  emp.ID,
		RequestType: leave.RequestType(req.RequestType),
		StartDate:   start,
		EndDate:     end,
		Reason:      req.Reason,
		Status:      leave.LeaveRequestStatusWaitingApproval,
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	created.EmployeeName = &emp.FullName

	return leave.ToLeaveRequestResponse(created), nil
}

// GetRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) GetRequest(ctx context.Context, requestID string, requester leave.Requester) (leave.LeaveRequestResponse, error) {
	request, err := l.requests.GetByID(ctx, requestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	if !requester.IsAdmin && request.EmployeeID != requester.EmployeeID {
		return leave.LeaveRequestResponse{}, leave.ErrNotRequestOwner
	}

	return leave.ToLeaveRequestResponse(request), nil
}

// ListRequests implements leave.LeaveService.
func (l *LeaveServiceImpl) ListRequests(ctx context.Context, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}

	requests, total, err := l.requests.List(ctx, filter)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	items := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		items = append(items, leave.ToLeaveRequestResponse(r))
	}

	totalPages := int(total) / filter.Limit
	if int(total)%filter.Limit != 0 {
		totalPages++
	}

	return leave.ListLeaveRequestResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Requests:   items,
	}, nil
}

// ApproveRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) ApproveRequest(ctx context.Context, requestID, reviewerID string) (leave.LeaveRequestResponse, error) {
	request, err := l.pendingForReview(ctx, requestID, reviewerID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	reviewedAt := l.now()
	request.Status = leave.LeaveRequestStatusApproved
	request.ReviewedBy = &reviewerID
	request.ReviewedAt = &reviewedAt

	if err := l.requests.UpdateStatus(ctx, request); err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to approve leave request: %w", err)
	}

	slog.Info("Leave request approved",
		"request_id", request.ID,
		"employee_id", request.EmployeeID,
		"request_type", request.RequestType,
		"reviewed_by", reviewerID)

	return leave.ToLeaveRequestResponse(request), nil
}

// RejectRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) RejectRequest(ctx context.Context, req leave.RejectRequestRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	request, err := l.pendingForReview(ctx, req.ID, req.ReviewerID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	reviewedAt := l.now()
	request.Status = leave.LeaveRequestStatusRejected
	request.ReviewedBy = &req.ReviewerID
	request.ReviewedAt = &reviewedAt
	request.RejectionReason = &req.Reason

	if err := l.requests.UpdateStatus(ctx, request); err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to reject leave request: %w", err)
	}

	return leave.ToLeaveRequestResponse(request), nil
}

// CancelRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) CancelRequest(ctx context.Context, requestID, employeeID string) (leave.LeaveRequestResponse, error) {
	request, err := l.requests.GetByID(ctx, requestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if request.EmployeeID != employeeID {
		return leave.LeaveRequestResponse{}, leave.ErrNotRequestOwner
	}
	if request.Status != leave.LeaveRequestStatusWaitingApproval {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestAlreadyProcessed
	}

	cancelledAt := l.now()
	request.Status = leave.LeaveRequestStatusCancelled
	request.CancelledAt = &cancelledAt

	if err := l.requests.UpdateStatus(ctx, request); err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to cancel leave request: %w", err)
	}

	return leave.ToLeaveRequestResponse(request), nil
}

// MaterializeLeaveDays implements leave.LeaveService.
func (l *LeaveServiceImpl) MaterializeLeaveDays(ctx context.Context, date time.Time) (int64, error) {
	to := leave.CalendarDate(date.In(l.loc))
	from := to.AddDate(0, 0, -materializeLookbackDays)

	requests, err := l.requests.ListApprovedInRange(ctx, leave.RequestTypeLeave, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to list approved leave: %w", err)
	}

	var days []attendance.LeaveDay
	for _, r := range requests {
		for _, d := range r.DatesBetween(from, to) {
			days = append(days, attendance.LeaveDay{EmployeeID: r.EmployeeID, Date: d})
		}
	}
	if len(days) == 0 {
		return 0, nil
	}

	inserted, err := l.leaveDays.BulkInsert(ctx, days)
	if err != nil {
		return 0, fmt.Errorf("failed to insert leave days: %w", err)
	}

	slog.Info("Leave days materialized",
		"through", to.Format("2006-01-02"),
		"requests", len(requests),
		"candidates", len(days),
		"inserted", inserted)

	return inserted, nil
}

func (l *LeaveServiceImpl) pendingForReview(ctx context.Context, requestID, reviewerID string) (leave.LeaveRequest, error) {
	request, err := l.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, leave.ErrLeaveRequestNotFound) {
			return leave.LeaveRequest{}, err
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	if request.EmployeeID == reviewerID {
		return leave.LeaveRequest{}, leave.ErrCannotReviewOwnRequest
	}
	if request.Status != leave.LeaveRequestStatusWaitingApproval {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestAlreadyProcessed
	}
	return request, nil
}
