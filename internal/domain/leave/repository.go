package leave

import (
	"context"
	"time"
)

// LeaveRequestRepository - interface for leave_requests table
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	List(ctx context.Context, filter LeaveRequestFilter) ([]LeaveRequest, int64, error)

	// UpdateStatus persists Status and the review/cancel columns of request.
	UpdateStatus(ctx context.Context, request LeaveRequest) error

	// ExistsOverlapping reports whether a pending or approved request of the employee intersects [from, to].
	ExistsOverlapping(ctx context.Context, employeeID string, from, to time.Time) (bool, error)

	// ListApprovedInRange returns approved requests of the type that intersect [from, to].
	ListApprovedInRange(ctx context.Context, requestType RequestType, from, to time.Time) ([]LeaveRequest, error)

	// HasApprovedCovering reports whether an approved request of the type covers date.
	HasApprovedCovering(ctx context.Context, employeeID string, requestType RequestType, date time.Time) (bool, error)
}
