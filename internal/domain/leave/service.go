package leave

import (
	"context"
	"time"
)

// Requester identifies who is reading a request.
type Requester struct {
	EmployeeID string
	IsAdmin    bool
}

type LeaveService interface {
	CreateRequest(ctx context.Context, req CreateLeaveRequestRequest) (LeaveRequestResponse, error)
	GetRequest(ctx context.Context, requestID string, requester Requester) (LeaveRequestResponse, error)
	ListRequests(ctx context.Context, filter LeaveRequestFilter) (ListLeaveRequestResponse, error)
	ApproveRequest(ctx context.Context, requestID, reviewerID string) (LeaveRequestResponse, error)
	RejectRequest(ctx context.Context, req RejectRequestRequest) (LeaveRequestResponse, error)
	CancelRequest(ctx context.Context, requestID, employeeID string) (LeaveRequestResponse, error)

	// MaterializeLeaveDays writes leave_days for approved leave covering the
	// lookback window ending on date. Re-running it adds nothing.
	MaterializeLeaveDays(ctx context.Context, date time.Time) (int64, error)
}
