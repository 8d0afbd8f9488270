package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// Scan toggles clock-in/clock-out at the site identified by the QR token
	Scan(ctx context.Context, req ScanRequest) (ScanResponse, error)

	// StartWfh opens today's work-from-home session
	StartWfh(ctx context.Context, employeeID string) (WfhSessionResponse, error)

	// EndWfh closes today's work-from-home session
	EndWfh(ctx context.Context, employeeID string) (WfhSessionResponse, error)

	// GetMonthlyCalendar classifies every day of a month for one employee
	GetMonthlyCalendar(ctx context.Context, req MonthlyCalendarRequest) (MonthlyCalendarResponse, error)

	// ListMonthlyStats aggregates a month for all active employees
	ListMonthlyStats(ctx context.Context, req ListStatsRequest) (ListStatsResponse, error)

	// CloseStaleWfhSessions marks sessions left active on earlier dates as incomplete
	CloseStaleWfhSessions(ctx context.Context) (int64, error)
}
