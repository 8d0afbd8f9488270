package attendance

import (
	"context"
	"time"
)

// ClockEventRepository reads and writes site clock events.
// Range methods use the half-open interval [from, to).
type ClockEventRepository interface {
	Create(ctx context.Context, event ClockEvent) (ClockEvent, error)

	// ListByEmployeeAndRange returns events ordered by timestamp ascending.
	ListByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time) ([]ClockEvent, error)

	// GetLastAtSite returns the newest event of the employee at the site on or after since, or nil.
	GetLastAtSite(ctx context.Context, employeeID, siteID string, since time.Time) (*ClockEvent, error)
}

type WfhSessionRepository interface {
	// Create returns ErrWfhAlreadyStarted when the employee already has a session on the date.
	Create(ctx context.Context, session WfhSession) (WfhSession, error)
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*WfhSession, error)
	Update(ctx context.Context, session WfhSession) error
	ListByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time) ([]WfhSession, error)

	// MarkStaleIncomplete flips active sessions dated before the given date to incomplete.
	MarkStaleIncomplete(ctx context.Context, before time.Time) (int64, error)
}

type LeaveDayRepository interface {
	ListByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time) ([]LeaveDay, error)

	// BulkInsert ignores days that already exist and returns how many rows were added.
	BulkInsert(ctx context.Context, days []LeaveDay) (int64, error)
}

// MonthDataSource fetches one employee-month of raw records.
type MonthDataSource interface {
	FetchMonth(ctx context.Context, employeeID string, year int, month time.Month, loc *time.Location) (MonthRecords, error)
}
