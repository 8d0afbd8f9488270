package attendance

import (
	"time"

	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/employee"
)

type EventType string

const (
	EventClockIn  EventType = "clock_in"
	EventClockOut EventType = "clock_out"
)

// ClockEvent is a single QR scan at a site. Timestamp is stored in UTC.
type ClockEvent struct {
	ID         string
	EmployeeID string
	SiteID     string
	EventType  EventType
	Timestamp  time.Time
	CreatedAt  time.Time

	// DTO
	SiteName *string
}

type WfhStatus string

const (
	WfhStatusActive     WfhStatus = "active"
	WfhStatusComplete   WfhStatus = "complete"
	WfhStatusIncomplete WfhStatus = "incomplete"
)

// WfhSession is a self-reported work-from-home day. At most one exists per employee per date.
type WfhSession struct {
	ID              string
	EmployeeID      string
	Date            time.Time
	ClockIn         time.Time
	ClockOut        *time.Time
	DurationMinutes *int
	Status          WfhStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LeaveDay marks one calendar date covered by an approved leave request.
type LeaveDay struct {
	EmployeeID string
	Date       time.Time
}

// MonthRecords are the raw records of one employee for one calendar month.
type MonthRecords struct {
	Events      []ClockEvent
	WfhSessions []WfhSession
	LeaveDays   []LeaveDay
}

// MonthInput is everything the classifier needs for one employee-month.
// Today carries the evaluator's location; day boundaries and the evening
// cutoff are computed in that location.
type MonthInput struct {
	EmployeeID  string
	Role        employee.Role
	Year        int
	Month       time.Month
	Events      []ClockEvent
	WfhSessions []WfhSession
	LeaveDays   []LeaveDay
	Today       time.Time
}

// DayStatus is the derived attendance of one calendar day. It is never persisted.
type DayStatus struct {
	Date        time.Time
	Status      Status
	ClockIn     *time.Time
	ClockOut    *time.Time
	HoursWorked float64

	// WfhOngoing is set for an active WFH session that has not been clocked out.
	WfhOngoing bool
}
