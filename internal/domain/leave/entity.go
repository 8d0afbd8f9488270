package leave

import "time"

type RequestType string

const (
	RequestTypeLeave RequestType = "leave"
	RequestTypeWfh   RequestType = "wfh"
)

func (t RequestType) IsValid() bool {
	return t == RequestTypeLeave || t == RequestTypeWfh
}

type LeaveRequestStatus string

const (
	LeaveRequestStatusWaitingApproval LeaveRequestStatus = "waiting_approval"
	LeaveRequestStatusApproved        LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected        LeaveRequestStatus = "rejected"
	LeaveRequestStatusCancelled       LeaveRequestStatus = "cancelled"
)

// LeaveRequest asks for leave or work-from-home on every date in [StartDate, EndDate].
// Dates are calendar dates stored at UTC midnight.
type LeaveRequest struct {
	ID          string
	EmployeeID  string
	RequestType RequestType
	StartDate   time.Time
	EndDate     time.Time
	Reason      string

	Status          LeaveRequestStatus
	ReviewedBy      *string
	ReviewedAt      *time.Time
	RejectionReason *string
	CancelledAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships (for responses)
	EmployeeName *string
}

// Covers reports whether date's calendar day lies inside the request.
func (r LeaveRequest) Covers(date time.Time) bool {
	d := CalendarDate(date)
	return !d.Before(r.StartDate) && !d.After(r.EndDate)
}

// DatesBetween returns the request's dates that fall inside [from, to], ascending.
func (r LeaveRequest) DatesBetween(from, to time.Time) []time.Time {
	start, end := r.StartDate, r.EndDate
	if f := CalendarDate(from); f.After(start) {
		start = f
	}
	if t := CalendarDate(to); t.Before(end) {
		end = t
	}

	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// TotalDays counts calendar days in the request, both ends included.
func (r LeaveRequest) TotalDays() int {
	return int(r.EndDate.Sub(r.StartDate).Hours()/24) + 1
}

// CalendarDate maps t's own year/month/day to UTC midnight, the storage form of DATE columns.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
