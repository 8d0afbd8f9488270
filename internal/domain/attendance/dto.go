package attendance

import (
	"time"

	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/validator"
)

// ========================================
// SCAN DTOs
// ========================================

type ScanRequest struct {
	EmployeeID string `json:"-"`
	QRToken    string `json:"qr_token"`
}

func (r *ScanRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if !validator.IsValidUUID(r.QRToken) {
		errs = append(errs, validator.ValidationError{
			Field:   "qr_token",
			Message: "qr_token is not a valid site code",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ScanResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	SiteID     string `json:"site_id"`
	SiteName   string `json:"site_name"`
	EventType  string `json:"event_type"`
	Timestamp  string `json:"timestamp"`
}

// ========================================
// WFH DTOs
// ========================================

type WfhSessionResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	Date            string  `json:"date"`
	ClockInTime     string  `json:"clock_in_time"`
	ClockOutTime    *string `json:"clock_out_time,omitempty"`
	DurationMinutes *int    `json:"duration_minutes,omitempty"`
	Status          string  `json:"status"`
}

func ToWfhSessionResponse(s WfhSession) WfhSessionResponse {
	resp := WfhSessionResponse{
		ID:              s.ID,
		EmployeeID:      s.EmployeeID,
		Date:            s.Date.Format("2006-01-02"),
		ClockInTime:     s.ClockIn.Format(time.RFC3339),
		DurationMinutes: s.DurationMinutes,
		Status:          string(s.Status),
	}
	if s.ClockOut != nil {
		out := s.ClockOut.Format(time.RFC3339)
		resp.ClockOutTime = &out
	}
	return resp
}

// ========================================
// MONTHLY CALENDAR DTOs
// ========================================

type MonthlyCalendarRequest struct {
	EmployeeID string `json:"employee_id"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
}

func (r *MonthlyCalendarRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if !validator.IsValidMonth(r.Year, r.Month) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "year/month must be a valid calendar month",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CalendarDay struct {
	Date        string  `json:"date"`
	DayOfWeek   string  `json:"day_of_week"`
	Status      string  `json:"status"`
	Glyph       string  `json:"glyph"`
	Color       string  `json:"color"`
	ClockIn     *string `json:"clock_in,omitempty"`
	ClockOut    *string `json:"clock_out,omitempty"`
	HoursWorked float64 `json:"hours_worked"`
	WfhOngoing  bool    `json:"wfh_ongoing,omitempty"`
}

type MonthlySummary struct {
	DaysPresent         int     `json:"days_present"`
	WeeklyHours         float64 `json:"weekly_hours"`
	ExpectedWeeklyHours float64 `json:"expected_weekly_hours"`
	MonthlyHours        float64 `json:"monthly_hours"`
	AverageHoursPerDay  float64 `json:"average_hours_per_day"`
}

type MonthlyCalendarResponse struct {
	EmployeeID   string         `json:"employee_id"`
	EmployeeName string         `json:"employee_name"`
	Role         string         `json:"role"`
	Year         int            `json:"year"`
	Month        int            `json:"month"`
	Days         []CalendarDay  `json:"days"`
	Summary      MonthlySummary `json:"summary"`
}

// ========================================
// LIST STATISTICS DTOs
// ========================================

type ListStatsRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`

	// ReferenceDate picks the week for weekly hours (YYYY-MM-DD); defaults to today or the month's last day.
	ReferenceDate *string `json:"reference_date,omitempty"`

	reference time.Time
}

func (r *ListStatsRequest) Validate() error {
	var (
		errs      validator.ValidationErrors
		reference time.Time
	)

	if !validator.IsValidMonth(r.Year, r.Month) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "year/month must be a valid calendar month",
		})
	}

	if r.ReferenceDate != nil && *r.ReferenceDate != "" {
		ref, valid := validator.IsValidDate(*r.ReferenceDate)
		if !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "reference_date",
				Message: "reference_date must be in YYYY-MM-DD format",
			})
		} else if ref.Year() != r.Year || int(ref.Month()) != r.Month {
			errs = append(errs, validator.ValidationError{
				Field:   "reference_date",
				Message: "reference_date must fall inside the requested month",
			})
		} else {
			reference = ref
		}
	}

	if len(errs) > 0 {
		return errs
	}

	r.reference = reference
	return nil
}

// Reference returns the parsed reference_date, if one was given. Only meaningful after Validate.
func (r *ListStatsRequest) Reference() (time.Time, bool) {
	return r.reference, !r.reference.IsZero()
}

type StatsRow struct {
	EmployeeID string `json:"employee_id"`
	FullName   string `json:"full_name"`
	Role       string `json:"role"`
	MonthlySummary
}

type ListStatsResponse struct {
	Year          int        `json:"year"`
	Month         int        `json:"month"`
	ReferenceDate string     `json:"reference_date"`
	Rows          []StatsRow `json:"rows"`
}
