package attendance

import (
	"time"

	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/employee"
)

// DaysPresent counts Present days and completed WFH days.
func DaysPresent(days []attendance.DayStatus) int {
	count := 0
	for _, d := range days {
		switch {
		case d.Status == attendance.StatusPresent:
			count++
		case d.Status == attendance.StatusWfh && !d.WfhOngoing:
			count++
		}
	}
	return count
}

// MonthlyHours sums hours over every classified day.
func MonthlyHours(days []attendance.DayStatus) float64 {
	var total float64
	for _, d := range days {
		total += d.HoursWorked
	}
	return total
}

// weekWindow returns the Monday-start week containing ref, clipped at both ends to ref's month.
func weekWindow(ref time.Time) (time.Time, time.Time) {
	from := startOfWeek(ref)
	to := from.AddDate(0, 0, 7)
	monthStart, monthEnd := MonthBounds(ref.Year(), ref.Month(), ref.Location())
	if from.Before(monthStart) {
		from = monthStart
	}
	if to.After(monthEnd) {
		to = monthEnd
	}
	return from, to
}

// WeeklyHours sums hours of the days inside the week containing ref.
func WeeklyHours(days []attendance.DayStatus, ref time.Time) float64 {
	from, to := weekWindow(ref)
	var total float64
	for _, d := range days {
		date := time.Date(d.Date.Year(), d.Date.Month(), d.Date.Day(), 0, 0, 0, 0, ref.Location())
		if !date.Before(from) && date.Before(to) {
			total += d.HoursWorked
		}
	}
	return total
}

// ExpectedWeeklyHours is eight hours per workday of the role in the clipped week containing ref.
func ExpectedWeeklyHours(role employee.Role, ref time.Time) float64 {
	from, to := weekWindow(ref)
	workdays := 0
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		if IsWorkday(d, role) {
			workdays++
		}
	}
	return float64(workdays * standardWorkdayHours)
}

// AverageHoursPerDay divides monthly hours by days present, or returns 0 with no days present.
func AverageHoursPerDay(days []attendance.DayStatus) float64 {
	present := DaysPresent(days)
	if present == 0 {
		return 0
	}
	return MonthlyHours(days) / float64(present)
}

// Summarize builds the list and calendar summary for one employee-month.
func Summarize(days []attendance.DayStatus, role employee.Role, ref time.Time) attendance.MonthlySummary {
	return attendance.MonthlySummary{
		DaysPresent:         DaysPresent(days),
		WeeklyHours:         WeeklyHours(days, ref),
		ExpectedWeeklyHours: ExpectedWeeklyHours(role, ref),
		MonthlyHours:        MonthlyHours(days),
		AverageHoursPerDay:  AverageHoursPerDay(days),
	}
}

// ReferenceDate picks the day used for weekly figures: today when it falls inside
// the month, otherwise the month's last day (or first day for future months).
func ReferenceDate(year int, month time.Month, now time.Time) time.Time {
	from, to := MonthBounds(year, month, now.Location())
	today := startOfDay(now)
	switch {
	case today.Before(from):
		return from
	case !today.Before(to):
		return to.AddDate(0, 0, -1)
	default:
		return today
	}
}
