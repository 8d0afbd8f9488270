package attendance

import (
	"math"
	"time"

	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/employee"
)

func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}

func clockString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("15:04")
	return &s
}

// ToCalendarDays projects classified days onto the on-screen calendar.
func ToCalendarDays(days []attendance.DayStatus) []attendance.CalendarDay {
	cells := make([]attendance.CalendarDay, 0, len(days))
	for _, d := range days {
		cells = append(cells, attendance.CalendarDay{
			Date:        d.Date.Format(dateLayout),
			DayOfWeek:   d.Date.Weekday().String(),
			Status:      string(d.Status),
			Glyph:       d.Status.Glyph(),
			Color:       d.Status.Color(),
			ClockIn:     clockString(d.ClockIn),
			ClockOut:    clockString(d.ClockOut),
			HoursWorked: roundHours(d.HoursWorked),
			WfhOngoing:  d.WfhOngoing,
		})
	}
	return cells
}

// RoundSummary rounds every hour figure to two decimals for display.
func RoundSummary(s attendance.MonthlySummary) attendance.MonthlySummary {
	s.WeeklyHours = roundHours(s.WeeklyHours)
	s.ExpectedWeeklyHours = roundHours(s.ExpectedWeeklyHours)
	s.MonthlyHours = roundHours(s.MonthlyHours)
	s.AverageHoursPerDay = roundHours(s.AverageHoursPerDay)
	return s
}

// ToStatsRow projects one employee-month onto the list view.
func ToStatsRow(emp employee.Employee, days []attendance.DayStatus, ref time.Time) attendance.StatsRow {
	return attendance.StatsRow{
		EmployeeID:     emp.ID,
		FullName:       emp.FullName,
		Role:           string(emp.Role),
		MonthlySummary: RoundSummary(Summarize(days, emp.Role, ref)),
	}
}

// ExportTotals are the per-employee totals of the spreadsheet export.
type ExportTotals struct {
	Present    int
	Absent     int
	Incomplete int
	Leave      int
	Hours      float64
}

// ExportLetters projects days onto the legacy {P,A,I,L,W,—} letters.
func ExportLetters(days []attendance.DayStatus) []string {
	letters := make([]string, len(days))
	for i, d := range days {
		letters[i] = d.Status.ExportLetter()
	}
	return letters
}

// ToExportTotals counts export letters; W days are counted in the P total.
func ToExportTotals(days []attendance.DayStatus) ExportTotals {
	var t ExportTotals
	for _, d := range days {
		switch d.Status.ExportLetter() {
		case "P", "W":
			t.Present++
		case "A":
			t.Absent++
		case "I":
			t.Incomplete++
		case "L":
			t.Leave++
		}
	}
	t.Hours = roundHours(MonthlyHours(days))
	return t
}
