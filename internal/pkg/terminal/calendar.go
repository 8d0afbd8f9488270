// Package terminal renders attendance data for the admin CLI.
package terminal

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/attendance"
	"github.com/fatih/color"
)

const cellWidth = 9

var weekdayHeader = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

var legend = []attendance.Status{
	attendance.StatusPresent,
	attendance.StatusIncomplete,
	attendance.StatusAbsent,
	attendance.StatusLeave,
	attendance.StatusWfh,
	attendance.StatusIncompleteWfh,
	attendance.StatusNotApplicable,
}

func statusColor(s attendance.Status) *color.Color {
	switch s {
	case attendance.StatusPresent:
		return color.New(color.FgGreen, color.Bold)
	case attendance.StatusIncomplete:
		return color.New(color.FgYellow)
	case attendance.StatusAbsent:
		return color.New(color.FgRed, color.Bold)
	case attendance.StatusLeave:
		return color.New(color.FgBlue)
	case attendance.StatusWfh:
		return color.New(color.FgMagenta)
	case attendance.StatusIncompleteWfh:
		return color.New(color.FgHiYellow)
	default:
		return color.New(color.FgHiBlack)
	}
}

// RenderCalendar writes a Monday-first month grid with one colored glyph per day,
// followed by a legend and the month summary.
func RenderCalendar(w io.Writer, cal attendance.MonthlyCalendarResponse) error {
	var out strings.Builder

	title := fmt.Sprintf("%s %d", time.Month(cal.Month), cal.Year)
	out.WriteString(color.New(color.Bold).Sprintf("%s (%s), %s", cal.EmployeeName, cal.Role, title))
	out.WriteString("\n")
	out.WriteString(strings.Repeat("─", cellWidth*7) + "\n")

	for _, h := range weekdayHeader {
		out.WriteString(fmt.Sprintf("%-*s", cellWidth, h))
	}
	out.WriteString("\n")

	column := 0
	for i, day := range cal.Days {
		date, err := time.Parse("2006-01-02", day.Date)
		if err != nil {
			return fmt.Errorf("day %d: %w", i+1, err)
		}
		if i == 0 {
			column = (int(date.Weekday()) + 6) % 7
			out.WriteString(strings.Repeat(" ", column*cellWidth))
		}

		glyph := day.Glyph
		if day.WfhOngoing {
			glyph += "*"
		}
		// pad outside the color codes so columns stay aligned
		cell := fmt.Sprintf("%2d %s", date.Day(), statusColor(attendance.Status(day.Status)).Sprint(glyph))
		out.WriteString(cell)
		out.WriteString(strings.Repeat(" ", max(1, cellWidth-3-len([]rune(glyph)))))

		column++
		if column == 7 {
			out.WriteString("\n")
			column = 0
		}
	}
	if column != 0 {
		out.WriteString("\n")
	}

	out.WriteString("\n")
	for i, s := range legend {
		if i > 0 {
			out.WriteString("  ")
		}
		out.WriteString(statusColor(s).Sprint(s.Glyph()))
		out.WriteString(" " + string(s))
	}
	out.WriteString("\n\n")

	sum := cal.Summary
	fmt.Fprintf(&out, "Days present:      %d\n", sum.DaysPresent)
	fmt.Fprintf(&out, "Hours this week:   %.2f / %.2f\n", sum.WeeklyHours, sum.ExpectedWeeklyHours)
	fmt.Fprintf(&out, "Hours this month:  %.2f\n", sum.MonthlyHours)
	fmt.Fprintf(&out, "Average per day:   %.2f\n", sum.AverageHoursPerDay)

	_, err := io.WriteString(w, out.String())
	return err
}
