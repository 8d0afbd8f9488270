package attendance

import (
	"time"

	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/employee"
)

const (
	dateLayout = "2006-01-02"

	// standardWorkdayHours is the expected length of one workday in weekly targets.
	standardWorkdayHours = 8
)

// DaysInMonth returns the number of calendar days in the month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthBounds returns midnight of the first day of the month and of the next month in loc.
func MonthBounds(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 1, 0)
}

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the Monday on or before t.
func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// dayKey identifies a calendar date by its own year/month/day fields.
func dayKey(t time.Time) string {
	return t.Format(dateLayout)
}

// IsWorkday reports whether the role is expected to attend on date, ignoring past/future.
func IsWorkday(date time.Time, role employee.Role) bool {
	switch date.Weekday() {
	case time.Sunday:
		return false
	case time.Saturday:
		return role.IsField()
	default:
		return true
	}
}
