package attendance

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/employee"
)

// eveningCutoffHour is the local hour before which an empty workday today is not yet absent.
const eveningCutoffHour = 18

// ClassifyMonth derives one DayStatus per calendar day of in.Month, ascending by date.
//
// Records must already be filtered to the employee and the month. Calendar dates
// (WFH and leave dates) are compared by their own year/month/day; clock event
// timestamps are bucketed into days in the location of in.Today.
func ClassifyMonth(in attendance.MonthInput) ([]attendance.DayStatus, error) {
	if err := validateMonthInput(in); err != nil {
		return nil, err
	}

	loc := in.Today.Location()

	leaveDays := make(map[string]struct{}, len(in.LeaveDays))
	for _, l := range in.LeaveDays {
		leaveDays[dayKey(l.Date)] = struct{}{}
	}

	wfhByDay := make(map[string]attendance.WfhSession, len(in.WfhSessions))
	for _, s := range in.WfhSessions {
		key := dayKey(s.Date)
		if _, exists := wfhByDay[key]; !exists {
			wfhByDay[key] = s
		}
	}

	// day -> site -> events
	eventsByDay := make(map[string]map[string][]attendance.ClockEvent)
	for _, ev := range in.Events {
		key := dayKey(ev.Timestamp.In(loc))
		sites, ok := eventsByDay[key]
		if !ok {
			sites = make(map[string][]attendance.ClockEvent)
			eventsByDay[key] = sites
		}
		sites[ev.SiteID] = append(sites[ev.SiteID], ev)
	}

	first, _ := MonthBounds(in.Year, in.Month, loc)
	n := DaysInMonth(in.Year, in.Month)
	result := make([]attendance.DayStatus, 0, n)

	for i := 0; i < n; i++ {
		date := first.AddDate(0, 0, i)
		key := dayKey(date)

		if _, onLeave := leaveDays[key]; onLeave {
			result = append(result, attendance.DayStatus{Date: date, Status: attendance.StatusLeave})
			continue
		}

		if session, ok := wfhByDay[key]; ok {
			result = append(result, classifyWfh(date, session, loc))
			continue
		}

		if sites, ok := eventsByDay[key]; ok {
			worked, hasIncomplete, firstIn, lastOut := pairSiteEvents(sites, loc)
			hours := worked.Hours()
			day := attendance.DayStatus{
				Date:        date,
				Status:      resolveWorkday(date, in.Today, in.Role, hours, hasIncomplete),
				ClockIn:     firstIn,
				ClockOut:    lastOut,
				HoursWorked: hours,
			}
			result = append(result, day)
			continue
		}

		result = append(result, attendance.DayStatus{
			Date:   date,
			Status: resolveWorkday(date, in.Today, in.Role, 0, false),
		})
	}

	return result, nil
}

func classifyWfh(date time.Time, s attendance.WfhSession, loc *time.Location) attendance.DayStatus {
	clockIn := s.ClockIn.In(loc)
	day := attendance.DayStatus{
		Date:    date,
		ClockIn: &clockIn,
	}

	switch s.Status {
	case attendance.WfhStatusComplete:
		day.Status = attendance.StatusWfh
		if s.ClockOut != nil {
			clockOut := s.ClockOut.In(loc)
			day.ClockOut = &clockOut
		}
		switch {
		case s.DurationMinutes != nil:
			day.HoursWorked = float64(*s.DurationMinutes) / 60
		case s.ClockOut != nil && s.ClockOut.After(s.ClockIn):
			day.HoursWorked = s.ClockOut.Sub(s.ClockIn).Hours()
		}
	case attendance.WfhStatusIncomplete:
		day.Status = attendance.StatusIncompleteWfh
	default:
		day.Status = attendance.StatusWfh
		day.WfhOngoing = true
	}

	return day
}

// pairSiteEvents pairs the i-th clock-in with the i-th clock-out at each site.
// Durations are summed exactly; a pair whose clock-out precedes its clock-in adds nothing.
func pairSiteEvents(sites map[string][]attendance.ClockEvent, loc *time.Location) (time.Duration, bool, *time.Time, *time.Time) {
	var (
		worked        time.Duration
		hasIncomplete bool
		firstIn       *time.Time
		lastOut       *time.Time
	)

	for _, events := range sites {
		ins, outs := splitByType(events)

		for i, in := range ins {
			if i < len(outs) {
				if d := outs[i].Sub(in); d > 0 {
					worked += d
				}
			} else {
				hasIncomplete = true
			}
			if firstIn == nil || in.Before(*firstIn) {
				t := in.In(loc)
				firstIn = &t
			}
		}

		for _, out := range outs {
			if lastOut == nil || out.After(*lastOut) {
				t := out.In(loc)
				lastOut = &t
			}
		}
	}

	return worked, hasIncomplete, firstIn, lastOut
}

// splitByType returns clock-in and clock-out timestamps, each in timestamp order.
func splitByType(events []attendance.ClockEvent) ([]time.Time, []time.Time) {
	var ins, outs []time.Time
	for _, ev := range events {
		if ev.EventType == attendance.EventClockIn {
			ins = insertSorted(ins, ev.Timestamp)
		} else {
			outs = insertSorted(outs, ev.Timestamp)
		}
	}
	return ins, outs
}

func insertSorted(ts []time.Time, t time.Time) []time.Time {
	i := len(ts)
	for i > 0 && ts[i-1].After(t) {
		i--
	}
	ts = append(ts, time.Time{})
	copy(ts[i+1:], ts[i:])
	ts[i] = t
	return ts
}

// resolveWorkday applies the workday rule to a day that has no leave or WFH record.
func resolveWorkday(date, today time.Time, role employee.Role, hours float64, hasIncomplete bool) attendance.Status {
	switch {
	case date.After(startOfDay(today)):
		return attendance.StatusNotApplicable
	case !IsWorkday(date, role):
		return attendance.StatusNotApplicable
	case hours > 0:
		return attendance.StatusPresent
	case hasIncomplete:
		return attendance.StatusIncomplete
	case sameDay(date, today) && today.Hour() < eveningCutoffHour:
		return attendance.StatusNotApplicable
	default:
		return attendance.StatusAbsent
	}
}

func validateMonthInput(in attendance.MonthInput) error {
	if in.Year < 1 || in.Year > 9999 {
		return fmt.Errorf("%w: year %d out of range", attendance.ErrInvalidInput, in.Year)
	}
	if in.Month < time.January || in.Month > time.December {
		return fmt.Errorf("%w: month %d out of range", attendance.ErrInvalidInput, in.Month)
	}
	if in.Today.IsZero() {
		return fmt.Errorf("%w: current time is not set", attendance.ErrInvalidInput)
	}

	for i, ev := range in.Events {
		if ev.Timestamp.IsZero() {
			return fmt.Errorf("%w: clock event %d has no timestamp", attendance.ErrInvalidInput, i)
		}
		if ev.EventType != attendance.EventClockIn && ev.EventType != attendance.EventClockOut {
			return fmt.Errorf("%w: clock event %d has type %q", attendance.ErrInvalidInput, i, ev.EventType)
		}
	}

	for i, s := range in.WfhSessions {
		if s.Date.IsZero() {
			return fmt.Errorf("%w: wfh session %d has no date", attendance.ErrInvalidInput, i)
		}
		if s.ClockIn.IsZero() {
			return fmt.Errorf("%w: wfh session %d has no clock-in time", attendance.ErrInvalidInput, i)
		}
		if s.ClockOut != nil && s.ClockOut.IsZero() {
			return fmt.Errorf("%w: wfh session %d has an empty clock-out time", attendance.ErrInvalidInput, i)
		}
		if s.DurationMinutes != nil && *s.DurationMinutes < 0 {
			return fmt.Errorf("%w: wfh session %d has negative duration", attendance.ErrInvalidInput, i)
		}
		switch s.Status {
		case attendance.WfhStatusActive, attendance.WfhStatusComplete, attendance.WfhStatusIncomplete:
		default:
			return fmt.Errorf("%w: wfh session %d has status %q", attendance.ErrInvalidInput, i, s.Status)
		}
	}

	for i, l := range in.LeaveDays {
		if l.Date.IsZero() {
			return fmt.Errorf("%w: leave day %d has no date", attendance.ErrInvalidInput, i)
		}
	}

	return nil
}
