package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/employee"
	"github.com/codeGROOVE-dev/retry"
)

// RetryPolicy bounds the retries around one month fetch.
type RetryPolicy struct {
	Attempts uint
	Delay    time.Duration
	MaxDelay time.Duration
}

// RecordFetcher loads one employee-month of raw records, retrying transient failures.
type RecordFetcher struct {
	events attendance.ClockEventRepository
	wfh    attendance.WfhSessionRepository
	leaves attendance.LeaveDayRepository
	policy RetryPolicy
}

func NewRecordFetcher(
	events attendance.ClockEventRepository,
	wfh attendance.WfhSessionRepository,
	leaves attendance.LeaveDayRepository,
	policy RetryPolicy,
) *RecordFetcher {
	if policy.Attempts == 0 {
		policy.Attempts = 3
	}
	return &RecordFetcher{
		events: events,
		wfh:    wfh,
		leaves: leaves,
		policy: policy,
	}
}

// FetchMonth implements attendance.MonthDataSource. Clock events are selected by
// instant in loc; WFH and leave rows by calendar date. Collections are never nil.
func (f *RecordFetcher) FetchMonth(ctx context.Context, employeeID string, year int, month time.Month, loc *time.Location) (attendance.MonthRecords, error) {
	from, to := MonthBounds(year, month, loc)
	dateFrom, dateTo := MonthBounds(year, month, time.UTC)

	var records attendance.MonthRecords
	err := retry.Do(
		func() error {
			events, err := f.events.ListByEmployeeAndRange(ctx, employeeID, from, to)
			if err != nil {
				return fmt.Errorf("list clock events: %w", err)
			}
			sessions, err := f.wfh.ListByEmployeeAndRange(ctx, employeeID, dateFrom, dateTo)
			if err != nil {
				return fmt.Errorf("list wfh sessions: %w", err)
			}
			leaveDays, err := f.leaves.ListByEmployeeAndRange(ctx, employeeID, dateFrom, dateTo)
			if err != nil {
				return fmt.Errorf("list leave days: %w", err)
			}

			records = attendance.MonthRecords{
				Events:      orEmpty(events),
				WfhSessions: orEmpty(sessions),
				LeaveDays:   orEmpty(leaveDays),
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(f.policy.Attempts),
		retry.Delay(f.policy.Delay),
		retry.MaxDelay(f.policy.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("Retrying month fetch",
				"employee_id", employeeID,
				"year", year,
				"month", int(month),
				"attempt", n+1,
				"error", err)
		}),
	)
	if err != nil {
		return attendance.MonthRecords{}, fmt.Errorf("fetch %04d-%02d for employee %s: %w", year, int(month), employeeID, err)
	}

	return records, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// MonthClassifier fetches and classifies one employee-month against an injected clock.
type MonthClassifier struct {
	source attendance.MonthDataSource
	loc    *time.Location
	now    func() time.Time
}

func NewMonthClassifier(source attendance.MonthDataSource, loc *time.Location, now func() time.Time) *MonthClassifier {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &MonthClassifier{source: source, loc: loc, now: now}
}

// Now is the current moment in the tracker's location.
func (c *MonthClassifier) Now() time.Time {
	return c.now().In(c.loc)
}

func (c *MonthClassifier) Location() *time.Location {
	return c.loc
}

// Classify returns the employee's DayStatus list for the month.
func (c *MonthClassifier) Classify(ctx context.Context, employeeID string, role employee.Role, year int, month time.Month) ([]attendance.DayStatus, error) {
	records, err := c.source.FetchMonth(ctx, employeeID, year, month, c.loc)
	if err != nil {
		return nil, err
	}

	return ClassifyMonth(attendance.MonthInput{
		EmployeeID:  employeeID,
		Role:        role,
		Year:        year,
		Month:       month,
		Events:      records.Events,
		WfhSessions: records.WfhSessions,
		LeaveDays:   records.LeaveDays,
		Today:       c.Now(),
	})
}
