package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/leave"
)

const jobInterval = time.Hour

type AttendanceJobs struct {
	attendanceSvc attendance.AttendanceService
	leaveSvc      leave.LeaveService
	now           func() time.Time
}

func NewAttendanceJobs(attendanceSvc attendance.AttendanceService, leaveSvc leave.LeaveService, now func() time.Time) *AttendanceJobs {
	if now == nil {
		now = time.Now
	}
	return &AttendanceJobs{
		attendanceSvc: attendanceSvc,
		leaveSvc:      leaveSvc,
		now:           now,
	}
}

// RegisterJobs adds the nightly leave-marking jobs. Both are idempotent, so
// they run hourly and catch up after downtime.
func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("materialize_leave_days", jobInterval, j.MaterializeLeaveDays)
	scheduler.AddJob("close_stale_wfh_sessions", jobInterval, j.CloseStaleWfhSessions)
}

func (j *AttendanceJobs) MaterializeLeaveDays(ctx context.Context) error {
	inserted, err := j.leaveSvc.MaterializeLeaveDays(ctx, j.now())
	if err != nil {
		return fmt.Errorf("materialize leave days: %w", err)
	}
	if inserted > 0 {
		slog.Info("Cron: leave days marked", "inserted", inserted)
	}
	return nil
}

func (j *AttendanceJobs) CloseStaleWfhSessions(ctx context.Context) error {
	closed, err := j.attendanceSvc.CloseStaleWfhSessions(ctx)
	if err != nil {
		return fmt.Errorf("close stale wfh sessions: %w", err)
	}
	if closed > 0 {
		slog.Info("Cron: stale wfh sessions closed", "closed", closed)
	}
	return nil
}
