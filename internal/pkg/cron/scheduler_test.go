package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/lock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunOnce_RunsEveryJob(t *testing.T) {
	s := NewScheduler(nil, 0)
	var ran []string
	s.AddJob("a", time.Hour, func(context.Context) error { ran = append(ran, "a"); return nil })
	s.AddJob("b", time.Hour, func(context.Context) error { ran = append(ran, "b"); return errors.New("boom") })
	s.AddJob("c", time.Hour, func(context.Context) error { ran = append(ran, "c"); return nil })

	err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b: boom")
	assert.Equal(t, []string{"a", "b", "c"}, ran)
}

func TestRunOnce_SkipsLockedJob(t *testing.T) {
	locker := lock.NewMemoryLock()
	ctx := context.Background()

	token, held, err := locker.Lock(ctx, "cron:materialize_leave_days", time.Minute)
	require.NoError(t, err)
	require.True(t, held)

	s := NewScheduler(locker, time.Minute)
	calls := 0
	s.AddJob("materialize_leave_days", time.Hour, func(context.Context) error { calls++; return nil })

	require.NoError(t, s.RunOnce(ctx))
	assert.Zero(t, calls)

	require.NoError(t, locker.Unlock(ctx, "cron:materialize_leave_days", token))
	require.NoError(t, s.RunOnce(ctx))
	assert.Equal(t, 1, calls)

	_, again, err := locker.Lock(ctx, "cron:materialize_leave_days", time.Minute)
	require.NoError(t, err)
	assert.True(t, again, "lock is released after the run")
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(nil, 0)
	done := make(chan struct{}, 1)
	s.AddJob("tick", time.Hour, func(context.Context) error {
		select {
		case done <- struct{}{}:
		default:
		}
		return nil
	})

	s.Start()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not run on start")
	}
	s.Stop()
}

type fakeAttendance struct {
	attendance.AttendanceService
	closed int64
	err    error
}

func (f *fakeAttendance) CloseStaleWfhSessions(context.Context) (int64, error) {
	return f.closed, f.err
}

type fakeLeave struct {
	leave.LeaveService
	dates []time.Time
}

func (f *fakeLeave) MaterializeLeaveDays(_ context.Context, date time.Time) (int64, error) {
	f.dates = append(f.dates, date)
	return 2, nil
}

func TestAttendanceJobs(t *testing.T) {
	now := time.Date(2024, 6, 12, 0, 5, 0, 0, time.UTC)
	att := &fakeAttendance{closed: 3}
	lv := &fakeLeave{}
	jobs := NewAttendanceJobs(att, lv, func() time.Time { return now })

	s := NewScheduler(lock.NewMemoryLock(), time.Minute)
	jobs.RegisterJobs(s)

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, []time.Time{now}, lv.dates)

	att.err = errors.New("db down")
	err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, att.err)
	assert.Contains(t, err.Error(), "close_stale_wfh_sessions")
}
