package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/site"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/cache"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/lock"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	tokenSiteA = "0b6f2a9e-7c1d-4f3a-9d61-2f4b5e8a1c01"
	tokenSiteB = "5d3c8e1f-2a4b-4c6d-8e9f-0a1b2c3d4e02"
)

type serviceFixture struct {
	svc       attendance.AttendanceService
	events    *fakeClockEvents
	wfh       *fakeWfhSessions
	leaves    *fakeLeaveDays
	employees *fakeEmployees
	approvals *fakeApprovals
	hub       *sse.Hub
	now       time.Time
}

func newServiceFixture(t *testing.T, locker lock.Locker) *serviceFixture {
	t.Helper()

	f := &serviceFixture{
		events: &fakeClockEvents{},
		wfh:    newFakeWfhSessions(),
		leaves: &fakeLeaveDays{},
		employees: &fakeEmployees{list: []employee.Employee{
			{ID: "emp-1", Username: "dewi", FullName: "Dewi Lestari", Role: employee.RoleOfficeEmployee, IsActive: true},
			{ID: "emp-2", Username: "agus", FullName: "Agus Salim", Role: employee.RoleFieldWorker, IsActive: true},
			{ID: "emp-3", Username: "rina", FullName: "Rina Wati", Role: employee.RoleFieldWorker, IsActive: false},
			{ID: "adm-1", Username: "admin", FullName: "Site Admin", Role: employee.RoleAdmin, IsActive: true},
		}},
		approvals: &fakeApprovals{approved: map[string]bool{}},
		hub:       sse.NewHub(),
		// Wednesday
		now: localTime(2024, time.June, 12, 10, 0),
	}

	sites := &fakeSites{byToken: map[string]site.Site{
		tokenSiteA: {ID: "site-a", Name: "Depot North", QRToken: tokenSiteA},
		tokenSiteB: {ID: "site-b", Name: "Depot South", QRToken: tokenSiteB},
	}}

	fetcher := NewRecordFetcher(f.events, f.wfh, f.leaves, RetryPolicy{Attempts: 3, Delay: time.Millisecond, MaxDelay: 5 * time.Millisecond})
	classifier := NewMonthClassifier(fetcher, testLoc, func() time.Time { return f.now })

	f.svc = NewAttendanceService(
		f.events,
		f.wfh,
		sites,
		f.employees,
		f.approvals,
		classifier,
		locker,
		f.hub,
		cache.New[string, employee.Employee](100, time.Minute),
		2,
	)
	return f
}

func TestScan_TogglesPerSite(t *testing.T) {
	f := newServiceFixture(t, &alwaysLock{})
	ctx := context.Background()

	scan := func(token string) attendance.ScanResponse {
		t.Helper()
		resp, err := f.svc.Scan(ctx, attendance.ScanRequest{EmployeeID: "emp-1", QRToken: token})
		require.NoError(t, err)
		f.now = f.now.Add(time.Hour)
		return resp
	}

	first := scan(tokenSiteA)
	assert.Equal(t, "clock_in", first.EventType)
	assert.Equal(t, "Depot North", first.SiteName)
	assert.Equal(t, "2024-06-12T10:00:00+07:00", first.Timestamp)

	assert.Equal(t, "clock_in", scan(tokenSiteB).EventType)
	assert.Equal(t, "clock_out", scan(tokenSiteA).EventType)
	assert.Equal(t, "clock_out", scan(tokenSiteB).EventType)
	assert.Equal(t, "clock_in", scan(tokenSiteA).EventType)

	require.Len(t, f.events.events, 5)
	assert.True(t, f.events.events[0].Timestamp.Equal(localTime(2024, time.June, 12, 10, 0)))
	assert.Equal(t, time.UTC, f.events.events[0].Timestamp.Location())
}

func TestScan_NewDayStartsWithClockIn(t *testing.T) {
	f := newServiceFixture(t, &alwaysLock{})
	ctx := context.Background()

	f.now = localTime(2024, time.June, 11, 22, 0)
	resp, err := f.svc.Scan(ctx, attendance.ScanRequest{EmployeeID: "emp-1", QRToken: tokenSiteA})
	require.NoError(t, err)
	assert.Equal(t, "clock_in", resp.EventType)

	// 00:30 local is still June 11 in UTC; the local day decides
	f.now = localTime(2024, time.June, 12, 0, 30)
	resp, err = f.svc.Scan(ctx, attendance.ScanRequest{EmployeeID: "emp-1", QRToken: tokenSiteA})
	require.NoError(t, err)
	assert.Equal(t, "clock_in", resp.EventType)
}

func TestScan_CooldownRejectsDoubleScan(t *testing.T) {
	f := newServiceFixture(t, lock.NewMemoryLock())
	ctx := context.Background()

	_, err := f.svc.Scan(ctx, attendance.ScanRequest{EmployeeID: "emp-1", QRToken: tokenSiteA})
	require.NoError(t, err)

	_, err = f.svc.Scan(ctx, attendance.ScanRequest{EmployeeID: "emp-1", QRToken: tokenSiteA})
	assert.ErrorIs(t, err, attendance.ErrScanInProgress)

	// other employees are not affected
	_, err = f.svc.Scan(ctx, attendance.ScanRequest{EmployeeID: "emp-2", QRToken: tokenSiteA})
	assert.NoError(t, err)

	assert.Len(t, f.events.events, 2)
}

func TestScan_Errors(t *testing.T) {
	locker := &alwaysLock{}
	f := newServiceFixture(t, locker)
	ctx := context.Background()

	_, err := f.svc.Scan(ctx, attendance.ScanRequest{EmployeeID: "emp-1", QRToken: "not-a-uuid"})
	assert.Error(t, err)

	_, err = f.svc.Scan(ctx, attendance.ScanRequest{EmployeeID: "emp-1", QRToken: "9a9a9a9a-0000-4000-8000-000000000000"})
	assert.ErrorIs(t, err, site.ErrUnknownQRCode)

	_, err = f.svc.Scan(ctx, attendance.ScanRequest{EmployeeID: "emp-3", QRToken: tokenSiteA})
	assert.ErrorIs(t, err, attendance.ErrEmployeeInactive)

	_, err = f.svc.Scan(ctx, attendance.ScanRequest{EmployeeID: "ghost", QRToken: tokenSiteA})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	assert.Empty(t, f.events.events)
	assert.Zero(t, locker.locks)
}

func TestScan_PublishesToEmployeeStream(t *testing.T) {
	f := newServiceFixture(t, &alwaysLock{})
	ch, cleanup := f.hub.Subscribe("emp-1")
	defer cleanup()

	_, err := f.svc.Scan(context.Background(), attendance.ScanRequest{EmployeeID: "emp-1", QRToken: tokenSiteA})
	require.NoError(t, err)

	select {
	case ev := <-ch:
		assert.Equal(t, sse.EventAttendanceUpdated, ev.Name)
		resp, ok := ev.Data.(attendance.ScanResponse)
		require.True(t, ok)
		assert.Equal(t, "clock_in", resp.EventType)
	default:
		t.Fatal("expected an attendance.updated event")
	}
}

func TestWfhLifecycle(t *testing.T) {
	f := newServiceFixture(t, &alwaysLock{})
	ctx := context.Background()

	_, err := f.svc.StartWfh(ctx, "emp-1")
	assert.ErrorIs(t, err, attendance.ErrWfhNotApproved)

	f.approvals.approved["emp-1|wfh|2024-06-12"] = true

	_, err = f.svc.EndWfh(ctx, "emp-1")
	assert.ErrorIs(t, err, attendance.ErrWfhNotStarted)

	started, err := f.svc.StartWfh(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "active", started.Status)
	assert.Equal(t, "2024-06-12", started.Date)
	assert.Nil(t, started.ClockOutTime)

	_, err = f.svc.StartWfh(ctx, "emp-1")
	assert.ErrorIs(t, err, attendance.ErrWfhAlreadyStarted)

	f.now = f.now.Add(6*time.Hour + 30*time.Minute)
	ended, err := f.svc.EndWfh(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "complete", ended.Status)
	require.NotNil(t, ended.DurationMinutes)
	assert.Equal(t, 390, *ended.DurationMinutes)
	assert.NotNil(t, ended.ClockOutTime)

	_, err = f.svc.EndWfh(ctx, "emp-1")
	assert.ErrorIs(t, err, attendance.ErrWfhAlreadyEnded)
	_, err = f.svc.StartWfh(ctx, "emp-1")
	assert.ErrorIs(t, err, attendance.ErrWfhAlreadyEnded)
}

func TestCloseStaleWfhSessions(t *testing.T) {
	f := newServiceFixture(t, &alwaysLock{})
	ctx := context.Background()

	f.wfh.sessions[wfhKey("emp-1", dateOnly(2024, time.June, 11))] = attendance.WfhSession{
		EmployeeID: "emp-1", Date: dateOnly(2024, time.June, 11), ClockIn: localTime(2024, time.June, 11, 9, 0), Status: attendance.WfhStatusActive,
	}
	f.wfh.sessions[wfhKey("emp-2", dateOnly(2024, time.June, 12))] = attendance.WfhSession{
		EmployeeID: "emp-2", Date: dateOnly(2024, time.June, 12), ClockIn: localTime(2024, time.June, 12, 9, 0), Status: attendance.WfhStatusActive,
	}

	n, err := f.svc.CloseStaleWfhSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.True(t, f.wfh.staleBefore.Equal(dateOnly(2024, time.June, 12)))
	assert.Equal(t, attendance.WfhStatusIncomplete, f.wfh.sessions[wfhKey("emp-1", dateOnly(2024, time.June, 11))].Status)
	assert.Equal(t, attendance.WfhStatusActive, f.wfh.sessions[wfhKey("emp-2", dateOnly(2024, time.June, 12))].Status)
}

func seedJune(f *serviceFixture) {
	f.events.events = []attendance.ClockEvent{
		clockEventFor("emp-1", "site-a", attendance.EventClockIn, localTime(2024, time.June, 3, 8, 0)),
		clockEventFor("emp-1", "site-a", attendance.EventClockOut, localTime(2024, time.June, 3, 16, 0)),
		clockEventFor("emp-2", "site-b", attendance.EventClockIn, localTime(2024, time.June, 1, 8, 0)),
		clockEventFor("emp-2", "site-b", attendance.EventClockOut, localTime(2024, time.June, 1, 12, 0)),
		// previous month is ignored
		clockEventFor("emp-1", "site-a", attendance.EventClockIn, localTime(2024, time.May, 31, 8, 0)),
	}
	f.wfh.sessions[wfhKey("emp-1", dateOnly(2024, time.June, 5))] = attendance.WfhSession{
		EmployeeID: "emp-1", Date: dateOnly(2024, time.June, 5), ClockIn: localTime(2024, time.June, 5, 9, 0),
		DurationMinutes: intPtr(390), Status: attendance.WfhStatusComplete,
	}
	f.leaves.days = []attendance.LeaveDay{{EmployeeID: "emp-1", Date: dateOnly(2024, time.June, 7)}}
}

func clockEventFor(employeeID, siteID string, typ attendance.EventType, at time.Time) attendance.ClockEvent {
	ev := clockEvent(siteID, typ, at)
	ev.EmployeeID = employeeID
	return ev
}

func TestGetMonthlyCalendar(t *testing.T) {
	f := newServiceFixture(t, &alwaysLock{})
	seedJune(f)

	resp, err := f.svc.GetMonthlyCalendar(context.Background(), attendance.MonthlyCalendarRequest{EmployeeID: "emp-1", Year: 2024, Month: 6})
	require.NoError(t, err)

	assert.Equal(t, "Dewi Lestari", resp.EmployeeName)
	require.Len(t, resp.Days, 30)
	assert.Equal(t, "P", resp.Days[2].Glyph)
	assert.Equal(t, "W", resp.Days[4].Glyph)
	assert.Equal(t, "L", resp.Days[6].Glyph)
	assert.Equal(t, "A", resp.Days[10].Glyph)
	// today before the evening cutoff
	assert.Equal(t, "—", resp.Days[11].Glyph)
	assert.Equal(t, "—", resp.Days[20].Glyph)

	assert.Equal(t, 2, resp.Summary.DaysPresent)
	assert.Equal(t, 14.5, resp.Summary.MonthlyHours)
	assert.Equal(t, 7.25, resp.Summary.AverageHoursPerDay)
	assert.Equal(t, 0.0, resp.Summary.WeeklyHours)
	assert.Equal(t, 40.0, resp.Summary.ExpectedWeeklyHours)
}

func TestGetMonthlyCalendar_CachesProfiles(t *testing.T) {
	f := newServiceFixture(t, &alwaysLock{})
	ctx := context.Background()
	req := attendance.MonthlyCalendarRequest{EmployeeID: "emp-1", Year: 2024, Month: 6}

	_, err := f.svc.GetMonthlyCalendar(ctx, req)
	require.NoError(t, err)
	_, err = f.svc.GetMonthlyCalendar(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, 1, f.employees.lookups)
}

func TestGetMonthlyCalendar_RetriesTransientFailures(t *testing.T) {
	f := newServiceFixture(t, &alwaysLock{})
	seedJune(f)
	f.events.failures = 2
	f.events.err = errors.New("connection reset by peer")

	resp, err := f.svc.GetMonthlyCalendar(context.Background(), attendance.MonthlyCalendarRequest{EmployeeID: "emp-1", Year: 2024, Month: 6})
	require.NoError(t, err)
	assert.Equal(t, 3, f.events.reads)
	assert.Equal(t, "P", resp.Days[2].Glyph)
}

func TestGetMonthlyCalendar_SurfacesPersistentFailure(t *testing.T) {
	f := newServiceFixture(t, &alwaysLock{})
	boom := errors.New("connection refused")
	f.events.failures = 10
	f.events.err = boom

	_, err := f.svc.GetMonthlyCalendar(context.Background(), attendance.MonthlyCalendarRequest{EmployeeID: "emp-1", Year: 2024, Month: 6})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, f.events.reads)
}

func TestGetMonthlyCalendar_InvalidRequest(t *testing.T) {
	f := newServiceFixture(t, &alwaysLock{})

	_, err := f.svc.GetMonthlyCalendar(context.Background(), attendance.MonthlyCalendarRequest{EmployeeID: "emp-1", Year: 2024, Month: 13})
	assert.Error(t, err)
	assert.Zero(t, f.events.reads)
}

func TestListMonthlyStats(t *testing.T) {
	f := newServiceFixture(t, &alwaysLock{})
	seedJune(f)
	ref := "2024-06-03"

	resp, err := f.svc.ListMonthlyStats(context.Background(), attendance.ListStatsRequest{Year: 2024, Month: 6, ReferenceDate: &ref})
	require.NoError(t, err)

	assert.Equal(t, "2024-06-03", resp.ReferenceDate)
	// inactive employees and admins are not listed
	require.Len(t, resp.Rows, 2)

	office := resp.Rows[0]
	assert.Equal(t, "emp-1", office.EmployeeID)
	assert.Equal(t, 2, office.DaysPresent)
	assert.Equal(t, 14.5, office.WeeklyHours)
	assert.Equal(t, 40.0, office.ExpectedWeeklyHours)
	assert.Equal(t, 14.5, office.MonthlyHours)

	field := resp.Rows[1]
	assert.Equal(t, "emp-2", field.EmployeeID)
	assert.Equal(t, 1, field.DaysPresent)
	assert.Equal(t, 0.0, field.WeeklyHours)
	assert.Equal(t, 48.0, field.ExpectedWeeklyHours)
	assert.Equal(t, 4.0, field.MonthlyHours)
}

func TestListMonthlyStats_DefaultReferenceIsToday(t *testing.T) {
	f := newServiceFixture(t, &alwaysLock{})

	resp, err := f.svc.ListMonthlyStats(context.Background(), attendance.ListStatsRequest{Year: 2024, Month: 6})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-12", resp.ReferenceDate)

	resp, err = f.svc.ListMonthlyStats(context.Background(), attendance.ListStatsRequest{Year: 2024, Month: 5})
	require.NoError(t, err)
	assert.Equal(t, "2024-05-31", resp.ReferenceDate)
}

func TestListMonthlyStats_FailsWholeRequestOnFetchError(t *testing.T) {
	f := newServiceFixture(t, &alwaysLock{})
	boom := errors.New("connection refused")
	f.events.failures = 100
	f.events.err = boom

	_, err := f.svc.ListMonthlyStats(context.Background(), attendance.ListStatsRequest{Year: 2024, Month: 6})
	assert.ErrorIs(t, err, boom)
}

var _ WfhApprovalChecker = (leave.LeaveRequestRepository)(nil)
