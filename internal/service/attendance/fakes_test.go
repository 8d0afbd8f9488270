package attendance

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/site"
)

type fakeClockEvents struct {
	mu     sync.Mutex
	events []attendance.ClockEvent
	// failures makes the next N range reads fail
	failures int
	reads    int
	err      error
}

func (f *fakeClockEvents) Create(_ context.Context, ev attendance.ClockEvent) (attendance.ClockEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev.ID = fmt.Sprintf("evt-%d", len(f.events)+1)
	f.events = append(f.events, ev)
	return ev, nil
}

func (f *fakeClockEvents) ListByEmployeeAndRange(_ context.Context, employeeID string, from, to time.Time) ([]attendance.ClockEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.failures > 0 {
		f.failures--
		return nil, f.err
	}
	var out []attendance.ClockEvent
	for _, ev := range f.events {
		if ev.EmployeeID == employeeID && !ev.Timestamp.Before(from) && ev.Timestamp.Before(to) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (f *fakeClockEvents) GetLastAtSite(_ context.Context, employeeID, siteID string, since time.Time) (*attendance.ClockEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var last *attendance.ClockEvent
	for i := range f.events {
		ev := f.events[i]
		if ev.EmployeeID != employeeID || ev.SiteID != siteID || ev.Timestamp.Before(since) {
			continue
		}
		if last == nil || !ev.Timestamp.Before(last.Timestamp) {
			last = &ev
		}
	}
	return last, nil
}

type fakeWfhSessions struct {
	mu          sync.Mutex
	sessions    map[string]attendance.WfhSession
	staleBefore time.Time
}

func newFakeWfhSessions() *fakeWfhSessions {
	return &fakeWfhSessions{sessions: make(map[string]attendance.WfhSession)}
}

func wfhKey(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format(dateLayout)
}

func (f *fakeWfhSessions) Create(_ context.Context, s attendance.WfhSession) (attendance.WfhSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = fmt.Sprintf("wfh-%d", len(f.sessions)+1)
	f.sessions[wfhKey(s.EmployeeID, s.Date)] = s
	return s, nil
}

func (f *fakeWfhSessions) GetByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) (*attendance.WfhSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[wfhKey(employeeID, date)]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeWfhSessions) Update(_ context.Context, s attendance.WfhSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[wfhKey(s.EmployeeID, s.Date)] = s
	return nil
}

func (f *fakeWfhSessions) ListByEmployeeAndRange(_ context.Context, employeeID string, from, to time.Time) ([]attendance.WfhSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []attendance.WfhSession
	for _, s := range f.sessions {
		if s.EmployeeID == employeeID && !s.Date.Before(from) && s.Date.Before(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeWfhSessions) MarkStaleIncomplete(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.staleBefore = before
	var n int64
	for k, s := range f.sessions {
		if s.Status == attendance.WfhStatusActive && s.Date.Before(before) {
			s.Status = attendance.WfhStatusIncomplete
			f.sessions[k] = s
			n++
		}
	}
	return n, nil
}

type fakeLeaveDays struct {
	days []attendance.LeaveDay
}

func (f *fakeLeaveDays) ListByEmployeeAndRange(_ context.Context, employeeID string, from, to time.Time) ([]attendance.LeaveDay, error) {
	var out []attendance.LeaveDay
	for _, d := range f.days {
		if d.EmployeeID == employeeID && !d.Date.Before(from) && d.Date.Before(to) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeLeaveDays) BulkInsert(_ context.Context, days []attendance.LeaveDay) (int64, error) {
	f.days = append(f.days, days...)
	return int64(len(days)), nil
}

type fakeSites struct {
	byToken map[string]site.Site
}

func (f *fakeSites) Create(_ context.Context, s site.Site) (site.Site, error) { return s, nil }

func (f *fakeSites) GetByID(_ context.Context, id string) (site.Site, error) {
	for _, s := range f.byToken {
		if s.ID == id {
			return s, nil
		}
	}
	return site.Site{}, site.ErrSiteNotFound
}

func (f *fakeSites) GetByQRToken(_ context.Context, token string) (site.Site, error) {
	s, ok := f.byToken[token]
	if !ok {
		return site.Site{}, site.ErrSiteNotFound
	}
	return s, nil
}

func (f *fakeSites) ExistsByName(context.Context, string) (bool, error) { return false, nil }
func (f *fakeSites) List(context.Context) ([]site.Site, error)          { return nil, nil }
func (f *fakeSites) UpdateQRToken(context.Context, string, string) error { return nil }
func (f *fakeSites) SoftDelete(context.Context, string) error            { return nil }

type fakeEmployees struct {
	list    []employee.Employee
	lookups int
}

func (f *fakeEmployees) Create(_ context.Context, e employee.Employee) (employee.Employee, error) {
	f.list = append(f.list, e)
	return e, nil
}

func (f *fakeEmployees) GetByID(_ context.Context, id string) (employee.Employee, error) {
	f.lookups++
	for _, e := range f.list {
		if e.ID == id {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployees) GetByUsername(_ context.Context, username string) (employee.Employee, error) {
	for _, e := range f.list {
		if e.Username == username {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployees) GetByEmail(_ context.Context, email string) (employee.Employee, error) {
	for _, e := range f.list {
		if e.Email == email {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployees) ListActive(context.Context) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range f.list {
		if e.IsActive {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEmployees) UpdatePassword(context.Context, string, string) error { return nil }
func (f *fakeEmployees) SoftDelete(context.Context, string) error             { return nil }

type fakeApprovals struct {
	approved map[string]bool
}

func (f *fakeApprovals) HasApprovedCovering(_ context.Context, employeeID string, requestType leave.RequestType, date time.Time) (bool, error) {
	return f.approved[employeeID+"|"+string(requestType)+"|"+date.Format(dateLayout)], nil
}

// alwaysLock never refuses, so consecutive scans in one test can toggle.
type alwaysLock struct {
	locks    int
	unlocked int
}

func (l *alwaysLock) Lock(context.Context, string, time.Duration) (string, bool, error) {
	l.locks++
	return "token", true, nil
}

func (l *alwaysLock) Unlock(context.Context, string, string) error {
	l.unlocked++
	return nil
}
