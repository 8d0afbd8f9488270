package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/site"
	"github.com/cmlabs-hris/siteops-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	workerID = "0192d1a0-0000-7000-8000-000000000001"
	adminID  = "0192d1a0-0000-7000-8000-0000000000aa"
)

type fakeAttendanceService struct {
	attendance.AttendanceService
	scanErr     error
	scanned     attendance.ScanRequest
	calendarErr error
	calendarReq attendance.MonthlyCalendarRequest
}

func (f *fakeAttendanceService) Scan(_ context.Context, req attendance.ScanRequest) (attendance.ScanResponse, error) {
	f.scanned = req
	if f.scanErr != nil {
		return attendance.ScanResponse{}, f.scanErr
	}
	return attendance.ScanResponse{EmployeeID: req.EmployeeID, EventType: string(attendance.EventClockIn)}, nil
}

func (f *fakeAttendanceService) GetMonthlyCalendar(_ context.Context, req attendance.MonthlyCalendarRequest) (attendance.MonthlyCalendarResponse, error) {
	f.calendarReq = req
	if f.calendarErr != nil {
		return attendance.MonthlyCalendarResponse{}, f.calendarErr
	}
	return attendance.MonthlyCalendarResponse{EmployeeID: req.EmployeeID, Year: req.Year, Month: req.Month}, nil
}

func (f *fakeAttendanceService) ListMonthlyStats(_ context.Context, req attendance.ListStatsRequest) (attendance.ListStatsResponse, error) {
	return attendance.ListStatsResponse{Year: req.Year, Month: req.Month}, nil
}

type fakeLeaveService struct {
	leave.LeaveService
	filter leave.LeaveRequestFilter
}

func (f *fakeLeaveService) ListRequests(_ context.Context, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	f.filter = filter
	return leave.ListLeaveRequestResponse{TotalCount: 1, Page: 1, Limit: 20, TotalPages: 1}, nil
}

type fakeAuthService struct {
	auth.AuthService
	refreshed string
}

func (f *fakeAuthService) RefreshToken(_ context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	f.refreshed = req.RefreshToken
	return auth.AccessTokenResponse{AccessToken: "new"}, nil
}

type fakeReportService struct {
	report.ReportService
}

func (fakeReportService) ExportMonthly(_ context.Context, req report.MonthlyExportRequest) (report.MonthlyExport, error) {
	if req.Month == 2 {
		return report.MonthlyExport{}, report.ErrNoEmployees
	}
	return report.MonthlyExport{
		FileName:   fmt.Sprintf("attendance-%d-%02d.xlsx", req.Year, req.Month),
		Content:    []byte("PK"),
		ArchiveURL: "/files/reports/attendance.xlsx",
	}, nil
}

type testServer struct {
	srv        *httptest.Server
	jwt        *jwt.JWTService
	hub        *sse.Hub
	attendance *fakeAttendanceService
	leave      *fakeLeaveService
	auth       *fakeAuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ts := &testServer{
		jwt:        jwt.NewJWTService("handler-test-secret", time.Hour, 24*time.Hour),
		hub:        sse.NewHub(),
		attendance: &fakeAttendanceService{},
		leave:      &fakeLeaveService{},
		auth:       &fakeAuthService{},
	}

	router := NewRouter(RouterOptions{AllowedOrigins: []string{"http://localhost:3000"}}, ts.jwt, Handlers{
		Auth:       NewAuthHandler(ts.jwt, ts.auth),
		Attendance: NewAttendanceHandler(ts.attendance, ts.jwt, ts.hub, time.UTC),
		Leave:      NewLeaveHandler(ts.leave),
		Employee:   NewEmployeeHandler(struct{ employee.EmployeeService }{}),
		Site:       NewSiteHandler(struct{ site.SiteService }{}),
		Report:     NewReportHandler(fakeReportService{}),
	})
	ts.srv = httptest.NewUnstartedServer(router)
	ts.srv.Config.RegisterOnShutdown(ts.hub.Close)
	ts.srv.Start()
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *testServer) token(t *testing.T, employeeID string, role employee.Role) string {
	t.Helper()
	token, _, err := ts.jwt.GenerateAccessToken(jwt.AccessClaims{EmployeeID: employeeID, Username: "u", Role: string(role)})
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(t *testing.T, method, path, token, body string) (*http.Response, response.Response) {
	t.Helper()

	req, err := http.NewRequest(method, ts.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope response.Response
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	}
	return resp, envelope
}

func TestRouter_RequiresAccessToken(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodGet, "/api/v1/attendance/me/calendar", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, body.Success)

	refresh, _, err := ts.jwt.GenerateRefreshToken(workerID)
	require.NoError(t, err)
	resp, _ = ts.do(t, http.MethodGet, "/api/v1/attendance/me/calendar", refresh, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "refresh tokens are not access tokens")
}

func TestRouter_AdminOnlyRoutes(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodGet, "/api/v1/attendance/stats?year=2025&month=1", ts.token(t, workerID, employee.RoleFieldWorker), "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.NotNil(t, body.Error)
	assert.Equal(t, "FORBIDDEN", body.Error.Code)

	resp, _ = ts.do(t, http.MethodGet, "/api/v1/attendance/stats?year=2025&month=1", ts.token(t, adminID, employee.RoleAdmin), "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCalendar_InvalidInputMapsToBadRequest(t *testing.T) {
	ts := newTestServer(t)
	ts.attendance.calendarErr = fmt.Errorf("failed to classify month: %w", attendance.ErrInvalidInput)

	resp, body := ts.do(t, http.MethodGet, "/api/v1/attendance/me/calendar?year=2025&month=1", ts.token(t, workerID, employee.RoleFieldWorker), "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, body.Error)
	assert.Equal(t, "BAD_REQUEST", body.Error.Code)
}

func TestCalendar_UsesTokenEmployeeAndQueryMonth(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodGet, "/api/v1/attendance/me/calendar?year=2025&month=3", ts.token(t, workerID, employee.RoleFieldWorker), "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, attendance.MonthlyCalendarRequest{EmployeeID: workerID, Year: 2025, Month: 3}, ts.attendance.calendarReq)

	resp, body := ts.do(t, http.MethodGet, "/api/v1/attendance/me/calendar?month=march", ts.token(t, workerID, employee.RoleFieldWorker), "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.NotNil(t, body.Error)
	assert.Contains(t, body.Error.Details, "month")
}

func TestScan(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, workerID, employee.RoleFieldWorker)

	resp, body := ts.do(t, http.MethodPost, "/api/v1/attendance/scan", token, `{"qr_token":"site-code","employee_id":"someone-else"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, body.Success)
	assert.Equal(t, workerID, ts.attendance.scanned.EmployeeID, "employee comes from the token, not the body")
	assert.Equal(t, "site-code", ts.attendance.scanned.QRToken)

	ts.attendance.scanErr = attendance.ErrScanInProgress
	resp, _ = ts.do(t, http.MethodPost, "/api/v1/attendance/scan", token, `{"qr_token":"site-code"}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	ts.attendance.scanErr = site.ErrUnknownQRCode
	resp, _ = ts.do(t, http.MethodPost, "/api/v1/attendance/scan", token, `{"qr_token":"site-code"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodPost, "/api/v1/attendance/scan", token, `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListLeaveRequests_NonAdminSeesOwnOnly(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodGet, "/api/v1/leave-requests?employee_id="+adminID+"&status=approved", ts.token(t, workerID, employee.RoleOfficeEmployee), "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, ts.leave.filter.EmployeeID)
	assert.Equal(t, workerID, *ts.leave.filter.EmployeeID)
	require.NotNil(t, ts.leave.filter.Status)
	assert.Equal(t, "approved", *ts.leave.filter.Status)
	require.NotNil(t, body.Meta)
	assert.EqualValues(t, 1, body.Meta.TotalItems)

	_, _ = ts.do(t, http.MethodGet, "/api/v1/leave-requests?employee_id="+workerID, ts.token(t, adminID, employee.RoleAdmin), "")
	require.NotNil(t, ts.leave.filter.EmployeeID)
	assert.Equal(t, workerID, *ts.leave.filter.EmployeeID)

	_, _ = ts.do(t, http.MethodGet, "/api/v1/leave-requests", ts.token(t, adminID, employee.RoleAdmin), "")
	assert.Nil(t, ts.leave.filter.EmployeeID)
}

func TestRefreshToken_FallsBackToCookie(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, ts.srv.URL+"/api/v1/auth/refresh", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: refreshTokenCookieName, Value: "from-cookie"})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "from-cookie", ts.auth.refreshed)

	resp, _ = ts.do(t, http.MethodPost, "/api/v1/auth/refresh", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestExportMonthlyAttendance(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, adminID, employee.RoleAdmin)

	req, err := http.NewRequest(http.MethodGet, ts.srv.URL+"/api/v1/reports/attendance/export?year=2025&month=1", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	content, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, report.WorkbookContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attendance-2025-01.xlsx")
	assert.Equal(t, "/files/reports/attendance.xlsx", resp.Header.Get("X-Archive-URL"))
	assert.Equal(t, "PK", string(content))

	r2, _ := ts.do(t, http.MethodGet, "/api/v1/reports/attendance/export?year=2025&month=2", token, "")
	assert.Equal(t, http.StatusNotFound, r2.StatusCode)

	r3, _ := ts.do(t, http.MethodGet, "/api/v1/reports/attendance/export?year=2025", token, "")
	assert.Equal(t, http.StatusBadRequest, r3.StatusCode)
}

func TestStream(t *testing.T) {
	ts := newTestServer(t)

	foreign, _, err := ts.jwt.GenerateSSEToken(adminID)
	require.NoError(t, err)
	resp, _ := ts.do(t, http.MethodGet, "/api/v1/attendance/employees/"+workerID+"/stream?token="+foreign, "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "token scoped to another employee")

	access := ts.token(t, workerID, employee.RoleFieldWorker)
	resp, _ = ts.do(t, http.MethodGet, "/api/v1/attendance/employees/"+workerID+"/stream?token="+access, "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "access tokens are not stream tokens")

	own, _, err := ts.jwt.GenerateSSEToken(workerID)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.srv.URL+"/api/v1/attendance/employees/"+workerID+"/stream?token="+own, nil)
	require.NoError(t, err)

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	buf := make([]byte, 256)
	n, err := resp.Body.Read(buf)
	require.NoError(t, err)
	assert.Contains(t, string(buf[:n]), "event: connected")
}

func TestStream_ShutdownEndsOpenStreams(t *testing.T) {
	ts := newTestServer(t)

	token, _, err := ts.jwt.GenerateSSEToken(workerID)
	require.NoError(t, err)

	resp, err := http.Get(ts.srv.URL + "/api/v1/attendance/employees/" + workerID + "/stream?token=" + token)
	require.NoError(t, err)
	defer resp.Body.Close()

	buf := make([]byte, 256)
	n, err := resp.Body.Read(buf)
	require.NoError(t, err)
	require.Contains(t, string(buf[:n]), "event: connected")
	require.Equal(t, 1, ts.hub.SubscriberCount(workerID))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, ts.srv.Config.Shutdown(ctx))

	// the stream ends cleanly once the hub is closed
	_, err = io.ReadAll(resp.Body)
	assert.NoError(t, err)
}
