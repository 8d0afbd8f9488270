package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/site"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/cache"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/lock"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/sse"
	"golang.org/x/sync/errgroup"
)

const (
	// scanCooldown rejects a second scan by the same employee for this long.
	scanCooldown = 5 * time.Second

	defaultStatsConcurrency = 8
)

// WfhApprovalChecker reports whether an approved request of the type covers date.
type WfhApprovalChecker interface {
	HasApprovedCovering(ctx context.Context, employeeID string, requestType leave.RequestType, date time.Time) (bool, error)
}

type AttendanceServiceImpl struct {
	clockEvents      attendance.ClockEventRepository
	wfhSessions      attendance.WfhSessionRepository
	sites            site.SiteRepository
	employees        employee.EmployeeRepository
	wfhApprovals     WfhApprovalChecker
	classifier       *MonthClassifier
	locker           lock.Locker
	hub              *sse.Hub
	profiles         *cache.Cache[string, employee.Employee]
	statsConcurrency int
}

func NewAttendanceService(
	clockEventRepo attendance.ClockEventRepository,
	wfhSessionRepo attendance.WfhSessionRepository,
	siteRepo site.SiteRepository,
	employeeRepo employee.EmployeeRepository,
	wfhApprovals WfhApprovalChecker,
	classifier *MonthClassifier,
	locker lock.Locker,
	hub *sse.Hub,
	profiles *cache.Cache[string, employee.Employee],
	statsConcurrency int,
) attendance.AttendanceService {
	if statsConcurrency <= 0 {
		statsConcurrency = defaultStatsConcurrency
	}
	return &AttendanceServiceImpl{
		clockEvents:      clockEventRepo,
		wfhSessions:      wfhSessionRepo,
		sites:            siteRepo,
		employees:        employeeRepo,
		wfhApprovals:     wfhApprovals,
		classifier:       classifier,
		locker:           locker,
		hub:              hub,
		profiles:         profiles,
		statsConcurrency: statsConcurrency,
	}
}

// Scan implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Scan(ctx context.Context, req attendance.ScanRequest) (attendance.ScanResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ScanResponse{}, err
	}

	emp, err := s.activeEmployee(ctx, req.EmployeeID)
	if err != nil {
		return attendance.ScanResponse{}, err
	}

	st, err := s.sites.GetByQRToken(ctx, req.QRToken)
	if err != nil {
		if errors.Is(err, site.ErrSiteNotFound) {
			return attendance.ScanResponse{}, site.ErrUnknownQRCode
		}
		return attendance.ScanResponse{}, fmt.Errorf("failed to resolve site by QR token: %w", err)
	}

	key := "scan:" + emp.ID
	lockToken, acquired, err := s.locker.Lock(ctx, key, scanCooldown)
	if err != nil {
		return attendance.ScanResponse{}, fmt.Errorf("failed to acquire scan lock: %w", err)
	}
	if !acquired {
		return attendance.ScanResponse{}, attendance.ErrScanInProgress
	}

	event, err := s.recordScan(ctx, emp.ID, st.ID)
	if err != nil {
		// a failed scan may be retried right away
		if unlockErr := s.locker.Unlock(context.WithoutCancel(ctx), key, lockToken); unlockErr != nil {
			slog.Warn("failed to release scan lock", "employee_id", emp.ID, "error", unlockErr)
		}
		return attendance.ScanResponse{}, err
	}

	resp := attendance.ScanResponse{
		ID:         event.ID,
		EmployeeID: event.EmployeeID,
		SiteID:     st.ID,
		SiteName:   st.Name,
		EventType:  string(event.EventType),
		Timestamp:  event.Timestamp.In(s.classifier.Location()).Format(time.RFC3339),
	}

	slog.Info("Site scan recorded",
		"employee_id", emp.ID,
		"site_id", st.ID,
		"event_type", event.EventType)
	s.publish(emp.ID, resp)

	return resp, nil
}

// recordScan toggles against the employee's last event at the site today.
func (s *AttendanceServiceImpl) recordScan(ctx context.Context, employeeID, siteID string) (attendance.ClockEvent, error) {
	now := s.classifier.Now()

	last, err := s.clockEvents.GetLastAtSite(ctx, employeeID, siteID, startOfDay(now))
	if err != nil {
		return attendance.ClockEvent{}, fmt.Errorf("failed to get last clock event: %w", err)
	}

	eventType := attendance.EventClockIn
	if last != nil && last.EventType == attendance.EventClockIn {
		eventType = attendance.EventClockOut
	}

	event, err := s.clockEvents.Create(ctx, attendance.ClockEvent{
		EmployeeID: employeeID,
		SiteID:     siteID,
		EventType:  eventType,
		Timestamp:  now.UTC(),
	})
	if err != nil {
		return attendance.ClockEvent{}, fmt.Errorf("failed to create clock event: %w", err)
	}
	return event, nil
}

// StartWfh implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) StartWfh(ctx context.Context, employeeID string) (attendance.WfhSessionResponse, error) {
	emp, err := s.activeEmployee(ctx, employeeID)
	if err != nil {
		return attendance.WfhSessionResponse{}, err
	}

	now := s.classifier.Now()
	date := leave.CalendarDate(now)

	approved, err := s.wfhApprovals.HasApprovedCovering(ctx, emp.ID, leave.RequestTypeWfh, date)
	if err != nil {
		return attendance.WfhSessionResponse{}, fmt.Errorf("failed to check wfh approval: %w", err)
	}
	if !approved {
		return attendance.WfhSessionResponse{}, attendance.ErrWfhNotApproved
	}

	existing, err := s.wfhSessions.GetByEmployeeAndDate(ctx, emp.ID, date)
	if err != nil {
		return attendance.WfhSessionResponse{}, fmt.Errorf("failed to get wfh session: %w", err)
	}
	if existing != nil {
		if existing.Status == attendance.WfhStatusActive {
			return attendance.WfhSessionResponse{}, attendance.ErrWfhAlreadyStarted
		}
		return attendance.WfhSessionResponse{}, attendance.ErrWfhAlreadyEnded
	}

	created, err := s.wfhSessions.Create(ctx, attendance.WfhSession{
		EmployeeID: emp.ID,
		Date:       date,
		ClockIn:    now.UTC(),
		Status:     attendance.WfhStatusActive,
	})
	if err != nil {
		return attendance.WfhSessionResponse{}, fmt.Errorf("failed to create wfh session: %w", err)
	}

	resp := attendance.ToWfhSessionResponse(created)
	s.publish(emp.ID, resp)
	return resp, nil
}

// EndWfh implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) EndWfh(ctx context.Context, employeeID string) (attendance.WfhSessionResponse, error) {
	emp, err := s.activeEmployee(ctx, employeeID)
	if err != nil {
		return attendance.WfhSessionResponse{}, err
	}

	now := s.classifier.Now()

	session, err := s.wfhSessions.GetByEmployeeAndDate(ctx, emp.ID, leave.CalendarDate(now))
	if err != nil {
		return attendance.WfhSessionResponse{}, fmt.Errorf("failed to get wfh session: %w", err)
	}
	if session == nil {
		return attendance.WfhSessionResponse{}, attendance.ErrWfhNotStarted
	}
	if session.Status != attendance.WfhStatusActive {
		return attendance.WfhSessionResponse{}, attendance.ErrWfhAlreadyEnded
	}

	clockOut := now.UTC()
	minutes := int(clockOut.Sub(session.ClockIn).Minutes())
	if minutes < 0 {
		minutes = 0
	}
	session.ClockOut = &clockOut
	session.DurationMinutes = &minutes
	session.Status = attendance.WfhStatusComplete

	if err := s.wfhSessions.Update(ctx, *session); err != nil {
		return attendance.WfhSessionResponse{}, fmt.Errorf("failed to close wfh session: %w", err)
	}

	resp := attendance.ToWfhSessionResponse(*session)
	s.publish(emp.ID, resp)
	return resp, nil
}

// GetMonthlyCalendar implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMonthlyCalendar(ctx context.Context, req attendance.MonthlyCalendarRequest) (attendance.MonthlyCalendarResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.MonthlyCalendarResponse{}, err
	}

	emp, err := s.employee(ctx, req.EmployeeID)
	if err != nil {
		return attendance.MonthlyCalendarResponse{}, err
	}

	month := time.Month(req.Month)
	days, err := s.classifier.Classify(ctx, emp.ID, emp.Role, req.Year, month)
	if err != nil {
		return attendance.MonthlyCalendarResponse{}, fmt.Errorf("failed to classify month: %w", err)
	}

	ref := ReferenceDate(req.Year, month, s.classifier.Now())

	return attendance.MonthlyCalendarResponse{
		EmployeeID:   emp.ID,
		EmployeeName: emp.FullName,
		Role:         string(emp.Role),
		Year:         req.Year,
		Month:        req.Month,
		Days:         ToCalendarDays(days),
		Summary:      RoundSummary(Summarize(days, emp.Role, ref)),
	}, nil
}

// ListMonthlyStats implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListMonthlyStats(ctx context.Context, req attendance.ListStatsRequest) (attendance.ListStatsResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ListStatsResponse{}, err
	}

	month := time.Month(req.Month)
	loc := s.classifier.Location()
	ref := ReferenceDate(req.Year, month, s.classifier.Now())
	if parsed, ok := req.Reference(); ok {
		ref = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, loc)
	}

	employees, err := s.employees.ListActive(ctx)
	if err != nil {
		return attendance.ListStatsResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	tracked := make([]employee.Employee, 0, len(employees))
	for _, emp := range employees {
		if emp.Role != employee.RoleAdmin {
			tracked = append(tracked, emp)
		}
	}

	rows := make([]attendance.StatsRow, len(tracked))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.statsConcurrency)
	for i, emp := range tracked {
		g.Go(func() error {
			days, err := s.classifier.Classify(gctx, emp.ID, emp.Role, req.Year, month)
			if err != nil {
				return fmt.Errorf("employee %s: %w", emp.ID, err)
			}
			rows[i] = ToStatsRow(emp, days, ref)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return attendance.ListStatsResponse{}, fmt.Errorf("failed to build monthly stats: %w", err)
	}

	return attendance.ListStatsResponse{
		Year:          req.Year,
		Month:         req.Month,
		ReferenceDate: ref.Format(dateLayout),
		Rows:          rows,
	}, nil
}

// CloseStaleWfhSessions implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CloseStaleWfhSessions(ctx context.Context) (int64, error) {
	today := leave.CalendarDate(s.classifier.Now())

	n, err := s.wfhSessions.MarkStaleIncomplete(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("failed to close stale wfh sessions: %w", err)
	}
	return n, nil
}

func (s *AttendanceServiceImpl) employee(ctx context.Context, id string) (employee.Employee, error) {
	load := func() (employee.Employee, error) {
		return s.employees.GetByID(ctx, id)
	}
	if s.profiles == nil {
		return load()
	}
	return s.profiles.GetOrLoad(id, load)
}

func (s *AttendanceServiceImpl) activeEmployee(ctx context.Context, id string) (employee.Employee, error) {
	emp, err := s.employee(ctx, id)
	if err != nil {
		return employee.Employee{}, err
	}
	if !emp.IsActive {
		return employee.Employee{}, attendance.ErrEmployeeInactive
	}
	return emp, nil
}

func (s *AttendanceServiceImpl) publish(employeeID string, data any) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(sse.Event{
		EmployeeID: employeeID,
		Name:       sse.EventAttendanceUpdated,
		Data:       data,
	})
}
