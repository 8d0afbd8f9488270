// Command attendctl runs admin attendance tasks against the database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/cmlabs-hris/siteops-backend-go/internal/config"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/cache"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/lock"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/terminal"
	"github.com/cmlabs-hris/siteops-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/siteops-backend-go/internal/service/attendance"
	employeeService "github.com/cmlabs-hris/siteops-backend-go/internal/service/employee"
	leaveService "github.com/cmlabs-hris/siteops-backend-go/internal/service/leave"
	reportService "github.com/cmlabs-hris/siteops-backend-go/internal/service/report"
	"github.com/fatih/color"
)

const usage = `Usage: attendctl <command> [flags]

Commands:
  calendar   -user <username> [-year Y] [-month M]   print a month calendar
  import     <roster.xlsx|roster.xls>               create employees from a roster
  export     [-year Y] [-month M] [-out file.xlsx]  write the monthly workbook
  jobs                                              run the background jobs once
`

type app struct {
	loc        *time.Location
	employees  employee.EmployeeRepository
	attendance attendance.AttendanceService
	leave      leave.LeaveService
	employee   employee.EmployeeService
	report     report.ReportService
	locker     lock.Locker
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{MaxConns: 4})
	if err != nil {
		return err
	}
	defer db.Close()

	a, err := newApp(cfg, db)
	if err != nil {
		return err
	}

	switch command {
	case "calendar":
		return a.calendar(ctx, args)
	case "import":
		return a.importRoster(ctx, args)
	case "export":
		return a.export(ctx, args)
	case "jobs":
		return a.jobs(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func newApp(cfg *config.Config, db *database.DB) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
	if err != nil {
		return nil, err
	}

	employeeRepo := postgresql.NewEmployeeRepository(db)
	clockEventRepo := postgresql.NewClockEventRepository(db)
	wfhSessionRepo := postgresql.NewWfhSessionRepository(db)
	leaveDayRepo := postgresql.NewLeaveDayRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)

	profiles := cache.New[string, employee.Employee](cfg.Cache.MaxSize, cfg.Cache.TTL)
	usernames := cache.New[string, string](cfg.Cache.MaxSize, cfg.Cache.TTL)

	fetcher := attendanceService.NewRecordFetcher(clockEventRepo, wfhSessionRepo, leaveDayRepo, attendanceService.RetryPolicy{
		Attempts: cfg.Retry.Attempts,
		Delay:    cfg.Retry.Delay,
		MaxDelay: cfg.Retry.MaxDelay,
	})
	classifier := attendanceService.NewMonthClassifier(fetcher, loc, time.Now)

	var locker lock.Locker = lock.NewMemoryLock()
	if cfg.Redis.Addr != "" {
		if locker, err = lock.NewRedisLock(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
			return nil, err
		}
	}

	return &app{
		loc:       loc,
		employees: employeeRepo,
		attendance: attendanceService.NewAttendanceService(
			clockEventRepo, wfhSessionRepo, postgresql.NewSiteRepository(db), employeeRepo,
			leaveRequestRepo, classifier, locker, nil, profiles, cfg.Attendance.StatsConcurrency,
		),
		leave:    leaveService.NewLeaveService(leaveRequestRepo, leaveDayRepo, employeeRepo, loc, time.Now),
		employee: employeeService.NewEmployeeService(employeeRepo, profiles, usernames, cfg.JWT.BcryptCost),
		report:   reportService.NewReportService(employeeRepo, classifier, fileStorage),
		locker:   locker,
	}, nil
}

func (a *app) monthFlags(fs *flag.FlagSet) (*int, *int) {
	now := time.Now().In(a.loc)
	year := fs.Int("year", now.Year(), "calendar year")
	month := fs.Int("month", int(now.Month()), "calendar month (1-12)")
	return year, month
}

func (a *app) calendar(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("calendar", flag.ContinueOnError)
	username := fs.String("user", "", "employee username")
	noColor := fs.Bool("no-color", false, "disable colors")
	year, month := a.monthFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		return fmt.Errorf("calendar: -user is required")
	}
	if *noColor {
		color.NoColor = true
	}

	emp, err := a.employees.GetByUsername(ctx, *username)
	if err != nil {
		return fmt.Errorf("calendar: %w", err)
	}

	cal, err := a.attendance.GetMonthlyCalendar(ctx, attendance.MonthlyCalendarRequest{
		EmployeeID: emp.ID,
		Year:       *year,
		Month:      *month,
	})
	if err != nil {
		return fmt.Errorf("calendar: %w", err)
	}

	return terminal.RenderCalendar(os.Stdout, cal)
}

func (a *app) importRoster(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("import: expected one roster file")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	result, err := a.employee.ImportRoster(ctx, f, filepath.Base(args[0]))
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	for _, e := range result.Created {
		fmt.Printf("%s %s (%s)\n", color.GreenString("created"), e.Username, e.Role)
	}
	for _, s := range result.Skipped {
		fmt.Printf("%s row %d: %s\n", color.YellowString("skipped"), s.Row, s.Reason)
	}
	fmt.Printf("%d created, %d skipped\n", len(result.Created), len(result.Skipped))
	return nil
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	out := fs.String("out", "", "output file (defaults to the generated name)")
	year, month := a.monthFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	export, err := a.report.ExportMonthly(ctx, report.MonthlyExportRequest{Year: *year, Month: *month})
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	path := *out
	if path == "" {
		path = export.FileName
	}
	if err := os.WriteFile(path, export.Content, 0o644); err != nil {
		return err
	}

	fmt.Printf("%s %s (%d employees, archived at %s)\n", color.GreenString("wrote"), path, export.Employees, export.ArchivePath)
	return nil
}

func (a *app) jobs(ctx context.Context) error {
	scheduler := cron.NewScheduler(a.locker, 0)
	cron.NewAttendanceJobs(a.attendance, a.leave, func() time.Time { return time.Now().In(a.loc) }).RegisterJobs(scheduler)
	if err := scheduler.RunOnce(ctx); err != nil {
		return err
	}
	fmt.Println(color.GreenString("jobs completed"))
	return nil
}
