package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/siteops-backend-go/internal/config"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/employee"
	appHTTP "github.com/cmlabs-hris/siteops-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/cache"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/lock"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/siteops-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/siteops-backend-go/internal/service/attendance"
	authService "github.com/cmlabs-hris/siteops-backend-go/internal/service/auth"
	employeeService "github.com/cmlabs-hris/siteops-backend-go/internal/service/employee"
	leaveService "github.com/cmlabs-hris/siteops-backend-go/internal/service/leave"
	reportService "github.com/cmlabs-hris/siteops-backend-go/internal/service/report"
	siteService "github.com/cmlabs-hris/siteops-backend-go/internal/service/site"
	"github.com/cmlabs-hris/siteops-backend-go/migrations"
	"github.com/go-chi/httplog/v3"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level, _ := cfg.LogLevel()
	logFormat := httplog.SchemaECS.Concise(cfg.App.Env == "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	loc, _ := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{MaxConns: cfg.Database.MaxConns})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.Database.Migrate {
		if err := migrations.Apply(ctx, db.Pool); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		slog.Info("Schema applied")
	}

	var locker lock.Locker
	if cfg.Redis.Addr != "" {
		redisLock, err := lock.NewRedisLock(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisLock.Close()
		locker = redisLock
	} else {
		slog.Warn("REDIS_ADDR not set, using in-process locks")
		locker = lock.NewMemoryLock()
	}

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	// Repositories
	txManager := postgresql.NewTxManager(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	siteRepo := postgresql.NewSiteRepository(db)
	clockEventRepo := postgresql.NewClockEventRepository(db)
	wfhSessionRepo := postgresql.NewWfhSessionRepository(db)
	leaveDayRepo := postgresql.NewLeaveDayRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	refreshTokenRepo := postgresql.NewRefreshTokenRepository(db)

	// Caches
	profiles := cache.New[string, employee.Employee](cfg.Cache.MaxSize, cfg.Cache.TTL)
	usernames := cache.New[string, string](cfg.Cache.MaxSize, cfg.Cache.TTL)

	// Services
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	hub := sse.NewHub()

	fetcher := attendanceService.NewRecordFetcher(clockEventRepo, wfhSessionRepo, leaveDayRepo, attendanceService.RetryPolicy{
		Attempts: cfg.Retry.Attempts,
		Delay:    cfg.Retry.Delay,
		MaxDelay: cfg.Retry.MaxDelay,
	})
	classifier := attendanceService.NewMonthClassifier(fetcher, loc, time.Now)

	attendanceSvc := attendanceService.NewAttendanceService(
		clockEventRepo,
		wfhSessionRepo,
		siteRepo,
		employeeRepo,
		leaveRequestRepo,
		classifier,
		locker,
		hub,
		profiles,
		cfg.Attendance.StatsConcurrency,
	)
	leaveSvc := leaveService.NewLeaveService(leaveRequestRepo, leaveDayRepo, employeeRepo, loc, time.Now)
	authSvc := authService.NewAuthService(txManager, employeeRepo, refreshTokenRepo, JWTService, usernames, cfg.JWT.BcryptCost)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo, profiles, usernames, cfg.JWT.BcryptCost)
	siteSvc := siteService.NewSiteService(siteRepo)
	reportSvc := reportService.NewReportService(employeeRepo, classifier, fileStorage)

	// Background jobs
	scheduler := cron.NewScheduler(locker, cfg.Attendance.CronLockTTL)
	cron.NewAttendanceJobs(attendanceSvc, leaveSvc, func() time.Time { return time.Now().In(loc) }).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(appHTTP.RouterOptions{
		Logger:         logger,
		LogLevel:       slog.LevelDebug,
		AllowedOrigins: cfg.App.AllowedOrigins,
		FilesDir:       cfg.Storage.BasePath,
		FilesURL:       cfg.Storage.BaseURL,
	}, JWTService, appHTTP.Handlers{
		Auth:       appHTTP.NewAuthHandler(JWTService, authSvc),
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc, JWTService, hub, loc),
		Leave:      appHTTP.NewLeaveHandler(leaveSvc),
		Employee:   appHTTP.NewEmployeeHandler(employeeSvc),
		Site:       appHTTP.NewSiteHandler(siteSvc),
		Report:     appHTTP.NewReportHandler(reportSvc),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Shutdown waits for idle connections; event streams never go idle on their own.
	server.RegisterOnShutdown(hub.Close)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
