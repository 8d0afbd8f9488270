package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/cmlabs-hris/siteops-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
)

type RouterOptions struct {
	Logger         *slog.Logger
	LogLevel       slog.Level
	AllowedOrigins []string

	// FilesDir is served to admins under FilesURL when both are set.
	FilesDir string
	FilesURL string
}

type Handlers struct {
	Auth       AuthHandler
	Attendance AttendanceHandler
	Leave      LeaveHandler
	Employee   EmployeeHandler
	Site       SiteHandler
	Report     ReportHandler
}

func NewRouter(opts RouterOptions, jwtService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Archive-URL"},
		MaxAge:           300,
	}))

	if opts.Logger != nil {
		r.Use(httplog.RequestLogger(opts.Logger, &httplog.Options{
			Level:  opts.LogLevel,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if opts.FilesDir != "" && strings.HasPrefix(opts.FilesURL, "/") {
		prefix := strings.TrimSuffix(opts.FilesURL, "/")
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired)
			r.Use(middleware.AdminOnly)
			r.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(http.Dir(opts.FilesDir))))
		})
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)
		})

		// The stream authenticates with ?token= and keeps its own content type.
		r.Get("/attendance/employees/{id}/stream", h.Attendance.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(render.SetContentType(render.ContentTypeJSON))
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Put("/auth/password", h.Auth.ChangePassword)
			r.Post("/auth/stream-token", h.Auth.StreamToken)

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/scan", h.Attendance.Scan)
				r.Post("/wfh/start", h.Attendance.StartWfh)
				r.Post("/wfh/end", h.Attendance.EndWfh)
				r.Get("/me/calendar", h.Attendance.GetMyCalendar)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Get("/stats", h.Attendance.ListStats)
					r.Get("/employees/{id}/calendar", h.Attendance.GetEmployeeCalendar)
				})
			})

			r.Route("/leave-requests", func(r chi.Router) {
				r.Post("/", h.Leave.CreateRequest)
				r.Get("/", h.Leave.ListRequests)
				r.Get("/{id}", h.Leave.GetRequest)
				r.Post("/{id}/cancel", h.Leave.CancelRequest)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/{id}/approve", h.Leave.ApproveRequest)
					r.Post("/{id}/reject", h.Leave.RejectRequest)
				})
			})

			r.Route("/sites", func(r chi.Router) {
				r.Get("/", h.Site.List)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", h.Site.Create)
					r.Delete("/{id}", h.Site.Delete)
					r.Post("/{id}/rotate", h.Site.RotateQRToken)
				})
			})

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Route("/employees", func(r chi.Router) {
					r.Get("/", h.Employee.List)
					r.Post("/", h.Employee.Create)
					r.Post("/import", h.Employee.ImportRoster)
					r.Get("/{id}", h.Employee.Get)
					r.Delete("/{id}", h.Employee.Delete)
				})

				r.Get("/reports/attendance/export", h.Report.ExportMonthlyAttendance)
			})
		})
	})

	return r
}
