package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/siteops-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/siteops-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/sse"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

const streamHeartbeat = 25 * time.Second

type AttendanceHandler interface {
	Scan(w http.ResponseWriter, r *http.Request)
	StartWfh(w http.ResponseWriter, r *http.Request)
	EndWfh(w http.ResponseWriter, r *http.Request)
	GetMyCalendar(w http.ResponseWriter, r *http.Request)
	GetEmployeeCalendar(w http.ResponseWriter, r *http.Request)
	ListStats(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	jwtService        jwt.Service
	hub               *sse.Hub
	loc               *time.Location
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, jwtService jwt.Service, hub *sse.Hub, loc *time.Location) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		jwtService:        jwtService,
		hub:               hub,
		loc:               loc,
	}
}

// Scan implements AttendanceHandler.
func (h *attendanceHandlerImpl) Scan(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.Claims(r.Context())

	var req attendance.ScanRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, r, "Invalid request format", nil)
		return
	}
	req.EmployeeID = claims.EmployeeID

	resp, err := h.attendanceService.Scan(r.Context(), req)
	if err != nil {
		slog.Warn("Scan rejected", "employee_id", claims.EmployeeID, "error", err)
		response.HandleError(w, r, err)
		return
	}

	response.Created(w, r, "Scan recorded", resp)
}

// StartWfh implements AttendanceHandler.
func (h *attendanceHandlerImpl) StartWfh(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.Claims(r.Context())

	resp, err := h.attendanceService.StartWfh(r.Context(), claims.EmployeeID)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Created(w, r, "Work from home started", resp)
}

// EndWfh implements AttendanceHandler.
func (h *attendanceHandlerImpl) EndWfh(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.Claims(r.Context())

	resp, err := h.attendanceService.EndWfh(r.Context(), claims.EmployeeID)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, r, "Work from home ended", resp)
}

// GetMyCalendar implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyCalendar(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.Claims(r.Context())
	h.calendar(w, r, claims.EmployeeID)
}

// GetEmployeeCalendar implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetEmployeeCalendar(w http.ResponseWriter, r *http.Request) {
	h.calendar(w, r, chi.URLParam(r, "id"))
}

func (h *attendanceHandlerImpl) calendar(w http.ResponseWriter, r *http.Request, employeeID string) {
	year, month, err := monthQuery(r, h.loc)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	resp, err := h.attendanceService.GetMonthlyCalendar(r.Context(), attendance.MonthlyCalendarRequest{
		EmployeeID: employeeID,
		Year:       year,
		Month:      month,
	})
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, r, resp)
}

// ListStats implements AttendanceHandler.
func (h *attendanceHandlerImpl) ListStats(w http.ResponseWriter, r *http.Request) {
	year, month, err := monthQuery(r, h.loc)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	resp, err := h.attendanceService.ListMonthlyStats(r.Context(), attendance.ListStatsRequest{
		Year:          year,
		Month:         month,
		ReferenceDate: optionalQuery(r, "reference_date"),
	})
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, r, resp)
}

// Stream implements AttendanceHandler. EventSource cannot set headers, so the
// stream token from /auth/stream-token arrives as ?token= and must be scoped to {id}.
func (h *attendanceHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	employeeID, err := h.jwtService.ValidateSSEToken(r.URL.Query().Get("token"))
	if err != nil || employeeID != chi.URLParam(r, "id") {
		response.HandleError(w, r, auth.ErrInvalidToken)
		return
	}

	rc := http.NewResponseController(w)
	events, cleanup := h.hub.Subscribe(employeeID)
	defer cleanup()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := sse.Write(w, sse.Event{Name: "connected", Data: map[string]string{"employee_id": employeeID}}); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		slog.Error("Stream flush unsupported", "error", err)
		return
	}

	ticker := time.NewTicker(streamHeartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := sse.Write(w, ev); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
