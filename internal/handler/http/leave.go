package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/siteops-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/siteops-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type LeaveHandler interface {
	CreateRequest(w http.ResponseWriter, r *http.Request)
	GetRequest(w http.ResponseWriter, r *http.Request)
	ListRequests(w http.ResponseWriter, r *http.Request)
	ApproveRequest(w http.ResponseWriter, r *http.Request)
	RejectRequest(w http.ResponseWriter, r *http.Request)
	CancelRequest(w http.ResponseWriter, r *http.Request)
}

type leaveHandlerImpl struct {
	leaveService leave.LeaveService
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &leaveHandlerImpl{leaveService: leaveService}
}

// CreateRequest implements LeaveHandler.
func (h *leaveHandlerImpl) CreateRequest(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.Claims(r.Context())

	var req leave.CreateLeaveRequestRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, r, "Invalid request format", nil)
		return
	}
	req.EmployeeID = claims.EmployeeID

	resp, err := h.leaveService.CreateRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	slog.Info("Leave request submitted", "id", resp.ID, "type", resp.RequestType)
	response.Created(w, r, "Request submitted", resp)
}

// GetRequest implements LeaveHandler.
func (h *leaveHandlerImpl) GetRequest(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.Claims(r.Context())

	resp, err := h.leaveService.GetRequest(r.Context(), chi.URLParam(r, "id"), requesterOf(claims.EmployeeID, claims.Role))
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, r, resp)
}

// ListRequests implements LeaveHandler. Non-admins only see their own requests.
func (h *leaveHandlerImpl) ListRequests(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.Claims(r.Context())

	filter := leave.LeaveRequestFilter{
		EmployeeID:  optionalQuery(r, "employee_id"),
		Status:      optionalQuery(r, "status"),
		RequestType: optionalQuery(r, "request_type"),
	}
	if !requesterOf(claims.EmployeeID, claims.Role).IsAdmin {
		filter.EmployeeID = &claims.EmployeeID
	}

	var errs validator.ValidationErrors
	if v := r.URL.Query().Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, validator.ValidationError{Field: "page", Message: "page must be a number"})
		}
		filter.Page = page
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must be a number"})
		}
		filter.Limit = limit
	}
	if len(errs) > 0 {
		response.HandleError(w, r, errs)
		return
	}

	resp, err := h.leaveService.ListRequests(r.Context(), filter)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMeta(w, r, resp.Requests, &response.Meta{
		Page:       resp.Page,
		Limit:      resp.Limit,
		TotalItems: resp.TotalCount,
		TotalPages: resp.TotalPages,
	})
}

// ApproveRequest implements LeaveHandler.
func (h *leaveHandlerImpl) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.Claims(r.Context())

	resp, err := h.leaveService.ApproveRequest(r.Context(), chi.URLParam(r, "id"), claims.EmployeeID)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, r, "Request approved", resp)
}

// RejectRequest implements LeaveHandler.
func (h *leaveHandlerImpl) RejectRequest(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.Claims(r.Context())

	var req leave.RejectRequestRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, r, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")
	req.ReviewerID = claims.EmployeeID

	resp, err := h.leaveService.RejectRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, r, "Request rejected", resp)
}

// CancelRequest implements LeaveHandler.
func (h *leaveHandlerImpl) CancelRequest(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.Claims(r.Context())

	resp, err := h.leaveService.CancelRequest(r.Context(), chi.URLParam(r, "id"), claims.EmployeeID)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, r, "Request cancelled", resp)
}

func requesterOf(employeeID, role string) leave.Requester {
	return leave.Requester{
		EmployeeID: employeeID,
		IsAdmin:    employee.Role(role) == employee.RoleAdmin,
	}
}
