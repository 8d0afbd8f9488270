package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/siteops-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/siteops-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// maxRosterSize bounds roster uploads.
const maxRosterSize = 10 << 20

type EmployeeHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	ImportRoster(w http.ResponseWriter, r *http.Request)
}

type employeeHandlerImpl struct {
	employeeService employee.EmployeeService
}

func NewEmployeeHandler(employeeService employee.EmployeeService) EmployeeHandler {
	return &employeeHandlerImpl{employeeService: employeeService}
}

// Create implements EmployeeHandler.
func (h *employeeHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req employee.CreateEmployeeRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, r, "Invalid request format", nil)
		return
	}

	resp, err := h.employeeService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	slog.Info("Employee created", "id", resp.ID, "username", resp.Username)
	response.Created(w, r, "Employee created", resp)
}

// Get implements EmployeeHandler.
func (h *employeeHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.employeeService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, r, resp)
}

// List implements EmployeeHandler.
func (h *employeeHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	resp, err := h.employeeService.List(r.Context())
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, r, resp)
}

// Delete implements EmployeeHandler.
func (h *employeeHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.Claims(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.employeeService.Delete(r.Context(), id, claims.EmployeeID); err != nil {
		response.HandleError(w, r, err)
		return
	}

	slog.Info("Employee deleted", "id", id, "by", claims.EmployeeID)
	response.SuccessWithMessage(w, r, "Employee deleted", nil)
}

// ImportRoster implements EmployeeHandler. The spreadsheet arrives in the "file" form field.
func (h *employeeHandlerImpl) ImportRoster(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRosterSize)
	if err := r.ParseMultipartForm(maxRosterSize); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, r, "Failed to parse form data", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			response.BadRequest(w, r, "Roster file is required", nil)
			return
		}
		response.BadRequest(w, r, "Invalid file upload", nil)
		return
	}
	defer file.Close()

	resp, err := h.employeeService.ImportRoster(r.Context(), file, header.Filename)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	slog.Info("Roster imported", "file", header.Filename, "created", len(resp.Created), "skipped", len(resp.Skipped))
	response.Created(w, r, "Roster imported", resp)
}
