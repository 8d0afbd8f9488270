package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/site"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, r, validationErrs.ToMap())
		return
	}

	switch {
	// Auth
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, r, err.Error())
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, jwt.ErrWrongTokenType):
		Unauthorized(w, r, "Invalid or expired token")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, r, "Refresh token revoked")
	case errors.Is(err, auth.ErrRefreshTokenMissing):
		Unauthorized(w, r, "Refresh token is missing")
	case errors.Is(err, auth.ErrAccountDisabled):
		Forbidden(w, r, "Account is disabled")
	case errors.Is(err, auth.ErrAdminRequired):
		Forbidden(w, r, "Admin privileges required")
	case errors.Is(err, auth.ErrSamePassword):
		BadRequest(w, r, err.Error(), nil)

	// Employee
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, r, "Employee not found")
	case errors.Is(err, employee.ErrUsernameExists):
		Conflict(w, r, "Username already taken")
	case errors.Is(err, employee.ErrEmailExists):
		Conflict(w, r, "Email already registered")
	case errors.Is(err, employee.ErrCannotDeleteSelf):
		Forbidden(w, r, err.Error())
	case errors.Is(err, employee.ErrInvalidRole),
		errors.Is(err, employee.ErrEmptyRoster),
		errors.Is(err, employee.ErrUnsupportedRoster):
		BadRequest(w, r, err.Error(), nil)

	// Site
	case errors.Is(err, site.ErrSiteNotFound):
		NotFound(w, r, "Site not found")
	case errors.Is(err, site.ErrUnknownQRCode):
		NotFound(w, r, "QR code does not belong to any site")
	case errors.Is(err, site.ErrSiteNameExists):
		Conflict(w, r, "Site name already exists")

	// Attendance
	case errors.Is(err, attendance.ErrInvalidInput):
		BadRequest(w, r, err.Error(), nil)
	case errors.Is(err, attendance.ErrScanInProgress):
		TooManyRequests(w, r, err.Error())
	case errors.Is(err, attendance.ErrEmployeeInactive),
		errors.Is(err, attendance.ErrWfhNotApproved):
		Forbidden(w, r, err.Error())
	case errors.Is(err, attendance.ErrWfhAlreadyStarted),
		errors.Is(err, attendance.ErrWfhNotStarted),
		errors.Is(err, attendance.ErrWfhAlreadyEnded):
		Conflict(w, r, err.Error())

	// Leave
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, r, "Leave request not found")
	case errors.Is(err, leave.ErrLeaveRequestAlreadyProcessed),
		errors.Is(err, leave.ErrOverlappingRequest):
		Conflict(w, r, err.Error())
	case errors.Is(err, leave.ErrNotRequestOwner),
		errors.Is(err, leave.ErrCannotReviewOwnRequest):
		Forbidden(w, r, err.Error())

	// Report
	case errors.Is(err, report.ErrNoEmployees):
		NotFound(w, r, "No employees to report on")

	default:
		slog.Error("Unhandled error", "error", err, "path", r.URL.Path)
		InternalServerError(w, r, "An unexpected error occurred")
	}
}
