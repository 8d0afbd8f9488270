package response

import (
	"net/http"

	"github.com/go-chi/render"
)

type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    any          `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
	Meta    *Meta        `json:"meta,omitempty"`
}

type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

type Meta struct {
	Page       int   `json:"page,omitempty"`
	Limit      int   `json:"limit,omitempty"`
	TotalItems int64 `json:"total_items,omitempty"`
	TotalPages int   `json:"total_pages,omitempty"`
}

func write(w http.ResponseWriter, r *http.Request, status int, payload Response) {
	render.Status(r, status)
	render.JSON(w, r, payload)
}

func fail(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]string) {
	write(w, r, status, Response{
		Success: false,
		Error: &ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// Success responses
func Success(w http.ResponseWriter, r *http.Request, data any) {
	write(w, r, http.StatusOK, Response{Success: true, Data: data})
}

func SuccessWithMessage(w http.ResponseWriter, r *http.Request, message string, data any) {
	write(w, r, http.StatusOK, Response{Success: true, Message: message, Data: data})
}

func Created(w http.ResponseWriter, r *http.Request, message string, data any) {
	write(w, r, http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

func SuccessWithMeta(w http.ResponseWriter, r *http.Request, data any, meta *Meta) {
	write(w, r, http.StatusOK, Response{Success: true, Data: data, Meta: meta})
}

// Error responses
func BadRequest(w http.ResponseWriter, r *http.Request, message string, details map[string]string) {
	fail(w, r, http.StatusBadRequest, "BAD_REQUEST", message, details)
}

func ValidationError(w http.ResponseWriter, r *http.Request, details map[string]string) {
	fail(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Validation failed", details)
}

func Unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	fail(w, r, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

func Forbidden(w http.ResponseWriter, r *http.Request, message string) {
	fail(w, r, http.StatusForbidden, "FORBIDDEN", message, nil)
}

func NotFound(w http.ResponseWriter, r *http.Request, message string) {
	fail(w, r, http.StatusNotFound, "NOT_FOUND", message, nil)
}

func Conflict(w http.ResponseWriter, r *http.Request, message string) {
	fail(w, r, http.StatusConflict, "CONFLICT", message, nil)
}

func TooManyRequests(w http.ResponseWriter, r *http.Request, message string) {
	fail(w, r, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", message, nil)
}

func InternalServerError(w http.ResponseWriter, r *http.Request, message string) {
	fail(w, r, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", message, nil)
}
