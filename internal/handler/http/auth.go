package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/siteops-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/siteops-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/validator"
	"github.com/go-chi/render"
)

const refreshTokenCookieName = "refresh_token"

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	RefreshToken(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	ChangePassword(w http.ResponseWriter, r *http.Request)
	StreamToken(w http.ResponseWriter, r *http.Request)
}

type authHandlerImpl struct {
	jwtService  jwt.Service
	authService auth.AuthService
}

func NewAuthHandler(jwtService jwt.Service, authService auth.AuthService) AuthHandler {
	return &authHandlerImpl{
		jwtService:  jwtService,
		authService: authService,
	}
}

// Login implements AuthHandler.
func (h *authHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		slog.Error("Login decode error", "error", err)
		response.BadRequest(w, r, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, r, err)
		return
	}

	session := auth.SessionTrackingRequest{
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
	tokens, err := h.authService.Login(r.Context(), req, session)
	if err != nil {
		slog.Warn("Login failed", "username", req.Username, "error", err)
		response.HandleError(w, r, err)
		return
	}

	http.SetCookie(w, h.jwtService.RefreshTokenCookie(tokens.RefreshToken, tokens.RefreshTokenExpiresIn))
	slog.Info("Employee logged in", "employee_id", tokens.EmployeeID)
	response.Created(w, r, "Logged in successfully", tokens)
}

// RefreshToken implements AuthHandler.
func (h *authHandlerImpl) RefreshToken(w http.ResponseWriter, r *http.Request) {
	req, err := refreshTokenRequest(r)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	tokens, err := h.authService.RefreshToken(r.Context(), req)
	if err != nil {
		slog.Warn("Refresh token rejected", "error", err)
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, r, tokens)
}

// Logout implements AuthHandler.
func (h *authHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	req, err := refreshTokenRequest(r)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	if err := h.authService.Logout(r.Context(), req); err != nil {
		response.HandleError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookieName,
		Value:    "",
		Path:     "/api/v1/auth",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	response.SuccessWithMessage(w, r, "Logged out successfully", nil)
}

// ChangePassword implements AuthHandler.
func (h *authHandlerImpl) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.Claims(r.Context())

	var req auth.ChangePasswordRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, r, "Invalid request format", nil)
		return
	}
	req.EmployeeID = claims.EmployeeID

	if err := req.Validate(); err != nil {
		response.HandleError(w, r, err)
		return
	}

	if err := h.authService.ChangePassword(r.Context(), req); err != nil {
		response.HandleError(w, r, err)
		return
	}

	slog.Info("Password changed", "employee_id", claims.EmployeeID)
	response.SuccessWithMessage(w, r, "Password changed, please log in again on other devices", nil)
}

// StreamToken implements AuthHandler. ?employee_id= selects another employee's stream.
func (h *authHandlerImpl) StreamToken(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.Claims(r.Context())

	token, err := h.authService.IssueStreamToken(r.Context(), claims.EmployeeID, r.URL.Query().Get("employee_id"))
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, r, token)
}

// refreshTokenRequest reads the token from the JSON body, falling back to the cookie.
func refreshTokenRequest(r *http.Request) (auth.RefreshTokenRequest, error) {
	var req auth.RefreshTokenRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		return req, validator.ValidationErrors{{
			Field:   "refresh_token",
			Message: "request body is not valid JSON",
		}}
	}

	if req.RefreshToken == "" {
		if cookie, err := r.Cookie(refreshTokenCookieName); err == nil {
			req.RefreshToken = cookie.Value
		}
	}
	if req.RefreshToken == "" {
		return req, auth.ErrRefreshTokenMissing
	}
	return req, nil
}
