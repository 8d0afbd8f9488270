package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/cache"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/siteops-backend-go/internal/repository/postgresql"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	tx            postgresql.Transactor
	employeeRepo  employee.EmployeeRepository
	refreshTokens auth.RefreshTokenRepository
	jwtService    jwt.Service
	usernames     *cache.Cache[string, string]
	bcryptCost    int
}

func NewAuthService(
	tx postgresql.Transactor,
	employeeRepo employee.EmployeeRepository,
	refreshTokens auth.RefreshTokenRepository,
	jwtService jwt.Service,
	usernames *cache.Cache[string, string],
	bcryptCost int,
) auth.AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthServiceImpl{
		tx:            tx,
		employeeRepo:  employeeRepo,
		refreshTokens: refreshTokens,
		jwtService:    jwtService,
		usernames:     usernames,
		bcryptCost:    bcryptCost,
	}
}

// resolveEmail maps a login username to the account email.
func (a *AuthServiceImpl) resolveEmail(ctx context.Context, username string) (string, error) {
	load := func() (string, error) {
		emp, err := a.employeeRepo.GetByUsername(ctx, username)
		if err != nil {
			return "", err
		}
		return emp.Email, nil
	}
	if a.usernames == nil {
		return load()
	}
	return a.usernames.GetOrLoad(username, load)
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	email, err := a.resolveEmail(ctx, req.Username)
	if errors.Is(err, employee.ErrEmployeeNotFound) {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to resolve username: %w", err)
	}

	emp, err := a.employeeRepo.GetByEmail(ctx, email)
	if errors.Is(err, employee.ErrEmployeeNotFound) {
		// the cached email is stale
		if a.usernames != nil {
			a.usernames.Invalidate(req.Username)
		}
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to load employee: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if !emp.IsActive {
		return auth.TokenResponse{}, auth.ErrAccountDisabled
	}

	var resp auth.TokenResponse
	resp.AccessToken, resp.AccessTokenExpiresIn, err = a.jwtService.GenerateAccessToken(jwt.AccessClaims{
		EmployeeID: emp.ID,
		Username:   emp.Username,
		Role:       string(emp.Role),
	})
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	resp.RefreshToken, resp.RefreshTokenExpiresIn, err = a.jwtService.GenerateRefreshToken(emp.ID)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	if err := a.refreshTokens.Create(ctx, emp.ID, resp.RefreshToken, resp.RefreshTokenExpiresIn, session); err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to store refresh token: %w", err)
	}

	resp.EmployeeID = emp.ID
	resp.Role = string(emp.Role)

	slog.Info("Employee logged in", "employee_id", emp.ID, "ip", session.IPAddress)
	return resp, nil
}

// RefreshToken implements auth.AuthService.
func (a *AuthServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.AccessTokenResponse{}, err
	}

	employeeID, err := a.jwtService.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	revoked, err := a.refreshTokens.IsRevoked(ctx, req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to check refresh token: %w", err)
	}
	if revoked {
		return auth.AccessTokenResponse{}, auth.ErrRefreshTokenRevoked
	}

	emp, err := a.employeeRepo.GetByID(ctx, employeeID)
	if errors.Is(err, employee.ErrEmployeeNotFound) {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to load employee: %w", err)
	}
	if !emp.IsActive {
		return auth.AccessTokenResponse{}, auth.ErrAccountDisabled
	}

	var resp auth.AccessTokenResponse
	resp.AccessToken, resp.AccessTokenExpiresIn, err = a.jwtService.GenerateAccessToken(jwt.AccessClaims{
		EmployeeID: emp.ID,
		Username:   emp.Username,
		Role:       string(emp.Role),
	})
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	return resp, nil
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, req auth.RefreshTokenRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if _, err := a.jwtService.ParseRefreshToken(req.RefreshToken); err != nil {
		return auth.ErrInvalidToken
	}
	if err := a.refreshTokens.Revoke(ctx, req.RefreshToken); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// ChangePassword implements auth.AuthService. Every refresh token of the employee is revoked.
func (a *AuthServiceImpl) ChangePassword(ctx context.Context, req auth.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	emp, err := a.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return auth.ErrInvalidCredentials
	}
	if req.CurrentPassword == req.NewPassword {
		return auth.ErrSamePassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), a.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := a.employeeRepo.UpdatePassword(txCtx, emp.ID, string(hash)); err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		if err := a.refreshTokens.RevokeAllForEmployee(txCtx, emp.ID); err != nil {
			return fmt.Errorf("failed to revoke refresh tokens: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("Password changed", "employee_id", emp.ID)
	return nil
}

// IssueStreamToken implements auth.AuthService.
func (a *AuthServiceImpl) IssueStreamToken(ctx context.Context, requesterID, targetID string) (auth.StreamTokenResponse, error) {
	if targetID == "" {
		targetID = requesterID
	}

	if targetID != requesterID {
		requester, err := a.employeeRepo.GetByID(ctx, requesterID)
		if err != nil {
			return auth.StreamTokenResponse{}, err
		}
		if requester.Role != employee.RoleAdmin {
			return auth.StreamTokenResponse{}, auth.ErrAdminRequired
		}
		if _, err := a.employeeRepo.GetByID(ctx, targetID); err != nil {
			return auth.StreamTokenResponse{}, err
		}
	}

	token, expiresIn, err := a.jwtService.GenerateSSEToken(targetID)
	if err != nil {
		return auth.StreamTokenResponse{}, fmt.Errorf("failed to generate stream token: %w", err)
	}
	return auth.StreamTokenResponse{Token: token, ExpiresIn: expiresIn}, nil
}
