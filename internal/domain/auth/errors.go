package auth

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrAccountDisabled     = errors.New("account is disabled")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrRefreshTokenRevoked = errors.New("refresh token has been revoked")
	ErrSamePassword        = errors.New("new password must differ from the current password")
)

var (
	ErrAdminRequired       = errors.New("admin privileges required")
	ErrRefreshTokenMissing = errors.New("refresh token is missing")
)
