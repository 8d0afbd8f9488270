package auth

import "context"

// RefreshTokenRepository stores refresh tokens by hash only.
type RefreshTokenRepository interface {
	Create(ctx context.Context, employeeID string, token string, expiresAt int64, session SessionTrackingRequest) error
	// IsRevoked reports true for revoked, expired and unknown tokens.
	IsRevoked(ctx context.Context, token string) (bool, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllForEmployee(ctx context.Context, employeeID string) error
}
