package auth

import "context"

type AuthService interface {
	// Login resolves the username to the account email and signs in with it.
	Login(ctx context.Context, req LoginRequest, session SessionTrackingRequest) (TokenResponse, error)
	RefreshToken(ctx context.Context, req RefreshTokenRequest) (AccessTokenResponse, error)
	Logout(ctx context.Context, req RefreshTokenRequest) error
	ChangePassword(ctx context.Context, req ChangePasswordRequest) error

	// IssueStreamToken returns a short-lived token for the attendance stream of
	// targetID. Only admins may watch another employee's stream.
	IssueStreamToken(ctx context.Context, requesterID, targetID string) (StreamTokenResponse, error)
}
