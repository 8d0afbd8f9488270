package jwt

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
	TokenTypeSSE     = "sse"

	sseTokenTTL = 5 * time.Minute
)

var ErrWrongTokenType = errors.New("token has the wrong type")

// AccessClaims are embedded in every access token.
type AccessClaims struct {
	EmployeeID string
	Username   string
	Role       string
}

type Service interface {
	GenerateAccessToken(claims AccessClaims) (token string, expiresAt int64, err error)
	GenerateRefreshToken(employeeID string) (token string, expiresAt int64, err error)
	ParseRefreshToken(token string) (employeeID string, err error)
	GenerateSSEToken(employeeID string) (token string, expiresIn int, err error)
	ValidateSSEToken(token string) (employeeID string, err error)
	JWTAuth() *jwtauth.JWTAuth
	RefreshTokenCookie(token string, expiresAt int64) *http.Cookie
}

type JWTService struct {
	accessTTL  time.Duration
	refreshTTL time.Duration
	tokenAuth  *jwtauth.JWTAuth
	now        func() time.Time
}

func NewJWTService(secretKey string, accessTTL, refreshTTL time.Duration) *JWTService {
	return &JWTService{
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		tokenAuth:  jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:        time.Now,
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) GenerateAccessToken(c AccessClaims) (string, int64, error) {
	expiresAt := j.now().Add(j.accessTTL).Unix()
	_, token, err := j.tokenAuth.Encode(map[string]any{
		"employee_id": c.EmployeeID,
		"username":    c.Username,
		"role":        c.Role,
		"type":        TokenTypeAccess,
		"exp":         expiresAt,
	})
	return token, expiresAt, err
}

func (j *JWTService) GenerateRefreshToken(employeeID string) (string, int64, error) {
	expiresAt := j.now().Add(j.refreshTTL).Unix()
	_, token, err := j.tokenAuth.Encode(map[string]any{
		"employee_id": employeeID,
		"type":        TokenTypeRefresh,
		"exp":         expiresAt,
		"jti":         uuid.NewString(),
	})
	return token, expiresAt, err
}

func (j *JWTService) ParseRefreshToken(token string) (string, error) {
	return j.subjectOf(token, TokenTypeRefresh)
}

// GenerateSSEToken issues a short-lived token for EventSource clients, which cannot send headers.
func (j *JWTService) GenerateSSEToken(employeeID string) (string, int, error) {
	expiresAt := j.now().Add(sseTokenTTL).Unix()
	_, token, err := j.tokenAuth.Encode(map[string]any{
		"employee_id": employeeID,
		"type":        TokenTypeSSE,
		"exp":         expiresAt,
	})
	if err != nil {
		return "", 0, err
	}
	return token, int(sseTokenTTL.Seconds()), nil
}

func (j *JWTService) ValidateSSEToken(token string) (string, error) {
	return j.subjectOf(token, TokenTypeSSE)
}

func (j *JWTService) subjectOf(tokenString, wantType string) (string, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != wantType {
		return "", ErrWrongTokenType
	}

	raw, ok := token.Get("employee_id")
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}
	employeeID, ok := raw.(string)
	if !ok || employeeID == "" {
		return "", jwt.ErrInvalidJWT()
	}

	return employeeID, nil
}

func (j *JWTService) RefreshTokenCookie(token string, expiresAt int64) *http.Cookie {
	return &http.Cookie{
		Name:     "refresh_token",
		Value:    token,
		Path:     "/api/v1/auth",
		Expires:  time.Unix(expiresAt, 0),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}
