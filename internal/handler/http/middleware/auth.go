package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/siteops-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/siteops-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type claimsKey struct{}

// AuthRequired rejects requests without a verified access token and stores its claims.
// It runs after jwtauth.Verifier.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			response.HandleError(w, r, auth.ErrInvalidToken)
			return
		}

		tokenType, _ := claims["type"].(string)
		if tokenType != jwt.TokenTypeAccess {
			response.HandleError(w, r, auth.ErrInvalidToken)
			return
		}

		employeeID, _ := claims["employee_id"].(string)
		if employeeID == "" {
			response.HandleError(w, r, auth.ErrInvalidToken)
			return
		}
		username, _ := claims["username"].(string)
		role, _ := claims["role"].(string)

		ctx := WithClaims(r.Context(), jwt.AccessClaims{
			EmployeeID: employeeID,
			Username:   username,
			Role:       role,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func WithClaims(ctx context.Context, c jwt.AccessClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// Claims returns the access claims stored by AuthRequired.
func Claims(ctx context.Context) (jwt.AccessClaims, bool) {
	c, ok := ctx.Value(claimsKey{}).(jwt.AccessClaims)
	return c, ok
}
