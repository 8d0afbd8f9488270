package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/siteops-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/siteops-backend-go/internal/handler/http/response"
)

func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := Claims(r.Context())
		if !ok {
			response.HandleError(w, r, auth.ErrInvalidToken)
			return
		}

		if employee.Role(claims.Role) != employee.RoleAdmin {
			response.HandleError(w, r, auth.ErrAdminRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
