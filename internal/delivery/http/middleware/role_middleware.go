package middleware

import (
	"net/http"

	"makerspace-booking/internal/domain/entity"
	"makerspace-booking/pkg/response"
)

// RequireRole creates a middleware that checks if the user has any of the required roles
// Role is read from context (set by AuthMiddleware from JWT claims)
func RequireRole(allowedRoleIDs ...int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roleID, ok := GetRoleIDFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}

			for _, allowedRoleID := range allowedRoleIDs {
				if roleID == allowedRoleID {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, "You don't have permission to access this resource")
		})
	}
}

// RequireAdmin is a convenience middleware for admin-only endpoints
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDAdmin)(next)
}

// RequireHostOrAdmin guards catalog management endpoints
func RequireHostOrAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDAdmin, entity.RoleIDHost)(next)
}
