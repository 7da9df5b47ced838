package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"livechat-backend/internal/jwt"
)

type contextKey string

const staffContextKey contextKey = "staff"

// ValidateStaffJWT refuses requests without a valid staff token and puts the
// authenticated staff principal on the request context.
func ValidateStaffJWT(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			unauthorized(w)
			return
		}

		staff, role, err := jwt.ParseToken(strings.TrimPrefix(auth, "Bearer "))
		if err != nil || role != jwt.RoleStaff {
			unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), staffContextKey, staff)
		next(w, r.WithContext(ctx))
	}
}

func StaffFromContext(ctx context.Context) (*jwt.Staff, bool) {
	staff, ok := ctx.Value(staffContextKey).(*jwt.Staff)
	return staff, ok
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "unauthorized"})
}
