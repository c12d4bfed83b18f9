package httpapi

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// UserIDHeader carries the authenticated user id set by the upstream gateway.
const UserIDHeader = "X-User-ID"

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if raw == "" {
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing "+UserIDHeader+" header")
			return
		}
		userID, err := uuid.Parse(raw)
		if err != nil || userID == uuid.Nil {
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid "+UserIDHeader+" header")
			return
		}
		ctx := withAuthUser(r.Context(), &AuthUser{UserID: userID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// callerID returns the authenticated user id, or uuid.Nil outside requireAuth
func callerID(r *http.Request) uuid.UUID {
	if u := authUserFromContext(r.Context()); u != nil {
		return u.UserID
	}
	return uuid.Nil
}
