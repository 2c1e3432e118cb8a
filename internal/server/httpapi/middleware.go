package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dsmelov/securekey/internal/common"
	"github.com/dsmelov/securekey/internal/server/auth"
)

type contextKey string

const userIDKey contextKey = "userID"

// userID extracts the authenticated user from the request context. Empty
// outside the auth middleware.
func userID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

// authenticate validates the bearer token and stores the user id in the
// request context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, common.ErrUnauthorized)
			return
		}

		id, err := auth.GetUserIDFromToken(token, s.jwtSecret)
		if err != nil {
			writeError(w, common.ErrInvalidToken)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireMFA gates the vault behind an open trust window. A closed window is
// not an auth failure: the response routes the client back to the challenge
// flow.
func (s *Server) requireMFA(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status, err := s.users.MFAStatus(r.Context(), userID(r))
		if err != nil {
			writeError(w, err)
			return
		}
		if status.Required {
			writeError(w, common.ErrMFARequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}
