package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/ibrahimvarli/noresrp-sub001/internal/http/response"
)

// SessionValidator is the slice of the session service the middleware needs.
type SessionValidator interface {
	IsValid(ctx context.Context, userID uint, sessionID string) (bool, error)
	Touch(ctx context.Context, userID uint, sessionID string) error
}

// RequireSession authenticates requests by the X-User-Id and X-Session-Id
// headers against the session store and refreshes the session's activity on
// every accepted request. Identity issuance itself lives outside this
// service; the headers are trusted to name a session, not to prove one.
func RequireSession(sessions SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawUserID := strings.TrimSpace(r.Header.Get("X-User-Id"))
			sessionID := strings.TrimSpace(r.Header.Get("X-Session-Id"))
			if rawUserID == "" || sessionID == "" {
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing session headers", nil)
				return
			}
			userID64, err := strconv.ParseUint(rawUserID, 10, 64)
			if err != nil || userID64 == 0 {
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid user id", nil)
				return
			}
			userID := uint(userID64)

			ok, err := sessions.IsValid(r.Context(), userID, sessionID)
			if err != nil {
				response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "session lookup failed", nil)
				return
			}
			if !ok {
				response.Error(w, r, http.StatusUnauthorized, "SESSION_INVALID", "session expired or unknown", nil)
				return
			}
			if err := sessions.Touch(r.Context(), userID, sessionID); err != nil {
				response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "session refresh failed", nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), userID, sessionID)))
		})
	}
}
