package session

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// BearerToken extracts the credential from "Authorization: <scheme> <token>".
func BearerToken(r *http.Request) (string, error) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) < 2 {
		return "", ErrTokenMissing
	}
	return parts[1], nil
}

// Middleware rejects requests without a session token with 401 and requests with a bad
// or expired one with 403. Verified claims are stored in the request context.
func Middleware(verifier Verifier) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r)
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			claims, err := verifier.Verify(token)
			if err != nil {
				if errors.Is(err, ErrTokenMissing) {
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				log.Debugf("rejected session token: %v", err)
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}
