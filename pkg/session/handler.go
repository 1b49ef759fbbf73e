package session

import (
	"net/http"

	"github.com/klokku/calgate/internal/rest"
)

type ProtectedResponse struct {
	Message string `json:"message"`
	User    Claims `json:"user"`
}

// Protected echoes the decoded session claims. It must run behind Middleware.
func Protected(w http.ResponseWriter, r *http.Request) {
	claims, ok := CurrentClaims(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ProtectedResponse{
		Message: "Protected data",
		User:    claims,
	})
}
