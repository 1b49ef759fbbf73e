package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"github.com/klokku/calgate/internal/config"
	"github.com/klokku/calgate/pkg/session"
	"github.com/klokku/calgate/pkg/user"
	log "github.com/sirupsen/logrus"
)

// SetupMiddleware wires the middlewares applied to every route.
func SetupMiddleware(r *mux.Router) {
	r.Use(requestLogger)
}

// corsHandler wraps the whole router so preflight requests are answered before routing.
func corsHandler(cfg config.Application) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: cfg.Frontend.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		entry := log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   recorder.status,
			"duration": time.Since(start),
		})
		if recorder.status >= http.StatusInternalServerError {
			entry.Info("request failed")
		} else {
			entry.Debug("request handled")
		}
	})
}

// propagateUser resolves the verified session identity to the local user and puts it into the context.
func propagateUser(users user.Service) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			claims, ok := session.CurrentClaims(req.Context())
			if !ok {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			u, err := users.GetUserByUid(req.Context(), claims.Id)
			if err != nil {
				if errors.Is(err, user.ErrUserNotFound) {
					log.Debugf("user not found: %s", claims.Id)
					http.Error(w, "user not found", http.StatusForbidden)
					return
				}
				log.Errorf("failed to get user: %v", err)
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, req.WithContext(user.WithUser(req.Context(), u)))
		})
	}
}
