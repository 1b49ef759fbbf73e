package app

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/klokku/calgate/internal/config"
	"github.com/klokku/calgate/internal/rest"
	"github.com/klokku/calgate/pkg/session"
	"github.com/klokku/calgate/web"
)

const loginPage = `<a href="/auth/google">Login with Google</a>`

// NewHandler builds the router with all routes and middlewares.
func NewHandler(deps *Dependencies, cfg config.Application) http.Handler {
	r := mux.NewRouter()
	SetupMiddleware(r)
	RegisterRoutes(r, deps, cfg)
	return corsHandler(cfg)(r)
}

// RegisterRoutes registers all endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {
	authenticated := session.Middleware(deps.Tokens)

	r.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(loginPage))
	}).Methods("GET")

	// Google sign-in
	r.HandleFunc("/auth/google", deps.GoogleAuth.Login).Methods("GET")
	r.HandleFunc("/auth/google/callback", deps.GoogleAuth.Callback).Methods("GET")

	r.Handle("/protected", authenticated(http.HandlerFunc(session.Protected))).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authenticated, propagateUser(deps.UserService))

	// User
	api.HandleFunc("/user/current", deps.UserHandler.CurrentUser).Methods("GET")

	// Google Calendar
	api.HandleFunc("/google/auth", deps.GoogleAuth.Status).Methods("GET")
	api.HandleFunc("/google/auth", deps.GoogleAuth.Logout).Methods("DELETE")
	api.HandleFunc("/google/events", deps.GoogleHandler.ListEvents).Methods("GET")
	api.HandleFunc("/google/events", deps.GoogleHandler.AddEvent).Methods("POST")
	api.HandleFunc("/google/events/{eventId}", deps.GoogleHandler.DeleteEvent).Methods("DELETE")
	api.HandleFunc("/google/calendars", deps.GoogleHandler.ListCalendars).Methods("GET")
	api.HandleFunc("/google/calendars/{calendarId}", deps.GoogleHandler.GetCalendar).Methods("GET")

	// Local calendar
	api.HandleFunc("/calendar/event", deps.CalendarHandler.GetEvents).Methods("GET")
	api.HandleFunc("/calendar/event", deps.CalendarHandler.CreateEvent).Methods("POST")
	api.HandleFunc("/calendar/event/{eventUid}", deps.CalendarHandler.UpdateEvent).Methods("PUT")
	api.HandleFunc("/calendar/event/{eventUid}", deps.CalendarHandler.DeleteEvent).Methods("DELETE")
	api.HandleFunc("/calendar/export-to-google", deps.CalendarMigratorHandler.ExportToGoogle).Methods("POST")
	api.HandleFunc("/calendar/import-from-google", deps.CalendarMigratorHandler.ImportFromGoogle).Methods("POST")

	// Frontend
	if cfg.Frontend.Enabled {
		frontend := rest.NewFrontendHandler(web.Assets(), "index.html")
		r.Handle("/app", http.RedirectHandler("/app/", http.StatusMovedPermanently))
		r.PathPrefix("/app/").Handler(http.StripPrefix("/app", frontend))
	}
}
