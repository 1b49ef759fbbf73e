package google

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	gcal "google.golang.org/api/calendar/v3"
)

// fakeGoogle serves the token, userinfo and Calendar endpoints used by the package.
type fakeGoogle struct {
	*httptest.Server
	mu            sync.Mutex
	events        map[string]*gcal.Event
	order         []string
	nextId        int
	refreshes     int
	failCalendar  bool
	authorization []string
}

func newFakeGoogle(t *testing.T) *fakeGoogle {
	t.Helper()
	f := &fakeGoogle{events: map[string]*gcal.Event{}}
	r := mux.NewRouter()
	r.HandleFunc("/token", f.token).Methods("POST")
	r.HandleFunc("/oauth2/v2/userinfo", f.userinfo).Methods("GET")
	r.HandleFunc("/calendar/v3/users/me/calendarList", f.calendarList).Methods("GET")
	r.HandleFunc("/calendar/v3/calendars/{calendarId}", f.calendar).Methods("GET")
	r.HandleFunc("/calendar/v3/calendars/{calendarId}/events", f.listEvents).Methods("GET")
	r.HandleFunc("/calendar/v3/calendars/{calendarId}/events", f.insertEvent).Methods("POST")
	r.HandleFunc("/calendar/v3/calendars/{calendarId}/events/{eventId}", f.deleteEvent).Methods("DELETE")
	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeGoogle) addEvent(event *gcal.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextId++
	event.Id = fmt.Sprintf("google-event-%d", f.nextId)
	f.events[event.Id] = event
	f.order = append(f.order, event.Id)
}

func (f *fakeGoogle) eventCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func (f *fakeGoogle) token(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	switch {
	case r.Form.Get("grant_type") == "authorization_code" && r.Form.Get("code") == "good-code":
		writeFakeJSON(w, http.StatusOK, map[string]any{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	case r.Form.Get("grant_type") == "refresh_token" && r.Form.Get("refresh_token") == "refresh-1":
		f.mu.Lock()
		f.refreshes++
		f.mu.Unlock()
		writeFakeJSON(w, http.StatusOK, map[string]any{
			"access_token": "access-2",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	default:
		writeFakeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_grant"})
	}
}

func (f *fakeGoogle) userinfo(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer access-1" {
		writeFakeJSON(w, http.StatusUnauthorized, apiErrorBody(http.StatusUnauthorized))
		return
	}
	writeFakeJSON(w, http.StatusOK, map[string]any{
		"id":    "1234",
		"name":  "Ada Lovelace",
		"email": "ada@example.com",
	})
}

func (f *fakeGoogle) authorized(w http.ResponseWriter, r *http.Request) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	header := r.Header.Get("Authorization")
	f.authorization = append(f.authorization, header)
	if !strings.HasPrefix(header, "Bearer access-") {
		writeFakeJSON(w, http.StatusUnauthorized, apiErrorBody(http.StatusUnauthorized))
		return false
	}
	if f.failCalendar {
		writeFakeJSON(w, http.StatusInternalServerError, apiErrorBody(http.StatusInternalServerError))
		return false
	}
	return true
}

func (f *fakeGoogle) calendarList(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(w, r) {
		return
	}
	writeFakeJSON(w, http.StatusOK, gcal.CalendarList{Items: []*gcal.CalendarListEntry{
		{Id: "ada@example.com", Summary: "Ada Lovelace", TimeZone: "Europe/London", Primary: true},
		{Id: "team@group.calendar.google.com", Summary: "Team"},
	}})
}

func (f *fakeGoogle) calendar(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(w, r) {
		return
	}
	if mux.Vars(r)["calendarId"] != "primary" {
		writeFakeJSON(w, http.StatusNotFound, apiErrorBody(http.StatusNotFound))
		return
	}
	writeFakeJSON(w, http.StatusOK, gcal.Calendar{Id: "ada@example.com", Summary: "Ada Lovelace", TimeZone: "Europe/London"})
}

func (f *fakeGoogle) listEvents(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(w, r) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]*gcal.Event, 0, len(f.order))
	for _, id := range f.order {
		if event, ok := f.events[id]; ok {
			items = append(items, event)
		}
	}
	writeFakeJSON(w, http.StatusOK, gcal.Events{Items: items})
}

func (f *fakeGoogle) insertEvent(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(w, r) {
		return
	}
	var event gcal.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeFakeJSON(w, http.StatusBadRequest, apiErrorBody(http.StatusBadRequest))
		return
	}
	f.addEvent(&event)
	event.HtmlLink = "https://calendar.google.com/event?eid=" + event.Id
	writeFakeJSON(w, http.StatusOK, event)
}

func (f *fakeGoogle) deleteEvent(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(w, r) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	eventId := mux.Vars(r)["eventId"]
	if _, ok := f.events[eventId]; !ok {
		writeFakeJSON(w, http.StatusNotFound, apiErrorBody(http.StatusNotFound))
		return
	}
	delete(f.events, eventId)
	w.WriteHeader(http.StatusNoContent)
}

func apiErrorBody(code int) map[string]any {
	return map[string]any{"error": map[string]any{"code": code, "message": http.StatusText(code)}}
}

func writeFakeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
