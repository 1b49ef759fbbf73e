package google

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/klokku/calgate/internal/rest"
	"github.com/klokku/calgate/pkg/user"
	log "github.com/sirupsen/logrus"
)

type CalendarItemDto struct {
	Id          string `json:"id"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	TimeZone    string `json:"timeZone,omitempty"`
	Primary     bool   `json:"primary"`
}

type EventDto struct {
	Id          string    `json:"id,omitempty"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	AllDay      bool      `json:"allDay"`
	HtmlLink    string    `json:"htmlLink,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{s}
}

// ListEvents godoc
// @Summary List events of a Google calendar
// @Tags Google
// @Produce json
// @Param calendarId query string false "Calendar id, primary by default"
// @Param from query string false "RFC3339 lower bound"
// @Param to query string false "RFC3339 upper bound"
// @Success 200 {array} EventDto
// @Failure 403
// @Failure 502 {object} rest.ErrorResponse
// @Router /api/google/events [get]
// @Security BearerAuth
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	var from, to time.Time
	var ok bool
	if r.URL.Query().Has("from") {
		if from, ok = rest.QueryTime(w, r, "from"); !ok {
			return
		}
	}
	if r.URL.Query().Has("to") {
		if to, ok = rest.QueryTime(w, r, "to"); !ok {
			return
		}
	}

	events, err := h.service.ListEvents(r.Context(), calendarId(r), from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]EventDto, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, toEventDto(e))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

// AddEvent godoc
// @Summary Create an event in a Google calendar
// @Tags Google
// @Accept json
// @Produce json
// @Param calendarId query string false "Calendar id, primary by default"
// @Param event body EventDto true "Event to create"
// @Success 201 {object} EventDto
// @Failure 400 {object} rest.ErrorResponse
// @Failure 403
// @Failure 502 {object} rest.ErrorResponse
// @Router /api/google/events [post]
// @Security BearerAuth
func (h *Handler) AddEvent(w http.ResponseWriter, r *http.Request) {
	var eventDto EventDto
	if err := json.NewDecoder(r.Body).Decode(&eventDto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	if eventDto.Summary == "" || eventDto.End.Before(eventDto.Start) {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event", "summary is required and end must not be before start")
		return
	}

	added, err := h.service.AddEvent(r.Context(), calendarId(r), Event{
		Summary:     eventDto.Summary,
		Description: eventDto.Description,
		Location:    eventDto.Location,
		StartTime:   eventDto.Start,
		EndTime:     eventDto.End,
		AllDay:      eventDto.AllDay,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, toEventDto(added))
}

// DeleteEvent godoc
// @Summary Delete an event from a Google calendar
// @Tags Google
// @Param eventId path string true "Google event id"
// @Param calendarId query string false "Calendar id, primary by default"
// @Success 204
// @Failure 403
// @Failure 404 {object} rest.ErrorResponse
// @Failure 502 {object} rest.ErrorResponse
// @Router /api/google/events/{eventId} [delete]
// @Security BearerAuth
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteEvent(r.Context(), calendarId(r), mux.Vars(r)["eventId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCalendars godoc
// @Summary List the user's Google calendars
// @Tags Google
// @Produce json
// @Success 200 {array} CalendarItemDto
// @Failure 403
// @Router /api/google/calendars [get]
// @Security BearerAuth
func (h *Handler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	calendars, err := h.service.ListCalendars(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	calendarItems := make([]CalendarItemDto, 0, len(calendars))
	for _, c := range calendars {
		calendarItems = append(calendarItems, toCalendarItemDto(c))
	}
	rest.WriteJSON(w, http.StatusOK, calendarItems)
}

// GetCalendar godoc
// @Summary Get one of the user's Google calendars
// @Tags Google
// @Produce json
// @Param calendarId path string true "Calendar id"
// @Success 200 {object} CalendarItemDto
// @Failure 403
// @Failure 404 {object} rest.ErrorResponse
// @Router /api/google/calendars/{calendarId} [get]
// @Security BearerAuth
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	cal, err := h.service.GetCalendar(r.Context(), mux.Vars(r)["calendarId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, toCalendarItemDto(cal))
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		w.WriteHeader(http.StatusForbidden)
	case errors.Is(err, user.ErrNoUser):
		rest.WriteError(w, http.StatusForbidden, "User not found", "")
	case errors.Is(err, ErrNotFound):
		rest.WriteError(w, http.StatusNotFound, "Not found in Google Calendar", "")
	case errors.Is(err, ErrGoogleApi):
		rest.WriteError(w, http.StatusBadGateway, "Google Calendar request failed", err.Error())
	default:
		log.Errorf("google request failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func calendarId(r *http.Request) string {
	if id := r.URL.Query().Get("calendarId"); id != "" {
		return id
	}
	return PrimaryCalendar
}

func toCalendarItemDto(ci CalendarItem) CalendarItemDto {
	return CalendarItemDto{
		Id:          ci.ID,
		Summary:     ci.Summary,
		Description: ci.Description,
		TimeZone:    ci.TimeZone,
		Primary:     ci.Primary,
	}
}

func toEventDto(e Event) EventDto {
	return EventDto{
		Id:          e.Id,
		Summary:     e.Summary,
		Description: e.Description,
		Location:    e.Location,
		Start:       e.StartTime,
		End:         e.EndTime,
		AllDay:      e.AllDay,
		HtmlLink:    e.HtmlLink,
	}
}
