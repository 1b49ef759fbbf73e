package calendar

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/klokku/calgate/internal/rest"
	"github.com/klokku/calgate/pkg/user"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	calendar *Service
}

// EventDTO follows the event object shape of the calendar widget.
type EventDTO struct {
	Id            string           `json:"id"`
	Title         string           `json:"title"`
	Start         time.Time        `json:"start"`
	End           time.Time        `json:"end"`
	AllDay        bool             `json:"allDay"`
	Color         string           `json:"color,omitempty"`
	ExtendedProps ExtendedPropsDTO `json:"extendedProps"`
}

type ExtendedPropsDTO struct {
	Description string `json:"description"`
	Location    string `json:"location"`
}

func NewHandler(s *Service) *Handler {
	return &Handler{s}
}

// GetEvents godoc
// @Summary List local calendar events overlapping a period
// @Tags Calendar
// @Produce json
// @Param from query string true "RFC3339 start of period"
// @Param to query string true "RFC3339 end of period"
// @Success 200 {array} EventDTO
// @Failure 400 {object} rest.ErrorResponse
// @Router /api/calendar/event [get]
// @Security BearerAuth
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	from, ok := rest.QueryTime(w, r, "from")
	if !ok {
		return
	}
	to, ok := rest.QueryTime(w, r, "to")
	if !ok {
		return
	}

	events, err := h.calendar.GetEvents(r.Context(), from, to)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, eventToDTO(e))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var eventDTO EventDTO
	if err := json.NewDecoder(r.Body).Decode(&eventDTO); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	event := dtoToEvent(eventDTO)
	added, err := h.calendar.AddEvent(r.Context(), event)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, eventToDTO(*added))
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventUid, ok := pathUid(w, r)
	if !ok {
		return
	}
	var eventDTO EventDTO
	if err := json.NewDecoder(r.Body).Decode(&eventDTO); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	event := dtoToEvent(eventDTO)
	event.UID = eventUid
	modified, err := h.calendar.ModifyEvent(r.Context(), event)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, eventToDTO(*modified))
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventUid, ok := pathUid(w, r)
	if !ok {
		return
	}
	if err := h.calendar.DeleteEvent(r.Context(), eventUid); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNoUser):
		rest.WriteError(w, http.StatusForbidden, "User not found", "")
	case errors.Is(err, ErrInvalidEvent):
		rest.WriteError(w, http.StatusBadRequest, "Invalid event", err.Error())
	case errors.Is(err, ErrEventNotFound):
		rest.WriteError(w, http.StatusNotFound, "Event not found", "")
	default:
		log.Errorf("calendar request failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func pathUid(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	eventUid, err := uuid.Parse(mux.Vars(r)["eventUid"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event id", err.Error())
		return uuid.Nil, false
	}
	return eventUid, true
}

func eventToDTO(e Event) EventDTO {
	return EventDTO{
		Id:     e.UID.String(),
		Title:  e.Title,
		Start:  e.StartTime,
		End:    e.EndTime,
		AllDay: e.AllDay,
		Color:  e.Color,
		ExtendedProps: ExtendedPropsDTO{
			Description: e.Metadata.Description,
			Location:    e.Metadata.Location,
		},
	}
}

func dtoToEvent(e EventDTO) Event {
	return Event{
		Title:     e.Title,
		StartTime: e.Start,
		EndTime:   e.End,
		AllDay:    e.AllDay,
		Color:     e.Color,
		Metadata: EventMetadata{
			Description: e.ExtendedProps.Description,
			Location:    e.ExtendedProps.Location,
		},
	}
}
