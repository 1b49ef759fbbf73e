package calendar_provider

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/klokku/calgate/internal/rest"
	"github.com/klokku/calgate/pkg/google"
	"github.com/klokku/calgate/pkg/user"
	log "github.com/sirupsen/logrus"
)

type MigrationStatusDTO struct {
	Status         string `json:"status"`
	MigratedEvents int    `json:"migratedEvents"`
}

type MigratorHandler struct {
	eventsMigrator EventsMigrator
}

func NewMigratorHandler(eventsMigrator EventsMigrator) *MigratorHandler {
	return &MigratorHandler{
		eventsMigrator: eventsMigrator,
	}
}

// ExportToGoogle godoc
// @Summary Copy local events of a period into the primary Google calendar
// @Tags Calendar
// @Produce json
// @Param from query string true "RFC3339 start of period"
// @Param to query string true "RFC3339 end of period"
// @Success 201 {object} MigrationStatusDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 403
// @Router /api/calendar/export-to-google [post]
// @Security BearerAuth
func (h *MigratorHandler) ExportToGoogle(w http.ResponseWriter, r *http.Request) {
	h.migrate(w, r, h.eventsMigrator.MigrateFromLocalToGoogle)
}

// ImportFromGoogle godoc
// @Summary Copy events of a period from the primary Google calendar into the local calendar
// @Tags Calendar
// @Produce json
// @Param from query string true "RFC3339 start of period"
// @Param to query string true "RFC3339 end of period"
// @Success 201 {object} MigrationStatusDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 403
// @Router /api/calendar/import-from-google [post]
// @Security BearerAuth
func (h *MigratorHandler) ImportFromGoogle(w http.ResponseWriter, r *http.Request) {
	h.migrate(w, r, h.eventsMigrator.MigrateFromGoogleToLocal)
}

func (h *MigratorHandler) migrate(w http.ResponseWriter, r *http.Request, run func(ctx context.Context, from, to time.Time) (int, error)) {
	from, ok := rest.QueryTime(w, r, "from")
	if !ok {
		return
	}
	to, ok := rest.QueryTime(w, r, "to")
	if !ok {
		return
	}

	eventsMigrated, err := run(r.Context(), from, to)
	if err != nil {
		switch {
		case errors.Is(err, google.ErrUnauthenticated):
			w.WriteHeader(http.StatusForbidden)
		case errors.Is(err, user.ErrNoUser):
			rest.WriteError(w, http.StatusForbidden, "User not found", "")
		case errors.Is(err, google.ErrGoogleApi):
			rest.WriteError(w, http.StatusBadGateway, "Google Calendar request failed", err.Error())
		default:
			log.Errorf("calendar migration failed: %v", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	rest.WriteJSON(w, http.StatusCreated, MigrationStatusDTO{
		Status:         "COMPLETED",
		MigratedEvents: eventsMigrated,
	})
}
