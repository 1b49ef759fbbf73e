package app

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klokku/calgate/internal/config"
	"github.com/klokku/calgate/internal/event_bus"
	"github.com/klokku/calgate/internal/utils"
	"github.com/klokku/calgate/pkg/calendar"
	"github.com/klokku/calgate/pkg/calendar_provider"
	"github.com/klokku/calgate/pkg/google"
	"github.com/klokku/calgate/pkg/session"
	"github.com/klokku/calgate/pkg/user"
)

// Repositories groups the storage the services are built on.
type Repositories struct {
	Users       user.Repo
	Credentials google.CredentialsRepo
	Calendar    calendar.Repository
}

func NewRepositories(db *pgxpool.Pool) Repositories {
	return Repositories{
		Users:       user.NewUserRepo(db),
		Credentials: google.NewCredentialsRepo(db),
		Calendar:    calendar.NewRepository(db),
	}
}

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock  utils.Clock
	Bus    *event_bus.EventBus
	Tokens *session.TokenService

	UserService user.Service
	UserHandler *user.Handler

	GoogleAuth    *google.GoogleAuth
	GoogleService google.Service
	GoogleHandler *google.Handler

	CalendarService *calendar.Service
	CalendarHandler *calendar.Handler

	CalendarProvider        *calendar_provider.CalendarProvider
	CalendarMigrator        *calendar_provider.EventsMigratorImpl
	CalendarMigratorHandler *calendar_provider.MigratorHandler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(repos Repositories, cfg config.Application, clock utils.Clock) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = clock
	deps.Bus = event_bus.NewEventBus()
	deps.Tokens = session.NewTokenService(cfg.Jwt.Secret, cfg.Jwt.Expiry, deps.Clock)

	deps.UserService = user.NewUserService(repos.Users, deps.Bus)
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.GoogleAuth = google.NewGoogleAuth(cfg, deps.UserService, deps.Tokens, repos.Credentials,
		google.NewUserinfoFetcher(""))
	googleService := google.NewService(deps.GoogleAuth, cfg.Google.CalendarEndpoint)
	deps.GoogleService = googleService
	deps.GoogleHandler = google.NewHandler(deps.GoogleService)

	deps.CalendarService = calendar.NewService(repos.Calendar, deps.Clock)
	deps.CalendarService.SubscribeToUserCreated(deps.Bus)
	deps.CalendarHandler = calendar.NewHandler(deps.CalendarService)

	deps.CalendarProvider = calendar_provider.NewCalendarProvider(deps.CalendarService,
		func(ctx context.Context) (calendar.Calendar, error) {
			cal, err := googleService.GetCalendarClient(ctx, google.PrimaryCalendar)
			if err != nil {
				return nil, err
			}
			return cal, nil
		})
	deps.CalendarMigrator = calendar_provider.NewEventsMigratorImpl(deps.CalendarProvider)
	deps.CalendarMigratorHandler = calendar_provider.NewMigratorHandler(deps.CalendarMigrator)

	return deps
}
