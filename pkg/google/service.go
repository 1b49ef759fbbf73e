package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/klokku/calgate/pkg/user"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const PrimaryCalendar = "primary"

var (
	ErrGoogleApi = errors.New("google calendar request failed")
	ErrNotFound  = errors.New("google calendar resource not found")
)

type CalendarItem struct {
	ID          string
	Summary     string
	Description string
	TimeZone    string
	Primary     bool
}

type Service interface {
	ListEvents(ctx context.Context, calendarId string, from, to time.Time) ([]Event, error)
	AddEvent(ctx context.Context, calendarId string, event Event) (Event, error)
	DeleteEvent(ctx context.Context, calendarId string, eventId string) error
	ListCalendars(ctx context.Context) ([]CalendarItem, error)
	GetCalendar(ctx context.Context, calendarId string) (CalendarItem, error)
	// GetCalendarClient returns the calendar as a calendar.Calendar for the current user.
	GetCalendarClient(ctx context.Context, calendarId string) (*Calendar, error)
}

type ServiceImpl struct {
	auth     *GoogleAuth
	endpoint string
}

// NewService creates the Calendar API adapter. An empty endpoint uses Google's API.
func NewService(auth *GoogleAuth, endpoint string) *ServiceImpl {
	return &ServiceImpl{
		auth:     auth,
		endpoint: endpoint,
	}
}

func (s *ServiceImpl) GetCalendarClient(ctx context.Context, calendarId string) (*Calendar, error) {
	service, err := s.currentUserService(ctx)
	if err != nil {
		return nil, err
	}
	return newGoogleCalendar(service, calendarId), nil
}

// ListEvents lists single (expanded) events of a calendar. Zero from or to leaves that side open.
func (s *ServiceImpl) ListEvents(ctx context.Context, calendarId string, from, to time.Time) ([]Event, error) {
	cal, err := s.GetCalendarClient(ctx, calendarId)
	if err != nil {
		return nil, err
	}
	return cal.listEvents(ctx, from, to)
}

func (s *ServiceImpl) AddEvent(ctx context.Context, calendarId string, event Event) (Event, error) {
	cal, err := s.GetCalendarClient(ctx, calendarId)
	if err != nil {
		return Event{}, err
	}
	return cal.insertEvent(ctx, event)
}

func (s *ServiceImpl) DeleteEvent(ctx context.Context, calendarId string, eventId string) error {
	cal, err := s.GetCalendarClient(ctx, calendarId)
	if err != nil {
		return err
	}
	return cal.DeleteEvent(ctx, eventId)
}

func (s *ServiceImpl) ListCalendars(ctx context.Context) ([]CalendarItem, error) {
	googleService, err := s.currentUserService(ctx)
	if err != nil {
		return nil, err
	}
	calendars, err := googleService.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, apiError("unable to retrieve calendars from Google Calendar", err)
	}
	googleCalendars := make([]CalendarItem, 0, len(calendars.Items))
	for _, cal := range calendars.Items {
		googleCalendars = append(googleCalendars, CalendarItem{
			ID:          cal.Id,
			Summary:     cal.Summary,
			Description: cal.Description,
			TimeZone:    cal.TimeZone,
			Primary:     cal.Primary,
		})
	}
	return googleCalendars, nil
}

func (s *ServiceImpl) GetCalendar(ctx context.Context, calendarId string) (CalendarItem, error) {
	googleService, err := s.currentUserService(ctx)
	if err != nil {
		return CalendarItem{}, err
	}
	cal, err := googleService.Calendars.Get(calendarId).Context(ctx).Do()
	if err != nil {
		return CalendarItem{}, apiError("unable to retrieve calendar from Google Calendar", err)
	}
	return CalendarItem{
		ID:          cal.Id,
		Summary:     cal.Summary,
		Description: cal.Description,
		TimeZone:    cal.TimeZone,
		Primary:     calendarId == PrimaryCalendar,
	}, nil
}

func (s *ServiceImpl) currentUserService(ctx context.Context) (*gcal.Service, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	client, err := s.auth.getClient(ctx, userId)
	if err != nil {
		return nil, err
	}
	return s.prepareGoogleService(ctx, client)
}

func (s *ServiceImpl) prepareGoogleService(ctx context.Context, client *http.Client) (*gcal.Service, error) {
	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if s.endpoint != "" {
		opts = append(opts, option.WithEndpoint(s.endpoint))
	}
	service, err := gcal.NewService(ctx, opts...)
	if err != nil {
		err := fmt.Errorf("unable to create Calendar client: %w", err)
		log.Error(err)
		return nil, err
	}
	return service, nil
}

// apiError wraps a Calendar API failure. A 404 becomes ErrNotFound, revoked access
// becomes ErrUnauthenticated, anything else ErrGoogleApi.
func apiError(message string, err error) error {
	log.Errorf("%s: %v", message, err)
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		switch gErr.Code {
		case http.StatusNotFound, http.StatusGone:
			return fmt.Errorf("%s: %w", message, ErrNotFound)
		case http.StatusUnauthorized:
			return fmt.Errorf("%s: %w", message, ErrUnauthenticated)
		}
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return fmt.Errorf("%s: %w", message, ErrUnauthenticated)
	}
	return fmt.Errorf("%s: %w: %w", message, ErrGoogleApi, err)
}
