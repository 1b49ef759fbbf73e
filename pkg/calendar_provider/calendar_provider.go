package calendar_provider

import (
	"context"
	"fmt"
	"time"

	"github.com/klokku/calgate/pkg/calendar"
)

type CalendarType string

const (
	Local  CalendarType = "local"
	Google CalendarType = "google"
)

// RemoteCalendarFunc opens the current user's Google calendar.
type RemoteCalendarFunc func(ctx context.Context) (calendar.Calendar, error)

// CalendarProvider resolves the calendar behind a CalendarType for the current request.
type CalendarProvider struct {
	local  calendar.Calendar
	remote RemoteCalendarFunc
}

func NewCalendarProvider(local calendar.Calendar, remote RemoteCalendarFunc) *CalendarProvider {
	return &CalendarProvider{
		local:  local,
		remote: remote,
	}
}

func (c *CalendarProvider) getCalendar(ctx context.Context, calendarType CalendarType) (calendar.Calendar, error) {
	switch calendarType {
	case Local:
		return c.local, nil
	case Google:
		return c.remote(ctx)
	}
	return nil, fmt.Errorf("unknown calendar type %q", calendarType)
}

func (c *CalendarProvider) AddEvent(ctx context.Context, calendarType CalendarType, event calendar.Event) (*calendar.Event, error) {
	cal, err := c.getCalendar(ctx, calendarType)
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar when adding event: %w", err)
	}
	return cal.AddEvent(ctx, event)
}

func (c *CalendarProvider) GetEvents(ctx context.Context, calendarType CalendarType, from time.Time, to time.Time) ([]calendar.Event, error) {
	cal, err := c.getCalendar(ctx, calendarType)
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar when getting events: %w", err)
	}
	return cal.GetEvents(ctx, from, to)
}
