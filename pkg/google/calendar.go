package google

import (
	"context"
	"fmt"
	"time"

	"github.com/klokku/calgate/pkg/calendar"
	log "github.com/sirupsen/logrus"
	gcal "google.golang.org/api/calendar/v3"
)

const dateLayout = "2006-01-02"

// Event is a Google Calendar event. For all-day events End is the exclusive end date.
type Event struct {
	Id          string
	Summary     string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
	AllDay      bool
	HtmlLink    string
}

// Calendar is one Google calendar of a user, usable wherever a calendar.Calendar is expected.
type Calendar struct {
	service    *gcal.Service
	calendarId string
}

func newGoogleCalendar(service *gcal.Service, calendarId string) *Calendar {
	return &Calendar{
		service:    service,
		calendarId: calendarId,
	}
}

func (c *Calendar) AddEvent(ctx context.Context, event calendar.Event) (*calendar.Event, error) {
	stored, err := c.insertEvent(ctx, Event{
		Summary:     event.Title,
		Description: event.Metadata.Description,
		Location:    event.Metadata.Location,
		StartTime:   event.StartTime,
		EndTime:     event.EndTime,
		AllDay:      event.AllDay,
	})
	if err != nil {
		return nil, err
	}
	added := toLocalEvent(stored)
	added.Color = event.Color
	return &added, nil
}

func (c *Calendar) GetEvents(ctx context.Context, from time.Time, to time.Time) ([]calendar.Event, error) {
	googleEvents, err := c.listEvents(ctx, from, to)
	if err != nil {
		return nil, err
	}
	events := make([]calendar.Event, 0, len(googleEvents))
	for _, e := range googleEvents {
		events = append(events, toLocalEvent(e))
	}
	return events, nil
}

func (c *Calendar) DeleteEvent(ctx context.Context, eventId string) error {
	err := c.service.Events.Delete(c.calendarId, eventId).Context(ctx).Do()
	if err != nil {
		return apiError("unable to delete event from Google Calendar", err)
	}
	return nil
}

func (c *Calendar) insertEvent(ctx context.Context, event Event) (Event, error) {
	log.Debugf("Adding event: %+v, to calendar: %s", event, c.calendarId)
	result, err := c.service.Events.Insert(c.calendarId, toGoogleEvent(event)).Context(ctx).Do()
	if err != nil {
		return Event{}, apiError("unable to insert event in Google Calendar", err)
	}
	return fromGoogleEvent(result)
}

func (c *Calendar) listEvents(ctx context.Context, from, to time.Time) ([]Event, error) {
	call := c.service.Events.List(c.calendarId).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)
	if !from.IsZero() {
		call = call.TimeMin(from.Format(time.RFC3339))
	}
	if !to.IsZero() {
		call = call.TimeMax(to.Format(time.RFC3339))
	}
	googleEvents, err := call.Do()
	if err != nil {
		return nil, apiError("unable to retrieve events from Google Calendar", err)
	}

	events := make([]Event, 0, len(googleEvents.Items))
	for _, item := range googleEvents.Items {
		event, err := fromGoogleEvent(item)
		if err != nil {
			log.Warnf("skipping Google event %s: %v", item.Id, err)
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func toGoogleEvent(e Event) *gcal.Event {
	event := &gcal.Event{
		Summary:     e.Summary,
		Description: e.Description,
		Location:    e.Location,
	}
	if e.AllDay {
		end := e.EndTime
		if !end.After(e.StartTime) {
			end = e.StartTime.AddDate(0, 0, 1)
		}
		event.Start = &gcal.EventDateTime{Date: e.StartTime.Format(dateLayout)}
		event.End = &gcal.EventDateTime{Date: end.Format(dateLayout)}
	} else {
		event.Start = &gcal.EventDateTime{DateTime: e.StartTime.Format(time.RFC3339)}
		event.End = &gcal.EventDateTime{DateTime: e.EndTime.Format(time.RFC3339)}
	}
	return event
}

func fromGoogleEvent(item *gcal.Event) (Event, error) {
	event := Event{
		Id:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		Location:    item.Location,
		HtmlLink:    item.HtmlLink,
	}
	if item.Start == nil || item.End == nil {
		return event, fmt.Errorf("event has no start or end")
	}

	var err error
	if item.Start.DateTime != "" {
		event.StartTime, err = time.Parse(time.RFC3339, item.Start.DateTime)
	} else {
		event.StartTime, err = time.Parse(dateLayout, item.Start.Date)
		event.AllDay = true
	}
	if err != nil {
		return event, fmt.Errorf("failed to parse start: %w", err)
	}

	if item.End.DateTime != "" {
		event.EndTime, err = time.Parse(time.RFC3339, item.End.DateTime)
	} else {
		event.EndTime, err = time.Parse(dateLayout, item.End.Date)
	}
	if err != nil {
		return event, fmt.Errorf("failed to parse end: %w", err)
	}
	return event, nil
}

func toLocalEvent(e Event) calendar.Event {
	return calendar.Event{
		Title:     e.Summary,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
		AllDay:    e.AllDay,
		Metadata: calendar.EventMetadata{
			Description: e.Description,
			Location:    e.Location,
		},
	}
}
