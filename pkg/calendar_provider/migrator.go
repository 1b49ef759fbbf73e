package calendar_provider

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

type EventsMigrator interface {
	MigrateFromGoogleToLocal(ctx context.Context, from time.Time, to time.Time) (int, error)
	MigrateFromLocalToGoogle(ctx context.Context, from time.Time, to time.Time) (int, error)
}

type EventsMigratorImpl struct {
	provider *CalendarProvider
}

func NewEventsMigratorImpl(calendarProvider *CalendarProvider) *EventsMigratorImpl {
	return &EventsMigratorImpl{
		provider: calendarProvider,
	}
}

func (m *EventsMigratorImpl) MigrateFromGoogleToLocal(ctx context.Context, from time.Time, to time.Time) (int, error) {
	return m.migrate(ctx, Google, Local, from, to)
}

func (m *EventsMigratorImpl) MigrateFromLocalToGoogle(ctx context.Context, from time.Time, to time.Time) (int, error) {
	return m.migrate(ctx, Local, Google, from, to)
}

// migrate copies the events of the period from source to target. Events the target rejects
// are skipped and not counted.
func (m *EventsMigratorImpl) migrate(ctx context.Context, source, target CalendarType, from, to time.Time) (int, error) {
	targetCalendar, err := m.provider.getCalendar(ctx, target)
	if err != nil {
		return 0, fmt.Errorf("failed to get %s calendar: %w", target, err)
	}
	events, err := m.provider.GetEvents(ctx, source, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to get events from %s calendar: %w", source, err)
	}

	numberOfMigratedEvents := 0
	for _, event := range events {
		_, err := targetCalendar.AddEvent(ctx, event)
		if err != nil {
			log.Errorf("failed to add event %q to %s calendar: %v. Trying to continue", event.Title, target, err)
		} else {
			numberOfMigratedEvents++
		}
	}
	log.Debugf("migrated %d of %d events from %s to %s", numberOfMigratedEvents, len(events), source, target)
	return numberOfMigratedEvents, nil
}
