package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/klokku/calgate/internal/event_bus"
	"github.com/klokku/calgate/internal/utils"
	"github.com/klokku/calgate/pkg/user"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidEvent = errors.New("invalid calendar event")

type Service struct {
	repo  Repository
	clock utils.Clock
}

func NewService(repo Repository, clock utils.Clock) *Service {
	return &Service{
		repo:  repo,
		clock: clock,
	}
}

func (s *Service) AddEvent(ctx context.Context, event Event) (*Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validate(event); err != nil {
		return nil, err
	}

	eventUid, err := s.repo.StoreEvent(ctx, userId, event)
	if err != nil {
		return nil, fmt.Errorf("failed to store event: %w", err)
	}

	event.UID = eventUid
	return &event, nil
}

func (s *Service) GetEvents(ctx context.Context, from time.Time, to time.Time) ([]Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetEvents(ctx, userId, from, to)
}

// ModifyEvent replaces a stored event; used when the widget moves or resizes it.
// The widget sends only the fields it changed, empty ones keep their stored value.
func (s *Service) ModifyEvent(ctx context.Context, event Event) (*Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	var updated Event
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		stored, err := repo.GetEvent(ctx, userId, event.UID)
		if err != nil {
			return err
		}
		updated = mergeEvent(stored, event)
		if err := validate(updated); err != nil {
			return err
		}
		return repo.UpdateEvent(ctx, userId, updated)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return &updated, nil
}

func mergeEvent(stored Event, changes Event) Event {
	merged := stored
	if changes.Title != "" {
		merged.Title = changes.Title
	}
	if !changes.StartTime.IsZero() {
		merged.StartTime = changes.StartTime
	}
	if !changes.EndTime.IsZero() {
		merged.EndTime = changes.EndTime
	}
	merged.AllDay = changes.AllDay
	if changes.Color != "" {
		merged.Color = changes.Color
	}
	if changes.Metadata.Description != "" {
		merged.Metadata.Description = changes.Metadata.Description
	}
	if changes.Metadata.Location != "" {
		merged.Metadata.Location = changes.Metadata.Location
	}
	return merged
}

func (s *Service) DeleteEvent(ctx context.Context, eventUid uuid.UUID) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.DeleteEvent(ctx, userId, eventUid)
}

// SeedSampleEvents stores today's sample agenda for the user in ctx, all or nothing.
// "Today" and the sample hours are taken in loc, the user's time zone.
func (s *Service) SeedSampleEvents(ctx context.Context, loc *time.Location) ([]Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	samples := SampleEvents(s.clock.Now(), loc)
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		for i := range samples {
			uid, err := repo.StoreEvent(ctx, userId, samples[i])
			if err != nil {
				return fmt.Errorf("failed to store sample event: %w", err)
			}
			samples[i].UID = uid
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to perform transaction: %w", err)
	}
	log.Debugf("seeded %d sample events for user %d", len(samples), userId)
	return samples, nil
}

// SubscribeToUserCreated seeds the sample agenda for every newly created user.
func (s *Service) SubscribeToUserCreated(bus *event_bus.EventBus) func() {
	return event_bus.SubscribeTyped[event_bus.UserCreatedPayload](bus, event_bus.UserCreated,
		func(e event_bus.EventT[event_bus.UserCreatedPayload]) error {
			_, err := s.SeedSampleEvents(e.Context(), userLocation(e.Data.TimeZone))
			return err
		})
}

func userLocation(timeZone string) *time.Location {
	if timeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		log.Warnf("unknown time zone %q, falling back to UTC: %v", timeZone, err)
		return time.UTC
	}
	return loc
}

func validate(event Event) error {
	if event.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidEvent)
	}
	if event.EndTime.Before(event.StartTime) {
		return fmt.Errorf("%w: end is before start", ErrInvalidEvent)
	}
	return nil
}
