package calendar

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type storedEvent struct {
	userId int
	event  Event
}

// RepositoryStub is an in-memory Repository for tests.
type RepositoryStub struct {
	mu    sync.Mutex
	items map[uuid.UUID]storedEvent
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{items: make(map[uuid.UUID]storedEvent)}
}

// WithTransaction restores the previous state when fn fails.
func (r *RepositoryStub) WithTransaction(_ context.Context, fn func(repo Repository) error) error {
	r.mu.Lock()
	snapshot := maps.Clone(r.items)
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.items = snapshot
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *RepositoryStub) StoreEvent(_ context.Context, userId int, event Event) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.UID = uuid.New()
	r.items[event.UID] = storedEvent{userId: userId, event: event}
	return event.UID, nil
}

func (r *RepositoryStub) GetEvents(_ context.Context, userId int, from, to time.Time) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := make([]Event, 0)
	for _, item := range r.items {
		if item.userId != userId {
			continue
		}
		if item.event.StartTime.Before(to) && item.event.EndTime.After(from) {
			events = append(events, item.event)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].StartTime.Before(events[j].StartTime)
	})
	return events, nil
}

func (r *RepositoryStub) GetEvent(_ context.Context, userId int, eventUid uuid.UUID) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[eventUid]
	if !ok || item.userId != userId {
		return Event{}, ErrEventNotFound
	}
	return item.event, nil
}

func (r *RepositoryStub) UpdateEvent(_ context.Context, userId int, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[event.UID]
	if !ok || item.userId != userId {
		return ErrEventNotFound
	}
	r.items[event.UID] = storedEvent{userId: userId, event: event}
	return nil
}

func (r *RepositoryStub) DeleteEvent(_ context.Context, userId int, eventUid uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[eventUid]
	if !ok || item.userId != userId {
		return ErrEventNotFound
	}
	delete(r.items, eventUid)
	return nil
}
