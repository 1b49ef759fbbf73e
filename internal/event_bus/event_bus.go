package event_bus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

type EventType string

// Event is the envelope passed to subscribers. Data carries the payload for the given Type.
type Event struct {
	ctx       context.Context
	Type      EventType
	Timestamp time.Time
	Data      any
}

func NewEvent(ctx context.Context, eventType EventType, data any) Event {
	return Event{
		ctx:       ctx,
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// Context returns the publisher's context, so subscribers see the same user and cancellation.
func (e Event) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

// EventT is the typed view of an Event handed to SubscribeTyped handlers.
type EventT[T any] struct {
	ctx       context.Context
	Type      EventType
	Timestamp time.Time
	Data      T
}

func (e EventT[T]) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

type subscription struct {
	id uint64
	h  func(Event) error
}

// EventBus dispatches events synchronously, in subscription order, on the publisher's goroutine.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]subscription
	nextID      uint64
}

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[EventType][]subscription),
	}
}

// Subscribe registers h for eventType and returns a function removing it again.
func (eb *EventBus) Subscribe(eventType EventType, h func(Event) error) (unsubscribe func()) {
	eb.mu.Lock()
	eb.nextID++
	id := eb.nextID
	eb.subscribers[eventType] = append(eb.subscribers[eventType], subscription{id: id, h: h})
	eb.mu.Unlock()

	return func() {
		eb.mu.Lock()
		defer eb.mu.Unlock()

		subs := eb.subscribers[eventType]
		for i, s := range subs {
			if s.id == id {
				eb.subscribers[eventType] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
		if len(eb.subscribers[eventType]) == 0 {
			delete(eb.subscribers, eventType)
		}
	}
}

// SubscribeTyped registers a handler for payloads of type T. Events carrying another payload type are skipped.
//
// Example:
//
//	unsub := event_bus.SubscribeTyped[event_bus.UserCreatedPayload](bus, event_bus.UserCreated,
//	    func(e event_bus.EventT[event_bus.UserCreatedPayload]) error {
//	        log.Infof("User %d signed in for the first time as %s", e.Data.Id, e.Data.Email)
//	        return nil
//	    })
func SubscribeTyped[T any](eb *EventBus, eventType EventType, h func(EventT[T]) error) (unsubscribe func()) {
	return eb.Subscribe(eventType, func(e Event) error {
		payload, ok := e.Data.(T)
		if !ok {
			log.Debugf("EventBus: type mismatch for event %s: expected %T, got %T", eventType, *new(T), e.Data)
			return nil
		}
		return h(EventT[T]{
			ctx:       e.ctx,
			Type:      e.Type,
			Timestamp: e.Timestamp,
			Data:      payload,
		})
	})
}

// Publish runs every handler registered for e.Type. Handler errors and panics are collected
// and returned joined; a cancelled context stops dispatch.
func (eb *EventBus) Publish(e Event) error {
	if err := e.Context().Err(); err != nil {
		return fmt.Errorf("event %s: context cancelled before publish: %w", e.Type, err)
	}

	eb.mu.RLock()
	subs := make([]subscription, len(eb.subscribers[e.Type]))
	copy(subs, eb.subscribers[e.Type])
	eb.mu.RUnlock()

	var errs []error
	for _, s := range subs {
		if err := e.Context().Err(); err != nil {
			errs = append(errs, fmt.Errorf("context cancelled during event processing: %w", err))
			break
		}
		if err := invoke(s, e); err != nil {
			log.Errorf("EventBus: handler error (ID %d) for event %s: %v", s.id, e.Type, err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("event %s: %d handler(s) failed: %w", e.Type, len(errs), errors.Join(errs...))
	}
	return nil
}

func invoke(s subscription, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic (ID %d) for event %s: %v", s.id, e.Type, r)
		}
	}()
	return s.h(e)
}
