package calendar

import (
	"context"
	"time"
)

// Calendar is a source and sink of events, implemented by the local store and by Google calendars.
type Calendar interface {
	AddEvent(ctx context.Context, event Event) (*Event, error)
	GetEvents(ctx context.Context, from time.Time, to time.Time) ([]Event, error)
}
