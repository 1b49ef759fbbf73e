package calendar

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	UID       uuid.UUID
	Title     string
	StartTime time.Time
	EndTime   time.Time
	AllDay    bool
	// Color is a CSS color used by the calendar widget, e.g. "#257e4a".
	Color    string
	Metadata EventMetadata
}

type EventMetadata struct {
	Description string `json:"description"`
	Location    string `json:"location"`
}
