package calendar

import "time"

// SampleEvents returns the demo agenda for the calendar day that now falls on in loc.
func SampleEvents(now time.Time, loc *time.Location) []Event {
	day := now.In(loc)
	at := func(hour, minute int) time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)
	}
	return []Event{
		{
			Title:     "Team Meeting",
			StartTime: at(9, 30),
			EndTime:   at(11, 0),
			Color:     "#257e4a",
			Metadata:  EventMetadata{Description: "Weekly team sync", Location: "Conference Room A"},
		},
		{
			Title:     "Lunch Break",
			StartTime: at(12, 0),
			EndTime:   at(13, 0),
			Color:     "#ff9f89",
			Metadata:  EventMetadata{Description: "Lunch with team", Location: "Cafeteria"},
		},
		{
			Title:     "Client Call",
			StartTime: at(14, 0),
			EndTime:   at(15, 30),
			Color:     "#3788d8",
			Metadata:  EventMetadata{Description: "Project discussion", Location: "Online"},
		},
	}
}
