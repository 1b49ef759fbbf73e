package event_bus

const (
	UserCreated EventType = "user.created"
)

// UserCreatedPayload is published the first time a Google identity signs in.
type UserCreatedPayload struct {
	Id          int
	Uid         string
	DisplayName string
	Email       string
	// TimeZone is the IANA zone reported by the browser at sign-in, empty when unknown.
	TimeZone string
}
