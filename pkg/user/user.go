package user

// User is the local projection of a Google identity.
type User struct {
	Id          int
	Uid         string
	DisplayName string
	Email       string
	// TimeZone is the IANA zone of the user's browser, "UTC" when it was never reported.
	TimeZone string
}
