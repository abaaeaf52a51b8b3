package registration

type Status string

const (
	StatusConfirmed  Status = "confirmed"
	StatusWaitlisted Status = "waitlisted"
	StatusDeclined   Status = "declined"
	StatusCancelled  Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusConfirmed, StatusWaitlisted, StatusDeclined, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsActive reports whether the registration still holds or queues for a spot.
func (s Status) IsActive() bool {
	return s == StatusConfirmed || s == StatusWaitlisted
}
