package reservation

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusCheckedIn  Status = "checked_in"
	StatusCheckedOut Status = "checked_out"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn, StatusCheckedOut,
		StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	default:
		return false
	}
}

// IsBlocking reports whether a reservation in this status holds its slot.
// Only blocking reservations take part in overlap checks.
func (s Status) IsBlocking() bool {
	return s == StatusConfirmed || s == StatusCheckedIn
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	default:
		return false
	}
}

// BlockingStatuses lists the statuses that occupy a resource.
func BlockingStatuses() []Status {
	return []Status{StatusConfirmed, StatusCheckedIn}
}
