package queries

import (
	"time"

	"club-scheduler/internal/domain/activity"
	"club-scheduler/internal/domain/recurrence"
	"club-scheduler/internal/domain/registration"
	"club-scheduler/internal/domain/reservation"
	"club-scheduler/internal/domain/resource"
	"club-scheduler/internal/domain/timeslot"
	"club-scheduler/internal/usecase/scheduling"

	"github.com/google/uuid"
)

// SlotView is a half-open interval [Start, End).
type SlotView struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewSlotView(s timeslot.TimeSlot) SlotView {
	return SlotView{Start: s.Start(), End: s.End()}
}

type ResourceView struct {
	ID             uuid.UUID      `json:"id"`
	Name           string         `json:"name"`
	Status         string         `json:"status"`
	OperatingDays  []time.Weekday `json:"operating_days,omitempty"`
	OpensAtMin     *int           `json:"opens_at_min,omitempty"`
	ClosesAtMin    *int           `json:"closes_at_min,omitempty"`
	MinDurationMin int            `json:"min_duration_min"`
	MaxDurationMin int            `json:"max_duration_min"`
	Capacity       *int           `json:"capacity,omitempty"`
	LeadTimeMin    int            `json:"lead_time_min"`
	TimeZone       string         `json:"time_zone"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func NewResourceView(r *resource.Resource) *ResourceView {
	v := &ResourceView{
		ID:             r.ID(),
		Name:           r.Name(),
		Status:         r.Status().String(),
		OperatingDays:  r.OperatingDays(),
		MinDurationMin: int(r.MinDuration() / time.Minute),
		MaxDurationMin: int(r.MaxDuration() / time.Minute),
		Capacity:       r.Capacity(),
		LeadTimeMin:    r.LeadTimeMin(),
		TimeZone:       r.Location().String(),
		CreatedAt:      r.CreatedAt(),
		UpdatedAt:      r.UpdatedAt(),
	}
	if h := r.OperatingHours(); h != nil {
		v.OpensAtMin = &h.Open
		v.ClosesAtMin = &h.Close
	}
	return v
}

type ReservationView struct {
	ID           uuid.UUID  `json:"id"`
	ResourceID   uuid.UUID  `json:"resource_id"`
	MemberID     uuid.UUID  `json:"member_id"`
	Slot         SlotView   `json:"slot"`
	Status       string     `json:"status"`
	PartySize    int        `json:"party_size"`
	Notes        string     `json:"notes,omitempty"`
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func NewReservationView(r *reservation.Reservation) *ReservationView {
	return &ReservationView{
		ID:           r.ID(),
		ResourceID:   r.ResourceID(),
		MemberID:     r.MemberID(),
		Slot:         NewSlotView(r.Slot()),
		Status:       r.Status().String(),
		PartySize:    r.PartySize(),
		Notes:        r.Notes(),
		CheckedInAt:  r.CheckedInAt(),
		CheckedOutAt: r.CheckedOutAt(),
		CancelledAt:  r.CancelledAt(),
		CreatedAt:    r.CreatedAt(),
		UpdatedAt:    r.UpdatedAt(),
	}
}

func NewReservationViews(rs []*reservation.Reservation) []*ReservationView {
	out := make([]*ReservationView, len(rs))
	for i, r := range rs {
		out[i] = NewReservationView(r)
	}
	return out
}

type AvailabilityView struct {
	IsAvailable             bool               `json:"is_available"`
	ConflictReasons         []string           `json:"conflict_reasons"`
	ConflictingReservations []*ReservationView `json:"conflicting_reservations"`
	NextAvailableSlot       *SlotView          `json:"next_available_slot,omitempty"`
}

func NewAvailabilityView(r *scheduling.AvailabilityResult) *AvailabilityView {
	v := &AvailabilityView{
		IsAvailable:             r.IsAvailable,
		ConflictReasons:         r.ConflictReasons,
		ConflictingReservations: NewReservationViews(r.ConflictingReservations),
	}
	if v.ConflictReasons == nil {
		v.ConflictReasons = []string{}
	}
	if r.NextAvailableSlot != nil {
		s := NewSlotView(*r.NextAvailableSlot)
		v.NextAvailableSlot = &s
	}
	return v
}

type RegistrationView struct {
	ID               uuid.UUID  `json:"id"`
	ActivityID       uuid.UUID  `json:"activity_id"`
	MemberID         uuid.UUID  `json:"member_id"`
	Status           string     `json:"status"`
	WaitlistPosition *int       `json:"waitlist_position,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	RegisteredAt     time.Time  `json:"registered_at"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`
}

func NewRegistrationView(r *registration.Registration) *RegistrationView {
	return &RegistrationView{
		ID:               r.ID(),
		ActivityID:       r.ActivityID(),
		MemberID:         r.MemberID(),
		Status:           r.Status().String(),
		WaitlistPosition: r.WaitlistPosition(),
		Notes:            r.Notes(),
		RegisteredAt:     r.RegisteredAt(),
		CancelledAt:      r.CancelledAt(),
	}
}

func NewRegistrationViews(rs []*registration.Registration) []*RegistrationView {
	out := make([]*RegistrationView, len(rs))
	for i, r := range rs {
		out[i] = NewRegistrationView(r)
	}
	return out
}

type ActivityView struct {
	ID               uuid.UUID           `json:"id"`
	Title            string              `json:"title"`
	Description      string              `json:"description,omitempty"`
	FacilityID       *uuid.UUID          `json:"facility_id,omitempty"`
	InstructorID     *uuid.UUID          `json:"instructor_id,omitempty"`
	Slot             SlotView            `json:"slot"`
	Capacity         int                 `json:"capacity"`
	Enrolled         int                 `json:"enrolled"`
	AllowWaitlist    bool                `json:"allow_waitlist"`
	PriceCents       int64               `json:"price_cents"`
	Equipment        []string            `json:"equipment,omitempty"`
	Requirements     []string            `json:"requirements,omitempty"`
	Status           string              `json:"status"`
	SeriesID         *uuid.UUID          `json:"series_id,omitempty"`
	OccurrenceNumber int                 `json:"occurrence_number,omitempty"`
	IsSeriesRoot     bool                `json:"is_series_root"`
	Pattern          *recurrence.Pattern `json:"pattern,omitempty"`
}

func NewActivityView(a *activity.Activity) *ActivityView {
	d := a.Details()
	return &ActivityView{
		ID:               a.ID(),
		Title:            d.Title,
		Description:      d.Description,
		FacilityID:       d.FacilityID,
		InstructorID:     d.InstructorID,
		Slot:             NewSlotView(a.Slot()),
		Capacity:         d.Capacity,
		Enrolled:         a.Enrolled(),
		AllowWaitlist:    d.AllowWaitlist,
		PriceCents:       d.PriceCents,
		Equipment:        d.Equipment,
		Requirements:     d.Requirements,
		Status:           a.Status().String(),
		SeriesID:         a.SeriesID(),
		OccurrenceNumber: a.OccurrenceNumber(),
		IsSeriesRoot:     a.IsSeriesRoot(),
		Pattern:          a.Pattern(),
	}
}

type OccurrenceView struct {
	ActivityID uuid.UUID `json:"activity_id"`
	Number     int       `json:"number"`
	Slot       SlotView  `json:"slot"`
}

type SeriesUpdateView struct {
	SeriesID               uuid.UUID        `json:"series_id"`
	SplitFrom              *uuid.UUID       `json:"split_from,omitempty"`
	Scope                  string           `json:"scope"`
	Applied                bool             `json:"applied"`
	Added                  int              `json:"added"`
	Removed                int              `json:"removed"`
	Retained               int              `json:"retained"`
	Retimed                int              `json:"retimed"`
	CancelledRegistrations int              `json:"cancelled_registrations"`
	Promoted               int              `json:"promoted"`
	AddedOccurrences       []OccurrenceView `json:"added_occurrences"`
	RemovedOccurrences     []OccurrenceView `json:"removed_occurrences"`
	Reasons                []string         `json:"reasons,omitempty"`
}

func NewSeriesUpdateView(r *scheduling.RecurrenceUpdateResult) *SeriesUpdateView {
	return &SeriesUpdateView{
		SeriesID:               r.SeriesID,
		SplitFrom:              r.SplitFrom,
		Scope:                  r.Scope.String(),
		Applied:                r.Applied,
		Added:                  r.Added,
		Removed:                r.Removed,
		Retained:               r.Retained,
		Retimed:                r.Retimed,
		CancelledRegistrations: r.CancelledRegistrations,
		Promoted:               r.Promoted,
		AddedOccurrences:       occurrenceViews(r.AddedOccurrences),
		RemovedOccurrences:     occurrenceViews(r.RemovedOccurrences),
		Reasons:                r.Reasons,
	}
}

func occurrenceViews(in []scheduling.OccurrenceSummary) []OccurrenceView {
	out := make([]OccurrenceView, len(in))
	for i, o := range in {
		out[i] = OccurrenceView{ActivityID: o.ActivityID, Number: o.Number, Slot: NewSlotView(o.Slot)}
	}
	return out
}
