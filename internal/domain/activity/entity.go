package activity

import (
	"errors"
	"slices"
	"strings"
	"time"

	"club-scheduler/internal/domain/recurrence"
	"club-scheduler/internal/domain/timeslot"

	"github.com/google/uuid"
)

var (
	ErrEmptyTitle       = errors.New("activity title cannot be empty")
	ErrTitleTooLong     = errors.New("activity title is too long (max 200 characters)")
	ErrInvalidCapacity  = errors.New("activity capacity must be at least 1")
	ErrNegativePrice    = errors.New("price cannot be negative")
	ErrNotInSeries      = errors.New("activity is not part of a recurring series")
	ErrCapacityExceeded = errors.New("capacity cannot be lowered below the confirmed registration count")
	ErrSplitAtStart     = errors.New("a series cannot be split at its first occurrence")
)

const MaxTitleLength = 200

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	return s == StatusScheduled || s == StatusCancelled
}

// Details are the fields an occurrence inherits from its series root.
type Details struct {
	Title         string
	Description   string
	FacilityID    *uuid.UUID
	InstructorID  *uuid.UUID
	Capacity      int
	AllowWaitlist bool
	PriceCents    int64
	Equipment     []string
	Requirements  []string
}

func (d Details) Validate() error {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return ErrEmptyTitle
	}
	if len(title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if d.Capacity < 1 {
		return ErrInvalidCapacity
	}
	if d.PriceCents < 0 {
		return ErrNegativePrice
	}
	return nil
}

type Activity struct {
	id               uuid.UUID
	details          Details
	slot             timeslot.TimeSlot
	status           Status
	enrolled         int
	seriesID         *uuid.UUID
	occurrenceNumber int
	isSeriesRoot     bool
	pattern          *recurrence.Pattern
	createdAt        time.Time
	updatedAt        time.Time
}

// NewActivity creates a standalone activity.
func NewActivity(details Details, slot timeslot.TimeSlot, now time.Time) (*Activity, error) {
	if err := details.Validate(); err != nil {
		return nil, err
	}
	if slot.IsZero() {
		return nil, timeslot.ErrInvalidTimeSlot
	}
	details.Title = strings.TrimSpace(details.Title)
	return &Activity{
		id:        uuid.New(),
		details:   details,
		slot:      slot,
		status:    StatusScheduled,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// NewSeriesRoot creates the template activity that owns a recurrence pattern.
// The root's series id is its own id.
func NewSeriesRoot(details Details, slot timeslot.TimeSlot, pattern recurrence.Pattern, now time.Time) (*Activity, error) {
	if err := pattern.Validate(); err != nil {
		return nil, err
	}
	if !pattern.IsRecurring() {
		return nil, recurrence.ErrNotRecurring
	}
	a, err := NewActivity(details, slot, now)
	if err != nil {
		return nil, err
	}
	p := pattern.Clone()
	a.pattern = &p
	a.isSeriesRoot = true
	id := a.id
	a.seriesID = &id
	return a, nil
}

type State struct {
	Status           Status
	Enrolled         int
	SeriesID         *uuid.UUID
	OccurrenceNumber int
	IsSeriesRoot     bool
	Pattern          *recurrence.Pattern
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func ReconstructActivity(id uuid.UUID, details Details, slot timeslot.TimeSlot, st State) *Activity {
	return &Activity{
		id:               id,
		details:          details,
		slot:             slot,
		status:           st.Status,
		enrolled:         st.Enrolled,
		seriesID:         st.SeriesID,
		occurrenceNumber: st.OccurrenceNumber,
		isSeriesRoot:     st.IsSeriesRoot,
		pattern:          st.Pattern,
		createdAt:        st.CreatedAt,
		updatedAt:        st.UpdatedAt,
	}
}

func (a *Activity) InSeries() bool {
	return a.seriesID != nil
}

func (a *Activity) HasStarted(now time.Time) bool {
	return !a.slot.Start().After(now)
}

func (a *Activity) IsFull(confirmed int) bool {
	return confirmed >= a.details.Capacity
}

func (a *Activity) IncrementEnrollment(now time.Time) {
	a.enrolled++
	a.updatedAt = now
}

func (a *Activity) DecrementEnrollment(now time.Time) {
	if a.enrolled > 0 {
		a.enrolled--
	}
	a.updatedAt = now
}

// SetEnrollment overwrites the cached counter, used when reconciling drift.
func (a *Activity) SetEnrollment(n int, now time.Time) {
	a.enrolled = n
	a.updatedAt = now
}

// Detach removes an occurrence from its series so later series edits skip it.
func (a *Activity) Detach(now time.Time) error {
	if !a.InSeries() || a.isSeriesRoot {
		return ErrNotInSeries
	}
	a.seriesID = nil
	a.occurrenceNumber = 0
	a.updatedAt = now
	return nil
}

// UpdateDetails replaces details. confirmed is the current confirmed count;
// capacity cannot drop below it.
func (a *Activity) UpdateDetails(d Details, confirmed int, now time.Time) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if d.Capacity < confirmed {
		return ErrCapacityExceeded
	}
	d.Title = strings.TrimSpace(d.Title)
	a.details = d
	a.updatedAt = now
	return nil
}

func (a *Activity) Reschedule(slot timeslot.TimeSlot, now time.Time) error {
	if slot.IsZero() {
		return timeslot.ErrInvalidTimeSlot
	}
	a.slot = slot
	a.updatedAt = now
	return nil
}

func (a *Activity) SetPattern(p recurrence.Pattern, now time.Time) error {
	if !a.isSeriesRoot {
		return ErrNotInSeries
	}
	if err := p.Validate(); err != nil {
		return err
	}
	c := p.Clone()
	a.pattern = &c
	a.updatedAt = now
	return nil
}

// StartNumber is the occurrence number a root's first occurrence takes. Roots
// created by Split continue the numbering of the series they came from.
func (a *Activity) StartNumber() int {
	return max(a.occurrenceNumber, 1)
}

// Split ends the series owned by root a before occurrence number first and
// returns the root of a new series that continues from there with the given
// details, anchor slot and pattern. The pattern's MaxOccurrences keeps
// counting from the original series start.
func (a *Activity) Split(details Details, anchor timeslot.TimeSlot, pattern recurrence.Pattern, first int, now time.Time) (*Activity, error) {
	if !a.isSeriesRoot {
		return nil, ErrNotInSeries
	}
	if first <= a.StartNumber() {
		return nil, ErrSplitAtStart
	}
	tail, err := NewSeriesRoot(details, anchor, pattern, now)
	if err != nil {
		return nil, err
	}
	tail.occurrenceNumber = first

	head := a.pattern.Clone()
	if head.MaxOccurrences == nil || *head.MaxOccurrences > first-1 {
		limit := first - 1
		head.MaxOccurrences = &limit
	}
	a.pattern = &head
	a.updatedAt = now
	return tail, nil
}

// Renumber sets the occurrence number of a series member.
func (a *Activity) Renumber(n int, now time.Time) {
	if a.isSeriesRoot || a.seriesID == nil {
		return
	}
	a.occurrenceNumber = n
	a.updatedAt = now
}

func (a *Activity) Cancel(now time.Time) {
	a.status = StatusCancelled
	a.updatedAt = now
}

func (a *Activity) ID() uuid.UUID           { return a.id }
func (a *Activity) Slot() timeslot.TimeSlot { return a.slot }
func (a *Activity) Status() Status          { return a.status }
func (a *Activity) Enrolled() int           { return a.enrolled }
func (a *Activity) Capacity() int           { return a.details.Capacity }
func (a *Activity) AllowWaitlist() bool     { return a.details.AllowWaitlist }
func (a *Activity) OccurrenceNumber() int   { return a.occurrenceNumber }
func (a *Activity) IsSeriesRoot() bool      { return a.isSeriesRoot }
func (a *Activity) CreatedAt() time.Time    { return a.createdAt }
func (a *Activity) UpdatedAt() time.Time    { return a.updatedAt }
func (a *Activity) IsCancelled() bool       { return a.status == StatusCancelled }
func (a *Activity) Details() Details        { return cloneDetails(a.details) }

func (a *Activity) SeriesID() *uuid.UUID {
	if a.seriesID == nil {
		return nil
	}
	id := *a.seriesID
	return &id
}

func (a *Activity) Pattern() *recurrence.Pattern {
	if a.pattern == nil {
		return nil
	}
	p := a.pattern.Clone()
	return &p
}

// Clone returns an independent copy, used by stores that hand out snapshots.
func (a *Activity) Clone() *Activity {
	c := *a
	c.details = cloneDetails(a.details)
	c.seriesID = a.SeriesID()
	c.pattern = a.Pattern()
	return &c
}

func cloneDetails(d Details) Details {
	c := d
	c.Equipment = slices.Clone(d.Equipment)
	c.Requirements = slices.Clone(d.Requirements)
	if d.FacilityID != nil {
		id := *d.FacilityID
		c.FacilityID = &id
	}
	if d.InstructorID != nil {
		id := *d.InstructorID
		c.InstructorID = &id
	}
	return c
}
