package request

import (
	"strings"
	"time"

	"club-scheduler/internal/domain/activity"
	"club-scheduler/internal/domain/recurrence"
	"club-scheduler/internal/domain/timeslot"
	"club-scheduler/internal/pkg/errs"
	"club-scheduler/internal/pkg/patch"
	"club-scheduler/internal/usecase/commands"
	"club-scheduler/internal/usecase/scheduling"

	"github.com/google/uuid"
)

type ActivityDetailsRequest struct {
	Title         string     `json:"title" binding:"required,max=200"`
	Description   string     `json:"description,omitempty"`
	FacilityID    *uuid.UUID `json:"facility_id,omitempty"`
	InstructorID  *uuid.UUID `json:"instructor_id,omitempty"`
	Capacity      int        `json:"capacity" binding:"required,min=1"`
	AllowWaitlist bool       `json:"allow_waitlist"`
	PriceCents    int64      `json:"price_cents" binding:"min=0"`
	Equipment     []string   `json:"equipment,omitempty"`
	Requirements  []string   `json:"requirements,omitempty"`
}

func (r ActivityDetailsRequest) ToDetails() activity.Details {
	return activity.Details{
		Title:         strings.TrimSpace(r.Title),
		Description:   strings.TrimSpace(r.Description),
		FacilityID:    r.FacilityID,
		InstructorID:  r.InstructorID,
		Capacity:      r.Capacity,
		AllowWaitlist: r.AllowWaitlist,
		PriceCents:    r.PriceCents,
		Equipment:     r.Equipment,
		Requirements:  r.Requirements,
	}
}

type RecurrenceRequest struct {
	Type           string     `json:"type" binding:"required,oneof=none daily weekly monthly"`
	Interval       int        `json:"interval" binding:"min=0"`
	Weekdays       []string   `json:"weekdays,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	MaxOccurrences *int       `json:"max_occurrences,omitempty"`
}

func (r RecurrenceRequest) ToPattern() (*recurrence.Pattern, error) {
	days, err := parseWeekdays(r.Weekdays)
	if err != nil {
		return nil, err
	}
	p := &recurrence.Pattern{
		Type:           recurrence.Type(r.Type),
		Interval:       patch.CoalesceNonZero(&r.Interval, 1),
		Weekdays:       days,
		EndDate:        r.EndDate,
		MaxOccurrences: r.MaxOccurrences,
	}
	if err := p.Validate(); err != nil {
		return nil, errs.Mark(err, errs.ErrValidation)
	}
	return p, nil
}

type CreateActivityRequest struct {
	ActivityDetailsRequest
	StartTime  time.Time          `json:"start_time" binding:"required"`
	EndTime    time.Time          `json:"end_time" binding:"required"`
	Recurrence *RecurrenceRequest `json:"recurrence,omitempty"`
}

func (r CreateActivityRequest) ToCommand() (commands.CreateActivityCommand, error) {
	cmd := commands.CreateActivityCommand{
		Details: r.ToDetails(),
		Start:   r.StartTime,
		End:     r.EndTime,
	}
	if r.Recurrence != nil {
		p, err := r.Recurrence.ToPattern()
		if err != nil {
			return commands.CreateActivityCommand{}, err
		}
		cmd.Pattern = p
	}
	return cmd, nil
}

// SeriesUpdateRequest carries the new values for a series edit; omitted
// fields keep their current values.
type SeriesUpdateRequest struct {
	Scope      string                  `json:"scope" binding:"required,oneof=single_occurrence this_and_future entire_series"`
	Details    *ActivityDetailsRequest `json:"details,omitempty"`
	StartTime  *time.Time              `json:"start_time,omitempty"`
	EndTime    *time.Time              `json:"end_time,omitempty"`
	Recurrence *RecurrenceRequest      `json:"recurrence,omitempty"`
}

func (r SeriesUpdateRequest) ToSeriesUpdate() (scheduling.SeriesUpdate, error) {
	update := scheduling.SeriesUpdate{Scope: scheduling.Scope(r.Scope)}
	if r.Details != nil {
		d := r.Details.ToDetails()
		update.Details = &d
	}

	switch {
	case r.StartTime == nil && r.EndTime == nil:
	case r.StartTime == nil || r.EndTime == nil:
		return scheduling.SeriesUpdate{}, errs.Validation("start_time and end_time must be given together")
	default:
		slot, err := timeslot.New(*r.StartTime, *r.EndTime)
		if err != nil {
			return scheduling.SeriesUpdate{}, errs.Mark(err, errs.ErrValidation)
		}
		update.Slot = &slot
	}

	if r.Recurrence != nil {
		p, err := r.Recurrence.ToPattern()
		if err != nil {
			return scheduling.SeriesUpdate{}, err
		}
		update.Pattern = p
	}
	return update, nil
}

type RegisterRequest struct {
	Notes *string `json:"notes,omitempty" binding:"omitempty,max=1000"`
}

func (r RegisterRequest) ToCommand(activityID, memberID, idempotencyKey uuid.UUID) commands.RegisterCommand {
	return commands.RegisterCommand{
		ActivityID:     activityID,
		MemberID:       memberID,
		Notes:          trimmed(r.Notes),
		IdempotencyKey: idempotencyKey,
	}
}
