package request

import (
	"time"

	"club-scheduler/internal/domain/recurrence"
	"club-scheduler/internal/domain/resource"
	"club-scheduler/internal/pkg/errs"
	"club-scheduler/internal/pkg/patch"

	"github.com/google/uuid"
)

type CreateResourceRequest struct {
	Name   string  `json:"name" binding:"required,max=255"`
	Status *string `json:"status,omitempty" binding:"omitempty,oneof=active maintenance closed"`
	// Weekday names ("monday" or "mon"). Empty means every day.
	OperatingDays []string `json:"operating_days,omitempty"`
	// "HH:MM" in the resource's time zone; "24:00" closes at midnight.
	OpensAt        *string `json:"opens_at,omitempty"`
	ClosesAt       *string `json:"closes_at,omitempty"`
	MinDurationMin int     `json:"min_duration_min" binding:"min=0"`
	MaxDurationMin int     `json:"max_duration_min" binding:"min=0"`
	Capacity       *int    `json:"capacity,omitempty" binding:"omitempty,min=1"`
	LeadTimeMin    int     `json:"lead_time_min" binding:"min=0"`
	TimeZone       string  `json:"time_zone,omitempty"`
}

// ToConfig converts the request into resource rules. Errors are validation errors.
func (r CreateResourceRequest) ToConfig(defaultLoc *time.Location) (resource.Config, error) {
	cfg := resource.Config{
		Name:        r.Name,
		Status:      resource.Status(patch.Coalesce(r.Status, string(resource.StatusActive))),
		MinDuration: time.Duration(r.MinDurationMin) * time.Minute,
		MaxDuration: time.Duration(r.MaxDurationMin) * time.Minute,
		Capacity:    r.Capacity,
		LeadTimeMin: r.LeadTimeMin,
		Location:    defaultLoc,
	}

	days, err := parseWeekdays(r.OperatingDays)
	if err != nil {
		return resource.Config{}, err
	}
	cfg.OperatingDays = days

	switch {
	case r.OpensAt == nil && r.ClosesAt == nil:
	case r.OpensAt == nil || r.ClosesAt == nil:
		return resource.Config{}, errs.Validation("opens_at and closes_at must be given together")
	default:
		open, err := parseClock(*r.OpensAt)
		if err != nil {
			return resource.Config{}, err
		}
		closeAt, err := parseClock(*r.ClosesAt)
		if err != nil {
			return resource.Config{}, err
		}
		hours, err := resource.NewOperatingHours(open, closeAt)
		if err != nil {
			return resource.Config{}, errs.Mark(err, errs.ErrValidation)
		}
		cfg.OperatingHours = &hours
	}

	if r.TimeZone != "" {
		loc, err := time.LoadLocation(r.TimeZone)
		if err != nil {
			return resource.Config{}, errs.Validation("unknown time_zone " + r.TimeZone)
		}
		cfg.Location = loc
	}
	return cfg, nil
}

type AvailabilityQuery struct {
	Start                time.Time `form:"start" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	End                  time.Time `form:"end" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	ExcludeReservationID string    `form:"excludeReservationId"`
}

func (q AvailabilityQuery) ExcludeID() (*uuid.UUID, error) {
	if q.ExcludeReservationID == "" {
		return nil, nil
	}
	id, err := uuid.Parse(q.ExcludeReservationID)
	if err != nil {
		return nil, errs.Validation("excludeReservationId must be a UUID")
	}
	return &id, nil
}

type WindowQuery struct {
	From time.Time `form:"from" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	To   time.Time `form:"to" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
}

func parseWeekdays(names []string) ([]time.Weekday, error) {
	if len(names) == 0 {
		return nil, nil
	}
	days := make([]time.Weekday, 0, len(names))
	for _, name := range names {
		d, err := recurrence.ParseWeekday(name)
		if err != nil {
			return nil, errs.Mark(err, errs.ErrValidation)
		}
		days = append(days, d)
	}
	return days, nil
}

func parseClock(s string) (int, error) {
	if s == "24:00" {
		return 24 * 60, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, errs.Validation("time of day must be HH:MM, got " + s)
	}
	return t.Hour()*60 + t.Minute(), nil
}
