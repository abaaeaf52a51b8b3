package resource

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyResourceName   = errors.New("resource name cannot be empty")
	ErrNegativeLeadTime    = errors.New("lead time cannot be negative")
	ErrResourceNameTooLong = errors.New("resource name is too long (max 255 characters)")
	ErrInvalidHours        = errors.New("operating hours must satisfy 0 <= open < close <= 24:00")
	ErrInvalidDurations    = errors.New("duration bounds must be non-negative and min <= max")
	ErrInvalidCapacity     = errors.New("capacity must be at least 1")
	ErrInvalidStatus       = errors.New("invalid resource status")
)

const (
	MaxResourceNameLength = 255
	minutesPerDay         = 24 * 60
)

type Status string

const (
	StatusActive      Status = "active"
	StatusMaintenance Status = "maintenance"
	StatusClosed      Status = "closed"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusMaintenance, StatusClosed:
		return true
	default:
		return false
	}
}

// OperatingHours is a daily window in minutes since local midnight. Close may be
// 1440 to mean "until midnight".
type OperatingHours struct {
	Open  int
	Close int
}

func NewOperatingHours(open, close int) (OperatingHours, error) {
	if open < 0 || close > minutesPerDay || open >= close {
		return OperatingHours{}, ErrInvalidHours
	}
	return OperatingHours{Open: open, Close: close}, nil
}

func (h OperatingHours) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", h.Open/60, h.Open%60, h.Close/60, h.Close%60)
}

// Config groups the scheduling rules an administrator sets on a resource.
// Zero values mean "unrestricted".
type Config struct {
	Name           string
	Status         Status
	OperatingDays  []time.Weekday
	OperatingHours *OperatingHours
	MinDuration    time.Duration
	MaxDuration    time.Duration
	Capacity       *int
	LeadTimeMin    int
	Location       *time.Location
}

type Resource struct {
	id             uuid.UUID
	name           string
	status         Status
	operatingDays  []time.Weekday
	operatingHours *OperatingHours
	minDuration    time.Duration
	maxDuration    time.Duration
	capacity       *int
	leadTimeMin    int
	location       *time.Location
	createdAt      time.Time
	updatedAt      time.Time
}

func NewResource(id uuid.UUID, cfg Config, now time.Time) (*Resource, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	r := build(id, cfg)
	r.createdAt = now
	r.updatedAt = now
	return r, nil
}

// ReconstructResource rebuilds a resource from storage without re-validating.
func ReconstructResource(id uuid.UUID, cfg Config, createdAt, updatedAt time.Time) *Resource {
	r := build(id, cfg)
	r.createdAt = createdAt
	r.updatedAt = updatedAt
	return r
}

func build(id uuid.UUID, cfg Config) *Resource {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	status := cfg.Status
	if status == "" {
		status = StatusActive
	}
	days := slices.Clone(cfg.OperatingDays)
	slices.Sort(days)
	days = slices.Compact(days)

	var hours *OperatingHours
	if cfg.OperatingHours != nil {
		h := *cfg.OperatingHours
		hours = &h
	}
	var capacity *int
	if cfg.Capacity != nil {
		c := *cfg.Capacity
		capacity = &c
	}
	return &Resource{
		id:             id,
		name:           strings.TrimSpace(cfg.Name),
		status:         status,
		operatingDays:  days,
		operatingHours: hours,
		minDuration:    cfg.MinDuration,
		maxDuration:    cfg.MaxDuration,
		capacity:       capacity,
		leadTimeMin:    cfg.LeadTimeMin,
		location:       loc,
	}
}

func validate(cfg Config) error {
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		return ErrEmptyResourceName
	}
	if len(name) > MaxResourceNameLength {
		return ErrResourceNameTooLong
	}
	if cfg.LeadTimeMin < 0 {
		return ErrNegativeLeadTime
	}
	if cfg.Status != "" && !cfg.Status.IsValid() {
		return ErrInvalidStatus
	}
	if h := cfg.OperatingHours; h != nil {
		if _, err := NewOperatingHours(h.Open, h.Close); err != nil {
			return err
		}
	}
	if cfg.MinDuration < 0 || cfg.MaxDuration < 0 ||
		(cfg.MaxDuration > 0 && cfg.MinDuration > cfg.MaxDuration) {
		return ErrInvalidDurations
	}
	if cfg.Capacity != nil && *cfg.Capacity < 1 {
		return ErrInvalidCapacity
	}
	for _, d := range cfg.OperatingDays {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("invalid operating day %d", d)
		}
	}
	return nil
}

// OperatingViolations checks status, day-of-week and time-of-day rules for
// [start, end). Each broken rule contributes one reason.
func (r *Resource) OperatingViolations(start, end time.Time) []string {
	var reasons []string
	if r.status != StatusActive {
		reasons = append(reasons, fmt.Sprintf("resource is not accepting bookings (status: %s)", r.status))
	}

	localStart := start.In(r.location)
	if len(r.operatingDays) > 0 && !slices.Contains(r.operatingDays, localStart.Weekday()) {
		reasons = append(reasons, fmt.Sprintf("resource is not open on %s", localStart.Weekday()))
	}

	if h := r.operatingHours; h != nil {
		startMin := localStart.Hour()*60 + localStart.Minute()
		endMin := startMin + int(end.Sub(start)/time.Minute)
		if startMin < h.Open || startMin >= h.Close {
			reasons = append(reasons, fmt.Sprintf("start time is outside operating hours (%s)", h))
		}
		if endMin > h.Close || endMin <= h.Open {
			reasons = append(reasons, fmt.Sprintf("end time is outside operating hours (%s)", h))
		}
	}
	return reasons
}

// DurationViolations checks d against the configured min/max booking length.
func (r *Resource) DurationViolations(d time.Duration) []string {
	var reasons []string
	if r.minDuration > 0 && d < r.minDuration {
		reasons = append(reasons, fmt.Sprintf("booking duration is shorter than the minimum of %d minutes", int(r.minDuration/time.Minute)))
	}
	if r.maxDuration > 0 && d > r.maxDuration {
		reasons = append(reasons, fmt.Sprintf("booking duration exceeds the maximum of %d minutes", int(r.maxDuration/time.Minute)))
	}
	return reasons
}

// AllowsParty reports whether a party of size n fits the resource capacity.
func (r *Resource) AllowsParty(n int) bool {
	return r.capacity == nil || n <= *r.capacity
}

func (r *Resource) LeadTime() time.Duration {
	return time.Duration(r.leadTimeMin) * time.Minute
}

func (r *Resource) Config() Config {
	return Config{
		Name:           r.name,
		Status:         r.status,
		OperatingDays:  slices.Clone(r.operatingDays),
		OperatingHours: r.OperatingHours(),
		MinDuration:    r.minDuration,
		MaxDuration:    r.maxDuration,
		Capacity:       r.Capacity(),
		LeadTimeMin:    r.leadTimeMin,
		Location:       r.location,
	}
}

func (r *Resource) ID() uuid.UUID                 { return r.id }
func (r *Resource) Name() string                  { return r.name }
func (r *Resource) Status() Status                { return r.status }
func (r *Resource) OperatingDays() []time.Weekday { return slices.Clone(r.operatingDays) }
func (r *Resource) MinDuration() time.Duration    { return r.minDuration }
func (r *Resource) MaxDuration() time.Duration    { return r.maxDuration }
func (r *Resource) LeadTimeMin() int              { return r.leadTimeMin }
func (r *Resource) Location() *time.Location      { return r.location }
func (r *Resource) CreatedAt() time.Time          { return r.createdAt }
func (r *Resource) UpdatedAt() time.Time          { return r.updatedAt }

func (r *Resource) OperatingHours() *OperatingHours {
	if r.operatingHours == nil {
		return nil
	}
	h := *r.operatingHours
	return &h
}

func (r *Resource) Capacity() *int {
	if r.capacity == nil {
		return nil
	}
	c := *r.capacity
	return &c
}
