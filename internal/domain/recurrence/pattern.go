package recurrence

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

var (
	ErrInvalidType     = errors.New("recurrence: invalid pattern type")
	ErrInvalidInterval = errors.New("recurrence: interval must be at least 1")
	ErrUnbounded       = errors.New("recurrence: pattern needs an end date or a maximum number of occurrences")
	ErrInvalidMax      = errors.New("recurrence: max occurrences must be at least 1")
	ErrInvalidWeekday  = errors.New("recurrence: invalid weekday")
	ErrNotRecurring    = errors.New("recurrence: pattern does not repeat")
)

type Type string

const (
	TypeNone    Type = "none"
	TypeDaily   Type = "daily"
	TypeWeekly  Type = "weekly"
	TypeMonthly Type = "monthly"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case TypeNone, TypeDaily, TypeWeekly, TypeMonthly:
		return true
	default:
		return false
	}
}

// Pattern describes how a series repeats. If both EndDate and MaxOccurrences
// are set, whichever is reached first stops generation.
type Pattern struct {
	Type           Type           `json:"type"`
	Interval       int            `json:"interval"`
	Weekdays       []time.Weekday `json:"weekdays,omitempty"`
	EndDate        *time.Time     `json:"endDate,omitempty"`
	MaxOccurrences *int           `json:"maxOccurrences,omitempty"`
}

func (p Pattern) IsRecurring() bool {
	return p.Type != "" && p.Type != TypeNone
}

func (p Pattern) Validate() error {
	if !p.Type.IsValid() {
		return ErrInvalidType
	}
	if !p.IsRecurring() {
		return nil
	}
	if p.Interval < 1 {
		return ErrInvalidInterval
	}
	if p.EndDate == nil && p.MaxOccurrences == nil {
		return ErrUnbounded
	}
	if p.MaxOccurrences != nil && *p.MaxOccurrences < 1 {
		return ErrInvalidMax
	}
	for _, d := range p.Weekdays {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("%w: %d", ErrInvalidWeekday, d)
		}
	}
	return nil
}

// Clone returns a deep copy so callers can adjust bounds without aliasing.
func (p Pattern) Clone() Pattern {
	c := p
	c.Weekdays = slices.Clone(p.Weekdays)
	if p.EndDate != nil {
		e := *p.EndDate
		c.EndDate = &e
	}
	if p.MaxOccurrences != nil {
		m := *p.MaxOccurrences
		c.MaxOccurrences = &m
	}
	return c
}

// Equal compares patterns by value; weekday order is irrelevant.
func (p Pattern) Equal(o Pattern) bool {
	if p.Type != o.Type || p.Interval != o.Interval {
		return false
	}
	a, b := normalizeWeekdays(p.Weekdays), normalizeWeekdays(o.Weekdays)
	if !slices.Equal(a, b) {
		return false
	}
	switch {
	case (p.EndDate == nil) != (o.EndDate == nil):
		return false
	case p.EndDate != nil && !p.EndDate.Equal(*o.EndDate):
		return false
	case (p.MaxOccurrences == nil) != (o.MaxOccurrences == nil):
		return false
	case p.MaxOccurrences != nil && *p.MaxOccurrences != *o.MaxOccurrences:
		return false
	}
	return true
}

func (p Pattern) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s every %d", p.Type, p.Interval)
	if len(p.Weekdays) > 0 {
		names := make([]string, 0, len(p.Weekdays))
		for _, d := range normalizeWeekdays(p.Weekdays) {
			names = append(names, d.String()[:3])
		}
		fmt.Fprintf(&b, " on %s", strings.Join(names, ","))
	}
	if p.EndDate != nil {
		fmt.Fprintf(&b, " until %s", p.EndDate.Format(time.RFC3339))
	}
	if p.MaxOccurrences != nil {
		fmt.Fprintf(&b, " max %d", *p.MaxOccurrences)
	}
	return b.String()
}

func normalizeWeekdays(days []time.Weekday) []time.Weekday {
	out := slices.Clone(days)
	slices.Sort(out)
	return slices.Compact(out)
}

// ParseWeekday accepts full English names or three-letter abbreviations.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, s)
}
