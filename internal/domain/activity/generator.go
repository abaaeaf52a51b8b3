package activity

import (
	"time"

	"club-scheduler/internal/domain/recurrence"
	"club-scheduler/internal/domain/timeslot"
	"club-scheduler/internal/pkg/clock"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

// Generator turns a series root and its pattern into concrete occurrences.
type Generator struct {
	clock    clock.Clock
	location *time.Location
	limit    int
}

func NewGenerator(clk clock.Clock, loc *time.Location, limit int) *Generator {
	if loc == nil {
		loc = time.UTC
	}
	if limit <= 0 {
		limit = recurrence.DefaultLimit
	}
	return &Generator{clock: clk, location: loc, limit: limit}
}

// GenerateOccurrences expands the pattern from the master's own slot,
// numbering from the master's start number. The first occurrence falls on
// the master's date when the pattern matches it.
func (g *Generator) GenerateOccurrences(master *Activity, pattern recurrence.Pattern) ([]*Activity, error) {
	return g.GenerateFrom(master, pattern, master.Slot(), master.StartNumber())
}

// GenerateFrom expands the pattern from anchor, numbering occurrences from
// firstNumber. MaxOccurrences counts the whole series, so only the
// remaining max-(firstNumber-1) occurrences are produced.
func (g *Generator) GenerateFrom(master *Activity, pattern recurrence.Pattern, anchor timeslot.TimeSlot, firstNumber int) ([]*Activity, error) {
	if !master.IsSeriesRoot() || master.seriesID == nil {
		return nil, ErrNotInSeries
	}
	if firstNumber < 1 {
		firstNumber = 1
	}

	p := pattern.Clone()
	if p.MaxOccurrences != nil {
		remaining := *p.MaxOccurrences - (firstNumber - 1)
		if remaining <= 0 {
			return nil, nil
		}
		p.MaxOccurrences = &remaining
	}

	slots, err := recurrence.Expand(p, anchor, recurrence.Options{Location: g.location, Limit: g.limit})
	if err != nil {
		return nil, err
	}

	now := g.clock.Now()
	out := make([]*Activity, 0, len(slots))
	for i, slot := range slots {
		occ, err := g.spawn(master, slot, firstNumber+i, now)
		if err != nil {
			return nil, err
		}
		out = append(out, occ)
	}
	return out, nil
}

func (g *Generator) spawn(master *Activity, slot timeslot.TimeSlot, number int, now time.Time) (*Activity, error) {
	var details Details
	if err := copier.CopyWithOption(&details, &master.details, copier.Option{DeepCopy: true}); err != nil {
		return nil, err
	}
	seriesID := *master.seriesID
	return &Activity{
		id:               uuid.New(),
		details:          details,
		slot:             slot,
		status:           StatusScheduled,
		seriesID:         &seriesID,
		occurrenceNumber: number,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

func (g *Generator) Location() *time.Location {
	return g.location
}
