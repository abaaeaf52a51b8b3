package converter

import (
	"encoding/json"
	"time"

	"club-scheduler/internal/domain/activity"
	"club-scheduler/internal/domain/recurrence"
	"club-scheduler/internal/domain/timeslot"
	"club-scheduler/internal/pkg/errs"
	"club-scheduler/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const ActivityColumns = `id, title, description, facility_id, instructor_id, capacity, allow_waitlist, price_cents,
	equipment, requirements, lower(slot), upper(slot), status, enrolled, series_id, occurrence_number,
	is_series_root, pattern, created_at, updated_at`

type ActivityRow struct {
	ID               uuid.UUID
	Title            string
	Description      string
	FacilityID       pgtype.UUID
	InstructorID     pgtype.UUID
	Capacity         int32
	AllowWaitlist    bool
	PriceCents       int64
	Equipment        []string
	Requirements     []string
	SlotStart        time.Time
	SlotEnd          time.Time
	Status           string
	Enrolled         int32
	SeriesID         pgtype.UUID
	OccurrenceNumber int32
	IsSeriesRoot     bool
	Pattern          []byte
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (r *ActivityRow) ScanTargets() []any {
	return []any{
		&r.ID, &r.Title, &r.Description, &r.FacilityID, &r.InstructorID, &r.Capacity, &r.AllowWaitlist, &r.PriceCents,
		&r.Equipment, &r.Requirements, &r.SlotStart, &r.SlotEnd, &r.Status, &r.Enrolled, &r.SeriesID, &r.OccurrenceNumber,
		&r.IsSeriesRoot, &r.Pattern, &r.CreatedAt, &r.UpdatedAt,
	}
}

func ActivityToDomain(row ActivityRow) (*activity.Activity, error) {
	status := activity.Status(row.Status)
	if !status.IsValid() {
		return nil, errs.Newf("unknown activity status %q", row.Status)
	}
	slot, err := timeslot.New(row.SlotStart, row.SlotEnd)
	if err != nil {
		return nil, errs.Wrapf(err, "activity %s has an invalid slot", row.ID)
	}
	var pattern *recurrence.Pattern
	if len(row.Pattern) > 0 {
		var p recurrence.Pattern
		if err := json.Unmarshal(row.Pattern, &p); err != nil {
			return nil, errs.Wrapf(err, "activity %s has an unreadable pattern", row.ID)
		}
		pattern = &p
	}
	details := activity.Details{
		Title:         row.Title,
		Description:   row.Description,
		FacilityID:    pgconv.UUIDPtrFromPgtype(row.FacilityID),
		InstructorID:  pgconv.UUIDPtrFromPgtype(row.InstructorID),
		Capacity:      int(row.Capacity),
		AllowWaitlist: row.AllowWaitlist,
		PriceCents:    row.PriceCents,
		Equipment:     row.Equipment,
		Requirements:  row.Requirements,
	}
	return activity.ReconstructActivity(row.ID, details, slot, activity.State{
		Status:           status,
		Enrolled:         int(row.Enrolled),
		SeriesID:         pgconv.UUIDPtrFromPgtype(row.SeriesID),
		OccurrenceNumber: int(row.OccurrenceNumber),
		IsSeriesRoot:     row.IsSeriesRoot,
		Pattern:          pattern,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}), nil
}

// ActivityParams follows ActivityColumns order, with the slot as one
// tstzrange argument.
func ActivityParams(act *activity.Activity) ([]any, error) {
	var pattern []byte
	if p := act.Pattern(); p != nil {
		var err error
		if pattern, err = json.Marshal(p); err != nil {
			return nil, errs.Wrap(err, "failed to encode recurrence pattern")
		}
	}
	d := act.Details()
	equipment := d.Equipment
	if equipment == nil {
		equipment = []string{}
	}
	requirements := d.Requirements
	if requirements == nil {
		requirements = []string{}
	}
	return []any{
		act.ID(),
		d.Title,
		d.Description,
		pgconv.UUIDPtrToPgtype(d.FacilityID),
		pgconv.UUIDPtrToPgtype(d.InstructorID),
		d.Capacity,
		d.AllowWaitlist,
		d.PriceCents,
		equipment,
		requirements,
		act.Slot().ToTstzrange(),
		act.Status().String(),
		act.Enrolled(),
		pgconv.UUIDPtrToPgtype(act.SeriesID()),
		act.OccurrenceNumber(),
		act.IsSeriesRoot(),
		pattern,
		pgconv.TimeToPgtype(act.CreatedAt()),
		pgconv.TimeToPgtype(act.UpdatedAt()),
	}, nil
}
