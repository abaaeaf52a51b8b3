package converter

import (
	"time"

	"club-scheduler/internal/domain/resource"
	"club-scheduler/internal/pkg/errs"
	"club-scheduler/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const ResourceColumns = `id, name, status, operating_days, open_minute, close_minute,
	min_duration_seconds, max_duration_seconds, capacity, lead_time_min, time_zone, created_at, updated_at`

type ResourceRow struct {
	ID                 uuid.UUID
	Name               string
	Status             string
	OperatingDays      []int16
	OpenMinute         pgtype.Int4
	CloseMinute        pgtype.Int4
	MinDurationSeconds int64
	MaxDurationSeconds int64
	Capacity           pgtype.Int4
	LeadTimeMin        int32
	TimeZone           string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (r *ResourceRow) ScanTargets() []any {
	return []any{
		&r.ID, &r.Name, &r.Status, &r.OperatingDays, &r.OpenMinute, &r.CloseMinute,
		&r.MinDurationSeconds, &r.MaxDurationSeconds, &r.Capacity, &r.LeadTimeMin, &r.TimeZone, &r.CreatedAt, &r.UpdatedAt,
	}
}

func ResourceToDomain(row ResourceRow) (*resource.Resource, error) {
	loc, err := time.LoadLocation(row.TimeZone)
	if err != nil {
		return nil, errs.Wrapf(err, "resource %s has an unknown time zone", row.ID)
	}
	days := make([]time.Weekday, 0, len(row.OperatingDays))
	for _, d := range row.OperatingDays {
		days = append(days, time.Weekday(d))
	}
	var hours *resource.OperatingHours
	if row.OpenMinute.Valid && row.CloseMinute.Valid {
		hours = &resource.OperatingHours{Open: int(row.OpenMinute.Int32), Close: int(row.CloseMinute.Int32)}
	}
	cfg := resource.Config{
		Name:           row.Name,
		Status:         resource.Status(row.Status),
		OperatingDays:  days,
		OperatingHours: hours,
		MinDuration:    time.Duration(row.MinDurationSeconds) * time.Second,
		MaxDuration:    time.Duration(row.MaxDurationSeconds) * time.Second,
		Capacity:       pgconv.IntPtrFromPgtype(row.Capacity),
		LeadTimeMin:    int(row.LeadTimeMin),
		Location:       loc,
	}
	return resource.ReconstructResource(row.ID, cfg, row.CreatedAt, row.UpdatedAt), nil
}

// ResourceParams follows ResourceColumns order.
func ResourceParams(res *resource.Resource) ([]any, error) {
	capacity, err := pgconv.IntPtrToPgtype(res.Capacity())
	if err != nil {
		return nil, errs.Wrap(err, "resource capacity")
	}
	days := make([]int16, 0, len(res.OperatingDays()))
	for _, d := range res.OperatingDays() {
		days = append(days, int16(d)) // #nosec G115 -- weekday is 0..6
	}
	var open, closing pgtype.Int4
	if h := res.OperatingHours(); h != nil {
		// #nosec G115 -- minutes of a day
		open = pgtype.Int4{Int32: int32(h.Open), Valid: true}
		// #nosec G115 -- minutes of a day
		closing = pgtype.Int4{Int32: int32(h.Close), Valid: true}
	}
	return []any{
		res.ID(),
		res.Name(),
		res.Status().String(),
		days,
		open,
		closing,
		int64(res.MinDuration() / time.Second),
		int64(res.MaxDuration() / time.Second),
		capacity,
		res.LeadTimeMin(),
		res.Location().String(),
		pgconv.TimeToPgtype(res.CreatedAt()),
		pgconv.TimeToPgtype(res.UpdatedAt()),
	}, nil
}
