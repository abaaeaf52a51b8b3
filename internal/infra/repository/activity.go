package repository

import (
	"context"
	"log/slog"

	"club-scheduler/internal/domain/activity"
	"club-scheduler/internal/infra"
	"club-scheduler/internal/infra/repository/converter"

	"github.com/google/uuid"
)

const (
	getActivitySQL = `SELECT ` + converter.ActivityColumns + ` FROM activities WHERE id = $1`

	listSeriesSQL = `SELECT ` + converter.ActivityColumns + `
		FROM activities
		WHERE series_id = $1 AND NOT is_series_root AND status = 'scheduled'
		ORDER BY lower(slot), occurrence_number`

	createActivitySQL = `INSERT INTO activities (
			id, title, description, facility_id, instructor_id, capacity, allow_waitlist, price_cents,
			equipment, requirements, slot, status, enrolled, series_id, occurrence_number,
			is_series_root, pattern, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::tstzrange, $12, $13, $14, $15, $16, $17, $18, $19)`

	updateActivitySQL = `UPDATE activities SET
			title = $2, description = $3, facility_id = $4, instructor_id = $5, capacity = $6,
			allow_waitlist = $7, price_cents = $8, equipment = $9, requirements = $10,
			slot = $11::tstzrange, status = $12, enrolled = $13, series_id = $14,
			occurrence_number = $15, is_series_root = $16, pattern = $17, updated_at = $18
		WHERE id = $1`
)

type ActivityRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewActivityRepository(db DBTX, logger *slog.Logger) *ActivityRepository {
	return &ActivityRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ActivityRepository) Get(ctx context.Context, id uuid.UUID) (*activity.Activity, error) {
	act, err := queryOne[converter.ActivityRow](ctx, r.db, converter.ActivityToDomain, getActivitySQL, id)
	if err != nil {
		return nil, infra.ClassifyPgErr(r.logger, "failed to get activity", err)
	}
	return act, nil
}

func (r *ActivityRepository) Create(ctx context.Context, act *activity.Activity) error {
	params, err := converter.ActivityParams(act)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to encode activity", err)
	}
	if _, err := r.db.Exec(ctx, createActivitySQL, params...); err != nil {
		return infra.ClassifyPgErr(r.logger, "failed to create activity", err)
	}
	return nil
}

func (r *ActivityRepository) Update(ctx context.Context, act *activity.Activity) error {
	params, err := converter.ActivityParams(act)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to encode activity", err)
	}
	// created_at (index 17) is immutable.
	args := pick(params, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 18)
	tag, err := r.db.Exec(ctx, updateActivitySQL, args...)
	if err != nil {
		return infra.ClassifyPgErr(r.logger, "failed to update activity", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindNotFound, "activity not found", nil)
	}
	return nil
}

func (r *ActivityRepository) ListSeries(ctx context.Context, seriesID uuid.UUID) ([]*activity.Activity, error) {
	acts, err := queryAll[converter.ActivityRow](ctx, r.db, converter.ActivityToDomain, listSeriesSQL, seriesID)
	if err != nil {
		return nil, infra.ClassifyPgErr(r.logger, "failed to list series occurrences", err)
	}
	return acts, nil
}
