package repository

import (
	"context"
	"log/slog"

	"club-scheduler/internal/domain/registration"
	"club-scheduler/internal/infra"
	"club-scheduler/internal/infra/repository/converter"
	"club-scheduler/internal/pkg/pgconv"

	"github.com/google/uuid"
)

const (
	getRegistrationSQL = `SELECT ` + converter.RegistrationColumns + ` FROM registrations WHERE id = $1`

	findActiveRegistrationSQL = `SELECT ` + converter.RegistrationColumns + `
		FROM registrations
		WHERE activity_id = $1 AND member_id = $2 AND status IN ('confirmed', 'waitlisted')`

	countConfirmedSQL = `SELECT count(*) FROM registrations WHERE activity_id = $1 AND status = 'confirmed'`

	listRegistrationsSQL = `SELECT ` + converter.RegistrationColumns + `
		FROM registrations
		WHERE activity_id = $1 AND (cardinality($2::text[]) = 0 OR status = ANY($2::text[]))
		ORDER BY registered_at, id`

	createRegistrationSQL = `INSERT INTO registrations (` + converter.RegistrationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	updateRegistrationSQL = `UPDATE registrations SET
			status = $2, waitlist_position = $3, notes = $4, updated_at = $5, cancelled_at = $6
		WHERE id = $1`
)

type RegistrationRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewRegistrationRepository(db DBTX, logger *slog.Logger) *RegistrationRepository {
	return &RegistrationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *RegistrationRepository) Get(ctx context.Context, id uuid.UUID) (*registration.Registration, error) {
	reg, err := queryOne[converter.RegistrationRow](ctx, r.db, converter.RegistrationToDomain, getRegistrationSQL, id)
	if err != nil {
		return nil, infra.ClassifyPgErr(r.logger, "failed to get registration", err)
	}
	return reg, nil
}

func (r *RegistrationRepository) FindActive(ctx context.Context, activityID, memberID uuid.UUID) (*registration.Registration, error) {
	reg, err := queryOne[converter.RegistrationRow](ctx, r.db, converter.RegistrationToDomain, findActiveRegistrationSQL, activityID, memberID)
	if pgconv.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, infra.ClassifyPgErr(r.logger, "failed to find active registration", err)
	}
	return reg, nil
}

func (r *RegistrationRepository) CountConfirmed(ctx context.Context, activityID uuid.UUID) (int, error) {
	var n int64
	if err := r.db.QueryRow(ctx, countConfirmedSQL, activityID).Scan(&n); err != nil {
		return 0, infra.ClassifyPgErr(r.logger, "failed to count confirmed registrations", err)
	}
	return int(n), nil
}

func (r *RegistrationRepository) ListWaitlisted(ctx context.Context, activityID uuid.UUID) ([]*registration.Registration, error) {
	return r.ListByActivity(ctx, activityID, registration.StatusWaitlisted)
}

func (r *RegistrationRepository) ListByActivity(ctx context.Context, activityID uuid.UUID, statuses ...registration.Status) ([]*registration.Registration, error) {
	regs, err := queryAll[converter.RegistrationRow](ctx, r.db, converter.RegistrationToDomain, listRegistrationsSQL,
		activityID, statusStrings(statuses))
	if err != nil {
		return nil, infra.ClassifyPgErr(r.logger, "failed to list registrations", err)
	}
	return regs, nil
}

func (r *RegistrationRepository) Create(ctx context.Context, reg *registration.Registration) error {
	params, err := converter.RegistrationParams(reg)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to encode registration", err)
	}
	if _, err := r.db.Exec(ctx, createRegistrationSQL, params...); err != nil {
		return infra.ClassifyPgErr(r.logger, "failed to create registration", err)
	}
	return nil
}

func (r *RegistrationRepository) Update(ctx context.Context, reg *registration.Registration) error {
	params, err := converter.RegistrationParams(reg)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to encode registration", err)
	}
	tag, err := r.db.Exec(ctx, updateRegistrationSQL, pick(params, 0, 3, 4, 5, 7, 8)...)
	if err != nil {
		return infra.ClassifyPgErr(r.logger, "failed to update registration", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindNotFound, "registration not found", nil)
	}
	return nil
}
