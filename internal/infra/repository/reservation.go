package repository

import (
	"context"
	"log/slog"
	"time"

	"club-scheduler/internal/domain/reservation"
	"club-scheduler/internal/infra"
	"club-scheduler/internal/infra/repository/converter"
	"club-scheduler/internal/pkg/pgconv"
	"club-scheduler/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	getReservationSQL = `SELECT ` + converter.ReservationColumns + ` FROM reservations WHERE id = $1`

	listOverlappingSQL = `SELECT ` + converter.ReservationColumns + `
		FROM reservations
		WHERE resource_id = $1
		  AND status = ANY($2::text[])
		  AND slot && tstzrange($3, $4, '[)')
		  AND ($5::uuid IS NULL OR id <> $5)
		ORDER BY lower(slot), id`

	listEndedBeforeSQL = `SELECT ` + converter.ReservationColumns + `
		FROM reservations
		WHERE status = ANY($1::text[])
		  AND upper(slot) < $2
		ORDER BY lower(slot), id`

	listByMemberSQL = `SELECT ` + converter.ReservationColumns + `
		FROM reservations
		WHERE member_id = $1
		  AND ($2::timestamptz IS NULL OR (lower(slot), id) > ($2::timestamptz, $3::uuid))
		ORDER BY lower(slot), id
		LIMIT $4`

	createReservationSQL = `INSERT INTO reservations (
			id, resource_id, member_id, slot, status, party_size, notes,
			created_at, updated_at, checked_in_at, checked_out_at, cancelled_at
		) VALUES ($1, $2, $3, $4::tstzrange, $5, $6, $7, $8, $9, $10, $11, $12)`

	updateReservationSQL = `UPDATE reservations SET
			slot = $2::tstzrange, status = $3, party_size = $4, notes = $5,
			updated_at = $6, checked_in_at = $7, checked_out_at = $8, cancelled_at = $9
		WHERE id = $1`
)

type ReservationRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewReservationRepository(db DBTX, logger *slog.Logger) *ReservationRepository {
	return &ReservationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ReservationRepository) Get(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	res, err := queryOne[converter.ReservationRow](ctx, r.db, converter.ReservationToDomain, getReservationSQL, id)
	if err != nil {
		return nil, infra.ClassifyPgErr(r.logger, "failed to get reservation", err)
	}
	return res, nil
}

func (r *ReservationRepository) ListOverlapping(ctx context.Context, resourceID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*reservation.Reservation, error) {
	res, err := queryAll[converter.ReservationRow](ctx, r.db, converter.ReservationToDomain, listOverlappingSQL,
		resourceID, statusStrings(reservation.BlockingStatuses()), start, end, pgconv.UUIDPtrToPgtype(excludeID))
	if err != nil {
		return nil, infra.ClassifyPgErr(r.logger, "failed to list overlapping reservations", err)
	}
	return res, nil
}

func (r *ReservationRepository) ListEndedBefore(ctx context.Context, cutoff time.Time, statuses ...reservation.Status) ([]*reservation.Reservation, error) {
	res, err := queryAll[converter.ReservationRow](ctx, r.db, converter.ReservationToDomain, listEndedBeforeSQL,
		statusStrings(statuses), cutoff)
	if err != nil {
		return nil, infra.ClassifyPgErr(r.logger, "failed to list ended reservations", err)
	}
	return res, nil
}

func (r *ReservationRepository) ListByMember(ctx context.Context, memberID uuid.UUID, after *shared.Position, limit int) ([]*reservation.Reservation, error) {
	var afterAt pgtype.Timestamptz
	var afterID pgtype.UUID
	if after != nil {
		afterAt = pgconv.TimeToPgtype(after.At)
		afterID = pgconv.UUIDPtrToPgtype(&after.ID)
	}
	var lim pgtype.Int8
	if limit > 0 {
		lim = pgtype.Int8{Int64: int64(limit), Valid: true}
	}
	res, err := queryAll[converter.ReservationRow](ctx, r.db, converter.ReservationToDomain, listByMemberSQL,
		memberID, afterAt, afterID, lim)
	if err != nil {
		return nil, infra.ClassifyPgErr(r.logger, "failed to list member reservations", err)
	}
	return res, nil
}

func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	if _, err := r.db.Exec(ctx, createReservationSQL, converter.ReservationParams(res)...); err != nil {
		return infra.ClassifyPgErr(r.logger, "failed to create reservation", err)
	}
	return nil
}

func (r *ReservationRepository) Update(ctx context.Context, res *reservation.Reservation) error {
	args := pick(converter.ReservationParams(res), 0, 3, 4, 5, 6, 8, 9, 10, 11)
	tag, err := r.db.Exec(ctx, updateReservationSQL, args...)
	if err != nil {
		return infra.ClassifyPgErr(r.logger, "failed to update reservation", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindNotFound, "reservation not found", nil)
	}
	return nil
}

func statusStrings[S ~string](statuses []S) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
