package memstore

import (
	"bytes"
	"context"
	"slices"
	"time"

	"club-scheduler/internal/domain/activity"
	"club-scheduler/internal/domain/registration"
	"club-scheduler/internal/domain/reservation"
	"club-scheduler/internal/domain/resource"
	"club-scheduler/internal/infra"
	"club-scheduler/internal/usecase/shared"

	"github.com/google/uuid"
)

type resourceRepo struct{ tx *memTx }

func (r *resourceRepo) Get(_ context.Context, id uuid.UUID) (*resource.Resource, error) {
	res, ok := r.tx.st.resources[id]
	if !ok {
		return nil, infra.WrapRepoErr(r.tx.logger, infra.KindNotFound, "resource not found", nil)
	}
	// Resources have no mutators, so sharing the stored pointer is safe.
	return res, nil
}

func (r *resourceRepo) Create(_ context.Context, res *resource.Resource) error {
	if err := r.tx.checkWritable(); err != nil {
		return err
	}
	if _, ok := r.tx.st.resources[res.ID()]; ok {
		return infra.WrapRepoErr(r.tx.logger, infra.KindDuplicateKey, "resource already exists", nil)
	}
	r.tx.st.resources[res.ID()] = resource.ReconstructResource(res.ID(), res.Config(), res.CreatedAt(), res.UpdatedAt())
	return nil
}

type reservationRepo struct{ tx *memTx }

func (r *reservationRepo) Get(_ context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	res, ok := r.tx.st.reservations[id]
	if !ok {
		return nil, infra.WrapRepoErr(r.tx.logger, infra.KindNotFound, "reservation not found", nil)
	}
	return res.Clone(), nil
}

func (r *reservationRepo) ListOverlapping(_ context.Context, resourceID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*reservation.Reservation, error) {
	var out []*reservation.Reservation
	for _, res := range r.tx.st.reservations {
		if res.ResourceID() != resourceID || !res.IsBlocking() {
			continue
		}
		if excludeID != nil && res.ID() == *excludeID {
			continue
		}
		if res.Slot().Start().Before(end) && start.Before(res.Slot().End()) {
			out = append(out, res.Clone())
		}
	}
	sortReservations(out)
	return out, nil
}

func (r *reservationRepo) ListEndedBefore(_ context.Context, cutoff time.Time, statuses ...reservation.Status) ([]*reservation.Reservation, error) {
	var out []*reservation.Reservation
	for _, res := range r.tx.st.reservations {
		if slices.Contains(statuses, res.Status()) && res.Slot().End().Before(cutoff) {
			out = append(out, res.Clone())
		}
	}
	sortReservations(out)
	return out, nil
}

func (r *reservationRepo) ListByMember(_ context.Context, memberID uuid.UUID, after *shared.Position, limit int) ([]*reservation.Reservation, error) {
	var out []*reservation.Reservation
	for _, res := range r.tx.st.reservations {
		if res.MemberID() != memberID {
			continue
		}
		if after != nil {
			c := res.Slot().Start().Compare(after.At)
			if c < 0 || (c == 0 && compareIDs(res.ID(), after.ID) <= 0) {
				continue
			}
		}
		out = append(out, res.Clone())
	}
	sortReservations(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *reservationRepo) Create(_ context.Context, res *reservation.Reservation) error {
	if err := r.tx.checkWritable(); err != nil {
		return err
	}
	if _, ok := r.tx.st.reservations[res.ID()]; ok {
		return infra.WrapRepoErr(r.tx.logger, infra.KindDuplicateKey, "reservation already exists", nil)
	}
	if err := r.checkExclusion(res); err != nil {
		return err
	}
	r.tx.st.reservations[res.ID()] = res.Clone()
	return nil
}

func (r *reservationRepo) Update(_ context.Context, res *reservation.Reservation) error {
	if err := r.tx.checkWritable(); err != nil {
		return err
	}
	if _, ok := r.tx.st.reservations[res.ID()]; !ok {
		return infra.WrapRepoErr(r.tx.logger, infra.KindNotFound, "reservation not found", nil)
	}
	if err := r.checkExclusion(res); err != nil {
		return err
	}
	r.tx.st.reservations[res.ID()] = res.Clone()
	return nil
}

// checkExclusion mirrors the database exclusion constraint: blocking
// reservations on one resource never overlap.
func (r *reservationRepo) checkExclusion(res *reservation.Reservation) error {
	if !res.IsBlocking() {
		return nil
	}
	for _, other := range r.tx.st.reservations {
		if other.ID() == res.ID() || other.ResourceID() != res.ResourceID() || !other.IsBlocking() {
			continue
		}
		if other.Slot().Overlaps(res.Slot()) {
			return infra.WrapRepoErr(r.tx.logger, infra.KindConflict, "reservation overlaps an existing booking", nil)
		}
	}
	return nil
}

func sortReservations(rs []*reservation.Reservation) {
	slices.SortFunc(rs, func(a, b *reservation.Reservation) int {
		if c := a.Slot().Start().Compare(b.Slot().Start()); c != 0 {
			return c
		}
		return compareIDs(a.ID(), b.ID())
	})
}

type activityRepo struct{ tx *memTx }

func (r *activityRepo) Get(_ context.Context, id uuid.UUID) (*activity.Activity, error) {
	act, ok := r.tx.st.activities[id]
	if !ok {
		return nil, infra.WrapRepoErr(r.tx.logger, infra.KindNotFound, "activity not found", nil)
	}
	return act.Clone(), nil
}

func (r *activityRepo) Create(_ context.Context, act *activity.Activity) error {
	if err := r.tx.checkWritable(); err != nil {
		return err
	}
	if _, ok := r.tx.st.activities[act.ID()]; ok {
		return infra.WrapRepoErr(r.tx.logger, infra.KindDuplicateKey, "activity already exists", nil)
	}
	if sid := act.SeriesID(); sid != nil && !act.IsSeriesRoot() {
		if _, ok := r.tx.st.activities[*sid]; !ok {
			return infra.WrapRepoErr(r.tx.logger, infra.KindForeignKeyViolated, "series root does not exist", nil)
		}
	}
	r.tx.st.activities[act.ID()] = act.Clone()
	return nil
}

func (r *activityRepo) Update(_ context.Context, act *activity.Activity) error {
	if err := r.tx.checkWritable(); err != nil {
		return err
	}
	if _, ok := r.tx.st.activities[act.ID()]; !ok {
		return infra.WrapRepoErr(r.tx.logger, infra.KindNotFound, "activity not found", nil)
	}
	r.tx.st.activities[act.ID()] = act.Clone()
	return nil
}

func (r *activityRepo) ListSeries(_ context.Context, seriesID uuid.UUID) ([]*activity.Activity, error) {
	var out []*activity.Activity
	for _, act := range r.tx.st.activities {
		sid := act.SeriesID()
		if sid == nil || *sid != seriesID || act.IsSeriesRoot() || act.IsCancelled() {
			continue
		}
		out = append(out, act.Clone())
	}
	slices.SortFunc(out, func(a, b *activity.Activity) int {
		if c := a.Slot().Start().Compare(b.Slot().Start()); c != 0 {
			return c
		}
		return a.OccurrenceNumber() - b.OccurrenceNumber()
	})
	return out, nil
}

type registrationRepo struct{ tx *memTx }

func (r *registrationRepo) Get(_ context.Context, id uuid.UUID) (*registration.Registration, error) {
	reg, ok := r.tx.st.registrations[id]
	if !ok {
		return nil, infra.WrapRepoErr(r.tx.logger, infra.KindNotFound, "registration not found", nil)
	}
	return reg.Clone(), nil
}

func (r *registrationRepo) FindActive(_ context.Context, activityID, memberID uuid.UUID) (*registration.Registration, error) {
	for _, reg := range r.tx.st.registrations {
		if reg.ActivityID() == activityID && reg.MemberID() == memberID && reg.IsActive() {
			return reg.Clone(), nil
		}
	}
	return nil, nil
}

func (r *registrationRepo) CountConfirmed(_ context.Context, activityID uuid.UUID) (int, error) {
	n := 0
	for _, reg := range r.tx.st.registrations {
		if reg.ActivityID() == activityID && reg.Status() == registration.StatusConfirmed {
			n++
		}
	}
	return n, nil
}

func (r *registrationRepo) ListWaitlisted(ctx context.Context, activityID uuid.UUID) ([]*registration.Registration, error) {
	return r.ListByActivity(ctx, activityID, registration.StatusWaitlisted)
}

func (r *registrationRepo) ListByActivity(_ context.Context, activityID uuid.UUID, statuses ...registration.Status) ([]*registration.Registration, error) {
	var out []*registration.Registration
	for _, reg := range r.tx.st.registrations {
		if reg.ActivityID() != activityID {
			continue
		}
		if len(statuses) > 0 && !slices.Contains(statuses, reg.Status()) {
			continue
		}
		out = append(out, reg.Clone())
	}
	slices.SortFunc(out, func(a, b *registration.Registration) int {
		if c := a.RegisteredAt().Compare(b.RegisteredAt()); c != 0 {
			return c
		}
		return compareIDs(a.ID(), b.ID())
	})
	return out, nil
}

func (r *registrationRepo) Create(_ context.Context, reg *registration.Registration) error {
	if err := r.tx.checkWritable(); err != nil {
		return err
	}
	if _, ok := r.tx.st.registrations[reg.ID()]; ok {
		return infra.WrapRepoErr(r.tx.logger, infra.KindDuplicateKey, "registration already exists", nil)
	}
	if _, ok := r.tx.st.activities[reg.ActivityID()]; !ok {
		return infra.WrapRepoErr(r.tx.logger, infra.KindForeignKeyViolated, "activity does not exist", nil)
	}
	if err := r.checkUniqueActive(reg); err != nil {
		return err
	}
	r.tx.st.registrations[reg.ID()] = reg.Clone()
	return nil
}

func (r *registrationRepo) Update(_ context.Context, reg *registration.Registration) error {
	if err := r.tx.checkWritable(); err != nil {
		return err
	}
	if _, ok := r.tx.st.registrations[reg.ID()]; !ok {
		return infra.WrapRepoErr(r.tx.logger, infra.KindNotFound, "registration not found", nil)
	}
	if err := r.checkUniqueActive(reg); err != nil {
		return err
	}
	r.tx.st.registrations[reg.ID()] = reg.Clone()
	return nil
}

// checkUniqueActive mirrors the partial unique index on active registrations.
func (r *registrationRepo) checkUniqueActive(reg *registration.Registration) error {
	if !reg.IsActive() {
		return nil
	}
	for _, other := range r.tx.st.registrations {
		if other.ID() != reg.ID() && other.IsActive() &&
			other.ActivityID() == reg.ActivityID() && other.MemberID() == reg.MemberID() {
			return infra.WrapRepoErr(r.tx.logger, infra.KindDuplicateKey, "member already registered for activity", nil)
		}
	}
	return nil
}

type notificationRepo struct{ tx *memTx }

func (r *notificationRepo) CreateJob(_ context.Context, kind, topic string, payload []byte, runAt time.Time) error {
	if err := r.tx.checkWritable(); err != nil {
		return err
	}
	r.tx.st.jobs = append(r.tx.st.jobs, NotificationJob{
		ID:      uuid.New(),
		Kind:    kind,
		Topic:   topic,
		Payload: slices.Clone(payload),
		RunAt:   runAt,
	})
	return nil
}

func compareIDs(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}
