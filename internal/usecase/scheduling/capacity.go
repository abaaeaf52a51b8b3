package scheduling

import (
	"context"
	"log/slog"
	"time"

	"club-scheduler/internal/domain/activity"
	"club-scheduler/internal/domain/registration"
	"club-scheduler/internal/pkg/clock"
	"club-scheduler/internal/pkg/errs"
	"club-scheduler/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	ReasonEventFull          = "event is full"
	ReasonAlreadyRegistered  = "member already has an active registration for this event"
	ReasonAlreadyCancelled   = "registration is already cancelled"
	ReasonEventCancelled     = "event has been cancelled"
	ReasonEventStarted       = "event has already started"
	ReasonSeriesTemplateOnly = "series template does not accept registrations"
)

// RegistrationStore is the slice of a transaction the manager works on.
type RegistrationStore interface {
	Activities() shared.ActivityRepository
	Registrations() shared.RegistrationRepository
	Notifications() shared.NotificationRepository
}

type RegistrationResult struct {
	Status           registration.Status
	Registration     *registration.Registration
	WaitlistPosition *int
	// Reasons is set when the request was declined.
	Reasons []string
}

type PromotionResult struct {
	Promoted   []*registration.Registration
	Renumbered int
}

type CancelResult struct {
	Registration *registration.Registration
	Promotion    PromotionResult
	// Reasons is set when nothing was cancelled.
	Reasons []string
}

// CapacityManager admits registrations against an activity's capacity and
// keeps the waitlist FIFO and contiguous. Every method must run inside a
// transaction holding the activity lock.
type CapacityManager struct {
	clock  clock.Clock
	logger *slog.Logger
}

func NewCapacityManager(clk clock.Clock, logger *slog.Logger) *CapacityManager {
	return &CapacityManager{clock: clk, logger: logger}
}

func (m *CapacityManager) Register(ctx context.Context, store RegistrationStore, activityID, memberID uuid.UUID, notes string) (*RegistrationResult, error) {
	now := m.clock.Now()

	act, err := store.Activities().Get(ctx, activityID)
	if err != nil {
		return nil, err
	}

	decline := func(reason string) (*RegistrationResult, error) {
		reg, err := registration.NewDeclined(activityID, memberID, notes, now)
		if err != nil {
			return nil, errs.Mark(err, errs.ErrValidation)
		}
		return &RegistrationResult{Status: registration.StatusDeclined, Registration: reg, Reasons: []string{reason}}, nil
	}

	switch {
	case act.IsSeriesRoot():
		return decline(ReasonSeriesTemplateOnly)
	case act.IsCancelled():
		return decline(ReasonEventCancelled)
	case act.HasStarted(now):
		return decline(ReasonEventStarted)
	}

	existing, err := store.Registrations().FindActive(ctx, activityID, memberID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return decline(ReasonAlreadyRegistered)
	}

	confirmed, err := store.Registrations().CountConfirmed(ctx, activityID)
	if err != nil {
		return nil, err
	}

	var reg *registration.Registration
	switch {
	case !act.IsFull(confirmed):
		reg, err = registration.NewConfirmed(activityID, memberID, notes, now)
		if err != nil {
			return nil, errs.Mark(err, errs.ErrValidation)
		}
		act.IncrementEnrollment(now)
		if err := store.Activities().Update(ctx, act); err != nil {
			return nil, err
		}
	case act.AllowWaitlist():
		waitlisted, err := store.Registrations().ListWaitlisted(ctx, activityID)
		if err != nil {
			return nil, err
		}
		reg, err = registration.NewWaitlisted(activityID, memberID, notes, len(waitlisted)+1, now)
		if err != nil {
			return nil, errs.Mark(err, errs.ErrValidation)
		}
	default:
		return decline(ReasonEventFull)
	}

	if err := store.Registrations().Create(ctx, reg); err != nil {
		return nil, err
	}

	m.logger.InfoContext(ctx, "registration admitted",
		"activity_id", activityID,
		"member_id", memberID,
		"status", reg.Status(),
		"confirmed", act.Enrolled())

	return &RegistrationResult{
		Status:           reg.Status(),
		Registration:     reg,
		WaitlistPosition: reg.WaitlistPosition(),
	}, nil
}

// Cancel cancels a registration and promotes from the waitlist in the same
// transaction.
func (m *CapacityManager) Cancel(ctx context.Context, store RegistrationStore, registrationID uuid.UUID) (*CancelResult, error) {
	now := m.clock.Now()

	reg, err := store.Registrations().Get(ctx, registrationID)
	if err != nil {
		return nil, err
	}

	wasConfirmed, err := reg.Cancel(now)
	if err != nil {
		if errs.Is(err, registration.ErrAlreadyCancelled) {
			return &CancelResult{Registration: reg, Reasons: []string{ReasonAlreadyCancelled}}, nil
		}
		return nil, err
	}
	if err := store.Registrations().Update(ctx, reg); err != nil {
		return nil, err
	}

	if wasConfirmed {
		act, err := store.Activities().Get(ctx, reg.ActivityID())
		if err != nil {
			return nil, err
		}
		act.DecrementEnrollment(now)
		if err := store.Activities().Update(ctx, act); err != nil {
			return nil, err
		}
	}

	promotion, err := m.PromoteFromWaitlist(ctx, store, reg.ActivityID())
	if err != nil {
		return nil, err
	}
	return &CancelResult{Registration: reg, Promotion: *promotion}, nil
}

// PromoteFromWaitlist fills free spots with the earliest waitlisted
// registrations and renumbers the rest 1..N. Running it again without a
// state change promotes nobody and renumbers nothing.
func (m *CapacityManager) PromoteFromWaitlist(ctx context.Context, store RegistrationStore, activityID uuid.UUID) (*PromotionResult, error) {
	now := m.clock.Now()
	result := &PromotionResult{}

	act, err := store.Activities().Get(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if act.IsCancelled() {
		return result, nil
	}

	confirmed, err := store.Registrations().CountConfirmed(ctx, activityID)
	if err != nil {
		return nil, err
	}
	spots := act.Capacity() - confirmed

	waitlisted, err := store.Registrations().ListWaitlisted(ctx, activityID)
	if err != nil {
		return nil, err
	}

	for spots > 0 && len(waitlisted) > 0 {
		next := waitlisted[0]
		waitlisted = waitlisted[1:]
		if err := next.Promote(now); err != nil {
			return nil, err
		}
		if err := store.Registrations().Update(ctx, next); err != nil {
			return nil, err
		}
		act.IncrementEnrollment(now)
		if err := shared.Notify(ctx, store.Notifications(), shared.TopicRegistrationPromoted, map[string]any{
			"registration_id": next.ID(),
			"activity_id":     activityID,
			"member_id":       next.MemberID(),
		}, now); err != nil {
			return nil, err
		}
		result.Promoted = append(result.Promoted, next)
		spots--
	}
	if len(result.Promoted) > 0 {
		if err := store.Activities().Update(ctx, act); err != nil {
			return nil, err
		}
		m.logger.InfoContext(ctx, "promoted from waitlist",
			"activity_id", activityID,
			"promoted", len(result.Promoted),
			"remaining", len(waitlisted))
	}

	renumbered, err := renumberWaitlist(ctx, store, waitlisted, now)
	if err != nil {
		return nil, err
	}
	result.Renumbered = renumbered
	return result, nil
}

func renumberWaitlist(ctx context.Context, store RegistrationStore, waitlisted []*registration.Registration, now time.Time) (int, error) {
	changed := 0
	for i, reg := range waitlisted {
		moved, err := reg.SetWaitlistPosition(i+1, now)
		if err != nil {
			return changed, err
		}
		if !moved {
			continue
		}
		if err := store.Registrations().Update(ctx, reg); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

// EnrollmentDrift compares the cached enrollment counter with the stored
// confirmed count. A non-zero drift means the counter was updated outside
// a transaction.
func (m *CapacityManager) EnrollmentDrift(ctx context.Context, store RegistrationStore, activityID uuid.UUID) (cached, actual int, err error) {
	act, err := store.Activities().Get(ctx, activityID)
	if err != nil {
		return 0, 0, err
	}
	actual, err = store.Registrations().CountConfirmed(ctx, activityID)
	if err != nil {
		return 0, 0, err
	}
	return act.Enrolled(), actual, nil
}

// CancelActiveRegistrations cancels every confirmed or waitlisted
// registration of act without promoting anyone, notifying each member.
func (m *CapacityManager) CancelActiveRegistrations(ctx context.Context, store RegistrationStore, act *activity.Activity) (int, error) {
	now := m.clock.Now()
	regs, err := store.Registrations().ListByActivity(ctx, act.ID(), registration.StatusConfirmed, registration.StatusWaitlisted)
	if err != nil {
		return 0, err
	}
	for _, reg := range regs {
		if _, err := reg.Cancel(now); err != nil {
			return 0, err
		}
		if err := store.Registrations().Update(ctx, reg); err != nil {
			return 0, err
		}
		if err := shared.Notify(ctx, store.Notifications(), shared.TopicRegistrationCancelled, map[string]any{
			"registration_id": reg.ID(),
			"activity_id":     act.ID(),
			"member_id":       reg.MemberID(),
			"reason":          "occurrence removed from series",
		}, now); err != nil {
			return 0, err
		}
	}
	act.SetEnrollment(0, now)
	return len(regs), nil
}
