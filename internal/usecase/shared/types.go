package shared

import (
	"context"
	"encoding/json"
	"time"

	"club-scheduler/internal/domain/member"
	"club-scheduler/internal/pkg/errs"

	"github.com/google/uuid"
)

// Actor is the authenticated caller on whose behalf a use case runs.
type Actor struct {
	MemberID uuid.UUID
	Role     member.Role
}

func (a Actor) IsStaff() bool {
	return a.Role.IsStaff()
}

// CanAccess reports whether the actor may see or change data owned by ownerID.
func (a Actor) CanAccess(ownerID uuid.UUID) bool {
	return a.MemberID == ownerID || a.IsStaff()
}

// Notification topics written to the outbox.
const (
	TopicReservationConfirmed  = "reservation_confirmed"
	TopicReservationCancelled  = "reservation_cancelled"
	TopicRegistrationConfirmed = "registration_confirmed"
	TopicRegistrationPromoted  = "registration_promoted"
	TopicRegistrationCancelled = "registration_cancelled"

	notificationKindEmail = "email"
)

// Notify enqueues an email job for topic carrying payload as JSON.
func Notify(ctx context.Context, repo NotificationRepository, topic string, payload any, runAt time.Time) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errs.Wrap(err, "failed to encode notification payload")
	}
	return repo.CreateJob(ctx, notificationKindEmail, topic, body, runAt)
}

const (
	IdempotencyStatusProcessing = "processing"
	IdempotencyStatusCompleted  = "completed"
)

type IdempotencyRecord struct {
	Key         uuid.UUID  `json:"key"`
	Scope       string     `json:"scope"`
	Status      string     `json:"status"`
	RequestHash string     `json:"requestHash"`
	ResultID    *uuid.UUID `json:"resultId,omitempty"`
}

// IdempotencyStore remembers the outcome of requests carrying an
// Idempotency-Key. Scope separates keys per caller and endpoint.
type IdempotencyStore interface {
	// Claim records key as processing. When the key is already known it
	// returns the existing record and claimed=false.
	Claim(ctx context.Context, scope string, key uuid.UUID, requestHash string) (rec *IdempotencyRecord, claimed bool, err error)
	Complete(ctx context.Context, scope string, key uuid.UUID, resultID uuid.UUID) error
	// Release forgets a claim whose request failed so it can be retried.
	Release(ctx context.Context, scope string, key uuid.UUID) error
}
