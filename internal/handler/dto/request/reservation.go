package request

import (
	"strings"
	"time"

	"club-scheduler/internal/pkg/patch"
	"club-scheduler/internal/usecase/commands"

	"github.com/google/uuid"
)

type CreateReservationRequest struct {
	ResourceID uuid.UUID `json:"resource_id" binding:"required"`
	StartTime  time.Time `json:"start_time" binding:"required"`
	EndTime    time.Time `json:"end_time" binding:"required"`
	PartySize  *int      `json:"party_size,omitempty" binding:"omitempty,min=1"`
	Notes      *string   `json:"notes,omitempty" binding:"omitempty,max=1000"`
}

func (r CreateReservationRequest) ToCommand(memberID, idempotencyKey uuid.UUID) commands.CreateReservationCommand {
	return commands.CreateReservationCommand{
		ResourceID:     r.ResourceID,
		MemberID:       memberID,
		Start:          r.StartTime,
		End:            r.EndTime,
		PartySize:      patch.Coalesce(r.PartySize, 1),
		Notes:          trimmed(r.Notes),
		IdempotencyKey: idempotencyKey,
	}
}

type ListReservationsQuery struct {
	After string `form:"after"`
	Limit int    `form:"limit" binding:"omitempty,min=1"`
	// Staff only; defaults to the caller.
	MemberID string `form:"member_id" binding:"omitempty,uuid"`
}

func (q ListReservationsQuery) Member(fallback uuid.UUID) uuid.UUID {
	if id, err := uuid.Parse(q.MemberID); err == nil {
		return id
	}
	return fallback
}

func trimmed(s *string) string {
	return strings.TrimSpace(patch.Coalesce(s, ""))
}
