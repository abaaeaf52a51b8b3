//go:build unit

package api_test

import (
	"net/http"
	"time"

	"club-scheduler/internal/domain/member"
	"club-scheduler/internal/handler/middleware"
	"club-scheduler/internal/usecase/queries"
	"club-scheduler/internal/usecase/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const bearer = "bearer-token"

var slotStart = time.Date(2030, 6, 3, 10, 0, 0, 0, time.UTC)

// fakeAuth stands in for RequireAuth: any bearer token authenticates as actor.
func fakeAuth(actor *shared.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unauthorized"}})
			return
		}
		middleware.SetActor(c, *actor)
		c.Next()
	}
}

func memberActor() *shared.Actor {
	return &shared.Actor{MemberID: uuid.New(), Role: member.RoleMember}
}

func reservationView(memberID uuid.UUID) *queries.ReservationView {
	return &queries.ReservationView{
		ID:         uuid.New(),
		ResourceID: uuid.New(),
		MemberID:   memberID,
		Slot:       queries.SlotView{Start: slotStart, End: slotStart.Add(time.Hour)},
		Status:     "confirmed",
		PartySize:  1,
		CreatedAt:  slotStart.Add(-48 * time.Hour),
		UpdatedAt:  slotStart.Add(-48 * time.Hour),
	}
}

func registrationView(activityID uuid.UUID, status string, position *int) *queries.RegistrationView {
	return &queries.RegistrationView{
		ID:               uuid.New(),
		ActivityID:       activityID,
		MemberID:         uuid.New(),
		Status:           status,
		WaitlistPosition: position,
		RegisteredAt:     slotStart.Add(-24 * time.Hour),
	}
}
