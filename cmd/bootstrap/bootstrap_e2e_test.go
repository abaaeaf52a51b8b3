//go:build e2e

package bootstrap_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"club-scheduler/cmd/bootstrap"
	"club-scheduler/cmd/bootstrap/components"
	"club-scheduler/internal/domain/member"
	resdto "club-scheduler/internal/handler/dto/response"
	"club-scheduler/internal/pkg/config"
	"club-scheduler/internal/pkg/jwt"
	"club-scheduler/internal/testutil/httptest"
	"club-scheduler/internal/testutil/pgtest"
	"club-scheduler/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"go.uber.org/fx"
)

type AppSuite struct {
	suite.Suite
	pool   *pgxpool.Pool
	router *gin.Engine
	tokens *jwt.Service
	app    *fx.App
}

func TestAppSuite(t *testing.T) {
	suite.Run(t, new(AppSuite))
}

func (s *AppSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	pool, dbConfig := pgtest.NewDatabase(s.T())
	s.pool = pool

	cfg := config.NewTestConfig()
	cfg.Store.Driver = config.StoreDriverPostgres
	cfg.DB = dbConfig

	s.app = fx.New(
		fx.Provide(func() config.Config { return cfg }),
		fx.Provide(func() *gin.Engine { return gin.New() }),
		bootstrap.LoggerModule,
		bootstrap.StoreModule,
		bootstrap.JWTModule,
		bootstrap.IdempotencyModule,
		components.UseCaseModule,
		components.HandlerModule,
		fx.Populate(&s.router, &s.tokens),
		fx.NopLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.Require().NoError(s.app.Start(ctx))
	s.Require().NotNil(s.router)
}

func (s *AppSuite) TearDownSuite() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.NoError(s.app.Stop(ctx))
}

func (s *AppSuite) SetupTest() {
	pgtest.ResetDB(s.T(), s.pool)
}

func (s *AppSuite) token(id uuid.UUID, role member.Role) string {
	tok, err := s.tokens.GenerateToken(id, role)
	s.Require().NoError(err)
	return tok
}

func (s *AppSuite) createResource(admin string) uuid.UUID {
	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/resources",
		map[string]any{"name": "Court 1"}, admin)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var view queries.ResourceView
	s.Require().NoError(httptest.DecodeResponseBody(s.T(), w.Body, &view))
	return view.ID
}

func (s *AppSuite) TestBookingFlow() {
	admin := s.token(uuid.New(), member.RoleAdmin)
	memberID := uuid.New()
	alice := s.token(memberID, member.RoleMember)
	bob := s.token(uuid.New(), member.RoleMember)

	resourceID := s.createResource(admin)
	start := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Hour)
	body := map[string]any{
		"resource_id": resourceID,
		"start_time":  start,
		"end_time":    start.Add(time.Hour),
	}
	key := uuid.NewString()

	w := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, "/api/reservations", body, alice,
		map[string]string{"Idempotency-Key": key})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	httptest.AssertNotReplayed(s.T(), w)
	var booked resdto.BookingResponse
	s.Require().NoError(httptest.DecodeResponseBody(s.T(), w.Body, &booked))
	s.Require().NotNil(booked.Reservation)
	s.Equal("confirmed", booked.Reservation.Status)

	s.Run("replay returns the same reservation", func() {
		w := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, "/api/reservations", body, alice,
			map[string]string{"Idempotency-Key": key})
		s.Require().Equal(http.StatusCreated, w.Code)
		httptest.AssertHeaders(s.T(), w, map[string]string{"Idempotent-Replayed": "true"})

		var replay resdto.BookingResponse
		s.Require().NoError(httptest.DecodeResponseBody(s.T(), w.Body, &replay))
		s.Equal(booked.Reservation.ID, replay.Reservation.ID)
	})

	s.Run("overlapping booking conflicts", func() {
		w := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, "/api/reservations", map[string]any{
			"resource_id": resourceID,
			"start_time":  start.Add(30 * time.Minute),
			"end_time":    start.Add(90 * time.Minute),
		}, bob, map[string]string{"Idempotency-Key": uuid.NewString()})
		httptest.AssertReasons(s.T(), w, http.StatusConflict, "time slot conflicts with existing reservations")
	})

	s.Run("other members cannot see it", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/reservations/"+booked.Reservation.ID.String(), nil, bob)
		s.Equal(http.StatusNotFound, w.Code)
	})

	s.Run("owner lists it", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/reservations", nil, alice)
		s.Require().Equal(http.StatusOK, w.Code)

		var list resdto.ReservationListResponse
		s.Require().NoError(httptest.DecodeResponseBody(s.T(), w.Body, &list))
		s.Require().Len(list.Items, 1)
		s.Equal(memberID, list.Items[0].MemberID)
	})

	s.Run("availability reports the conflict", func() {
		path := "/api/resources/" + resourceID.String() + "/availability?start=" +
			start.Format(time.RFC3339) + "&end=" + start.Add(time.Hour).Format(time.RFC3339)
		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, path, nil, bob)
		s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

		var avail queries.AvailabilityView
		s.Require().NoError(httptest.DecodeResponseBody(s.T(), w.Body, &avail))
		s.False(avail.IsAvailable)
		s.Require().NotNil(avail.NextAvailableSlot)
		s.True(avail.NextAvailableSlot.Start.Equal(start.Add(24 * time.Hour)))
	})

	s.Run("owner cancels", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost,
			"/api/reservations/"+booked.Reservation.ID.String()+"/cancel", nil, alice)
		s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	})
}

func (s *AppSuite) TestMissingIdempotencyKey() {
	alice := s.token(uuid.New(), member.RoleMember)

	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/reservations", map[string]any{
		"resource_id": uuid.New(),
		"start_time":  time.Now().Add(time.Hour),
		"end_time":    time.Now().Add(2 * time.Hour),
	}, alice)
	httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Idempotency-Key header is required")
}

func (s *AppSuite) TestRolesAreEnforced() {
	alice := s.token(uuid.New(), member.RoleMember)

	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/resources", map[string]any{"name": "Court 9"}, alice)
	s.Equal(http.StatusForbidden, w.Code)

	w = httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/reservations", nil, "")
	s.Equal(http.StatusUnauthorized, w.Code)
}
