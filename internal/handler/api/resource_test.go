//go:build unit

package api_test

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"club-scheduler/internal/domain/resource"
	"club-scheduler/internal/handler/api"
	"club-scheduler/internal/pkg/config"
	"club-scheduler/internal/pkg/errs"
	"club-scheduler/internal/testutil"
	"club-scheduler/internal/testutil/httptest"
	commandsmock "club-scheduler/internal/testutil/mock/commands"
	queriesmock "club-scheduler/internal/testutil/mock/queries"
	"club-scheduler/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ResourceHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockResourceCommands
	mockQueries  *queriesmock.MockResourceQueries
}

func (s *ResourceHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockResourceCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockResourceQueries(s.mockCtrl)
	handler, err := api.NewResourceHandler(s.mockCommands, s.mockQueries, config.NewTestConfig())
	s.Require().NoError(err)

	auth := fakeAuth(memberActor())
	s.router.POST("/resources", auth, handler.CreateResource)
	s.router.GET("/resources/:id", auth, handler.GetResource)
	s.router.GET("/resources/:id/availability", auth, handler.CheckAvailability)
	s.router.GET("/resources/:id/reservations", auth, handler.ListReservations)
}

func (s *ResourceHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestResourceHandlerSuite(t *testing.T) {
	suite.Run(t, new(ResourceHandlerTestSuite))
}

func createResourceBody() map[string]any {
	return map[string]any{
		"name":             "Court 1",
		"operating_days":   []string{"mon", "tue", "wed", "thu", "fri"},
		"opens_at":         "08:00",
		"closes_at":        "22:00",
		"min_duration_min": 30,
		"max_duration_min": 120,
		"capacity":         4,
		"lead_time_min":    60,
		"time_zone":        "Europe/Berlin",
	}
}

func (s *ResourceHandlerTestSuite) TestCreateResource() {
	s.Run("success: rules are converted", func() {
		s.mockCommands.EXPECT().CreateResource(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, cfg resource.Config) (*queries.ResourceView, error) {
				s.Equal("Court 1", cfg.Name)
				s.Equal(resource.StatusActive, cfg.Status)
				s.Equal([]time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}, cfg.OperatingDays)
				s.Require().NotNil(cfg.OperatingHours)
				s.Equal(resource.OperatingHours{Open: 8 * 60, Close: 22 * 60}, *cfg.OperatingHours)
				s.Equal(30*time.Minute, cfg.MinDuration)
				s.Equal(2*time.Hour, cfg.MaxDuration)
				s.Equal("Europe/Berlin", cfg.Location.String())
				return &queries.ResourceView{ID: uuid.New(), Name: cfg.Name}, nil
			})

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/resources", createResourceBody(), bearer)
		s.Equal(http.StatusCreated, rec.Code, rec.Body.String())
	})

	s.Run("success: midnight close and default zone", func() {
		s.mockCommands.EXPECT().CreateResource(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, cfg resource.Config) (*queries.ResourceView, error) {
				s.Equal(24*60, cfg.OperatingHours.Close)
				s.Equal("UTC", cfg.Location.String())
				return &queries.ResourceView{ID: uuid.New()}, nil
			})
		body := testutil.DtoMap(s.T(), createResourceBody(), testutil.Field("closes_at", "24:00"), testutil.Field("time_zone", nil))

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/resources", body, bearer)
		s.Equal(http.StatusCreated, rec.Code, rec.Body.String())
	})

	s.Run("error: 400 on invalid rules", func() {
		cases := []struct {
			name   string
			mutate func(map[string]any)
		}{
			{name: "missing name", mutate: testutil.Field("name", nil)},
			{name: "unknown status", mutate: testutil.Field("status", "open")},
			{name: "only opens_at", mutate: testutil.Field("closes_at", nil)},
			{name: "close before open", mutate: testutil.Field("closes_at", "07:00")},
			{name: "malformed time of day", mutate: testutil.Field("opens_at", "8am")},
			{name: "unknown weekday", mutate: testutil.Field("operating_days", []string{"someday"})},
			{name: "unknown zone", mutate: testutil.Field("time_zone", "Mars/Olympus")},
			{name: "capacity zero", mutate: testutil.Field("capacity", 0)},
			{name: "negative lead time", mutate: testutil.Field("lead_time_min", -5)},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				body := testutil.DtoMap(s.T(), createResourceBody(), tc.mutate)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/resources", body, bearer)
				s.Equal(http.StatusBadRequest, rec.Code, rec.Body.String())
			})
		}
	})

	s.Run("error: domain validation from the use case", func() {
		s.mockCommands.EXPECT().CreateResource(gomock.Any(), gomock.Any()).
			Return(nil, errs.Mark(resource.ErrInvalidDurations, errs.ErrValidation))
		body := testutil.DtoMap(s.T(), createResourceBody(), testutil.Field("min_duration_min", 180))
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/resources", body, bearer)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "duration bounds")
	})
}

func (s *ResourceHandlerTestSuite) TestCheckAvailability() {
	id := uuid.New()
	start := slotStart
	end := slotStart.Add(time.Hour)
	query := url.Values{
		"start": {start.Format(time.RFC3339)},
		"end":   {end.Format(time.RFC3339)},
	}

	s.Run("success: passes the window and exclusion through", func() {
		exclude := uuid.New()
		q := url.Values{"excludeReservationId": {exclude.String()}}
		for k, v := range query {
			q[k] = v
		}
		s.mockQueries.EXPECT().CheckAvailability(gomock.Any(), id, gomock.Any(), gomock.Any(), &exclude).
			DoAndReturn(func(_ any, _ uuid.UUID, gotStart, gotEnd time.Time, _ *uuid.UUID) (*queries.AvailabilityView, error) {
				s.True(start.Equal(gotStart))
				s.True(end.Equal(gotEnd))
				return &queries.AvailabilityView{IsAvailable: true, ConflictReasons: []string{}}, nil
			})

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/resources/"+id.String()+"/availability?"+q.Encode(), nil, bearer)

		var body queries.AvailabilityView
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.True(body.IsAvailable)
	})

	s.Run("error: 400 without end", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet,
			"/resources/"+id.String()+"/availability?start="+url.QueryEscape(start.Format(time.RFC3339)), nil, bearer)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("error: 400 on malformed exclusion id", func() {
		q := url.Values{"excludeReservationId": {"xyz"}}
		for k, v := range query {
			q[k] = v
		}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/resources/"+id.String()+"/availability?"+q.Encode(), nil, bearer)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("error: 404 for unknown resource", func() {
		s.mockQueries.EXPECT().CheckAvailability(gomock.Any(), id, gomock.Any(), gomock.Any(), gomock.Nil()).
			Return(nil, errs.NotFound("resource not found"))
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/resources/"+id.String()+"/availability?"+query.Encode(), nil, bearer)
		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *ResourceHandlerTestSuite) TestListReservations() {
	id := uuid.New()
	query := url.Values{
		"from": {slotStart.Format(time.RFC3339)},
		"to":   {slotStart.Add(24 * time.Hour).Format(time.RFC3339)},
	}

	s.Run("success", func() {
		s.mockQueries.EXPECT().ListReservations(gomock.Any(), id, gomock.Any(), gomock.Any()).
			Return([]*queries.ReservationView{reservationView(uuid.New())}, nil)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/resources/"+id.String()+"/reservations?"+query.Encode(), nil, bearer)
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("error: window too wide", func() {
		s.mockQueries.EXPECT().ListReservations(gomock.Any(), id, gomock.Any(), gomock.Any()).
			Return(nil, errs.Validation("window must not exceed 62 days"))
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/resources/"+id.String()+"/reservations?"+query.Encode(), nil, bearer)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "62 days")
	})

	s.Run("get resource: 404", func() {
		s.mockQueries.EXPECT().GetResource(gomock.Any(), id).Return(nil, errs.NotFound("resource not found"))
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/resources/"+id.String(), nil, bearer)
		s.Equal(http.StatusNotFound, rec.Code)
	})
}
