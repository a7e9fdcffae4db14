//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"testing"

	"reservation-engine/internal/domain/inventory"
	"reservation-engine/internal/handler/api"
	resdto "reservation-engine/internal/handler/dto/response"
	"reservation-engine/internal/handler/middleware"
	"reservation-engine/internal/pkg/config"
	"reservation-engine/internal/pkg/errs"
	"reservation-engine/internal/usecase/commands"
	"reservation-engine/internal/usecase/ledger"
	"reservation-engine/tests/common/httptest"
	apimock "reservation-engine/tests/mock/api"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type OpsHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockCtrl    *gomock.Controller
	mockDB      *apimock.MockPinger
	mockSweeper *apimock.MockSweeper
	mockRelay   *apimock.MockRelayer
	mockAvail   *apimock.MockAvailabilityReader
	cfg         config.Config
	handler     *api.OpsHandler
}

func (s *OpsHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.router.Use(middleware.CustomRecovery(), middleware.ErrorHandler())

	s.mockCtrl = gomock.NewController(s.T())
	s.mockDB = apimock.NewMockPinger(s.mockCtrl)
	s.mockSweeper = apimock.NewMockSweeper(s.mockCtrl)
	s.mockRelay = apimock.NewMockRelayer(s.mockCtrl)
	s.mockAvail = apimock.NewMockAvailabilityReader(s.mockCtrl)
	s.cfg = config.NewTestConfig()
	s.handler = api.NewOpsHandler(s.mockDB, s.mockSweeper, s.mockRelay, s.mockAvail, s.cfg)

	s.router.GET("/healthz", s.handler.Healthz)
	s.router.GET("/readyz", s.handler.Readyz)
	s.router.POST("/ops/sweep", s.handler.Sweep)
	s.router.POST("/ops/outbox/relay", s.handler.RelayOutbox)
	s.router.GET("/ops/resources/:id/availability", s.handler.Availability)
}

func (s *OpsHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestOpsHandlerSuite(t *testing.T) {
	suite.Run(t, new(OpsHandlerTestSuite))
}

// ================================================================================
// Probes
// ================================================================================

func (s *OpsHandlerTestSuite) TestProbes() {
	s.Run("success: healthz never touches the database", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/healthz", nil)
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("success: readyz pings the database", func() {
		s.mockDB.EXPECT().Ping(gomock.Any()).Return(nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/readyz", nil)
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("error: readyz reports an unreachable database", func() {
		s.mockDB.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused")).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/readyz", nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusServiceUnavailable, "Database is not reachable")
	})
}

// ================================================================================
// Sweep
// ================================================================================

func (s *OpsHandlerTestSuite) TestSweep() {
	s.Run("success: defaults come from config", func() {
		s.mockSweeper.EXPECT().
			SweepExpired(gomock.Any(), s.cfg.Sweep.BatchSize, s.cfg.Sweep.Workers).
			Return(commands.SweepResult{Scanned: 3, Expired: 2, Skipped: 1}, nil).Times(1)

		var resp resdto.SweepResponse
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/ops/sweep", nil)
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &resp)
		s.Equal(resdto.SweepResponse{Scanned: 3, Expired: 2, Skipped: 1}, resp)
	})

	s.Run("success: body overrides limit and workers", func() {
		s.mockSweeper.EXPECT().SweepExpired(gomock.Any(), 10, 3).
			Return(commands.SweepResult{}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/ops/sweep", map[string]any{"limit": 10, "workers": 3})
		s.Equal(http.StatusOK, rec.Code)
	})

	invalid := []struct {
		name string
		body map[string]any
	}{
		{name: "error: limit below minimum", body: map[string]any{"limit": 0}},
		{name: "error: workers above maximum", body: map[string]any{"workers": 65}},
		{name: "error: wrong type", body: map[string]any{"limit": "ten"}},
	}
	for _, tc := range invalid {
		s.Run(tc.name, func() {
			rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/ops/sweep", tc.body)
			httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request format")
		})
	}

	s.Run("error: transient failure maps to 503", func() {
		s.mockSweeper.EXPECT().SweepExpired(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(commands.SweepResult{}, errs.Mark(errors.New("lock timeout"), errs.ErrTransient)).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/ops/sweep", nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusServiceUnavailable, errs.MessageTryAgain)
	})
}

// ================================================================================
// Outbox relay
// ================================================================================

func (s *OpsHandlerTestSuite) TestRelayOutbox() {
	s.Run("success: returns counts", func() {
		s.mockRelay.EXPECT().RelayOnce(gomock.Any()).
			Return(commands.RelayResult{Published: 4, Failed: 1}, nil).Times(1)

		var resp resdto.RelayResponse
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/ops/outbox/relay", nil)
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &resp)
		s.Equal(4, resp.Published)
		s.Equal(1, resp.Failed)
	})

	s.Run("error: unexpected failure maps to 500", func() {
		s.mockRelay.EXPECT().RelayOnce(gomock.Any()).
			Return(commands.RelayResult{}, errors.New("boom")).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/ops/outbox/relay", nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusInternalServerError, errs.MessageGeneric)
	})
}

// ================================================================================
// Availability
// ================================================================================

func (s *OpsHandlerTestSuite) TestAvailability() {
	resourceID := uuid.New()
	url := "/ops/resources/" + resourceID.String() + "/availability"

	s.Run("success: limited capacity", func() {
		s.mockAvail.EXPECT().AvailableCount(gomock.Any(), resourceID).
			Return(inventory.Limited(7), nil).Times(1)

		var resp resdto.AvailabilityResponse
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil)
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &resp)
		s.False(resp.Unlimited)
		s.Require().NotNil(resp.Available)
		s.Equal(7, *resp.Available)
	})

	s.Run("success: unlimited omits the count", func() {
		s.mockAvail.EXPECT().AvailableCount(gomock.Any(), resourceID).
			Return(inventory.Unlimited(), nil).Times(1)

		var resp resdto.AvailabilityResponse
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil)
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &resp)
		s.True(resp.Unlimited)
		s.Nil(resp.Available)
	})

	s.Run("error: malformed id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/ops/resources/not-a-uuid/availability", nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid resource ID")
	})

	s.Run("error: unknown resource", func() {
		s.mockAvail.EXPECT().AvailableCount(gomock.Any(), resourceID).
			Return(inventory.Availability{}, errs.Mark(errors.New("no rows"), errs.ErrResourceNotFound)).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Resource not found")
	})

	s.Run("error: interval resource has no count", func() {
		s.mockAvail.EXPECT().AvailableCount(gomock.Any(), resourceID).
			Return(inventory.Availability{}, ledger.ErrNotCountable).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "Resource is not countable")
	})
}
