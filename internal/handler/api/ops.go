package api

//go:generate mockgen -source=ops.go -destination=../../../tests/mock/api/ops_mock.go -package=apimock

import (
	"context"
	"net/http"
	"time"

	"reservation-engine/internal/domain/inventory"
	reqdto "reservation-engine/internal/handler/dto/request"
	resdto "reservation-engine/internal/handler/dto/response"
	"reservation-engine/internal/handler/httperr"
	"reservation-engine/internal/pkg/config"
	"reservation-engine/internal/pkg/errs"
	"reservation-engine/internal/usecase/commands"
	"reservation-engine/internal/usecase/ledger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const readinessTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type Sweeper interface {
	SweepExpired(ctx context.Context, limit, workers int) (commands.SweepResult, error)
}

type Relayer interface {
	RelayOnce(ctx context.Context) (commands.RelayResult, error)
}

type AvailabilityReader interface {
	AvailableCount(ctx context.Context, resourceID uuid.UUID) (inventory.Availability, error)
}

// OpsHandler serves the operational surface: probes and manual triggers for
// the periodic jobs.
type OpsHandler struct {
	db           Pinger
	sweeper      Sweeper
	relay        Relayer
	availability AvailabilityReader
	sweepCfg     config.SweepConfig
}

func NewOpsHandler(db Pinger, sweeper Sweeper, relay Relayer, availability AvailabilityReader, cfg config.Config) *OpsHandler {
	return &OpsHandler{
		db:           db,
		sweeper:      sweeper,
		relay:        relay,
		availability: availability,
		sweepCfg:     cfg.Sweep,
	}
}

func (h *OpsHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *OpsHandler) Readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Database is not reachable", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (h *OpsHandler) Sweep(c *gin.Context) {
	var req reqdto.SweepRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
			return
		}
	}
	limit, workers := req.Resolve(h.sweepCfg.BatchSize, h.sweepCfg.Workers)

	result, err := h.sweeper.SweepExpired(c.Request.Context(), limit, workers)
	if err != nil {
		abortWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromSweepResult(result))
}

func (h *OpsHandler) RelayOutbox(c *gin.Context) {
	result, err := h.relay.RelayOnce(c.Request.Context())
	if err != nil {
		abortWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromRelayResult(result))
}

func (h *OpsHandler) Availability(c *gin.Context) {
	resourceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid resource ID", nil)
		return
	}

	avail, err := h.availability.AvailableCount(c.Request.Context(), resourceID)
	if err != nil {
		abortWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromAvailability(resourceID, avail))
}

func abortWithEngineError(c *gin.Context, err error) {
	msg := errs.UserMessage(err,
		errs.MessageRule{Match: errs.ErrResourceNotFound, Message: "Resource not found"},
		errs.MessageRule{Match: ledger.ErrNotCountable, Message: "Resource is not countable"},
	)

	status := http.StatusInternalServerError
	switch {
	case errs.Is(err, errs.ErrResourceNotFound):
		status = http.StatusNotFound
	case errs.Is(err, ledger.ErrNotCountable):
		status = http.StatusConflict
	case errs.Is(err, errs.ErrTransient):
		status = http.StatusServiceUnavailable
	}
	httperr.AbortWithError(c, status, err, msg, nil)
}
