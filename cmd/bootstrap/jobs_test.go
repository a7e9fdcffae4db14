//go:build unit

package bootstrap_test

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"reservation-engine/cmd/bootstrap"
	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/infra/memstore"
	"reservation-engine/internal/pkg/clock"
	"reservation-engine/internal/pkg/config"
	"reservation-engine/internal/pkg/logger"
	"reservation-engine/internal/usecase/commands"
	"reservation-engine/internal/usecase/shared"
	"reservation-engine/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStartJobs_ExpirySweep(t *testing.T) {
	ctx := context.Background()
	cfg := config.NewTestConfig()
	cfg.Log.Level = "info"
	cfg.Sweep.Interval = 10 * time.Millisecond
	cfg.Outbox.Interval = 0

	out := &syncBuffer{}
	log := logger.NewWithWriter(cfg.Log, out)
	store := memstore.New(logger.Nop())
	clk := clock.NewMockClock(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))
	resources := commands.NewResourceCommands(store, clk, logger.Nop())
	cmds := commands.NewReservationCommands(store, clk, log, nil, cfg.Engine)

	res, err := resources.CreateCountable(ctx, "tickets", nil)
	require.NoError(t, err)
	r, err := cmds.Reserve(ctx, builder.NewReservationBuilder().ForResource(res.ID()).
		WithHold(time.Minute).BuildCountableRequest())
	require.NoError(t, err)
	clk.Add(time.Hour)

	lc := fxtest.NewLifecycle(t)
	bootstrap.StartJobs(lc, cfg, cmds, nil, log)
	lc.RequireStart()

	require.Eventually(t, func() bool {
		var status reservation.Status
		_ = store.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
			got, ferr := tx.Reservations().FindByID(ctx, r.ID())
			if ferr == nil {
				status = got.Status()
			}
			return ferr
		})
		return status == reservation.StatusExpired
	}, 2*time.Second, 10*time.Millisecond)
	lc.RequireStop()

	logs := out.String()
	assert.Equal(t, 1, strings.Count(logs, "expiry sweep finished"), logs)
	assert.Contains(t, logs, `msg="job disabled" job=outbox_relay`)
}
