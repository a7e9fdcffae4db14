//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"

	"reservation-engine/internal/domain/reservation"
	"reservation-engine/internal/pkg/logger"
	"reservation-engine/internal/usecase/commands"
	"reservation-engine/tests/common/builder"
	eventsmock "reservation-engine/tests/mock/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func eventOfType(typ reservation.EventType) gomock.Matcher {
	return gomock.Cond(func(x any) bool {
		ev, ok := x.(reservation.Event)
		return ok && ev.Type == typ
	})
}

func TestOutboxRelay_RelayOnce(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*engine, *eventsmock.MockPublisher, *commands.OutboxRelay) {
		t.Helper()
		e := newEngine(t)
		pub := eventsmock.NewMockPublisher(gomock.NewController(t))
		relay := commands.NewOutboxRelay(e.store, pub, e.clock, logger.Nop(), nil, e.cfg.Outbox)

		res := e.countable(t, intPtr(5))
		r, err := e.cmds.Reserve(ctx, builder.NewReservationBuilder().ForResource(res.ID()).BuildCountableRequest())
		require.NoError(t, err)
		_, err = e.cmds.Confirm(ctx, r.ID(), reservation.ActorSystemEngine)
		require.NoError(t, err)
		return e, pub, relay
	}

	t.Run("success: publishes in commit order exactly once", func(t *testing.T) {
		_, pub, relay := setup(t)

		gomock.InOrder(
			pub.EXPECT().Publish(gomock.Any(), eventOfType(reservation.EventCreated)).Return(nil),
			pub.EXPECT().Publish(gomock.Any(), eventOfType(reservation.EventConfirmed)).Return(nil),
		)

		result, err := relay.RelayOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Published)
		assert.Equal(t, 0, result.Failed)

		result, err = relay.RelayOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Published)
	})

	t.Run("error: failed publish is retried on the next run", func(t *testing.T) {
		_, pub, relay := setup(t)
		boom := errors.New("broker down")

		pub.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(boom).Times(2)
		result, err := relay.RelayOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Failed)

		pub.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(2)
		result, err = relay.RelayOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Published)
	})

	t.Run("error: entries past max attempts are parked", func(t *testing.T) {
		e, pub, relay := setup(t)
		boom := errors.New("rejected")

		pub.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(boom).Times(2 * e.cfg.Outbox.MaxAttempts)
		for range e.cfg.Outbox.MaxAttempts {
			_, err := relay.RelayOnce(ctx)
			require.NoError(t, err)
		}

		result, err := relay.RelayOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Published+result.Failed)
	})
}
