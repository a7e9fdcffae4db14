//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"reservation-engine/internal/domain/schedule"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// inserts a countable resource row directly, bypassing the engine
func CreateCountableResource(t *testing.T, db DBLike, name string, capacity *int) uuid.UUID {
	t.Helper()

	id := uuid.New()
	now := time.Now().UTC()
	_, err := db.Exec(context.Background(),
		`INSERT INTO resources (id, name, kind, total_capacity, created_at, updated_at)
		 VALUES ($1, $2, 'countable', $3, $4, $4)`,
		id, name, capacity, now)
	require.NoError(t, err)
	return id
}

func CreateIntervalResource(t *testing.T, db DBLike, name string, bufferMinutes int) uuid.UUID {
	t.Helper()

	id := uuid.New()
	now := time.Now().UTC()
	_, err := db.Exec(context.Background(),
		`INSERT INTO resources (id, name, kind, buffer_minutes, created_at, updated_at)
		 VALUES ($1, $2, 'interval', $3, $4, $4)`,
		id, name, bufferMinutes, now)
	require.NoError(t, err)
	return id
}

// returns (sold, reserved) as persisted
func StockCounters(t *testing.T, db DBLike, resourceID uuid.UUID) (int, int) {
	t.Helper()

	var sold, reserved int
	err := db.QueryRow(context.Background(),
		`SELECT sold_count, reserved_count FROM resources WHERE id = $1`, resourceID).
		Scan(&sold, &reserved)
	require.NoError(t, err)
	return sold, reserved
}

func CountReservations(t *testing.T, db DBLike, resourceID uuid.UUID, status string) int {
	t.Helper()

	var n int
	err := db.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM reservations WHERE resource_id = $1 AND status = $2`, resourceID, status).
		Scan(&n)
	require.NoError(t, err)
	return n
}

func CountActiveClaims(t *testing.T, db DBLike, resourceID uuid.UUID) int {
	t.Helper()

	var n int
	err := db.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM interval_claims WHERE resource_id = $1 AND active`, resourceID).
		Scan(&n)
	require.NoError(t, err)
	return n
}

// occupied windows of every active claim on the resource, ordered by start
func ActiveClaimWindows(t *testing.T, db DBLike, resourceID uuid.UUID) []schedule.Slot {
	t.Helper()

	rows, err := db.Query(context.Background(),
		`SELECT occupied_start, occupied_end FROM interval_claims
		 WHERE resource_id = $1 AND active ORDER BY occupied_start`, resourceID)
	require.NoError(t, err)
	defer rows.Close()

	var out []schedule.Slot
	for rows.Next() {
		var start, end time.Time
		require.NoError(t, rows.Scan(&start, &end))
		out = append(out, schedule.ReconstructSlot(start, end))
	}
	require.NoError(t, rows.Err())
	return out
}

// forces a pending hold into the past so the sweep picks it up
func ExpireHold(t *testing.T, db DBLike, reservationID uuid.UUID) {
	t.Helper()

	_, err := db.Exec(context.Background(),
		`UPDATE reservations SET expires_at = NOW() - INTERVAL '1 minute' WHERE id = $1`, reservationID)
	require.NoError(t, err)
}

func UndeliveredEvents(t *testing.T, db DBLike) int {
	t.Helper()

	var n int
	err := db.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM reservation_events WHERE delivered_at IS NULL`).Scan(&n)
	require.NoError(t, err)
	return n
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables except the migration ledger
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	_, err := pool.Exec(ctx, sqlAny.(string))
	return err
}
