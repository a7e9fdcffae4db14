//go:build unit

package pgconv_test

import (
	"testing"
	"time"

	"reservation-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullableConversions(t *testing.T) {
	t.Run("null values map to nil", func(t *testing.T) {
		assert.Nil(t, pgconv.IntPtrFromPgtype(pgtype.Int4{}))
		assert.Nil(t, pgconv.UUIDPtrFromPgtype(pgtype.UUID{}))
		assert.Nil(t, pgconv.StringPtrFromPgtype(pgtype.Text{}))
		assert.Nil(t, pgconv.TimePtrFromPgtype(pgtype.Timestamptz{}))

		assert.False(t, pgconv.IntPtrToPgtype(nil).Valid)
		assert.False(t, pgconv.UUIDPtrToPgtype(nil).Valid)
		assert.False(t, pgconv.StringPtrToPgtype(nil).Valid)
		assert.False(t, pgconv.TimePtrToPgtype(nil).Valid)
		assert.False(t, pgconv.StringOrNull("").Valid)
	})

	t.Run("present values survive", func(t *testing.T) {
		n := 42
		got := pgconv.IntPtrFromPgtype(pgconv.IntPtrToPgtype(&n))
		require.NotNil(t, got)
		assert.Equal(t, 42, *got)

		id := uuid.New()
		gotID := pgconv.UUIDPtrFromPgtype(pgconv.UUIDPtrToPgtype(&id))
		require.NotNil(t, gotID)
		assert.Equal(t, id, *gotID)

		loc := time.FixedZone("JST", 9*60*60)
		ts := time.Date(2030, 1, 1, 9, 0, 0, 0, loc)
		gotTS := pgconv.TimePtrFromPgtype(pgconv.TimePtrToPgtype(&ts))
		require.NotNil(t, gotTS)
		assert.True(t, ts.Equal(*gotTS))
		assert.Equal(t, time.UTC, gotTS.Location())
	})

	assert.True(t, pgconv.IsNoRows(pgx.ErrNoRows))
}
