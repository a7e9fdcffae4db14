//go:build unit

package queries_test

import (
	"testing"
	"time"

	"reservation-engine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor(t *testing.T) {
	t.Run("success: keeps microsecond precision", func(t *testing.T) {
		at := time.Date(2026, 3, 1, 8, 0, 0, 123456000, time.UTC)
		id := uuid.New()

		gotAt, gotID, err := queries.DecodeAfterCursor(queries.EncodeAfterCursor(at, id))
		require.NoError(t, err)
		assert.True(t, at.Equal(gotAt))
		assert.Equal(t, id, gotID)
	})

	for _, bad := range []string{"", "%%%", "djI6MTIz", "djE6YWJjLWRlZg=="} {
		t.Run("error: "+bad, func(t *testing.T) {
			_, _, err := queries.DecodeAfterCursor(bad)
			assert.Error(t, err)
		})
	}
}

func TestValidateLimit(t *testing.T) {
	assert.Equal(t, queries.DefaultListLimit, queries.ValidateLimit(0))
	assert.Equal(t, queries.MaxListLimit, queries.ValidateLimit(10_000))
	assert.Equal(t, 7, queries.ValidateLimit(7))
}
