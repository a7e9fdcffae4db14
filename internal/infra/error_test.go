//go:build unit

package infra_test

import (
	"testing"

	"reservation-engine/internal/infra"
	"reservation-engine/internal/pkg/errs"
	"reservation-engine/internal/pkg/logger"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want infra.RepositoryErrorKind
	}{
		{"no rows", pgx.ErrNoRows, infra.KindNotFound},
		{"wrapped no rows", errs.Wrap(pgx.ErrNoRows, "scan"), infra.KindNotFound},
		{"version conflict", errs.ErrVersionConflict, infra.KindVersionConflict},
		{"unique", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, infra.KindDuplicateKey},
		{"exclusion", &pgconn.PgError{Code: pgerrcode.ExclusionViolation}, infra.KindExclusionViolated},
		{"check", &pgconn.PgError{Code: pgerrcode.CheckViolation}, infra.KindCheckViolated},
		{"lock timeout", &pgconn.PgError{Code: pgerrcode.LockNotAvailable}, infra.KindLockTimeout},
		{"serialization", &pgconn.PgError{Code: pgerrcode.SerializationFailure}, infra.KindSerialization},
		{"deadlock", &pgconn.PgError{Code: pgerrcode.DeadlockDetected}, infra.KindDeadlock},
		{"other pg", &pgconn.PgError{Code: pgerrcode.UndefinedTable}, infra.KindDBFailure},
		{"plain", errs.New("boom"), infra.KindDBFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, infra.Classify(tt.err))
		})
	}
}

func TestRepositoryError_Retryable(t *testing.T) {
	log := logger.Nop()

	t.Run("lock timeout is transient", func(t *testing.T) {
		err := infra.WrapRepoErr(log, infra.KindLockTimeout, "lock", &pgconn.PgError{Code: pgerrcode.LockNotAvailable})
		assert.True(t, infra.IsRetryable(err))
		assert.True(t, errs.Is(err, errs.ErrTransient))
		assert.True(t, infra.IsKind(err, infra.KindLockTimeout))
	})

	t.Run("raw deadlock is retryable", func(t *testing.T) {
		assert.True(t, infra.IsRetryable(errs.Wrap(&pgconn.PgError{Code: pgerrcode.DeadlockDetected}, "commit")))
	})

	t.Run("not found is not retryable", func(t *testing.T) {
		err := infra.WrapRepoErr(log, infra.KindNotFound, "find", pgx.ErrNoRows)
		assert.False(t, infra.IsRetryable(err))
		assert.False(t, errs.Is(err, errs.ErrTransient))
	})

	t.Run("version conflict is retryable", func(t *testing.T) {
		err := infra.WrapRepoErr(log, infra.KindVersionConflict, "update", errs.ErrVersionConflict)
		assert.True(t, infra.IsRetryable(err))
		assert.True(t, errs.Is(err, errs.ErrVersionConflict))
	})
}
