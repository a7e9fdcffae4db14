package infra

import (
	"errors"
	"log/slog"

	"reservation-engine/internal/pkg/errs"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type RepositoryErrorKind string

type RepositoryError struct {
	Kind RepositoryErrorKind
	msg  string
	err  error // wrapped low-level error
}

func (e RepositoryError) Error() string {
	if e.err != nil {
		return string(e.Kind) + ": " + e.msg + ": " + e.err.Error()
	}
	return string(e.Kind) + ": " + e.msg
}

func (e RepositoryError) Unwrap() error {
	return e.err
}

// Is lets contention kinds match errs.ErrTransient.
func (e RepositoryError) Is(target error) bool {
	return target == errs.ErrTransient && e.Kind.Retryable()
}

func WrapRepoErr(slogger *slog.Logger, kind RepositoryErrorKind, msg string, err error) error {
	logArgs := []any{
		slog.String("kind", string(kind)),
	}
	if err != nil {
		logArgs = append(logArgs, slog.String("error", err.Error()))
	}

	if kind.Retryable() || kind == KindNotFound {
		slogger.Debug("Repository error: "+msg, logArgs...)
	} else {
		slogger.Error("Repository error: "+msg, logArgs...)
	}

	if err != nil {
		err = errs.Wrap(err, msg)
	}

	return RepositoryError{Kind: kind, msg: msg, err: err}
}

func IsKind(err error, kind RepositoryErrorKind) bool {
	var e RepositoryError
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Infrastructure-specific error kinds
const (
	KindNotFound           RepositoryErrorKind = "NOT_FOUND"
	KindDBFailure          RepositoryErrorKind = "DB_FAILURE"
	KindDuplicateKey       RepositoryErrorKind = "DUPLICATE_KEY"
	KindForeignKeyViolated RepositoryErrorKind = "FOREIGN_KEY_VIOLATED"
	KindCheckViolated      RepositoryErrorKind = "CHECK_VIOLATED"
	KindExclusionViolated  RepositoryErrorKind = "EXCLUSION_VIOLATED"
	KindLockTimeout        RepositoryErrorKind = "LOCK_TIMEOUT"
	KindSerialization      RepositoryErrorKind = "SERIALIZATION_FAILURE"
	KindDeadlock           RepositoryErrorKind = "DEADLOCK"
	KindVersionConflict    RepositoryErrorKind = "VERSION_CONFLICT"
)

// Retryable kinds are answered by re-running the whole transaction.
func (k RepositoryErrorKind) Retryable() bool {
	switch k {
	case KindLockTimeout, KindSerialization, KindDeadlock, KindVersionConflict:
		return true
	default:
		return false
	}
}

// Classify maps a pgx error onto a repository error kind.
func Classify(err error) RepositoryErrorKind {
	if errors.Is(err, pgx.ErrNoRows) {
		return KindNotFound
	}
	if errs.Is(err, errs.ErrVersionConflict) {
		return KindVersionConflict
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return KindDBFailure
	}
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return KindDuplicateKey
	case pgerrcode.ForeignKeyViolation:
		return KindForeignKeyViolated
	case pgerrcode.CheckViolation:
		return KindCheckViolated
	case pgerrcode.ExclusionViolation:
		return KindExclusionViolated
	case pgerrcode.LockNotAvailable:
		return KindLockTimeout
	case pgerrcode.SerializationFailure:
		return KindSerialization
	case pgerrcode.DeadlockDetected:
		return KindDeadlock
	default:
		return KindDBFailure
	}
}

// IsRetryable reports whether err is worth another transaction attempt.
func IsRetryable(err error) bool {
	var e RepositoryError
	if errors.As(err, &e) {
		return e.Kind.Retryable()
	}
	return Classify(err).Retryable()
}
