package repository

import (
	"context"
	"log/slog"

	"reservation-engine/internal/infra"
	"reservation-engine/internal/pkg/errs"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by pgx.Tx, *pgxpool.Pool and *pgx.Conn.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// wrapErr classifies err and, when the row is missing, marks it with notFound
// so callers can match the domain sentinel.
func wrapErr(logger *slog.Logger, msg string, err error, notFound error) error {
	kind := infra.Classify(err)
	wrapped := infra.WrapRepoErr(logger, kind, msg, err)
	if kind == infra.KindNotFound && notFound != nil {
		return errs.Mark(wrapped, notFound)
	}
	return wrapped
}

func buildErr(logger *slog.Logger, msg string, err error) error {
	return infra.WrapRepoErr(logger, infra.KindDBFailure, "build "+msg+" query", err)
}

func versionConflict(logger *slog.Logger, msg string) error {
	return infra.WrapRepoErr(logger, infra.KindVersionConflict, msg, errs.ErrVersionConflict)
}

func notFound(logger *slog.Logger, msg string, sentinel error) error {
	return errs.Mark(infra.WrapRepoErr(logger, infra.KindNotFound, msg, nil), sentinel)
}
