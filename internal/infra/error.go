package infra

import (
	"errors"
	"log/slog"

	"club-scheduler/internal/pkg/errs"

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

func WrapRepoErr(slogger *slog.Logger, kind RepositoryErrorKind, msg string, err error) error {
	logArgs := []any{
		slog.String("kind", string(kind)),
	}
	if err != nil {
		logArgs = append(logArgs, slog.String("error", err.Error()))
	}

	// Not-found is an expected outcome, keep it out of the error log.
	if kind == KindNotFound {
		slogger.Debug("Repository error: "+msg, logArgs...)
	} else {
		slogger.Error("Repository error: "+msg, logArgs...)
	}

	if err != nil {
		err = errs.Wrap(err, msg)
	}

	wrapped := RepositoryError{Kind: kind, msg: msg, err: err}
	if kind == KindNotFound {
		return errs.Mark(wrapped, errs.ErrNotFound)
	}
	return wrapped
}

// ClassifyPgErr maps a driver error onto a repository error kind.
// Serialization failures and deadlocks pass through unchanged so the
// unit of work can retry them.
func ClassifyPgErr(slogger *slog.Logger, msg string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return WrapRepoErr(slogger, KindNotFound, msg, nil)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case PgCodeUniqueViolation:
			return WrapRepoErr(slogger, KindDuplicateKey, msg, err)
		case PgCodeForeignKeyViolation:
			return WrapRepoErr(slogger, KindForeignKeyViolated, msg, err)
		case PgCodeExclusionViolation:
			return WrapRepoErr(slogger, KindConflict, msg, err)
		case PgCodeSerializationFailure, PgCodeDeadlockDetected:
			return errs.Wrap(err, msg)
		}
	}
	return WrapRepoErr(slogger, KindDBFailure, msg, err)
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
	KindConflict           RepositoryErrorKind = "CONFLICT"
)

const (
	PgCodeUniqueViolation      = "23505"
	PgCodeForeignKeyViolation  = "23503"
	PgCodeExclusionViolation   = "23P01"
	PgCodeSerializationFailure = "40001"
	PgCodeDeadlockDetected     = "40P01"
)
