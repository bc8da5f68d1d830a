package errors

// Database-specific helpers for mapping driver errors (Postgres via pgx, SQLite via
// modernc) to project ErrorCodes and retry semantics

import (
	stderrs "errors"

	"github.com/jackc/pgx/v5/pgconn"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLSTATE codes we care about on the Postgres side
const (
	pgErrUniqueViolation      = "23505"
	pgErrSerializationFailure = "40001"
	pgErrDeadlockDetected     = "40P01"
	pgErrLockNotAvailable     = "55P03"
	pgErrCannotConnectNow     = "57P03" // startup in progress
)

// ExtractPgError returns (*pgconn.PgError, true) if the root cause is a PgError
func ExtractPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if stderrs.As(Root(err), &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// IsSQLState reports whether the error is a Postgres error with the given SQLSTATE code
func IsSQLState(err error, code string) bool {
	pgErr, ok := ExtractPgError(err)
	return ok && pgErr.Code == code
}

// extractSQLiteCode returns the primary sqlite result code when the root cause
// came from the modernc driver
func extractSQLiteCode(err error) (int, bool) {
	var se *sqlite.Error
	if stderrs.As(Root(err), &se) {
		return se.Code() & 0xff, true
	}
	return 0, false
}

// IsDuplicateKey reports whether the error is a unique constraint violation
// on either backend
func IsDuplicateKey(err error) bool {
	if IsSQLState(err, pgErrUniqueViolation) {
		return true
	}
	if code, ok := extractSQLiteCode(err); ok {
		return code == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}

// IsRetryableDB reports whether the error is server-side contention or a
// transient dependency failure worth retrying on the next iteration
func IsRetryableDB(err error) bool {
	if pgErr, ok := ExtractPgError(err); ok {
		switch pgErr.Code {
		case pgErrSerializationFailure, pgErrDeadlockDetected, pgErrLockNotAvailable, pgErrCannotConnectNow:
			return true
		}
		return false
	}
	if code, ok := extractSQLiteCode(err); ok {
		return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
	}
	return false
}

// DBCode maps a driver error to an ErrorCode, defaulting to ErrorCodeDB when
// the driver is unrecognized (repos wrap every storage failure with this)
func DBCode(err error) ErrorCode {
	if c, ok := DBErrorCode(err); ok {
		return c
	}
	return ErrorCodeDB
}

// DBErrorCode maps a driver error to an ErrorCode with an ok flag
// !ok means err wasn't a recognized driver error; caller may fall back to generic handling
func DBErrorCode(err error) (ErrorCode, bool) {
	if IsDuplicateKey(err) {
		return ErrorCodeDuplicateKey, true
	}
	if pgErr, ok := ExtractPgError(err); ok {
		if pgErr.Code == pgErrCannotConnectNow {
			return ErrorCodeUnavailable, true
		}
		return ErrorCodeDB, true
	}
	if _, ok := extractSQLiteCode(err); ok {
		return ErrorCodeDB, true
	}
	return ErrorCodeUnknown, false
}
