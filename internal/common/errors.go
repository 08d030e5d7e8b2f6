package common

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrNotFound       = errors.New("requested resource not found")
	ErrUnauthorized   = errors.New("unauthorized access")
	ErrForbidden      = errors.New("forbidden access")
	ErrBadRequest     = errors.New("bad request")
	ErrConflict       = errors.New("resource conflict") // e.g., display id already taken
	ErrInternalServer = errors.New("internal server error")
	ErrValidation     = errors.New("validation failed")
)

// Error is a failure whose message is shown to the caller verbatim. Kind is
// one of the sentinels above and decides the HTTP status.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func NewError(kind error, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func BadRequest(msg string) error { return NewError(ErrBadRequest, msg) }
func Invalid(msg string) error    { return NewError(ErrValidation, msg) }
func NotFound(msg string) error   { return NewError(ErrNotFound, msg) }
func Conflict(msg string) error   { return NewError(ErrConflict, msg) }
func Forbidden(msg string) error  { return NewError(ErrForbidden, msg) }

// PublicMessage returns the text a client may see for err.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	// Anything else may carry driver or query text; only its kind is shown.
	switch HTTPStatusFromError(err) {
	case http.StatusNotFound:
		return ErrNotFound.Error()
	case http.StatusUnauthorized:
		return ErrUnauthorized.Error()
	case http.StatusForbidden:
		return ErrForbidden.Error()
	case http.StatusBadRequest:
		return ErrBadRequest.Error()
	case http.StatusConflict:
		return ErrConflict.Error()
	default:
		return ErrInternalServer.Error()
	}
}

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrConflict) || IsUniqueViolation(err) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// IsUniqueViolation reports a unique-constraint failure from either driver.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE")
	}
	return false
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
