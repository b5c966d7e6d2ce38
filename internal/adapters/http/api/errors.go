package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mgrady/gridiron/internal/domain/contest"
	"github.com/mgrady/gridiron/internal/domain/types"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// Wrap annotates err with the failing operation.
func Wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

// NewKind creates an operation-scoped error of the given kind.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// WrapKind combines an operation, a sentinel kind, and an underlying cause.
func WrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %v", op, kind, err)
}

// statusFor maps domain sentinel errors to an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, contest.ErrLocked):
		return http.StatusConflict, "contest_locked"
	case errors.Is(err, contest.ErrScored):
		return http.StatusConflict, "contest_scored"
	case errors.Is(err, contest.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, contest.ErrUnknownGame),
		errors.Is(err, contest.ErrNoPicks),
		errors.Is(err, types.ErrInvalidID),
		errors.Is(err, types.ErrOutOfRange),
		errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
