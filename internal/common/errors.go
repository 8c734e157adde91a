package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Kind classifies an operational failure so handlers can pick the HTTP status
// without inspecting error strings.
type Kind int

const (
	KindValidation Kind = iota // malformed or missing input -> 400
	KindUnauthorized           // no resolvable identity -> 401
	KindForbidden              // identity lacks privilege -> 403
	KindNotFound               // referenced entity absent -> 404
	KindStore                  // persistence failure -> 500
	KindBroadcast              // fan-out publish failure, logged only
)

// Error carries a Kind alongside a caller-facing message and an optional
// wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func ValidationError(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func UnauthorizedError(msg string) error {
	return &Error{Kind: KindUnauthorized, Msg: msg}
}

func ForbiddenError(msg string) error {
	return &Error{Kind: KindForbidden, Msg: msg}
}

func NotFoundError(resource string) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf("%s not found", resource)}
}

func StoreError(op string, err error) error {
	return &Error{Kind: KindStore, Msg: fmt.Sprintf("failed to %s", op), Err: err}
}

func BroadcastError(event string, err error) error {
	return &Error{Kind: KindBroadcast, Msg: fmt.Sprintf("failed to broadcast %s", event), Err: err}
}

// KindOf extracts the Kind of err, defaulting to KindStore for untyped
// errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

// errorBody is the wire envelope for failures, `{"error": "..."}`.
type errorBody struct {
	Error string `json:"error"`
}

// statusOf maps a Kind to its HTTP status code.
func statusOf(k Kind) int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// SendError writes err as the JSON error envelope with the status implied by
// its Kind. Untyped errors become opaque 500s so internals never leak.
func SendError(c echo.Context, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return c.JSON(statusOf(e.Kind), errorBody{Error: e.Msg})
	}
	return c.JSON(http.StatusInternalServerError, errorBody{Error: "internal server error"})
}
