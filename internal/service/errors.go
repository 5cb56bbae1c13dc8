package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/cebutourist/sugbo/internal/authz"
	"github.com/cebutourist/sugbo/internal/gateway"
	"github.com/cebutourist/sugbo/internal/model"
	"github.com/cebutourist/sugbo/internal/session"
)

// Kind classifies a service failure. Kinds are behavioral categories, not
// Go types; handlers map them to HTTP codes and the console maps them to
// human-readable toasts.
type Kind string

const (
	KindUnauthenticated    Kind = "unauthenticated"
	KindForbidden          Kind = "forbidden"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindValidationFailed   Kind = "validation_failed"
	KindNotFound           Kind = "not_found"
	KindConflict           Kind = "conflict"
	KindBackend            Kind = "backend_error"
	KindNetwork            Kind = "network_error"
)

// Error is the failure every service operation resolves to. It always
// carries a human-readable message safe to surface in a notification.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string { return e.Message }

// Unwrap exposes the underlying cause for errors.Is chains.
func (e *Error) Unwrap() error { return e.cause }

// E constructs a service error of the given kind.
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// classify maps lower-layer errors into the service taxonomy. Unrecognized
// errors become backend errors carrying the fallback message.
func classify(err error, fallback string) *Error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, authz.ErrUnauthenticated):
		return &Error{Kind: KindUnauthenticated, Message: "Authentication required", cause: err}
	case errors.Is(err, authz.ErrForbidden):
		return &Error{Kind: KindForbidden, Message: "Insufficient permissions", cause: err}
	case errors.Is(err, session.ErrInvalidCredentials):
		return &Error{Kind: KindInvalidCredentials, Message: "Invalid credentials", cause: err}
	case errors.Is(err, gateway.ErrNotFound):
		return &Error{Kind: KindNotFound, Message: "Record not found", cause: err}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &Error{Kind: KindNetwork, Message: "The backend did not respond in time", cause: err}
	}

	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}

	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "unique constraint") ||
		strings.Contains(lower, "duplicate key") ||
		strings.Contains(lower, "duplicate entry") {
		return &Error{Kind: KindConflict, Message: "A record with that value already exists", cause: err}
	}

	return &Error{Kind: KindBackend, Message: fallback, cause: err}
}

// Envelope folds an operation result into the uniform {ok, data|error}
// envelope. Nothing throws across the service boundary; this is the only
// shape callers see.
func Envelope(data interface{}, err error) model.Result {
	if err != nil {
		return model.Result{OK: false, Error: err.Error()}
	}
	return model.Result{OK: true, Data: data}
}

// HTTPStatus maps a service error to the HTTP status the admin API returns.
func HTTPStatus(err error) int {
	var svcErr *Error
	if !errors.As(err, &svcErr) {
		return http.StatusInternalServerError
	}
	switch svcErr.Kind {
	case KindUnauthenticated, KindInvalidCredentials:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindValidationFailed:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindNetwork:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
