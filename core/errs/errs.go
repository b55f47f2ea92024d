package errs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrInvalidVersionFormat indicates a version tag is not major.minor.patch.
	ErrInvalidVersionFormat = errors.New("invalid version format")

	// ErrCompatibilityMismatch indicates source and target platforms are not restore-compatible.
	ErrCompatibilityMismatch = errors.New("compatibility mismatch")

	// ErrTransient indicates a failure that may succeed when retried.
	ErrTransient = errors.New("transient transport error")

	// ErrValidation indicates the platform rejected the object as invalid.
	ErrValidation = errors.New("validation error")

	// ErrPermission indicates the credential is missing, invalid or lacks rights.
	ErrPermission = errors.New("permission denied")

	// ErrNotFound indicates the addressed resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDependencyMissing indicates an object references an id absent from the working set.
	ErrDependencyMissing = errors.New("dependency missing")

	// ErrPersistence indicates the version store could not record the run.
	ErrPersistence = errors.New("persistence error")
)

// Kind is a coarse classification of an error, used in reports and logs.
type Kind string

const (
	KindNone           Kind = ""
	KindInvalidVersion Kind = "invalid_version_format"
	KindCompatibility  Kind = "compatibility_mismatch"
	KindTransient      Kind = "transient"
	KindValidation     Kind = "validation"
	KindPermission     Kind = "permission"
	KindNotFound       Kind = "not_found"
	KindDependency     Kind = "dependency_missing"
	KindPersistence    Kind = "persistence"
	KindCancelled      Kind = "cancelled"
	KindUnknown        Kind = "unknown"
)

// TransportError wraps a failed call to the remote platform.
type TransportError struct {
	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int
	// RetryAfter is the server-provided delay hint, if any.
	RetryAfter time.Duration
	// Err is the classified cause; it wraps one of the package sentinels.
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("status %d: %v", e.StatusCode, e.Err)
}

// Unwrap returns the underlying error for errors.Is / errors.As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// FromStatus builds a TransportError for a non-2xx HTTP response.
func FromStatus(status int, retryAfter time.Duration, body string) *TransportError {
	var base error
	switch {
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests, status >= 500:
		base = ErrTransient
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		base = ErrPermission
	case status == http.StatusNotFound:
		base = ErrNotFound
	case status == http.StatusBadRequest, status == http.StatusConflict, status == http.StatusUnprocessableEntity:
		base = ErrValidation
	default:
		base = ErrValidation
	}
	err := base
	if body != "" {
		err = fmt.Errorf("%w: %s", base, body)
	}
	return &TransportError{StatusCode: status, RetryAfter: retryAfter, Err: err}
}

// FromTransport classifies an error returned by the HTTP client itself (no response).
// Timeouts and network failures are transient; cancellation is passed through untouched.
func FromTransport(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &TransportError{Err: fmt.Errorf("%w: %v", ErrTransient, err)}
}

// Classify maps an error onto a Kind.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, context.Canceled):
		return KindCancelled
	case errors.Is(err, ErrInvalidVersionFormat):
		return KindInvalidVersion
	case errors.Is(err, ErrCompatibilityMismatch):
		return KindCompatibility
	case errors.Is(err, ErrTransient):
		return KindTransient
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrPermission):
		return KindPermission
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrDependencyMissing):
		return KindDependency
	case errors.Is(err, ErrPersistence):
		return KindPersistence
	default:
		return KindUnknown
	}
}

// IsRetryable reports whether err is worth another attempt.
func IsRetryable(err error) bool {
	return Classify(err) == KindTransient
}

// RetryAfter returns the server-provided delay hint carried by err, or zero.
func RetryAfter(err error) time.Duration {
	var te *TransportError
	if errors.As(err, &te) {
		return te.RetryAfter
	}
	return 0
}

// Persistence wraps a store failure so it classifies as ErrPersistence.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
}
