// Package errs defines the error taxonomy shared by the engine, the platform client
// and the version store.
//
// Errors are sentinel values wrapped with fmt.Errorf("...: %w", ...) so callers can
// branch with errors.Is. Transport failures carry the HTTP status code and any
// Retry-After hint in a TransportError.
//
// # Taxonomy
//
//   - ErrInvalidVersionFormat: a platform version tag could not be parsed (pre-flight, fatal).
//   - ErrCompatibilityMismatch: the gate rejected a restore or sync.
//   - ErrTransient: timeouts, 408, 429, 5xx and network failures; retried with backoff.
//   - ErrValidation: the platform rejected the payload; never retried.
//   - ErrPermission: authentication or authorization failure; never retried.
//   - ErrNotFound: the addressed object does not exist.
//   - ErrDependencyMissing: an object references something absent from the working set.
//   - ErrPersistence: the run result could not be durably recorded.
package errs
