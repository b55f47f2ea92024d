// Package history exposes the version store over a read-only HTTP API.
//
// # HTTP Endpoints
//
//   - GET /versions : Lists Versions, newest first (?profile, ?operation, ?status, ?limit).
//   - GET /versions/:id : Returns one Version with its object records.
//   - GET /versions/:id/diff/:other : Compares two Versions (added, modified, removed).
//   - GET /audits : Lists audit records (?version, ?profile, ?operation, ?limit).
//
// Nothing in this package mutates the store.
package history
