// Package middleware groups the HTTP middleware of the history API.
//
// # Components
//
//   - auth: API key validation for every non-public route.
//   - rayid: a unique ray id per request, stored in the context and echoed in the
//     X-Ray-ID response header.
package middleware
