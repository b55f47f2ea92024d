// Package platform is the REST client for the remote automation platform.
//
// It speaks the platform's public API (API key in the X-N8N-API-KEY header):
//
//   - FetchObjects pages through /api/v1/tags, /api/v1/credentials and /api/v1/workflows
//     following nextCursor, and returns reconcile.Objects with their dependencies
//     (workflow → credential via nodes[].credentials, workflow → tag via tags[]).
//   - PushObject creates with POST or updates with PUT (PATCH for credentials), after
//     stripping read-only fields.
//   - PlatformVersion reads versionCli from /rest/settings.
//
// Non-2xx responses become errs.TransportError values so callers can classify them;
// page reads are retried for transient failures, pushes are left to the reconciler.
package platform
