// Package doctor provides health checks for the engine's own infrastructure.
//
// # Checks Provided
//
//   - Schema: the store tables contain every column the models declare.
//   - Archive: the bundle bucket exists when the archive is enabled (fixable).
//   - Profiles: profiles exist, exactly one is the default and each has a credential.
//   - Platforms: every profile's platform answers with a valid version tag.
//
// # HTTP Endpoints
//
//   - GET /doctor : Runs all checks.
//   - GET /doctor/schema : Runs the schema check.
//   - GET /doctor/archive : Runs the archive check (supports ?fix=true).
//   - GET /doctor/profiles : Runs the profile check.
//   - GET /doctor/platforms : Runs the platform check.
package doctor
