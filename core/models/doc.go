// Package models defines the persisted entities of the version store and the
// enumerations shared by the engine.
//
// # Entities
//
//   - Version: one immutable snapshot produced by a backup, restore or sync run.
//   - ObjectRecord: one workflow, credential or tag captured within a Version, keyed by
//     (version_id, resource_type, resource_id), with its embedded ObjectReport.
//   - AuditRecord: the permanent, un-truncated record of one operation.
//   - Profile: a connection to one platform instance with an encrypted credential.
//
// JSON-shaped columns (options, summaries, payloads, tag lists) use GORM's json
// serializer so the same models work on MySQL and SQLite.
package models
