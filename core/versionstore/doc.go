// Package versionstore persists Versions, their ObjectRecords, AuditRecords and
// Profiles through GORM.
//
// The store is append-only from the engine's point of view: a run writes its Version,
// records and audit exactly once through Commit, inside one transaction. The only
// destructive operations are DeleteVersions (the explicit cleanup action) and profile
// removal, and both write their own audit record in the same transaction.
//
// Every failure is wrapped with errs.ErrPersistence, and lookups of unknown ids wrap
// errs.ErrNotFound.
//
// # Usage
//
//	store := versionstore.New(db, logger)
//	if err := store.AutoMigrate(); err != nil {
//	    return err
//	}
//	err := store.Commit(ctx, &version, records, &audit)
package versionstore
