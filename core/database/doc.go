// Package database opens the version store database and inspects its schema.
//
// It wraps GORM with either the MySQL driver (shared deployments) or the SQLite
// driver (single-operator installs and tests).
//
// # Connect
//
// Connect picks the dialector from Config.Driver, applies pool settings and pings the
// database within Config.TimeoutSeconds. SQLite connections are pinned to a single
// connection so ":memory:" databases behave as one database, and foreign keys are
// switched on so deleting a Version cascades to its records.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns read the live table layout. The doctor command
// uses them to confirm the store was migrated before any run writes to it.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//
//	missing, err := database.MissingColumns(db, "versions", []string{"id", "status"})
package database
