package checks

import (
	"fmt"

	"flow-vault/core/database"
	"flow-vault/core/models"

	"gorm.io/gorm"
)

// SchemaReport is the result of a store schema check.
type SchemaReport struct {
	Driver  string                 `json:"driver"`
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

// TableReport is the schema state of one table.
type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	Status         string   `json:"status"` // "ok", "error"
}

// StoreModels are the models the version store persists.
var StoreModels = []any{
	&models.Profile{},
	&models.Version{},
	&models.ObjectRecord{},
	&models.AuditRecord{},
}

// CheckSchema verifies the store tables using the GORM models as the source of truth.
func CheckSchema(db *gorm.DB) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &SchemaReport{
		Driver:  db.Dialector.Name(),
		Matched: true,
		Tables:  make(map[string]TableReport),
		Errors:  []string{},
	}

	for _, model := range StoreModels {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("failed to parse model %T: %w", model, err)
		}

		var want []string
		for _, f := range stmt.Schema.Fields {
			if f.DBName != "" {
				want = append(want, f.DBName)
			}
		}

		table := stmt.Schema.Table
		missing, err := database.MissingColumns(db, table, want)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("failed to inspect table %s: %v", table, err))
			report.Matched = false
			continue
		}

		tr := TableReport{MissingColumns: []string{}, Status: "ok"}
		if len(missing) > 0 {
			tr.MissingColumns = missing
			tr.Status = "error"
			report.Matched = false
		}
		report.Tables[table] = tr
	}

	return report, nil
}
