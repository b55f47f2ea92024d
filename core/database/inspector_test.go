package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE versions (id TEXT PRIMARY KEY, status TEXT, created_at DATETIME)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "versions")
	require.NoError(t, err)
	assert.Len(t, columns, 3)

	colMap := make(map[string]string)
	for _, col := range columns {
		colMap[col.Field] = col.Type
	}
	assert.Equal(t, "text", colMap["id"])
	assert.Equal(t, "datetime", colMap["created_at"])

	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)

	_, err = GetTableColumns(db, "versions'; DROP TABLE versions")
	assert.ErrorContains(t, err, "invalid table name")
}

func TestMissingColumns(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE audit_records (id TEXT PRIMARY KEY, status TEXT)").Error)

	missing, err := MissingColumns(db, "audit_records", []string{"id", "status", "metrics"})
	require.NoError(t, err)
	assert.Equal(t, []string{"metrics"}, missing)

	missing, err = MissingColumns(db, "profiles", []string{"id", "name"})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, missing)
}
