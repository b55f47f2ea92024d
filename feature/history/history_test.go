package history

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"flow-vault/core/models"
	"flow-vault/core/server"
	"flow-vault/core/testutil"
	"flow-vault/core/versionstore"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedStore(t *testing.T) *versionstore.Store {
	t.Helper()
	c := testutil.FixedClock()
	store := versionstore.New(testutil.NewSQLiteDB(t), zap.NewNop(),
		versionstore.WithClock(c),
		versionstore.WithIDGenerator(testutil.NewPrefixedIDGenerator("audit")),
	)
	require.NoError(t, store.AutoMigrate())

	commit := func(id string, at time.Time, records ...models.ObjectRecord) {
		v := &models.Version{
			ID:              id,
			CreatedAt:       at,
			Operation:       models.OpBackup,
			ProfileID:       "prod",
			PlatformVersion: "1.42.1",
			Status:          models.StatusSuccess,
		}
		a := &models.AuditRecord{Operation: models.OpBackup, ProfileID: "prod", Status: models.StatusSuccess, CreatedAt: at}
		require.NoError(t, store.Commit(context.Background(), v, records, a))
	}

	tag := models.ObjectRecord{ResourceType: models.ResourceTag, ResourceID: "t1", Name: "prod", Data: map[string]any{"id": "t1", "name": "prod"}}
	wfOld := models.ObjectRecord{ResourceType: models.ResourceWorkflow, ResourceID: "w1", Name: "notify", Data: map[string]any{"id": "w1", "name": "notify", "active": false}}
	wfNew := models.ObjectRecord{ResourceType: models.ResourceWorkflow, ResourceID: "w1", Name: "notify", Data: map[string]any{"id": "w1", "name": "notify", "active": true}}
	cred := models.ObjectRecord{ResourceType: models.ResourceCredential, ResourceID: "c1", Name: "slack", Data: map[string]any{"id": "c1", "name": "slack"}}

	commit("v1", c.Now(), tag, wfOld)
	commit("v2", c.Now().Add(time.Hour), wfNew, cred)
	return store
}

func TestServiceDiff(t *testing.T) {
	svc := NewService(seedStore(t), nil)

	report, err := svc.Diff(context.Background(), "v1", "v2")
	require.NoError(t, err)
	assert.Equal(t, []string{"credential/c1"}, report.Added)
	assert.Equal(t, []string{"tag/t1"}, report.Removed)
	require.Len(t, report.Modified, 1)
	assert.Equal(t, "workflow/w1", report.Modified[0].Key)
	assert.Equal(t, []string{"active"}, report.Modified[0].Fields)
	assert.False(t, report.Identical())

	same, err := svc.Diff(context.Background(), "v1", "v1")
	require.NoError(t, err)
	assert.True(t, same.Identical())
	assert.Equal(t, 2, same.Unchanged)
}

func setupTestApp(t *testing.T) *fiber.App {
	app := fiber.New()
	f := NewFeature(seedStore(t), server.Config{MaxPageSize: 10}, zap.NewNop())
	require.NoError(t, f.Load(app))
	return app
}

func getJSON(t *testing.T, app *fiber.App, path string, out any) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHandleListVersions(t *testing.T) {
	app := setupTestApp(t)

	var body struct {
		Versions []models.Version `json:"versions"`
		Count    int              `json:"count"`
	}
	assert.Equal(t, 200, getJSON(t, app, "/versions?profile=prod", &body))
	require.Equal(t, 2, body.Count)
	assert.Equal(t, "v2", body.Versions[0].ID)

	body.Versions = nil
	assert.Equal(t, 200, getJSON(t, app, "/versions?limit=1", &body))
	assert.Equal(t, 1, body.Count)

	body.Versions = nil
	assert.Equal(t, 200, getJSON(t, app, "/versions?status=failed,aborted", &body))
	assert.Zero(t, body.Count)

	assert.Equal(t, 400, getJSON(t, app, "/versions?since=yesterday", nil))
}

func TestHandleGetVersion(t *testing.T) {
	app := setupTestApp(t)

	var v models.Version
	assert.Equal(t, 200, getJSON(t, app, "/versions/v2", &v))
	assert.Equal(t, "v2", v.ID)
	require.Len(t, v.Records, 2)
	assert.Equal(t, models.ResourceCredential, v.Records[0].ResourceType)

	var body map[string]string
	assert.Equal(t, 404, getJSON(t, app, "/versions/missing", &body))
	assert.Contains(t, body["error"], "not found")
}

func TestHandleDiff(t *testing.T) {
	app := setupTestApp(t)

	var report DiffReport
	assert.Equal(t, 200, getJSON(t, app, "/versions/v1/diff/v2", &report))
	assert.Equal(t, "v1", report.Base)
	assert.Len(t, report.Modified, 1)

	assert.Equal(t, 404, getJSON(t, app, "/versions/v1/diff/nope", nil))
}

func TestHandleListAudits(t *testing.T) {
	app := setupTestApp(t)

	var body struct {
		Audits []models.AuditRecord `json:"audits"`
		Count  int                  `json:"count"`
	}
	assert.Equal(t, 200, getJSON(t, app, "/audits?version=v1", &body))
	require.Equal(t, 1, body.Count)
	require.NotNil(t, body.Audits[0].VersionID)
	assert.Equal(t, "v1", *body.Audits[0].VersionID)
}

func TestFeature(t *testing.T) {
	f := NewFeature(nil, server.Config{}, nil)
	assert.Equal(t, "history", f.Name())
	assert.True(t, f.IsEnabled())
}
