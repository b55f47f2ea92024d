package versionstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"flow-vault/core/errs"
	"flow-vault/core/models"
	"flow-vault/core/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *testutil.StubClock) {
	t.Helper()
	clk := testutil.FixedClock()
	s := New(testutil.NewSQLiteDB(t), nil, WithClock(clk), WithIDGenerator(testutil.NewStubIDGenerator()))
	require.NoError(t, s.AutoMigrate())
	return s, clk
}

func sampleRecords() []models.ObjectRecord {
	return []models.ObjectRecord{
		{
			ResourceType: models.ResourceWorkflow,
			ResourceID:   "w1",
			Name:         "Nightly",
			Data:         map[string]any{"name": "Nightly", "active": true},
			Report:       models.ObjectReport{ResourceType: models.ResourceWorkflow, ResourceID: "w1", Status: models.ObjectSuccess, SkipReason: models.SkipNone, Action: models.ActionNone},
		},
		{
			ResourceType: models.ResourceTag,
			ResourceID:   "t1",
			Name:         "prod",
			Data:         map[string]any{"name": "prod"},
			Report:       models.ObjectReport{ResourceType: models.ResourceTag, ResourceID: "t1", Status: models.ObjectSuccess, SkipReason: models.SkipNone, Action: models.ActionNone},
		},
	}
}

func TestCommitAndGetVersion(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	v := &models.Version{
		Operation:       models.OpBackup,
		ProfileID:       "p-1",
		PlatformVersion: "1.4.2",
		Status:          models.StatusSuccess,
		Options:         models.RunOptions{Concurrency: 4},
		Summary:         models.Summary{Total: 2, Processed: 2},
		Tags:            []string{"release"},
	}
	audit := &models.AuditRecord{Operation: models.OpBackup, ProfileID: "p-1", Status: models.StatusSuccess}

	require.NoError(t, s.Commit(ctx, v, sampleRecords(), audit))
	assert.Equal(t, "id-1", v.ID)
	require.NotNil(t, audit.VersionID)
	assert.Equal(t, v.ID, *audit.VersionID)

	got, err := s.GetVersion(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, got.Status)
	assert.Equal(t, "1.4.2", got.PlatformVersion)
	assert.Equal(t, 4, got.Options.Concurrency)
	assert.Equal(t, 2, got.Summary.Total)
	assert.Equal(t, []string{"release"}, got.Tags)
	require.Len(t, got.Records, 2)
	assert.Equal(t, models.ResourceTag, got.Records[0].ResourceType, "records come back in dispatch order")
	assert.Equal(t, "Nightly", got.Records[1].Data["name"])
	assert.Equal(t, models.ObjectSuccess, got.Records[1].Report.Status)

	audits, err := s.ListAudits(ctx, AuditFilter{VersionID: v.ID})
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.Equal(t, models.OpBackup, audits[0].Operation)
}

func TestGetVersion_NotFound(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.GetVersion(context.Background(), "missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCreateVersionAndAppend(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateVersion(ctx, &models.Version{Operation: models.OpSync, Status: models.StatusAborted})
	require.NoError(t, err)
	require.NoError(t, s.AppendObjectRecords(ctx, id, sampleRecords()))
	require.NoError(t, s.AppendObjectRecords(ctx, id, nil))

	got, err := s.GetVersion(ctx, id)
	require.NoError(t, err)
	assert.Len(t, got.Records, 2)

	// Same key twice within one Version violates the composite key.
	err = s.AppendObjectRecords(ctx, id, sampleRecords()[:1])
	assert.ErrorIs(t, err, errs.ErrPersistence)
}

func TestListVersions(t *testing.T) {
	s, clk := newTestStore(t)
	ctx := context.Background()

	for _, v := range []models.Version{
		{Operation: models.OpBackup, ProfileID: "a", Status: models.StatusSuccess},
		{Operation: models.OpBackup, ProfileID: "b", Status: models.StatusFailed},
		{Operation: models.OpRestore, ProfileID: "a", Status: models.StatusPartialSuccess},
	} {
		v := v
		require.NoError(t, s.Commit(ctx, &v, nil, nil))
		clk.Advance(time.Minute)
	}

	all, err := s.ListVersions(ctx, VersionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "id-3", all[0].ID, "newest first")

	byProfile, err := s.ListVersions(ctx, VersionFilter{ProfileID: "a"})
	require.NoError(t, err)
	assert.Len(t, byProfile, 2)

	backups, err := s.ListVersions(ctx, VersionFilter{Operation: models.OpBackup, Statuses: []models.VersionStatus{models.StatusSuccess}})
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, "id-1", backups[0].ID)

	limited, err := s.ListVersions(ctx, VersionFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	latest, err := s.LatestVersion(ctx, VersionFilter{ProfileID: "a", Operation: models.OpBackup})
	require.NoError(t, err)
	assert.Equal(t, "id-1", latest.ID)

	_, err = s.LatestVersion(ctx, VersionFilter{ProfileID: "nobody"})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestDeleteVersions(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	keep := &models.Version{Operation: models.OpBackup, Status: models.StatusSuccess}
	drop := &models.Version{Operation: models.OpBackup, Status: models.StatusSuccess}
	require.NoError(t, s.Commit(ctx, keep, sampleRecords(), &models.AuditRecord{Operation: models.OpBackup, Status: models.StatusSuccess}))
	require.NoError(t, s.Commit(ctx, drop, sampleRecords(), &models.AuditRecord{Operation: models.OpBackup, Status: models.StatusSuccess}))

	audit := &models.AuditRecord{Operation: models.OpCleanup, Status: models.StatusSuccess}
	n, err := s.DeleteVersions(ctx, []string{drop.ID}, audit)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.GetVersion(ctx, drop.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	_, err = s.GetVersion(ctx, keep.ID)
	assert.NoError(t, err)

	var orphans int64
	require.NoError(t, s.DB().Model(&models.ObjectRecord{}).Where("version_id = ?", drop.ID).Count(&orphans).Error)
	assert.Zero(t, orphans)

	audits, err := s.ListAudits(ctx, AuditFilter{})
	require.NoError(t, err)
	assert.Len(t, audits, 3, "audits are never truncated")

	cleanups, err := s.ListAudits(ctx, AuditFilter{Operation: models.OpCleanup})
	require.NoError(t, err)
	assert.Len(t, cleanups, 1)
}

func TestCommit_PersistenceFailure(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	s := New(db, nil, WithIDGenerator(testutil.NewStubIDGenerator()))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `versions`").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := s.Commit(context.Background(), &models.Version{Operation: models.OpBackup, Status: models.StatusSuccess}, nil,
		&models.AuditRecord{Operation: models.OpBackup, Status: models.StatusSuccess})

	assert.ErrorIs(t, err, errs.ErrPersistence)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteAuditRecord_PersistenceFailure(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	s := New(db, nil)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `audit_records`").WillReturnError(errors.New("read-only"))
	mock.ExpectRollback()

	err := s.WriteAuditRecord(context.Background(), &models.AuditRecord{Operation: models.OpSync, Status: models.StatusFailed})
	assert.ErrorIs(t, err, errs.ErrPersistence)
	assert.NoError(t, mock.ExpectationsWereMet())

}
