package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"flow-vault/core/models"
	"flow-vault/core/storage"
	"flow-vault/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestArchiver(client storage.Client) *Archiver {
	a := New(client, storage.Config{Bucket: "vault", Prefix: "/versions/"}, nil)
	a.now = func() time.Time { return time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC) }
	return a
}

func TestObjectName(t *testing.T) {
	a := newTestArchiver(new(mocks.Client))
	assert.Equal(t, "versions/v-1.json", a.ObjectName("v-1"))

	bare := New(new(mocks.Client), storage.Config{Bucket: "vault"}, nil)
	assert.Equal(t, "v-1.json", bare.ObjectName("v-1"))
}

func TestEnsureBucket(t *testing.T) {
	t.Run("Exists", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "vault").Return(true, nil)
		require.NoError(t, newTestArchiver(client).EnsureBucket(context.Background()))
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Creates", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "vault").Return(false, nil)
		client.On("MakeBucket", mock.Anything, "vault", minio.MakeBucketOptions{}).Return(nil)
		require.NoError(t, newTestArchiver(client).EnsureBucket(context.Background()))
		client.AssertExpectations(t)
	})

	t.Run("Error", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "vault").Return(false, errors.New("denied"))
		assert.ErrorContains(t, newTestArchiver(client).EnsureBucket(context.Background()), "denied")
	})
}

func TestExportAndLoad(t *testing.T) {
	client := new(mocks.Client)
	a := newTestArchiver(client)

	var uploaded []byte
	client.On("PutObject", mock.Anything, "vault", "versions/v-1.json", mock.Anything, mock.AnythingOfType("int64"), mock.Anything).
		Run(func(args mock.Arguments) {
			data, _ := io.ReadAll(args.Get(3).(io.Reader))
			uploaded = data
		}).
		Return(minio.UploadInfo{}, nil)

	v := models.Version{ID: "v-1", Operation: models.OpBackup, Status: models.StatusSuccess}
	records := []models.ObjectRecord{{VersionID: "v-1", ResourceType: models.ResourceTag, ResourceID: "t1", Data: map[string]any{"name": "prod"}}}

	name, err := a.Export(context.Background(), v, records)
	require.NoError(t, err)
	assert.Equal(t, "versions/v-1.json", name)

	var b Bundle
	require.NoError(t, json.Unmarshal(uploaded, &b))
	assert.Equal(t, BundleFormat, b.Format)
	require.Len(t, b.Version.Records, 1)

	client.On("GetObject", mock.Anything, "vault", "versions/v-1.json", mock.Anything).
		Return(io.NopCloser(bytes.NewReader(uploaded)), nil)

	loaded, err := a.Load(context.Background(), "v-1")
	require.NoError(t, err)
	assert.Equal(t, "v-1", loaded.Version.ID)
	assert.Equal(t, "prod", loaded.Version.Records[0].Data["name"])
}

func TestExport_UploadFailure(t *testing.T) {
	client := new(mocks.Client)
	client.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("timeout"))

	_, err := newTestArchiver(client).Export(context.Background(), models.Version{ID: "v"}, nil)
	assert.ErrorContains(t, err, "failed to upload bundle")
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	client := new(mocks.Client)
	client.On("GetObject", mock.Anything, "vault", "versions/v-2.json", mock.Anything).
		Return(io.NopCloser(bytes.NewReader([]byte(`{"format":99}`))), nil)

	_, err := newTestArchiver(client).Load(context.Background(), "v-2")
	assert.ErrorContains(t, err, "unsupported bundle format")
}

func TestList(t *testing.T) {
	client := new(mocks.Client)
	ch := make(chan minio.ObjectInfo, 3)
	ch <- minio.ObjectInfo{Key: "versions/v-1.json"}
	ch <- minio.ObjectInfo{Key: "versions/notes.txt"}
	ch <- minio.ObjectInfo{Key: "versions/v-2.json"}
	close(ch)
	client.On("ListObjects", mock.Anything, "vault", minio.ListObjectsOptions{Prefix: "versions/", Recursive: true}).
		Return((<-chan minio.ObjectInfo)(ch))

	ids, err := newTestArchiver(client).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"v-1", "v-2"}, ids)
}

func TestRemove(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("RemoveObjects", mock.Anything, "vault", mock.Anything, mock.Anything).Return(nil)
		require.NoError(t, newTestArchiver(client).Remove(context.Background(), []string{"v-1", "v-2"}))
		client.AssertExpectations(t)
	})

	t.Run("Partial Failure", func(t *testing.T) {
		client := new(mocks.Client)
		errCh := make(chan minio.RemoveObjectError, 1)
		errCh <- minio.RemoveObjectError{ObjectName: "versions/v-2.json", Err: errors.New("locked")}
		close(errCh)
		client.On("RemoveObjects", mock.Anything, "vault", mock.Anything, mock.Anything).
			Return((<-chan minio.RemoveObjectError)(errCh))

		err := newTestArchiver(client).Remove(context.Background(), []string{"v-1", "v-2"})
		assert.ErrorContains(t, err, "versions/v-2.json")
	})

	t.Run("Nothing To Remove", func(t *testing.T) {
		client := new(mocks.Client)
		require.NoError(t, newTestArchiver(client).Remove(context.Background(), nil))
		client.AssertNotCalled(t, "RemoveObjects", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
