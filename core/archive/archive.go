// Package archive exports Versions as JSON bundles to S3-compatible object storage.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"flow-vault/core/models"
	"flow-vault/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// BundleFormat is the bundle schema revision written by Export.
const BundleFormat = 1

// Bundle is the on-storage form of one Version and its records.
type Bundle struct {
	Format     int            `json:"format"`
	ExportedAt time.Time      `json:"exported_at"`
	Version    models.Version `json:"version"`
}

// Archiver writes and reads bundles in one bucket.
type Archiver struct {
	client storage.Client
	bucket string
	prefix string
	logger *zap.Logger
	now    func() time.Time
}

// New creates an archiver for cfg.Bucket under cfg.Prefix.
func New(client storage.Client, cfg storage.Config, logger *zap.Logger) *Archiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archiver{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ObjectName returns the object key for a version id.
func (a *Archiver) ObjectName(versionID string) string {
	if a.prefix == "" {
		return versionID + ".json"
	}
	return path.Join(a.prefix, versionID+".json")
}

// EnsureBucket creates the bucket when it does not exist.
func (a *Archiver) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
	}
	a.logger.Info("Created archive bucket", zap.String("bucket", a.bucket))
	return nil
}

// Export uploads v with records as one bundle and returns the object name.
func (a *Archiver) Export(ctx context.Context, v models.Version, records []models.ObjectRecord) (string, error) {
	v.Records = records
	data, err := json.Marshal(Bundle{Format: BundleFormat, ExportedAt: a.now(), Version: v})
	if err != nil {
		return "", fmt.Errorf("failed to encode bundle: %w", err)
	}

	name := a.ObjectName(v.ID)
	_, err = a.client.PutObject(ctx, a.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
		UserMetadata: map[string]string{
			"operation": string(v.Operation),
			"status":    string(v.Status),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload bundle %s: %w", name, err)
	}

	a.logger.Debug("Exported bundle", zap.String("object", name), zap.Int("bytes", len(data)))
	return name, nil
}

// Load downloads and decodes the bundle for versionID.
func (a *Archiver) Load(ctx context.Context, versionID string) (*Bundle, error) {
	name := a.ObjectName(versionID)
	obj, err := a.client.GetObject(ctx, a.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to download bundle %s: %w", name, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle %s: %w", name, err)
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to decode bundle %s: %w", name, err)
	}
	if b.Format != BundleFormat {
		return nil, fmt.Errorf("unsupported bundle format %d", b.Format)
	}
	return &b, nil
}

// List returns the version ids that have a bundle.
func (a *Archiver) List(ctx context.Context) ([]string, error) {
	opts := minio.ListObjectsOptions{Recursive: true}
	if a.prefix != "" {
		opts.Prefix = a.prefix + "/"
	}

	var ids []string
	for obj := range a.client.ListObjects(ctx, a.bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list bundles: %w", obj.Err)
		}
		base := path.Base(obj.Key)
		if id, ok := strings.CutSuffix(base, ".json"); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Remove deletes the bundles for the given version ids.
func (a *Archiver) Remove(ctx context.Context, versionIDs []string) error {
	if len(versionIDs) == 0 {
		return nil
	}
	objectsCh := make(chan minio.ObjectInfo, len(versionIDs))
	for _, id := range versionIDs {
		objectsCh <- minio.ObjectInfo{Key: a.ObjectName(id)}
	}
	close(objectsCh)

	var failed []string
	for rErr := range a.client.RemoveObjects(ctx, a.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		a.logger.Warn("Failed to remove bundle", zap.String("object", rErr.ObjectName), zap.Error(rErr.Err))
		failed = append(failed, rErr.ObjectName)
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to remove %d bundles: %s", len(failed), strings.Join(failed, ", "))
	}
	return nil
}
