package checks

import (
	"context"
	"fmt"

	"flow-vault/core/archive"
	"flow-vault/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ArchiveReport is the result of a bundle archive check.
type ArchiveReport struct {
	Enabled bool   `json:"enabled"`
	Bucket  string `json:"bucket"`
	Exists  bool   `json:"exists"`
	Bundles int    `json:"bundles"`
	Status  string `json:"status"` // "ok", "disabled", "missing"
}

// CheckArchive reports whether the archive bucket exists and counts the bundles under prefix.
func CheckArchive(ctx context.Context, client storage.Client, cfg storage.Config) (*ArchiveReport, error) {
	report := &ArchiveReport{Enabled: cfg.Enabled, Bucket: cfg.Bucket, Status: "disabled"}
	if !cfg.Enabled {
		return report, nil
	}
	if client == nil {
		return nil, fmt.Errorf("archive is enabled but no storage client is configured")
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	report.Exists = exists
	if !exists {
		report.Status = "missing"
		return report, nil
	}

	bundles, err := archive.New(client, cfg, nil).List(ctx)
	if err != nil {
		return nil, err
	}
	report.Bundles = len(bundles)
	report.Status = "ok"
	return report, nil
}

// FixArchive creates the archive bucket.
func FixArchive(ctx context.Context, client storage.Client, cfg storage.Config, logger *zap.Logger) error {
	if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
		logger.Error("Failed to create bucket", zap.String("bucket", cfg.Bucket), zap.Error(err))
		return err
	}
	logger.Info("Created archive bucket", zap.String("bucket", cfg.Bucket))
	return nil
}
