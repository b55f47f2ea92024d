// Package storage wraps the MinIO client used to archive backup bundles.
//
// The Client interface is the narrow slice of the MinIO API the archive needs, so it
// can be mocked in tests (see core/storage/mocks). It works against AWS S3 and
// self-hosted MinIO alike.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	exists, err := client.BucketExists(ctx, cfg.Storage.Bucket)
package storage
