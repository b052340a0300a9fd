package dao

import (
	"context"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	minioSDK "github.com/minio/minio-go/v7"

	"github.com/Laisky/file-extractor/internal/extractor/model"
)

// ErrObjectExists is returned when overwrite is disabled and the store
// already holds an object with the same external id.
var ErrObjectExists = errors.New("object already exists")

// seams for tests
var (
	putObject = func(ctx context.Context, cli *minioSDK.Client,
		bucket, key, fpath string, opts minioSDK.PutObjectOptions) (minioSDK.UploadInfo, error) {
		return cli.FPutObject(ctx, bucket, key, fpath, opts)
	}
	statObject = func(ctx context.Context, cli *minioSDK.Client,
		bucket, key string) (minioSDK.ObjectInfo, error) {
		return cli.StatObject(ctx, bucket, key, minioSDK.StatObjectOptions{})
	}
)

// Blob pushes file content into the object store, keyed by external id.
type Blob struct {
	logger logSDK.Logger
	cli    *minioSDK.Client
	bucket string
}

// NewBlob creates the blob uploader over an existing bucket.
func NewBlob(logger logSDK.Logger, cli *minioSDK.Client, bucket string) *Blob {
	return &Blob{logger: logger, cli: cli, bucket: bucket}
}

// UploadBlob uploads one file's content plus identity. The returned receipt
// is opaque and only useful for diagnostics.
func (d *Blob) UploadBlob(ctx context.Context,
	obj *model.FileObject, opt model.UploadOptions) (receipt string, err error) {
	if !opt.Overwrite {
		if _, err = statObject(ctx, d.cli, d.bucket, obj.ExternalID); err == nil {
			return "", errors.Wrapf(ErrObjectExists, "object %q", obj.ExternalID)
		} else if minioSDK.ToErrorResponse(err).Code != "NoSuchKey" {
			return "", errors.Wrapf(err, "stat object %q", obj.ExternalID)
		}
	}

	opts := minioSDK.PutObjectOptions{
		ContentType: obj.MimeType,
	}
	if !opt.IgnoreMetadata && len(obj.Metadata) > 0 {
		opts.UserMetadata = obj.Metadata
	}

	info, err := putObject(ctx, d.cli, d.bucket, obj.ExternalID, obj.Path, opts)
	if err != nil {
		return "", errors.Wrapf(err, "upload object %q", obj.ExternalID)
	}

	d.logger.Debug("object stored",
		zap.String("bucket", d.bucket),
		zap.String("key", obj.ExternalID),
		zap.Int64("size", info.Size))
	return info.ETag, nil
}
