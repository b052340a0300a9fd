// Package minio provides a wrapper for the MinIO object store client.
package minio

import (
	"context"

	"github.com/Laisky/errors/v2"
	minioSDK "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DialInfo defines the object store connection information.
type DialInfo struct {
	Endpoint,
	AccessKey,
	Secret,
	Bucket string
	UseSSL bool
}

// Client wraps the minio client together with the target bucket.
type Client struct {
	*minioSDK.Client
	bucket string
}

// New creates the client and makes sure the target bucket exists.
func New(ctx context.Context, dialInfo DialInfo) (*Client, error) {
	cli, err := minioSDK.New(dialInfo.Endpoint, &minioSDK.Options{
		Creds:  credentials.NewStaticV4(dialInfo.AccessKey, dialInfo.Secret, ""),
		Secure: dialInfo.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create minio client")
	}

	c := &Client{Client: cli, bucket: dialInfo.Bucket}
	exists, err := c.BucketExists(ctx, c.bucket)
	if err != nil {
		return nil, errors.Wrapf(err, "check bucket %q", c.bucket)
	}
	if !exists {
		if err = c.MakeBucket(ctx, c.bucket, minioSDK.MakeBucketOptions{}); err != nil {
			return nil, errors.Wrapf(err, "make bucket %q", c.bucket)
		}
	}

	return c, nil
}

// Bucket returns the bucket all objects are stored in.
func (c *Client) Bucket() string {
	return c.bucket
}
