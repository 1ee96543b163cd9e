package archive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"filesort/internal/config"
)

const s3Scheme = "s3://"

// ParseS3URL splits an s3://bucket/key destination. remote is false for
// local paths.
func ParseS3URL(dest string) (bucket, key string, remote bool, err error) {
	if !strings.HasPrefix(strings.ToLower(dest), s3Scheme) {
		return "", "", false, nil
	}
	rest := dest[len(s3Scheme):]
	bucket, key, _ = strings.Cut(rest, "/")
	key = strings.Trim(key, "/")
	if bucket == "" || key == "" {
		return "", "", true, fmt.Errorf("s3 destination %q must look like s3://bucket/key", dest)
	}
	return bucket, key, true, nil
}

// S3Uploader uploads archives to S3-compatible storage.
type S3Uploader struct {
	client *minio.Client
	region string
}

// NewS3Uploader builds a client from the [export.s3] settings.
func NewS3Uploader(cfg config.S3) (*S3Uploader, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("export.s3.endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, errors.New("s3 access key and secret key are required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &S3Uploader{client: client, region: region}, nil
}

// Upload stores the file at path as bucket/key, creating the bucket if needed.
func (u *S3Uploader) Upload(ctx context.Context, bucket, key, path string) error {
	exists, err := u.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := u.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: u.region}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
	}
	if _, err := u.client.FPutObject(ctx, bucket, key, path, minio.PutObjectOptions{
		ContentType: "application/zip",
	}); err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}
