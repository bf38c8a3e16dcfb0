package aws

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"golang.org/x/sync/errgroup"
)

// uploadConcurrency bounds parallel PutObject calls.
const uploadConcurrency = 4

// Uploader publishes synthesized artifacts to S3.
type Uploader struct {
	s3     *s3.Client
	region string
}

// NewUploader creates an uploader. A non-empty endpoint replaces the
// regional S3 endpoint and switches to path-style addressing.
func NewUploader(cfg aws.Config, endpoint string) *Uploader {
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &Uploader{s3: client, region: cfg.Region}
}

// EnsureBucket creates the bucket unless it already exists.
func (u *Uploader) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := u.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	in := &s3.CreateBucketInput{Bucket: aws.String(bucket)}
	// us-east-1 rejects an explicit location constraint.
	if u.region != "" && u.region != "us-east-1" {
		in.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(u.region),
		}
	}
	if _, err := u.s3.CreateBucket(ctx, in); err != nil {
		if isBucketAlreadyOwnedByYou(err) {
			return nil
		}
		return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}
	return nil
}

// BucketExists checks if a bucket exists and is accessible.
func (u *Uploader) BucketExists(ctx context.Context, bucket string) (bool, error) {
	_, err := u.s3.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err != nil {
		if isNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	return true, nil
}

// PutObject uploads one object.
func (u *Uploader) PutObject(ctx context.Context, bucket, key string, data []byte) error {
	_, err := u.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s in bucket %s: %w", key, bucket, err)
	}
	return nil
}

// Upload puts files, given relative to root, under prefix and returns the
// object keys in input order. The first failure cancels pending uploads.
func (u *Uploader) Upload(ctx context.Context, bucket, prefix, root string, files []string) ([]string, error) {
	keys := make([]string, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)

	for i, rel := range files {
		key := path.Join(prefix, filepath.ToSlash(rel))
		keys[i] = key
		g.Go(func() error {
			// #nosec G304
			data, err := os.ReadFile(filepath.Join(root, rel))
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", rel, err)
			}
			return u.PutObject(ctx, bucket, key, data)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return keys, nil
}

func isBucketAlreadyOwnedByYou(err error) bool {
	var baoby *types.BucketAlreadyOwnedByYou
	if errors.As(err, &baoby) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "BucketAlreadyOwnedByYou"
	}
	return false
}

func isNotFoundError(err error) bool {
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return true
	}

	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NotFound" || code == "NoSuchBucket" || code == "404"
	}
	return false
}
