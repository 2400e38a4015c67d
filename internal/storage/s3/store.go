// Package s3 implements the BlobStore on Amazon S3 or S3-compatible storage
// (MinIO, Cubbit, Supabase storage). Object keys are assigned by the store
// and returned to the caller as opaque blob references.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"cirrus/internal/domain"
	"cirrus/internal/domain/repositories"
)

// Config contains the settings for the S3 blob store.
type Config struct {
	Endpoint  string // custom endpoint for S3-compatible storage, empty for AWS
	Region    string
	Bucket    string
	KeyPrefix string // optional prefix for all object keys
	AccessKey string
	SecretKey string
}

// S3BlobStore implements repositories.BlobStore. Writes stream through the
// SDK's multipart uploader, so the payload is consumed at the rate S3
// accepts parts and is never held in memory whole. Deletes are idempotent:
// S3 treats removal of an absent key as success.
type S3BlobStore struct {
	client    *s3.Client
	uploader  *manager.Uploader
	bucket    string
	keyPrefix string
}

// NewClient builds an S3 client from static credentials, honoring a custom
// endpoint when one is configured.
func NewClient(ctx context.Context, cfg Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return client, nil
}

// NewBlobStore creates an S3-backed blob store and verifies bucket access.
// The bucket must already exist.
func NewBlobStore(ctx context.Context, client *s3.Client, cfg Config) (*S3BlobStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(cfg.Bucket),
	}); err != nil {
		return nil, fmt.Errorf("access bucket %q: %w", cfg.Bucket, err)
	}

	return &S3BlobStore{
		client:    client,
		uploader:  manager.NewUploader(client),
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
	}, nil
}

// newKey assigns a fresh date-sharded object key. The original filename's
// extension is kept on the key so the content type survives the round trip.
func (s *S3BlobStore) newKey(name string) string {
	d := time.Now()
	return fmt.Sprintf("%s%d/%02d/%02d/%s%s", s.keyPrefix, d.Year(), d.Month(), d.Day(), uuid.New(), filepath.Ext(name))
}

// countingReader tracks how many bytes the uploader has consumed.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Write streams content into a new object and returns its key and byte
// count. A failed or cancelled upload leaves no object behind: the SDK
// aborts the multipart upload on error.
func (s *S3BlobStore) Write(ctx context.Context, name, contentType string, content io.Reader) (string, int64, error) {
	key := s.newKey(name)
	counter := &countingReader{r: content}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   counter,
		Metadata: map[string]string{
			"filename": name,
		},
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return "", 0, fmt.Errorf("upload blob: %w", err)
	}

	return key, counter.n, nil
}

// Open returns a reader over the object's content
func (s *S3BlobStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("blob %s: %w", ref, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return out.Body, nil
}

// Delete removes an object. Deleting an absent key succeeds.
func (s *S3BlobStore) Delete(ctx context.Context, ref string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil
		}
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

var _ repositories.BlobStore = (*S3BlobStore)(nil)
