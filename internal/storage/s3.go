package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/guttosm/tradesapi/internal/domain/models"
)

// S3Client is the subset of *s3.Client the backend needs.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Compile-time check that *s3.Client satisfies S3Client.
var _ S3Client = (*s3.Client)(nil)

// S3Backend keeps the collection as a single JSON object in a bucket.
type S3Backend struct {
	client S3Client
	bucket string
	key    string
}

// NewS3Backend stores the collection at bucket/key.
func NewS3Backend(client S3Client, bucket, key string) *S3Backend {
	return &S3Backend{client: client, bucket: bucket, key: key}
}

func (b *S3Backend) Name() string { return "s3" }

func (b *S3Backend) Read(ctx context.Context) ([]models.Trade, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrNoCollection, b.bucket, b.key)
		}
		return nil, fmt.Errorf("get object s3://%s/%s: %w", b.bucket, b.key, err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object s3://%s/%s: %w", b.bucket, b.key, err)
	}
	trades, err := decodeTrades(data)
	if err != nil {
		return nil, fmt.Errorf("s3://%s/%s: %w", b.bucket, b.key, err)
	}
	return trades, nil
}

func (b *S3Backend) Write(ctx context.Context, trades []models.Trade) error {
	data, err := encodeTrades(trades)
	if err != nil {
		return err
	}
	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(b.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put object s3://%s/%s: %w", b.bucket, b.key, err)
	}
	return nil
}

func (b *S3Backend) Ping(ctx context.Context) error {
	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.bucket)})
	if err != nil {
		return fmt.Errorf("head bucket %s: %w", b.bucket, err)
	}
	return nil
}

func isNoSuchKey(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey"
}
