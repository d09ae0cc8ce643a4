package app

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/guttosm/tradesapi/config"
	"github.com/guttosm/tradesapi/internal/storage"
)

// InitS3 builds an S3 client from the default AWS credential chain.
// A custom endpoint switches to path-style addressing, which MinIO and
// LocalStack expect.
func InitS3(ctx context.Context, cfg config.Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
			o.UsePathStyle = true
		}
	})
	return client, nil
}

// s3Opener returns the narrow client interface the backend needs; tests swap it.
var s3Opener = func(ctx context.Context, cfg config.Config) (storage.S3Client, error) {
	return InitS3(ctx, cfg)
}
