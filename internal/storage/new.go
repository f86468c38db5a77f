package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/nguyentantai21042004/storycut/internal/config"
	"github.com/nguyentantai21042004/storycut/internal/logger"
)

// putObjectAPI is the part of the S3 client the uploader needs.
type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type implS3 struct {
	client putObjectAPI
	bucket string
	prefix string
	logger logger.Logger
}

// New creates an S3 uploader using the default AWS credential chain.
func New(ctx context.Context, cfg config.StorageConfig, log logger.Logger) (Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newWithClient(client, cfg.Bucket, cfg.Prefix, log), nil
}

func newWithClient(client putObjectAPI, bucket, prefix string, log logger.Logger) *implS3 {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix = prefix + "/"
	}
	return &implS3{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: log,
	}
}
