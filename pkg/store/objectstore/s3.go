package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

const (
	DefaultRegion = "us-east-1" // Default region if not specified in AWS profile
)

// PutObjectAPI is the part of *s3.Client the uploader needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Uploader interface {
	Upload(ctx context.Context, name, contentType string, body []byte) (string, error)
}

type s3Uploader struct {
	client PutObjectAPI
	bucket string
	prefix string
}

func LoadConfig(ctx context.Context, profile, region string) (*awssdk.Config, error) {
	opts := []func(*config.LoadOptions) error{config.WithDefaultRegion(DefaultRegion)}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return &awsCfg, nil
}

func NewS3Uploader(cfg awssdk.Config, bucket, prefix string) (Uploader, error) {
	return NewUploader(s3.NewFromConfig(cfg), bucket, prefix)
}

func NewUploader(client PutObjectAPI, bucket, prefix string) (Uploader, error) {
	if client == nil {
		return nil, fmt.Errorf("s3 client is nil")
	}
	if bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	return &s3Uploader{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

// Upload stores body under <prefix>/<name> and returns the s3:// URI.
func (u *s3Uploader) Upload(ctx context.Context, name, contentType string, body []byte) (string, error) {
	key := path.Join(u.prefix, name)
	if key == "" || strings.HasSuffix(key, "/") {
		return "", fmt.Errorf("invalid object name %q", name)
	}

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        awssdk.String(u.bucket),
		Key:           awssdk.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   awssdk.String(contentType),
		ContentLength: awssdk.Int64(int64(len(body))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload s3://%s/%s: %w", u.bucket, key, err)
	}

	zerolog.Ctx(ctx).Info().Str("bucket", u.bucket).Str("key", key).Int("bytes", len(body)).Msg("export uploaded")
	return fmt.Sprintf("s3://%s/%s", u.bucket, key), nil
}
