package blob

import (
	"context"
	"fmt"
	"io"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mealweek/mealweek/config"
)

// S3Store implements Store on an S3-compatible backend (AWS S3 or MinIO).
// Single bucket, flat keys, optional key prefix.
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// S3Config holds explicit construction parameters (mostly for tests). For
// prod we rely primarily on environment variables.
type S3Config struct {
	Region    string
	Bucket    string
	Endpoint  string // optional; enables a custom endpoint (e.g. MinIO)
	Prefix    string // optional key prefix inside the bucket
	PathStyle bool
}

// NewS3 creates an S3 blob store from S3Config.
func NewS3(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	prefix := cfg.Prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Store{client: client, bucket: cfg.Bucket, prefix: prefix}, nil
}

// NewS3FromEnv constructs an S3 store from process environment:
//
//	BLOB_S3_BUCKET (required)
//	BLOB_S3_REGION (default us-east-1)
//	BLOB_S3_ENDPOINT (optional, for MinIO)
//	BLOB_S3_PREFIX (optional)
//	BLOB_S3_PATH_STYLE=true|false (default false)
//	AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY via the default chain
func NewS3FromEnv(ctx context.Context) (*S3Store, error) {
	bucket := config.GetEnv("BLOB_S3_BUCKET", "")
	if bucket == "" {
		return nil, fmt.Errorf("BLOB_S3_BUCKET required for s3 driver")
	}
	return NewS3(ctx, S3Config{
		Bucket:    bucket,
		Region:    config.GetEnv("BLOB_S3_REGION", ""),
		Endpoint:  config.GetEnv("BLOB_S3_ENDPOINT", ""),
		Prefix:    config.GetEnv("BLOB_S3_PREFIX", ""),
		PathStyle: strings.EqualFold(config.GetEnv("BLOB_S3_PATH_STYLE", "false"), "true"),
	})
}

func (s *S3Store) Driver() Driver { return DriverS3 }

func (s *S3Store) key(name string) string { return s.prefix + name }

func (s *S3Store) Put(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	key := s.key(name)
	input := &s3.PutObjectInput{Bucket: &s.bucket, Key: &key, Body: r}
	if contentType != "" {
		input.ContentType = &contentType
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", err
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

func (s *S3Store) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	key := s.key(name)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

func (s *S3Store) Delete(ctx context.Context, name string) (bool, error) {
	key := s.key(name)
	// DeleteObject is idempotent; Head first so callers learn whether the
	// blob actually existed.
	if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &key}); err != nil {
		return false, nil
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &s.bucket, Key: &key}); err != nil {
		return false, err
	}
	return true, nil
}

func (s *S3Store) List(ctx context.Context, prefix string) ([]string, error) {
	full := s.key(prefix)
	var names []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: &s.bucket,
		Prefix: &full,
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			names = append(names, strings.TrimPrefix(*obj.Key, s.prefix))
		}
	}
	return names, nil
}
