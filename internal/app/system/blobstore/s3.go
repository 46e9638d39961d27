package blobstore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// putObjectAPI is the slice of the S3 client S3 uses.
type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 stores blobs in a bucket.
type S3 struct {
	client    putObjectAPI
	bucket    string
	prefix    string
	publicURL string
}

// NewS3 builds an S3 backend. Static credentials are used when an access key
// is configured, otherwise the default AWS credential chain applies. A custom
// endpoint switches to path-style addressing (MinIO and friends).
func NewS3(ctx context.Context, cfg Config) (*S3, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("blobstore: s3 bucket is empty")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("blobstore: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3WithClient(client, cfg), nil
}

func newS3WithClient(client putObjectAPI, cfg Config) *S3 {
	pub := strings.TrimRight(cfg.S3PublicURL, "/")
	if pub == "" {
		if cfg.S3Endpoint != "" {
			pub = strings.TrimRight(cfg.S3Endpoint, "/") + "/" + cfg.S3Bucket
		} else {
			pub = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
		}
	}
	prefix := strings.Trim(cfg.S3Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &S3{client: client, bucket: cfg.S3Bucket, prefix: prefix, publicURL: pub}
}

// Put uploads r to bucket/prefix+key.
func (s *S3) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + key),
		Body:   r,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("blobstore: s3 put %s: %w", key, err)
	}
	return nil
}

// URL is publicURL/prefix+key.
func (s *S3) URL(key string) string {
	return s.publicURL + "/" + escapeKey(s.prefix+key)
}
