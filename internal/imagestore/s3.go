package imagestore

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"shop_backend/internal/config"
	"shop_backend/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of *s3.Client used by S3Store
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store uploads images to an S3 (or S3-compatible) bucket
type S3Store struct {
	client  S3API
	bucket  string
	prefix  string
	baseURL string
}

// NewS3Store builds an S3 client from the image configuration. Static credentials are
// used when given, otherwise the default AWS credential chain applies.
func NewS3Store(ctx context.Context, cfg config.ImageConfig) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3StoreWithClient(client, cfg), nil
}

// NewS3StoreWithClient wraps an existing client
func NewS3StoreWithClient(client S3API, cfg config.ImageConfig) *S3Store {
	baseURL := cfg.S3PublicURL
	switch {
	case baseURL != "":
	case cfg.S3Endpoint != "":
		baseURL = strings.TrimRight(cfg.S3Endpoint, "/") + "/" + cfg.S3Bucket
	default:
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
	}
	return &S3Store{
		client:  client,
		bucket:  cfg.S3Bucket,
		prefix:  strings.Trim(cfg.S3Prefix, "/"),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *S3Store) Save(ctx context.Context, upload model.ImageUpload) (string, error) {
	key := path.Join(s.prefix, objectName(upload.Filename))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(upload.Data),
		ContentLength: aws.Int64(int64(len(upload.Data))),
		ContentType:   aws.String(upload.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to s3: %w", err)
	}
	return s.baseURL + "/" + key, nil
}

func (s *S3Store) Delete(ctx context.Context, url string) error {
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return fmt.Errorf("image %s is not managed by this store", url)
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(strings.TrimPrefix(url, prefix)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image from s3: %w", err)
	}
	return nil
}
