package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/example/storefront/internal/config"
)

// ErrImageStoreDisabled is returned by uploads when no bucket is configured.
var ErrImageStoreDisabled = errors.New("image storage is not configured")

// AvatarUpload is an image received from the client.
type AvatarUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AvatarStore stores profile images and returns their public URL.
type AvatarStore interface {
	Upload(ctx context.Context, userID uuid.UUID, img AvatarUpload) (string, error)
}

type s3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3AvatarStore uploads avatars to an S3-compatible bucket.
type S3AvatarStore struct {
	client    s3PutObjectAPI
	bucket    string
	publicURL string
}

// NewS3AvatarStore builds the S3 client from cfg. With no bucket configured
// the returned store rejects every upload with ErrImageStoreDisabled.
func NewS3AvatarStore(ctx context.Context, cfg *config.Config) (*S3AvatarStore, error) {
	if cfg.S3Bucket == "" {
		return &S3AvatarStore{}, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, oops.Code("S3_CONFIG_FAILED").Wrap(err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := cfg.S3PublicURL
	if publicURL == "" {
		publicURL = defaultPublicURL(cfg)
	}

	return newS3AvatarStore(client, cfg.S3Bucket, publicURL), nil
}

func newS3AvatarStore(client s3PutObjectAPI, bucket, publicURL string) *S3AvatarStore {
	return &S3AvatarStore{client: client, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

// Upload implements AvatarStore.
func (s *S3AvatarStore) Upload(ctx context.Context, userID uuid.UUID, img AvatarUpload) (string, error) {
	if s.client == nil {
		return "", ErrImageStoreDisabled
	}

	key := AvatarKey(userID, img.Filename)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img.Data),
		ContentType: aws.String(img.ContentType),
	})
	if err != nil {
		return "", oops.Code("S3_PUT_FAILED").With("bucket", s.bucket).With("key", key).Wrap(err)
	}

	return s.publicURL + "/" + key, nil
}

// AvatarKey returns a fresh object key for a user's avatar, keeping the
// original file extension.
func AvatarKey(userID uuid.UUID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 10 {
		ext = ""
	}
	return fmt.Sprintf("avatars/%s/%s%s", userID, uuid.New(), ext)
}

func defaultPublicURL(cfg *config.Config) string {
	if cfg.S3Endpoint != "" {
		return strings.TrimRight(cfg.S3Endpoint, "/") + "/" + cfg.S3Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
}
