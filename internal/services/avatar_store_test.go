package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/config"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = params
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	return &s3.PutObjectOutput{}, nil
}

func TestS3AvatarStore_Upload(t *testing.T) {
	fake := &fakeS3{}
	store := newS3AvatarStore(fake, "avatars-bucket", "https://cdn.shop.test/")
	userID := uuid.New()

	url, err := store.Upload(context.Background(), userID, AvatarUpload{
		Filename:    "face.JPG",
		ContentType: "image/jpeg",
		Data:        []byte("jpeg-bytes"),
	})
	require.NoError(t, err)

	require.NotNil(t, fake.input)
	key := aws.ToString(fake.input.Key)
	assert.Equal(t, "avatars-bucket", aws.ToString(fake.input.Bucket))
	assert.Equal(t, "image/jpeg", aws.ToString(fake.input.ContentType))
	assert.True(t, strings.HasPrefix(key, "avatars/"+userID.String()+"/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.Equal(t, []byte("jpeg-bytes"), fake.body)
	assert.Equal(t, "https://cdn.shop.test/"+key, url)
}

func TestS3AvatarStore_PutFailure(t *testing.T) {
	store := newS3AvatarStore(&fakeS3{err: errors.New("access denied")}, "b", "https://cdn")

	_, err := store.Upload(context.Background(), uuid.New(), AvatarUpload{Filename: "a.png", Data: []byte("x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestNewS3AvatarStore_DisabledWithoutBucket(t *testing.T) {
	store, err := NewS3AvatarStore(context.Background(), &config.Config{})
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), uuid.New(), AvatarUpload{Data: []byte("x")})
	assert.ErrorIs(t, err, ErrImageStoreDisabled)
}

func TestAvatarKey(t *testing.T) {
	userID := uuid.New()

	a := AvatarKey(userID, "me.png")
	b := AvatarKey(userID, "me.png")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, ".png"))

	noExt := AvatarKey(userID, "blob")
	assert.Len(t, noExt, len("avatars/")+36+1+36)
}

func TestDefaultPublicURL(t *testing.T) {
	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com",
		defaultPublicURL(&config.Config{S3Bucket: "b", S3Region: "eu-west-1"}))
	assert.Equal(t, "http://minio:9000/b",
		defaultPublicURL(&config.Config{S3Bucket: "b", S3Endpoint: "http://minio:9000/"}))
}
