package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kassemshdy/aspire-library/internal/config"
)

type recordingS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (r *recordingS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	r.input = in
	r.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, r.err
}

func TestPublicBase(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{"explicit public url", config.Config{S3PublicURL: "https://cdn.example.com/", S3Bucket: "covers"}, "https://cdn.example.com"},
		{"custom endpoint", config.Config{S3Endpoint: "http://localhost:9000", S3Bucket: "covers"}, "http://localhost:9000/covers"},
		{"aws", config.Config{S3Bucket: "covers", S3Region: "eu-west-1"}, "https://covers.s3.eu-west-1.amazonaws.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, publicBase(&tt.cfg))
		})
	}
}

func TestPutCover(t *testing.T) {
	api := &recordingS3{}
	store := &S3CoverStore{client: api, bucket: "covers", publicURL: "https://cdn.example.com"}

	url, err := store.PutCover(context.Background(), "covers/abc.webp", []byte("RIFF"))
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/covers/abc.webp", url)
	assert.Equal(t, "covers", aws.ToString(api.input.Bucket))
	assert.Equal(t, "covers/abc.webp", aws.ToString(api.input.Key))
	assert.Equal(t, "image/webp", aws.ToString(api.input.ContentType))
	assert.Equal(t, []byte("RIFF"), api.body)

	api.err = errors.New("access denied")
	_, err = store.PutCover(context.Background(), "covers/abc.webp", []byte("RIFF"))
	assert.ErrorContains(t, err, "access denied")
}
