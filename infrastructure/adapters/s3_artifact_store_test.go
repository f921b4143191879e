package adapters

import (
	"context"
	"errors"
	"illustrated-story-api/application/ports/outbound"
	"illustrated-story-api/config"
	"illustrated-story-api/domain"
	"io"
	"regexp"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	s3iface.S3API
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error) {
	f.input = input
	f.body, _ = io.ReadAll(input.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3ArtifactStore_Save(t *testing.T) {
	fake := &fakeS3{}
	store := NewS3ArtifactStore(fake, &config.S3Config{
		BucketName: "stories",
		Region:     "eu-west-1",
		KeyPrefix:  "artifacts",
	}, newTestLogger())

	url, err := store.Save(context.Background(), outbound.SaveArtifactParams{
		StoryID:  "story-1",
		Kind:     domain.SpeechGenerationKind,
		Index:    3,
		Artifact: domain.NewInlineArtifact([]byte("audio"), "audio/mpeg"),
	})

	require.NoError(t, err)
	assert.Equal(t, "stories", aws.StringValue(fake.input.Bucket))
	assert.Equal(t, "audio/mpeg", aws.StringValue(fake.input.ContentType))
	assert.Equal(t, []byte("audio"), fake.body)
	assert.Regexp(t, regexp.MustCompile(`^artifacts/story/story-1/speech/03-[0-9a-f-]{36}`), aws.StringValue(fake.input.Key))
	assert.Equal(t, "https://stories.s3.eu-west-1.amazonaws.com/"+aws.StringValue(fake.input.Key), url)
}

func TestS3ArtifactStore_Errors(t *testing.T) {
	fake := &fakeS3{err: errors.New("access denied")}
	store := NewS3ArtifactStore(fake, &config.S3Config{BucketName: "b", Region: "r", KeyPrefix: "p"}, newTestLogger())

	_, err := store.Save(context.Background(), outbound.SaveArtifactParams{
		Kind:     domain.ImageGenerationKind,
		Artifact: domain.NewInlineArtifact([]byte("img"), "image/png"),
	})
	assert.EqualError(t, err, "access denied")

	_, err = store.Save(context.Background(), outbound.SaveArtifactParams{
		Kind:     domain.ImageGenerationKind,
		Artifact: domain.NewRemoteArtifact("https://example.com/x.png"),
	})
	assert.Error(t, err)
}
