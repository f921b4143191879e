package adapters

import (
	"bytes"
	"context"
	"fmt"
	"illustrated-story-api/application/ports/outbound"
	"illustrated-story-api/config"
	"mime"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"
)

type s3ArtifactStore struct {
	logger   outbound.LoggerPort
	s3Svc    s3iface.S3API
	s3Config *config.S3Config
}

func NewS3ArtifactStore(s3Svc s3iface.S3API, s3Config *config.S3Config, logger outbound.LoggerPort) outbound.ArtifactStorePort {
	return &s3ArtifactStore{
		logger:   logger,
		s3Svc:    s3Svc,
		s3Config: s3Config,
	}
}

func (s *s3ArtifactStore) Save(ctx context.Context, params outbound.SaveArtifactParams) (string, error) {
	if params.Artifact == nil || params.Artifact.IsRemote() {
		return "", fmt.Errorf("only inline artifacts can be stored")
	}

	itemPath := s.getS3ItemPath(params)

	putInput := &s3.PutObjectInput{
		Bucket:        aws.String(s.s3Config.BucketName),
		Key:           aws.String(itemPath),
		Body:          bytes.NewReader(params.Artifact.Data),
		ContentLength: aws.Int64(int64(len(params.Artifact.Data))),
		ContentType:   aws.String(params.Artifact.MimeType),
	}

	_, err := s.s3Svc.PutObjectWithContext(ctx, putInput)
	if err != nil {
		s.logger.ErrorWithFields(err, "Failed to upload artifact to S3", map[string]interface{}{
			"bucket": s.s3Config.BucketName,
			"key":    itemPath,
		})
		return "", err
	}

	s3Url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.s3Config.BucketName, s.s3Config.Region, itemPath)
	s.logger.DebugWithFields("Successfully uploaded artifact to S3", map[string]interface{}{
		"url": s3Url,
	})

	return s3Url, nil
}

func (s *s3ArtifactStore) getS3ItemPath(params outbound.SaveArtifactParams) string {
	extension := ""
	if extensions, err := mime.ExtensionsByType(params.Artifact.MimeType); err == nil && len(extensions) > 0 {
		extension = extensions[0]
	}
	return fmt.Sprintf("%s/story/%s/%s/%02d-%s%s", s.s3Config.KeyPrefix, params.StoryID, params.Kind, params.Index,
		uuid.NewString(), extension)
}
