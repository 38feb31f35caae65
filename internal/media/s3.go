package media

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/cookingbylea/recipes/backend/config"
)

// S3Store keeps images in an S3 bucket
type S3Store struct {
	s3Config *config.S3Config
}

// NewS3Store wraps an initialized S3 client
func NewS3Store(s3Config *config.S3Config) *S3Store {
	return &S3Store{s3Config: s3Config}
}

func (s *S3Store) Upload(ctx context.Context, obj Object) (string, error) {
	id := NewIdentifier(obj.Folder, obj.Filename, time.Now())

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(id.Key()),
		Body:        obj.Body,
		ContentType: aws.String(contentTypeOrDefault(obj.ContentType)),
	}
	if obj.Size > 0 {
		input.ContentLength = aws.Int64(obj.Size)
	}

	if _, err := s.s3Config.Client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return PublicURL(s.s3Config.PublicURL, id.Key()), nil
}

func (s *S3Store) Delete(ctx context.Context, id Identifier) error {
	_, err := s.s3Config.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.s3Config.BucketName),
		Key:    aws.String(id.Key()),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s from S3: %w", id.Key(), err)
	}
	return nil
}

func contentTypeOrDefault(contentType string) string {
	if contentType == "" {
		return "application/octet-stream"
	}
	return contentType
}
