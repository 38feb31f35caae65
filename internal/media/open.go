package media

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cookingbylea/recipes/backend/config"
)

// Open builds the media store selected by MEDIA_BACKEND
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	switch cfg.MediaBackend {
	case "s3":
		s3Config, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if cfg.MediaPublicPolicy {
			if err := s3Config.SetupBucketPolicy(ctx); err != nil {
				return nil, fmt.Errorf("failed to apply public read policy: %w", err)
			}
		}
		logger.Info("Using S3 media store", slog.String("bucket", s3Config.BucketName))
		return NewS3Store(s3Config), nil
	case "minio":
		store, err := NewMinioStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("Using MinIO media store",
			slog.String("endpoint", cfg.MediaEndpoint),
			slog.String("bucket", cfg.MediaBucket))
		return store, nil
	case "memory":
		base := cfg.MediaPublicURL
		if base == "" {
			base = "http://localhost:" + cfg.ServerPort + "/media"
		}
		logger.Warn("Using in-memory media store; images are lost on restart")
		return NewMemoryStore(base), nil
	default:
		return nil, fmt.Errorf("unsupported media backend %q", cfg.MediaBackend)
	}
}
