package media

import (
	"context"
	"log/slog"
)

// Janitor disposes of images that are no longer referenced by any recipe.
// Disposal is best effort; failures are logged and never surface to callers.
type Janitor interface {
	Discard(ctx context.Context, imageURL string)
}

// InlineJanitor deletes images synchronously through the store
type InlineJanitor struct {
	store  Store
	logger *slog.Logger
}

func NewInlineJanitor(store Store, logger *slog.Logger) *InlineJanitor {
	return &InlineJanitor{store: store, logger: logger}
}

func (j *InlineJanitor) Discard(ctx context.Context, imageURL string) {
	id, ok := ExtractIdentifier(imageURL)
	if !ok {
		j.logger.WarnContext(ctx, "image url has no media identifier, skipping delete", "url", imageURL)
		return
	}

	if err := j.store.Delete(ctx, id); err != nil {
		j.logger.ErrorContext(ctx, "failed to delete image", "key", id.Key(), "error", err)
		return
	}
	j.logger.DebugContext(ctx, "deleted image", "key", id.Key())
}
