package media

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cookingbylea/recipes/backend/internal/logging"
)

func TestExtractIdentifier(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want Identifier
		ok   bool
	}{
		{
			name: "cloud url with folder",
			url:  "https://res.example.com/image/upload/v1700000000/recipes/abc123.jpg",
			want: Identifier{Version: "1700000000", PublicID: "recipes/abc123", Format: "jpg"},
			ok:   true,
		},
		{
			name: "bucket url",
			url:  "https://recipe-images.s3.us-east-1.amazonaws.com/v42/recipes/8d6c.png",
			want: Identifier{Version: "42", PublicID: "recipes/8d6c", Format: "png"},
			ok:   true,
		},
		{
			name: "query string ignored",
			url:  "https://cdn.example.com/v7/recipes/pie.webp?w=300",
			want: Identifier{Version: "7", PublicID: "recipes/pie", Format: "webp"},
			ok:   true,
		},
		{
			name: "base url with its own version segment",
			url:  "https://cdn.example.com/v2/images/v1700000000/recipes/8d6c.jpg",
			want: Identifier{Version: "1700000000", PublicID: "recipes/8d6c", Format: "jpg"},
			ok:   true,
		},
		{name: "no version segment", url: "https://cdn.example.com/recipes/pie.jpg"},
		{name: "no extension", url: "https://cdn.example.com/v7/recipes/pie"},
		{name: "empty", url: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractIdentifier(tt.url)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdentifierKey(t *testing.T) {
	id := Identifier{Version: "12", PublicID: "recipes/tart", Format: "jpg"}
	assert.Equal(t, "v12/recipes/tart.jpg", id.Key())
}

func TestNewIdentifierRoundTrip(t *testing.T) {
	now := time.Unix(1700000000, 0)
	id := NewIdentifier("recipes", "Lemon Tart.JPEG", now)

	assert.Equal(t, "1700000000", id.Version)
	assert.True(t, strings.HasPrefix(id.PublicID, "recipes/"))
	assert.Equal(t, "jpeg", id.Format)

	url := PublicURL("https://cdn.example.com/", id.Key())
	got, ok := ExtractIdentifier(url)
	require.True(t, ok)
	assert.Equal(t, id, got)
}

func TestNewIdentifierDefaultsFormat(t *testing.T) {
	id := NewIdentifier("", "blob", time.Unix(1, 0))
	assert.Equal(t, "jpg", id.Format)
	assert.NotContains(t, id.PublicID, "/")
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("https://cdn.test")

	url, err := store.Upload(ctx, Object{Folder: "recipes", Filename: "pie.png", Body: strings.NewReader("img")})
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())

	id, ok := ExtractIdentifier(url)
	require.True(t, ok)
	data, ok := store.Get(id.Key())
	require.True(t, ok)
	assert.Equal(t, "img", string(data))

	require.NoError(t, store.Delete(ctx, id))
	assert.Equal(t, 0, store.Len())
	assert.ErrorIs(t, store.Delete(ctx, id), ErrObjectNotFound)
	assert.Equal(t, []string{id.Key(), id.Key()}, store.Deletes())
}

func TestMemoryStoreVersionedBaseURL(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("https://cdn.example.com/v2/images")

	url, err := store.Upload(ctx, Object{Folder: "recipes", Filename: "pie.jpg", Body: strings.NewReader("img")})
	require.NoError(t, err)

	id, ok := ExtractIdentifier(url)
	require.True(t, ok)
	assert.Equal(t, store.Uploads()[0], id.Key())

	NewInlineJanitor(store, logging.Discard()).Discard(ctx, url)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStoreForcedFailure(t *testing.T) {
	store := NewMemoryStore("https://cdn.test")
	store.UploadErr = errors.New("bucket offline")

	_, err := store.Upload(context.Background(), Object{Filename: "a.jpg", Body: strings.NewReader("x")})
	assert.EqualError(t, err, "bucket offline")
	assert.Empty(t, store.Uploads())
}
