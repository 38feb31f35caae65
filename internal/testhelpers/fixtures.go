package testhelpers

import (
	"context"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/cookingbylea/recipes/backend/internal/media"
	"github.com/cookingbylea/recipes/backend/internal/model"
)

// TestMediaURL is the public base URL of test media stores
const TestMediaURL = "https://media.test"

// Image returns a small upload object
func Image(name string) *media.Object {
	body := "fake image bytes for " + name
	return &media.Object{
		Filename:    name,
		ContentType: "image/jpeg",
		Size:        int64(len(body)),
		Body:        strings.NewReader(body),
	}
}

// SeedRecipe stores a recipe whose image exists in store
func SeedRecipe(t *testing.T, db *gorm.DB, store *media.MemoryStore, recipe model.Recipe) model.Recipe {
	t.Helper()

	url, err := store.Upload(context.Background(), *Image(recipe.Title + ".jpg"))
	if err != nil {
		t.Fatalf("failed to upload seed image: %v", err)
	}
	recipe.ImageURL = url
	if recipe.Category == "" {
		recipe.Category = "Desserts"
	}
	if recipe.Ingredients == nil {
		recipe.Ingredients = model.StringList{"flour"}
	}

	if err := db.Create(&recipe).Error; err != nil {
		t.Fatalf("failed to seed recipe: %v", err)
	}
	return recipe
}
