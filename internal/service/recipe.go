package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cookingbylea/recipes/backend/internal/media"
	"github.com/cookingbylea/recipes/backend/internal/model"
)

// CreateRecipeInput carries the fields of a new recipe
type CreateRecipeInput struct {
	Title       string
	Ingredients []string
	Preparation string
	Category    string
	Subcategory string
	IsHealthy   bool
	Image       *media.Object
}

// UpdateRecipeInput carries a partial update. Nil fields are left unchanged and
// ingredients are replaced only when at least one value is given.
type UpdateRecipeInput struct {
	Title       *string
	Ingredients []string
	Preparation *string
	Category    *string
	Subcategory *string
	IsHealthy   *bool
	Image       *media.Object
}

// RecipeService handles recipe operations
type RecipeService struct {
	db      *gorm.DB
	media   media.Store
	janitor media.Janitor
	cache   RecipeCache
	logger  *slog.Logger
	folder  string
}

// NewRecipeService creates a new RecipeService instance. cache may be nil.
func NewRecipeService(db *gorm.DB, store media.Store, janitor media.Janitor, cache RecipeCache, folder string, logger *slog.Logger) *RecipeService {
	return &RecipeService{
		db:      db,
		media:   store,
		janitor: janitor,
		cache:   cache,
		logger:  logger,
		folder:  folder,
	}
}

// CreateRecipe uploads the image and persists the recipe pointing at it
func (s *RecipeService) CreateRecipe(ctx context.Context, input CreateRecipeInput) (*model.Recipe, error) {
	if input.Image == nil {
		return nil, newError(ErrValidation, MsgImageRequired)
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, newError(ErrValidation, "Title is required")
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		return nil, newError(ErrValidation, "Category is required")
	}

	obj := *input.Image
	obj.Folder = s.folder
	imageURL, err := s.media.Upload(ctx, obj)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	recipe := model.Recipe{
		Title:       title,
		ImageURL:    imageURL,
		Ingredients: model.StringList(input.Ingredients),
		Preparation: input.Preparation,
		Category:    category,
		Subcategory: strings.TrimSpace(input.Subcategory),
		IsHealthy:   input.IsHealthy,
	}

	if err := s.db.WithContext(ctx).Create(&recipe).Error; err != nil {
		s.janitor.Discard(ctx, imageURL)
		if isDuplicateKey(err) {
			return nil, newError(ErrConflict, MsgDuplicateTitle)
		}
		return nil, fmt.Errorf("failed to save recipe: %w", err)
	}

	s.invalidate(ctx)
	s.logger.InfoContext(ctx, "recipe created", "id", recipe.ID, "title", recipe.Title)
	return &recipe, nil
}

// GetRecipe retrieves a recipe by ID
func (s *RecipeService) GetRecipe(ctx context.Context, id string) (*model.Recipe, error) {
	recipeID, err := uuid.Parse(id)
	if err != nil {
		return nil, newError(ErrNotFound, MsgRecipeNotFound)
	}
	return s.find(ctx, recipeID)
}

// ListRecipes returns every recipe in insertion order
func (s *RecipeService) ListRecipes(ctx context.Context) ([]model.Recipe, error) {
	var generation string
	if s.cache != nil {
		if recipes, ok := s.cache.GetAll(ctx); ok {
			return recipes, nil
		}
		generation = s.cache.Generation(ctx)
	}

	recipes := []model.Recipe{}
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	if s.cache != nil {
		s.cache.SetAll(ctx, generation, recipes)
	}
	return recipes, nil
}

// UpdateRecipe applies the supplied fields as one partial update. A new image
// is uploaded first; the previous image is only discarded once the record
// points at the new one.
func (s *RecipeService) UpdateRecipe(ctx context.Context, id string, input UpdateRecipeInput) (*model.Recipe, error) {
	recipeID, err := uuid.Parse(id)
	if err != nil {
		return nil, newError(ErrNotFound, MsgRecipeNotFound)
	}

	current, err := s.find(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	updates, err := stageUpdates(input)
	if err != nil {
		return nil, err
	}

	var newImageURL string
	if input.Image != nil {
		obj := *input.Image
		obj.Folder = s.folder
		newImageURL, err = s.media.Upload(ctx, obj)
		if err != nil {
			return nil, fmt.Errorf("failed to upload image: %w", err)
		}
		updates["image_url"] = newImageURL
	}

	if len(updates) == 0 {
		return current, nil
	}

	result := s.db.WithContext(ctx).Model(&model.Recipe{}).Where("id = ?", recipeID).Updates(updates)
	if result.Error == nil && result.RowsAffected == 0 {
		result.Error = newError(ErrNotFound, MsgRecipeNotFound)
	}
	if err := result.Error; err != nil {
		if newImageURL != "" {
			s.janitor.Discard(ctx, newImageURL)
		}
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, err
		case isDuplicateKey(err):
			return nil, newError(ErrConflict, MsgDuplicateTitle)
		}
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}

	if newImageURL != "" && current.ImageURL != newImageURL {
		s.janitor.Discard(ctx, current.ImageURL)
	}
	s.invalidate(ctx)

	updated, err := s.find(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "recipe updated", "id", recipeID, "fields", len(updates))
	return updated, nil
}

func stageUpdates(input UpdateRecipeInput) (map[string]interface{}, error) {
	updates := make(map[string]interface{})

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, newError(ErrValidation, "Title cannot be empty")
		}
		updates["title"] = title
	}
	if input.Preparation != nil {
		updates["preparation"] = strings.TrimSpace(*input.Preparation)
	}
	if input.Category != nil {
		category := strings.TrimSpace(*input.Category)
		if category == "" {
			return nil, newError(ErrValidation, "Category cannot be empty")
		}
		updates["category"] = category
	}
	if input.Subcategory != nil {
		updates["subcategory"] = strings.TrimSpace(*input.Subcategory)
	}
	if input.IsHealthy != nil {
		updates["is_healthy"] = *input.IsHealthy
	}
	if len(input.Ingredients) > 0 {
		updates["ingredients"] = model.StringList(input.Ingredients)
	}

	return updates, nil
}

// DeleteRecipe removes a recipe and discards its image
func (s *RecipeService) DeleteRecipe(ctx context.Context, id string) (*model.Recipe, error) {
	recipeID, err := uuid.Parse(id)
	if err != nil {
		return nil, newError(ErrNotFound, MsgRecipeNotFound)
	}

	recipe, err := s.find(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	result := s.db.WithContext(ctx).Delete(&model.Recipe{}, "id = ?", recipeID)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to delete recipe: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, newError(ErrNotFound, MsgRecipeNotFound)
	}

	s.janitor.Discard(ctx, recipe.ImageURL)
	s.invalidate(ctx)
	s.logger.InfoContext(ctx, "recipe deleted", "id", recipeID)
	return recipe, nil
}

func (s *RecipeService) find(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, MsgRecipeNotFound)
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	return &recipe, nil
}

func (s *RecipeService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}
