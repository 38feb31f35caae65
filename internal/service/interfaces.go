package service

import (
	"context"

	"github.com/cookingbylea/recipes/backend/internal/model"
	"github.com/cookingbylea/recipes/backend/internal/types"
)

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, input CreateRecipeInput) (*model.Recipe, error)
	GetRecipe(ctx context.Context, id string) (*model.Recipe, error)
	ListRecipes(ctx context.Context) ([]model.Recipe, error)
	UpdateRecipe(ctx context.Context, id string, input UpdateRecipeInput) (*model.Recipe, error)
	DeleteRecipe(ctx context.Context, id string) (*model.Recipe, error)
}

// IAuthService defines the interface for admin authentication
type IAuthService interface {
	Login(ctx context.Context, password string) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}
