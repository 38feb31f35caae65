package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cookingbylea/recipes/backend/internal/middleware"
	"github.com/cookingbylea/recipes/backend/internal/service"
	"github.com/cookingbylea/recipes/backend/internal/types"
)

type RecipeHandler struct {
	recipes        service.IRecipeService
	logger         *slog.Logger
	maxUploadBytes int64
}

func NewRecipeHandler(recipes service.IRecipeService, maxUploadBytes int64, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{
		recipes:        recipes,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// RegisterRoutes mounts the recipe routes. guard runs before every mutation.
func (h *RecipeHandler) RegisterRoutes(router gin.IRouter, guard ...gin.HandlerFunc) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.POST("", chain(guard, h.CreateRecipe)...)
		recipes.PUT("/:id", chain(guard, h.UpdateRecipe)...)
		recipes.DELETE("/:id", chain(guard, h.DeleteRecipe)...)
	}
}

func chain(guard []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	handlers := make([]gin.HandlerFunc, 0, len(guard)+1)
	handlers = append(handlers, guard...)
	return append(handlers, handler)
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	recipes, err := h.recipes.ListRecipes(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipe, err := h.recipes.GetRecipe(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	form, ok := h.parseForm(c)
	if !ok {
		return
	}

	image, file, err := form.openImage()
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), service.CreateRecipeInput{
		Title:       form.get("title"),
		Ingredients: form.ingredients,
		Preparation: form.get("preparation"),
		Category:    form.get("category"),
		Subcategory: form.get("subcategory"),
		IsHealthy:   form.get("isHealthy") == "true",
		Image:       image,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	form, ok := h.parseForm(c)
	if !ok {
		return
	}

	image, file, err := form.openImage()
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	recipe, err := h.recipes.UpdateRecipe(c.Request.Context(), c.Param("id"), service.UpdateRecipeInput{
		Title:       form.lookup("title"),
		Ingredients: form.ingredients,
		Preparation: form.lookup("preparation"),
		Category:    form.lookup("category"),
		Subcategory: form.lookup("subcategory"),
		IsHealthy:   form.healthy(),
		Image:       image,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.recipes.DeleteRecipe(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, types.DeleteRecipeResponse{
		Message: "Recipe deleted successfully",
		ID:      id,
	})
}

func (h *RecipeHandler) parseForm(c *gin.Context) (*recipeForm, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	multipartForm, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, middleware.ErrorResponse{Error: "Upload is too large"})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "Invalid form data"})
		return nil, false
	}
	return parseRecipeForm(multipartForm), true
}
