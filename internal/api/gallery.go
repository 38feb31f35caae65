package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cookingbylea/recipes/backend/internal/gallery"
	"github.com/cookingbylea/recipes/backend/internal/service"
)

// GalleryHandler serves filtered, paginated recipe pages
type GalleryHandler struct {
	recipes service.IRecipeService
	logger  *slog.Logger
}

func NewGalleryHandler(recipes service.IRecipeService, logger *slog.Logger) *GalleryHandler {
	return &GalleryHandler{recipes: recipes, logger: logger}
}

func (h *GalleryHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/gallery", h.GetPage)
}

func (h *GalleryHandler) GetPage(c *gin.Context) {
	recipes, err := h.recipes.ListRecipes(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	state := gallery.ParseState(c.Request.URL.Query())
	c.JSON(http.StatusOK, gallery.Run(recipes, state))
}
