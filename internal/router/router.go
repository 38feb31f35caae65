package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/cookingbylea/recipes/backend/internal/api"
	"github.com/cookingbylea/recipes/backend/internal/middleware"
	"github.com/cookingbylea/recipes/backend/internal/service"
)

const defaultMaxUploadBytes = 10 << 20

// Deps are the collaborators the routes are built from
type Deps struct {
	Recipes service.IRecipeService
	// Auth protects mutations when set
	Auth service.IAuthService
	// Limiter throttles mutations when set
	Limiter *middleware.RateLimiter
	// LoginLimiter throttles admin logins when set
	LoginLimiter   *middleware.RateLimiter
	Ping           api.Pinger
	CORSOrigins    []string
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// SetupRouter configures the application routes. Every route is served at
// the root and again under /api.
func SetupRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestLogger(deps.Logger),
		middleware.Recovery(deps.Logger),
		middleware.CORS(deps.CORSOrigins),
	)
	router.NoRoute(middleware.NoRoute)

	maxUpload := deps.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}
	router.MaxMultipartMemory = maxUpload

	var guard, loginGuard []gin.HandlerFunc
	if deps.Limiter != nil {
		guard = append(guard, deps.Limiter.Middleware())
	}
	if deps.LoginLimiter != nil {
		loginGuard = append(loginGuard, deps.LoginLimiter.Middleware())
	}
	if deps.Auth != nil {
		guard = append(guard, middleware.AdminAuth(deps.Auth))
	}

	recipeHandler := api.NewRecipeHandler(deps.Recipes, maxUpload, deps.Logger)
	galleryHandler := api.NewGalleryHandler(deps.Recipes, deps.Logger)
	healthHandler := api.NewHealthHandler(deps.Ping)
	var authHandler *api.AuthHandler
	if deps.Auth != nil {
		authHandler = api.NewAuthHandler(deps.Auth, deps.Logger)
	}

	for _, group := range []gin.IRouter{router, router.Group("/api")} {
		healthHandler.RegisterRoutes(group)
		recipeHandler.RegisterRoutes(group, guard...)
		galleryHandler.RegisterRoutes(group)
		if authHandler != nil {
			authHandler.RegisterRoutes(group, loginGuard...)
		}
	}

	return router
}
