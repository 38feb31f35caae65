package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cookingbylea/recipes/backend/internal/middleware"
	"github.com/cookingbylea/recipes/backend/internal/service"
	"github.com/cookingbylea/recipes/backend/internal/types"
)

// AuthHandler exchanges the admin password for a token
type AuthHandler struct {
	auth   service.IAuthService
	logger *slog.Logger
}

func NewAuthHandler(auth service.IAuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

func (h *AuthHandler) RegisterRoutes(router gin.IRouter, guard ...gin.HandlerFunc) {
	router.POST("/auth/login", chain(guard, h.Login)...)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "Invalid request body"})
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Password)
	if err != nil {
		h.logger.WarnContext(c.Request.Context(), "admin login failed", "client_ip", c.ClientIP())
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, types.LoginResponse{Token: token})
}
