package types

// LoginRequest represents the request body for admin login
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the admin bearer token
type LoginResponse struct {
	Token string `json:"token"`
}

// DeleteRecipeResponse confirms a deletion
type DeleteRecipeResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}
