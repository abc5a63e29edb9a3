package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"event-ticketing/internal/auth"
	"event-ticketing/internal/models"
	"event-ticketing/internal/services"
)

// UserHandler handles user profile endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetProfile returns the public profile of a wallet
// GET /api/users/:address
func (h *UserHandler) GetProfile(c *gin.Context) {
	wallet, ok := parseAddressParam(c)
	if !ok {
		return
	}

	profile, err := h.userService.GetProfile(wallet)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": profile})
}

// UpdateDisplayName updates the current user's display name
// PUT /auth/me/display-name
func (h *UserHandler) UpdateDisplayName(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated", "code": "unauthenticated"})
		return
	}

	var req models.UpdateDisplayNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request: "+err.Error())
		return
	}

	user, err := h.userService.UpdateDisplayName(userID, req.DisplayName)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
