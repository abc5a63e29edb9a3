package auth

import (
	"log"
	"net/http"
	"strings"

	"event-ticketing/internal/ticketing"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey        = "user_id"
	walletAddressKey = "wallet_address"
)

// OwnerChecker reports whether an address administers the registry
type OwnerChecker interface {
	IsOwner(addr ticketing.Address) bool
}

// AuthMiddleware validates JWT tokens and protects routes
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
				"code":  "unauthenticated",
			})
			return
		}

		// Extract token from "Bearer <token>" format
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format. Expected: Bearer <token>",
				"code":  "unauthenticated",
			})
			return
		}

		claims, err := ValidateToken(parts[1])
		if err != nil {
			log.Printf("[Auth] Token validation failed: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
				"code":  "unauthenticated",
			})
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(walletAddressKey, claims.WalletAddress)

		c.Next()
	}
}

// RequireOwner rejects callers that are not the current registry owner.
// Must run after AuthMiddleware.
func RequireOwner(owner OwnerChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := GetCaller(c)
		if !ok || !owner.IsOwner(caller) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": ticketing.ErrUnauthorized.Error(),
				"code":  "unauthorized",
			})
			return
		}
		c.Next()
	}
}

// GetUserID retrieves the user ID from the context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(userIDKey)
	if !exists {
		return 0, false
	}

	id, ok := userID.(uint)
	return id, ok
}

// GetWalletAddress retrieves the wallet address from the context
func GetWalletAddress(c *gin.Context) (string, bool) {
	addr, exists := c.Get(walletAddressKey)
	if !exists {
		return "", false
	}

	address, ok := addr.(string)
	return address, ok
}

// GetCaller returns the authenticated wallet as a ledger address
func GetCaller(c *gin.Context) (ticketing.Address, bool) {
	addr, ok := GetWalletAddress(c)
	if !ok || addr == "" {
		return "", false
	}
	return ticketing.Address(addr), true
}
