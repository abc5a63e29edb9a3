package handlers

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mr-tron/base58"

	"event-ticketing/internal/auth"
	"event-ticketing/internal/services"
)

// LoginMessage prefixes the challenge a wallet signs to log in
const LoginMessage = "Sign this message to authenticate with the ticketing service"

// ChallengeMessage is the exact text signed for nonce
func ChallengeMessage(nonce string) string {
	return LoginMessage + "\nNonce: " + nonce
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	challenges  auth.Challenges
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *services.AuthService, challenges auth.Challenges) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		challenges:  challenges,
	}
}

func walletKey(address string) (ed25519.PublicKey, bool) {
	if len(address) < 32 || len(address) > 44 {
		return nil, false
	}
	pubKey, err := base58.Decode(address)
	if err != nil || len(pubKey) != ed25519.PublicKeySize {
		return nil, false
	}
	return pubKey, true
}

// Challenge issues a single-use nonce for a wallet to sign.
// POST /auth/challenge
func (h *AuthHandler) Challenge(c *gin.Context) {
	var req struct {
		WalletAddress string `json:"wallet_address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if _, ok := walletKey(req.WalletAddress); !ok {
		badRequest(c, "invalid wallet address")
		return
	}

	nonce, expiresAt, err := h.challenges.Issue(c.Request.Context(), req.WalletAddress)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"nonce":      nonce,
		"message":    ChallengeMessage(nonce),
		"expires_at": expiresAt,
	})
}

// WalletLogin authenticates a user by their Solana wallet address and an
// ed25519 signature of the challenge message for a nonce from Challenge.
// Each nonce logs in at most once.
// POST /auth/wallet
func (h *AuthHandler) WalletLogin(c *gin.Context) {
	var req struct {
		WalletAddress string `json:"wallet_address" binding:"required"`
		Nonce         string `json:"nonce" binding:"required"`
		Signature     string `json:"signature" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	pubKey, ok := walletKey(req.WalletAddress)
	if !ok {
		badRequest(c, "invalid wallet address")
		return
	}

	// Wallets return base58 signatures; some clients send hex
	sig, err := base58.Decode(req.Signature)
	if err != nil {
		sig, err = hex.DecodeString(req.Signature)
		if err != nil {
			badRequest(c, "invalid signature format")
			return
		}
	}

	if !ed25519.Verify(pubKey, []byte(ChallengeMessage(req.Nonce)), sig) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature", "code": "unauthenticated"})
		return
	}

	if err := h.challenges.Consume(c.Request.Context(), req.WalletAddress, req.Nonce); err != nil {
		if errors.Is(err, auth.ErrChallengeNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "code": "unauthenticated"})
			return
		}
		respondError(c, err)
		return
	}

	user, err := h.authService.ProcessWalletLogin(req.WalletAddress)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := auth.GenerateToken(user.ID, user.WalletAddress)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// GetMe returns the currently authenticated user's profile
// GET /auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "code": "unauthenticated"})
		return
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found", "code": "not_found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}
