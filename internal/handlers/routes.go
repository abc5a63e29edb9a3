package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"event-ticketing/internal/auth"
)

// Router groups the API handlers and mounts them on a gin engine
type Router struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Events        *EventHandler
	Passes        *PassHandler
	Tokens        *TokenHandler
	Admin         *AdminHandler
	Notifications *NotificationHandler

	// Stream upgrades GET /api/stream to a websocket
	Stream gin.HandlerFunc
	// Owner gates the admin routes
	Owner auth.OwnerChecker
	// WriteLimit, if set, throttles authenticated writes
	WriteLimit gin.HandlerFunc
}

// Register mounts every route on router
func (rt *Router) Register(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/challenge", rt.Auth.Challenge)
		authRoutes.POST("/wallet", rt.Auth.WalletLogin)
		authRoutes.GET("/me", auth.AuthMiddleware(), rt.Auth.GetMe)
		authRoutes.PUT("/me/display-name", auth.AuthMiddleware(), rt.Users.UpdateDisplayName)
	}

	api := router.Group("/api")

	// Public reads
	{
		api.GET("/events", rt.Events.ListEvents)
		api.GET("/events/:id", rt.Events.GetEvent)
		api.GET("/events/:id/remaining", rt.Events.GetRemainingTickets)
		api.GET("/events/:id/active", rt.Events.IsEventActive)
		api.GET("/events/:id/holders/:address", rt.Events.GetTicketsOwned)
		api.GET("/organizers/:address/events", rt.Events.GetEventsByOrganizer)
		api.GET("/holders/:address/attended", rt.Events.GetAttendedEvents)
		api.GET("/users/:address", rt.Users.GetProfile)
		api.GET("/notifications", rt.Notifications.ListNotifications)
		api.POST("/ledger/payments", rt.Events.ReceivePayment)
		if rt.Stream != nil {
			api.GET("/stream", rt.Stream)
		}
	}

	protected := api.Group("")
	protected.Use(auth.AuthMiddleware())
	if rt.WriteLimit != nil {
		protected.Use(rt.WriteLimit)
	}
	{
		protected.POST("/events", rt.Events.CreateEvent)
		protected.POST("/events/:id/cancel", rt.Events.CancelEvent)
		protected.POST("/events/:id/withdraw", rt.Events.WithdrawFunds)
		protected.POST("/events/:id/tickets", rt.Events.BuyTicket)
		protected.POST("/events/:id/refund", rt.Events.RefundTicket)
		protected.GET("/events/:id/pass", rt.Passes.GetPass)
		protected.POST("/passes/verify", rt.Passes.VerifyPass)

		protected.GET("/token/balance", rt.Tokens.GetBalance)
		protected.GET("/token/allowance", rt.Tokens.GetAllowance)
		protected.POST("/token/approve", rt.Tokens.Approve)
	}

	admin := protected.Group("/admin")
	admin.Use(auth.RequireOwner(rt.Owner))
	{
		admin.GET("/owner", rt.Admin.GetOwner)
		admin.PUT("/owner", rt.Admin.SetOwner)
		admin.POST("/events/:id/payouts/resolve", rt.Admin.ResolvePayout)
		admin.POST("/token/mint", rt.Tokens.Mint)
		admin.GET("/reconciliation", rt.Admin.Reconcile)
		admin.GET("/diagnostics", rt.Admin.Diagnostics)
	}
}
