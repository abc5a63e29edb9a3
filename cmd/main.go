package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"event-ticketing/internal/auth"
	"event-ticketing/internal/blockchain"
	"event-ticketing/internal/clock"
	"event-ticketing/internal/config"
	"event-ticketing/internal/database"
	"event-ticketing/internal/handlers"
	"event-ticketing/internal/jobs"
	"event-ticketing/internal/middleware"
	"event-ticketing/internal/notify"
	"event-ticketing/internal/repository"
	"event-ticketing/internal/services"
	"event-ticketing/internal/ticketing"
	"event-ticketing/internal/token"
)

const defaultLedgerAddress ticketing.Address = "ticketing-escrow"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()
	db := database.GetDB()
	owner := ticketing.Address(cfg.App.OwnerAddress)
	amounts := services.NewAmounts(cfg.Token.Decimals)

	// Payment token
	ledger, self, chain, err := openLedger(ctx, cfg, owner, amounts)
	if err != nil {
		log.Fatalf("Failed to open token ledger: %v", err)
	}
	log.Printf("Token ledger: %s (%s, %d decimals), escrow account %s", cfg.Token.Backend, ledger.Symbol(), ledger.Decimals(), self)

	// Ticketing engine, journaled to the database and restored from it
	repo := repository.NewRepository(db)
	engine, err := ticketing.NewEngine(ticketing.Config{
		Owner:   owner,
		Self:    self,
		Token:   ledger,
		Clock:   clock.NewSystem(),
		Journal: repo,
	})
	if err != nil {
		log.Fatalf("Failed to create ticketing engine: %v", err)
	}

	snap, err := repo.LoadSnapshot(ctx)
	if err != nil {
		log.Fatalf("Failed to load ledger state: %v", err)
	}
	if err := engine.Restore(snap); err != nil {
		log.Fatalf("Failed to restore ledger state: %v", err)
	}

	// Browser origins for CORS and the websocket stream
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	if cfg.Server.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.Server.FrontendURL)
	}

	// Notification subscribers
	hub := notify.NewHub(allowedOrigins)
	engine.Subscribe(hub.Broadcast)

	// Login nonces live in Redis when it is reachable so every instance sees them
	var challenges auth.Challenges = auth.NewMemoryChallenges(auth.ChallengeTTL, nil)

	var publisher *notify.RedisPublisher
	if cfg.Redis.Addr != "" {
		client, err := notify.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Printf("Warning: Redis unavailable, notifications will not be published and login nonces stay local: %v", err)
		} else {
			defer client.Close()
			publisher = notify.NewRedisPublisher(client, cfg.Redis.Channel, 1024)
			publisher.Start()
			engine.Subscribe(publisher.Subscriber())
			challenges = auth.NewRedisChallenges(client, "ticketing:login:", auth.ChallengeTTL)
		}
	}

	// Initialize services
	authService := services.NewAuthService(db)
	userService := services.NewUserService(db, engine)
	ticketingService := services.NewTicketingService(engine, amounts)
	passService := services.NewPassService(cfg.App.PassSecret, engine)
	tokenService := services.NewTokenService(ledger, self, amounts)

	// Start escrow reconciliation job
	reconciler := jobs.NewEscrowReconciler(engine, cfg.Jobs.ReconcileInterval)
	go reconciler.Start()

	// Per-IP limiter for authenticated writes
	limiter := middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	stopLimiter := make(chan struct{})
	go limiter.Run(stopLimiter)

	// Set up Gin router
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes := &handlers.Router{
		Auth:          handlers.NewAuthHandler(authService, challenges),
		Users:         handlers.NewUserHandler(userService),
		Events:        handlers.NewEventHandler(ticketingService),
		Passes:        handlers.NewPassHandler(passService),
		Tokens:        handlers.NewTokenHandler(tokenService),
		Admin:         handlers.NewAdminHandler(ticketingService, reconciler, chain),
		Notifications: handlers.NewNotificationHandler(repo),
		Stream:        hub.ServeWS,
		Owner:         engine,
		WriteLimit:    limiter.Limit(),
	}
	routes.Register(router)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)
		log.Printf("Event stream: ws://localhost:%s/api/stream", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	reconciler.Stop()
	close(stopLimiter)
	hub.Close()
	if publisher != nil {
		publisher.Close()
	}

	log.Println("Server exited")
}

// openLedger builds the configured token ledger and picks the escrow account
// the engine pulls payments into. chain is set only for the solana backend.
func openLedger(ctx context.Context, cfg *config.Config, owner ticketing.Address, amounts services.Amounts) (token.Ledger, ticketing.Address, *blockchain.SPLToken, error) {
	self := ticketing.Address(cfg.App.LedgerAddress)

	switch cfg.Token.Backend {
	case config.TokenBackendSolana:
		client := blockchain.NewSolanaClient(cfg.Solana.Network, cfg.Solana.RPCURL, cfg.Solana.ServerWalletPrivateKey)
		spl, err := blockchain.NewSPLToken(client, cfg.Solana.TokenMint, cfg.Token.Symbol, cfg.Token.Decimals)
		if err != nil {
			return nil, "", nil, err
		}
		if self == "" {
			pub, ok := client.ServerPublicKey()
			if !ok {
				return nil, "", nil, blockchain.ErrNoServerWallet
			}
			self = ticketing.Address(pub.String())
		}
		return spl, self, spl, nil

	case config.TokenBackendMemory, config.TokenBackendDatabase:
		if self == "" {
			self = defaultLedgerAddress
		}
		supply, err := amounts.WholeToUnits(cfg.Token.InitialSupply)
		if err != nil {
			return nil, "", nil, err
		}
		if cfg.Token.Backend == config.TokenBackendMemory {
			log.Println("Warning: in-memory token ledger, balances are lost on restart")
			return token.NewMemoryLedger(owner, cfg.Token.Symbol, cfg.Token.Decimals, supply), self, nil, nil
		}
		dbLedger, err := token.NewDBLedger(ctx, database.GetDB(), owner, cfg.Token.Symbol, cfg.Token.Decimals, supply)
		if err != nil {
			return nil, "", nil, err
		}
		return dbLedger, self, nil, nil
	}

	return nil, "", nil, fmt.Errorf("unknown token backend %q", cfg.Token.Backend)
}
